// Package cliflags factors out the flag definitions shared by this
// module's three commands, the way helm-helm/cmd/helm/flags.go's
// addChartPathOptionsFlags/addValueOptionsFlags factor out flags shared
// across helm's install/upgrade/template commands.
package cliflags

import (
	"time"

	"github.com/spf13/pflag"
)

// AddDebug registers the --debug flag every command in this module
// accepts: it raises the logger to debug level and switches a failing
// command from a bare error message to a full diagnostic.
func AddDebug(f *pflag.FlagSet, debug *bool) {
	f.BoolVar(debug, "debug", false, "enable debug logging and full diagnostics on failure")
}

// AddTimeout registers the --timeout flag shared by playbook-verifier and
// playbook-signer.
func AddTimeout(f *pflag.FlagSet, timeout *time.Duration) {
	f.DurationVar(timeout, "timeout", 0, "wall-clock bound on each external gpg invocation (default: no deadline)")
}

// AddPlaybookInput registers the --playbook and --stdin flags shared by
// playbook-verifier and playbook-signer.
func AddPlaybookInput(f *pflag.FlagSet, path *string, stdin *bool) {
	f.StringVar(path, "playbook", "", "path to the playbook")
	f.BoolVar(stdin, "stdin", false, "read the playbook from standard input")
}
