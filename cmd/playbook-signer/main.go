// Command playbook-signer signs every play in an Ansible playbook, or a
// single-play revocation list, with a local private key or a remote
// signing service, and emits the signed YAML to stdout.
//
// Grounded on insights_ansible_playbook_signer/app.py's sign_playbook and
// sign_revocation_list, and helm-helm/cmd/helm/verify.go's cobra shape.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/cliflags"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/version"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/pkg/signer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		playbookPath   string
		useStdin       bool
		keyPath        string
		remoteKey      string
		revocationList bool
		debug          bool
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:          "playbook-signer",
		Short:        "Sign plays in an Ansible playbook or a revocation list",
		Version:      version.GetVersion(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (keyPath == "") == (remoteKey == "") {
				return fmt.Errorf("exactly one of --key or --remote-key is required")
			}

			logLevel := slog.LevelWarn
			if debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			raw, err := readInput(useStdin, playbookPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			plays, err := playbook.Load(raw)
			if err != nil {
				return err
			}

			s := &signer.Signer{Driver: gpgdriver.New(), Logger: logger, Timeout: timeout}
			if remoteKey != "" {
				s.RemoteSigner = &signer.RPMSigner{KeyName: remoteKey}
			} else {
				key, err := os.ReadFile(keyPath)
				if err != nil {
					return fmt.Errorf("failed to read private key file: %w", err)
				}
				s.LocalKey = key
			}

			ctx := context.Background()

			var out string
			if revocationList {
				out, err = s.SignRevocationList(ctx, plays)
			} else {
				out, err = s.SignPlaybook(ctx, plays)
			}
			if err != nil {
				if debug {
					return fmt.Errorf("%+v", err)
				}
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	cliflags.AddPlaybookInput(flags, &playbookPath, &useStdin)
	flags.StringVar(&keyPath, "key", "", "path to the local private key")
	flags.StringVar(&remoteKey, "remote-key", "", "name of the key on the remote signing service")
	flags.BoolVar(&revocationList, "revocation-list", false, "sign a revocation list instead of a playbook")
	cliflags.AddDebug(flags, &debug)
	cliflags.AddTimeout(flags, &timeout)

	return cmd
}

func readInput(useStdin bool, path string, stdin io.Reader) (string, error) {
	if useStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read playbook from stdin: %w", err)
		}
		return string(data), nil
	}
	if path == "" {
		return "", fmt.Errorf("either --playbook or --stdin is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read playbook file: %w", err)
	}
	return string(data), nil
}
