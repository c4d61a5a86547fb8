// Command playbook-verifier verifies every play in an Ansible playbook
// against a trusted OpenPGP key and a revocation list, then echoes the
// playbook unchanged to stdout on success.
//
// Grounded on helm-helm/cmd/helm/verify.go's cobra command shape and
// insights_ansible_playbook_verifier/app.py's debug/non-debug error
// reporting.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/cliflags"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/embedded"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/version"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/pkg/verifier"
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
		revocationPath string
		debug          bool
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:          "playbook-verifier",
		Short:        "Verify signed plays in an Ansible playbook",
		Version:      version.GetVersion(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelWarn
			if debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			playbookRaw, err := readInput(useStdin, playbookPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			key := embedded.PublicKey
			if keyPath != "" {
				key, err = os.ReadFile(keyPath)
				if err != nil {
					return fmt.Errorf("failed to read key file: %w", err)
				}
			}

			revocationRaw := embedded.RevocationList
			if revocationPath != "" {
				raw, err := os.ReadFile(revocationPath)
				if err != nil {
					return fmt.Errorf("failed to read revocation list: %w", err)
				}
				revocationRaw = string(raw)
			}

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			v := &verifier.Verifier{Driver: gpgdriver.New(), Logger: logger, Timeout: timeout}
			if err := v.Verify(ctx, key, revocationRaw, playbookRaw); err != nil {
				if debug {
					var mismatch *gpgdriver.SignatureMismatchError
					if errors.As(err, &mismatch) {
						return fmt.Errorf("%+v\n%s", err, mismatch.DebugString())
					}
					return fmt.Errorf("%+v", err)
				}
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), playbookRaw)
			return nil
		},
	}

	flags := cmd.Flags()
	cliflags.AddPlaybookInput(flags, &playbookPath, &useStdin)
	flags.StringVar(&keyPath, "key", "", "path to the trusted public key (default: embedded key)")
	flags.StringVar(&revocationPath, "revocation-list", "", "path to the revocation playbook (default: embedded list)")
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
