// Command playbook-keygen generates a new ed25519/cv25519 OpenPGP keypair
// and writes key.public.gpg, key.private.gpg, and key.fingerprint.txt to a
// directory.
//
// Grounded on insights_ansible_playbook_lib/_keygen.py run().
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/cliflags"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/keygen"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		directory string
		debug     bool
	)

	cmd := &cobra.Command{
		Use:          "playbook-keygen",
		Short:        "Generate a new OpenPGP keypair for signing playbooks",
		Version:      version.GetVersion(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelWarn
			if debug {
				logLevel = slog.LevelDebug
			}

			g := keygen.New()
			g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			if err := g.Generate(context.Background(), directory); err != nil {
				if debug {
					return fmt.Errorf("%+v", err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				"GPG keys were generated to 'key.public.gpg', 'key.private.gpg', 'key.fingerprint.txt'.")
			return nil
		},
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	flags := cmd.Flags()
	flags.StringVarP(&directory, "directory", "d", cwd, "directory to store the key pair")
	cliflags.AddDebug(flags, &debug)

	return cmd
}
