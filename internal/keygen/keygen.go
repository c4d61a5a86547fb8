// Package keygen batch-generates an ed25519/cv25519 OpenPGP keypair with
// the external gpg binary and exports it to a directory as
// key.public.gpg, key.private.gpg, and key.fingerprint.txt.
//
// Grounded byte-for-byte in intent on
// insights_ansible_playbook_lib/_keygen.py: same instructions-file batch
// generation, same three output file names. The fingerprint is obtained
// primarily by parsing the freshly-exported public key with
// internal/pgputil rather than scraping `gpg --fingerprint` human-readable
// output with a regular expression, the text-parsing fallback the
// original used; pgputil decoding is tried first and the text scrape is
// used whenever it fails. The packet parser in golang.org/x/crypto/openpgp
// does not decode EdDSA or cv25519 keys, so for the ed25519/cv25519 keys
// generated here the fingerprint comes from the text scrape.
package keygen

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/pgputil"
)

const identity = "insights-ansible-playbook-verifier test"

const instructions = `Key-Type: EDDSA
Key-Curve: ed25519
Subkey-Type: ECDH
Subkey-Curve: cv25519
Name-Real: ` + identity + `
Expire-Date: 0
%no-protection
%commit
`

// Generator drives gpg --batch --generate-key and the subsequent export.
type Generator struct {
	GPGPath string
	Logger  *slog.Logger
}

func New() *Generator {
	return &Generator{
		GPGPath: "/usr/bin/gpg",
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Generate creates a new keypair and writes key.public.gpg,
// key.private.gpg, and key.fingerprint.txt under directory.
func (g *Generator) Generate(ctx context.Context, directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	parent, prefix := gpgdriver.ScratchParent()
	home, err := os.MkdirTemp(parent, prefix+"keygen-")
	if err != nil {
		return errors.Wrap(err, "failed to create scratch GPG home")
	}
	defer os.RemoveAll(home)

	instructionsPath := filepath.Join(home, "keygen")
	if err := os.WriteFile(instructionsPath, []byte(instructions), 0o600); err != nil {
		return errors.Wrap(err, "failed to write key generation instructions")
	}

	g.Logger.Debug("generating GPG keys", "home", home)
	if err := g.run(ctx, "--batch", "--homedir", home, "--generate-key", instructionsPath); err != nil {
		return errors.Wrap(err, "key generation failed")
	}

	publicPath := filepath.Join(directory, "key.public.gpg")
	privatePath := filepath.Join(directory, "key.private.gpg")

	if err := g.run(ctx, "--homedir", home, "--export", "--armor", "--yes", "--output", publicPath); err != nil {
		return errors.Wrap(err, "failed to export public key")
	}
	if err := g.run(ctx, "--homedir", home, "--export-secret-keys", "--armor", "--yes", "--output", privatePath); err != nil {
		return errors.Wrap(err, "failed to export private key")
	}

	fingerprint, err := g.fingerprint(ctx, home, publicPath)
	if err != nil {
		return errors.Wrap(err, "failed to determine key fingerprint")
	}

	fingerprintPath := filepath.Join(directory, "key.fingerprint.txt")
	if err := os.WriteFile(fingerprintPath, []byte(fingerprint), 0o644); err != nil {
		return errors.Wrap(err, "failed to write fingerprint file")
	}

	return nil
}

func (g *Generator) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, g.GPGPath, args...)
	cmd.Env = []string{"LC_ALL=C.UTF-8"}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "gpg %s: %s", strings.Join(args, " "), out)
	}
	return nil
}

// fingerprint reads back the freshly exported public key and parses its
// fingerprint with pgputil; if that fails for any reason, it falls back to
// scraping `gpg --fingerprint` human-readable text output.
func (g *Generator) fingerprint(ctx context.Context, home, publicPath string) (string, error) {
	armored, err := os.ReadFile(publicPath)
	if err == nil {
		if info, err := pgputil.Identities(armored); err == nil && info.Fingerprint != "" {
			return info.Fingerprint, nil
		}
	}

	g.Logger.Debug("falling back to gpg --fingerprint text parsing")
	cmd := exec.CommandContext(ctx, g.GPGPath, "--homedir", home, "--fingerprint", identity)
	cmd.Env = []string{"LC_ALL=C.UTF-8"}
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "gpg --fingerprint failed")
	}

	match := fingerprintLineRe.FindStringSubmatch(string(out))
	if match == nil {
		return "", errors.New("could not find fingerprint in gpg --fingerprint output")
	}
	return strings.TrimSpace(match[1]), nil
}

var fingerprintLineRe = regexp.MustCompile(`(?m)^\s+([A-F0-9\s]+)`)
