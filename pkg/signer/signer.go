// Package signer implements the signer orchestrator (spec component H): it
// normalizes each play, reorders the key carrying unsigned task/revocation
// content to the end, computes the same clean/serialize/digest pipeline the
// verifier checks against, obtains a signature, and re-emits the full
// sequence with its signature installed and key order preserved.
//
// Grounded on sign_playbook/sign_revocation_list in
// insights_ansible_playbook_signer/app.py; the local-vs-remote signing
// choice mirrors the teacher's Clearsign shape in
// helm-helm/pkg/action/package.go, generalized to an interface so Signer
// never depends on a concrete transport.
package signer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/digest"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
)

const (
	defaultUserExclusion       = "/hosts,/vars/insights_signature"
	defaultRevocationExclusion = "/vars/insights_signature"
)

// RemoteSigner is the external signing-service collaborator: given a path
// to a file holding the raw digest bytes, it returns the raw (non-armored
// or armored, whichever the service produces) signature bytes. Signer
// depends only on this interface; RPMSigner in this package is one
// implementation, and a caller can supply any other (e.g. an HTTP client to
// a signing service).
type RemoteSigner interface {
	Sign(ctx context.Context, digestFile string) ([]byte, error)
}

// Signer produces signed plays using either a local private key (via the
// gpg driver) or a RemoteSigner, never both.
type Signer struct {
	Driver       *gpgdriver.Driver
	LocalKey     []byte // private key material, used when RemoteSigner is nil
	RemoteSigner RemoteSigner

	Logger *slog.Logger

	// Timeout bounds every external gpg invocation. Zero means no deadline.
	Timeout time.Duration
}

// New returns a Signer configured for local signing with driver and key.
func New(driver *gpgdriver.Driver, localKey []byte) *Signer {
	return &Signer{
		Driver:   driver,
		LocalKey: localKey,
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// SignPlaybook signs every play in a user playbook and returns the signed
// YAML text, per spec.md §4.H.
func (s *Signer) SignPlaybook(ctx context.Context, plays playbook.Playbook) (string, error) {
	if len(plays) == 0 {
		return "", &playbook.PreconditionError{Message: "playbook contains no plays"}
	}

	signed := make(playbook.Playbook, 0, len(plays))
	for i, play := range plays {
		name, _ := play.Get("name")
		s.Logger.Debug("preparing to sign play", "index", i, "name", name)

		normalized, err := normalizeUserPlay(play)
		if err != nil {
			return "", errors.Wrapf(err, "play %d", i)
		}

		signedPlay, err := s.signPlay(ctx, normalized)
		if err != nil {
			return "", errors.Wrapf(err, "play %d", i)
		}
		signed = append(signed, signedPlay)
	}

	s.Logger.Debug("all plays signed", "count", len(signed))
	return playbook.Emit(signed)
}

// SignRevocationList signs a single-play revocation list and returns the
// signed YAML text.
func (s *Signer) SignRevocationList(ctx context.Context, plays playbook.Playbook) (string, error) {
	if len(plays) != 1 {
		return "", &playbook.PreconditionError{
			Message: fmt.Sprintf("revocation file must contain exactly one play, got %d", len(plays)),
		}
	}

	normalized, err := normalizeRevocationPlay(plays[0])
	if err != nil {
		return "", err
	}

	signedPlay, err := s.signPlay(ctx, normalized)
	if err != nil {
		return "", err
	}

	return playbook.Emit(playbook.Playbook{signedPlay})
}

// normalizeUserPlay implements spec.md §4.H steps 1–3 for a user play: deep
// copy, ensure vars and its exclusion directive, ensure a placeholder
// signature, require tasks and move it to the end of key order.
func normalizeUserPlay(play *playbook.Play) (*playbook.Play, error) {
	normalized := play.Clone()

	ensureVarsAndExclusion(normalized, defaultUserExclusion)
	ensurePlaceholderSignature(normalized)

	if !normalized.Has("tasks") {
		return nil, &playbook.PreconditionError{Message: "play does not contain key 'tasks'"}
	}
	normalized.MoveToEnd("tasks")

	return normalized, nil
}

// normalizeRevocationPlay mirrors normalizeUserPlay for the revocation
// play, whose trailing key is revoked_playbooks instead of tasks.
func normalizeRevocationPlay(play *playbook.Play) (*playbook.Play, error) {
	normalized := play.Clone()

	if !normalized.Has("revoked_playbooks") {
		return nil, &playbook.PreconditionError{Message: "revocation file does not contain key 'revoked_playbooks'"}
	}

	ensureVarsAndExclusion(normalized, defaultRevocationExclusion)
	ensurePlaceholderSignature(normalized)
	normalized.MoveToEnd("revoked_playbooks")

	return normalized, nil
}

func ensureVarsAndExclusion(play *playbook.Play, defaultExclusion string) {
	varsValue, ok := play.Get("vars")
	vars, isMap := varsValue.(*ordered.Map)
	if !ok || !isMap {
		vars = ordered.New()
		play.Set("vars", vars)
	}
	if !vars.Has("insights_signature_exclude") {
		vars.Set("insights_signature_exclude", defaultExclusion)
	}
}

func ensurePlaceholderSignature(play *playbook.Play) {
	vars, _ := play.Get("vars")
	varsMap := vars.(*ordered.Map)
	if !varsMap.Has("insights_signature") {
		varsMap.Set("insights_signature", "")
	}
}

// signPlay runs steps 4–6 of spec.md §4.H: clean, serialize, digest, sign,
// then install the base64 signature.
func (s *Signer) signPlay(ctx context.Context, play *playbook.Play) (*playbook.Play, error) {
	cleaned, err := playbook.Clean(play)
	if err != nil {
		return nil, err
	}

	serialized, sum := digest.Play(cleaned)
	s.Logger.Debug("serialized play", "bytes", string(serialized))
	s.Logger.Debug("play digest", "digest", fmt.Sprintf("%x", sum))

	signature, err := s.sign(ctx, sum)
	if err != nil {
		return nil, err
	}

	vars, _ := play.Get("vars")
	vars.(*ordered.Map).Set("insights_signature", base64.StdEncoding.EncodeToString(signature))

	return play, nil
}

// sign dispatches to the remote signing service or the local gpg driver,
// per whichever the Signer was configured with.
func (s *Signer) sign(ctx context.Context, sum [digest.Size]byte) ([]byte, error) {
	parent, prefix := gpgdriver.ScratchParent()
	if s.Driver != nil {
		parent, prefix = s.Driver.ScratchParent()
	}
	dir, err := os.MkdirTemp(parent, prefix+"sign-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory for signing")
	}
	defer os.RemoveAll(dir)

	digestPath := dir + "/digest"
	if err := os.WriteFile(digestPath, sum[:], 0o600); err != nil {
		return nil, errors.Wrap(err, "failed to write digest file")
	}

	if s.RemoteSigner != nil {
		return s.RemoteSigner.Sign(ctx, digestPath)
	}

	keyPath := dir + "/key.asc"
	if err := os.WriteFile(keyPath, s.LocalKey, 0o600); err != nil {
		return nil, errors.Wrap(err, "failed to write local signing key")
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	result, err := s.Driver.Sign(ctx, keyPath, digestPath)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, errors.Errorf("could not sign the digest: gpg exited %d: %s", result.ExitCode, result.Stderr)
	}

	return os.ReadFile(digestPath + ".asc")
}
