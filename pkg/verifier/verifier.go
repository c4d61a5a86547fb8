// Package verifier implements the verification orchestrator (spec component
// G): it parses the revocation playbook and the target playbook, verifies
// every play's OpenPGP signature against a trusted key, and rejects any
// play whose digest has been revoked.
//
// Grounded on verify_play/get_revocation_digests in
// insights_ansible_playbook_lib/__init__.py; the orchestrator shape (load
// trust material once, iterate artifacts) mirrors
// helm-helm/pkg/action/verify.go. Verification stops at the first play that
// fails.
package verifier

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/digest"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/pgputil"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/version"
)

// RevokedError reports that a play's signature verified correctly, but its
// digest is present in the revocation set.
type RevokedError struct {
	Digest [32]byte
}

func (e *RevokedError) Error() string {
	return fmt.Sprintf("play digest %x has been revoked", e.Digest)
}

// Verifier checks playbooks against a trusted public key and a revocation
// list, per spec.md §4.G.
type Verifier struct {
	Driver *gpgdriver.Driver
	Logger *slog.Logger

	// Timeout bounds every external gpg invocation. Zero means no deadline.
	Timeout time.Duration
}

// New returns a Verifier using driver and a warn-level text logger on
// stderr. Callers that want --debug output should set Logger themselves.
func New(driver *gpgdriver.Driver) *Verifier {
	return &Verifier{
		Driver: driver,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Verify runs the full 5-step algorithm from spec.md §4.G: parse and verify
// the revocation playbook, extract the revocation set, parse the target
// playbook, then verify and revocation-check every play in order. It
// returns nil only if every play in playbookRaw is accepted.
func (v *Verifier) Verify(ctx context.Context, trustedKey []byte, revocationRaw, playbookRaw string) error {
	revocationPlaybook, err := playbook.Load(revocationRaw)
	if err != nil {
		return err
	}
	if len(revocationPlaybook) != 1 {
		return &playbook.PreconditionError{
			Message: fmt.Sprintf("revocation list must contain exactly one play, got %d", len(revocationPlaybook)),
		}
	}

	if info, err := pgputil.Identities(trustedKey); err == nil {
		v.Logger.Debug("trusted key loaded",
			"fingerprint", info.Fingerprint, "keyID", info.KeyID, "identities", info.Identities)
	} else {
		v.Logger.Debug("could not introspect trusted key for diagnostics", "error", err)
	}

	if _, err := v.verifyPlay(ctx, trustedKey, revocationPlaybook[0]); err != nil {
		return errors.Wrap(err, "revocation playbook failed verification")
	}

	if err := checkSchemaVersion(revocationPlaybook[0]); err != nil {
		return errors.Wrap(err, "revocation playbook failed verification")
	}

	revocationSet, err := revocationDigests(revocationPlaybook[0])
	if err != nil {
		return err
	}
	v.Logger.Debug("revocation list verified", "entries", len(revocationSet))

	plays, err := playbook.Load(playbookRaw)
	if err != nil {
		return err
	}
	if len(plays) == 0 {
		return &playbook.PreconditionError{Message: "playbook contains no plays"}
	}

	for i, play := range plays {
		sum, err := v.verifyPlay(ctx, trustedKey, play)
		if err != nil {
			return errors.Wrapf(err, "play %d failed verification", i)
		}
		if _, revoked := revocationSet[sum]; revoked {
			return &RevokedError{Digest: sum}
		}
		v.Logger.Debug("play verified", "index", i, "digest", fmt.Sprintf("%x", sum))
	}

	return nil
}

// verifyPlay runs steps 4.a–4.f of spec.md §4.G for a single play: read the
// signature, clean, serialize, digest, and verify against trustedKey. It
// returns the play's digest so the caller can cross-check it against a
// revocation set.
func (v *Verifier) verifyPlay(ctx context.Context, trustedKey []byte, play *playbook.Play) ([32]byte, error) {
	signatureB64, err := readSignature(play)
	if err != nil {
		return [32]byte{}, err
	}

	cleaned, err := playbook.Clean(play)
	if err != nil {
		return [32]byte{}, err
	}

	serialized, sum := digest.Play(cleaned)

	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "insights_signature is not valid base64")
	}

	scratchParent, scratchPrefix := v.Driver.ScratchParent()
	dir, err := os.MkdirTemp(scratchParent, scratchPrefix+"verify-")
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "failed to create scratch directory for verification")
	}
	defer os.RemoveAll(dir)

	digestPath := filepath.Join(dir, "digest")
	signaturePath := filepath.Join(dir, "signature.asc")
	keyPath := filepath.Join(dir, "key.asc")

	if err := os.WriteFile(digestPath, sum[:], 0o600); err != nil {
		return [32]byte{}, errors.Wrap(err, "failed to write digest file")
	}
	if err := os.WriteFile(signaturePath, signature, 0o600); err != nil {
		return [32]byte{}, errors.Wrap(err, "failed to write signature file")
	}
	if err := os.WriteFile(keyPath, trustedKey, 0o600); err != nil {
		return [32]byte{}, errors.Wrap(err, "failed to write trusted key file")
	}

	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	result, err := v.Driver.Verify(ctx, keyPath, digestPath, signaturePath)
	if err != nil {
		return [32]byte{}, err
	}
	if !result.OK {
		return [32]byte{}, &gpgdriver.SignatureMismatchError{
			Serialized: serialized,
			Digest:     sum,
			Signature:  signature,
			Result:     result,
		}
	}

	return sum, nil
}

// readSignature returns the base64 text at vars/insights_signature, or a
// precondition error if it is missing, empty, or not a string.
func readSignature(play *playbook.Play) (string, error) {
	varsValue, ok := play.Get("vars")
	if !ok {
		return "", &playbook.PreconditionError{Message: "the play does not have the key 'vars'"}
	}
	vars, ok := varsValue.(*ordered.Map)
	if !ok {
		return "", &playbook.PreconditionError{Message: "the play's 'vars' field is not a mapping"}
	}
	sigValue, ok := vars.Get("insights_signature")
	if !ok {
		return "", &playbook.PreconditionError{Message: "the play does not have the key 'vars/insights_signature'"}
	}
	sig, ok := sigValue.(string)
	if !ok || sig == "" {
		return "", &playbook.PreconditionError{Message: "'vars/insights_signature' is absent or empty"}
	}
	return sig, nil
}

// checkSchemaVersion validates an optional vars/schema_version field
// against this build's supported revocation-list schema range, per
// internal/version.CheckSchemaVersion. Absent field: no-op.
func checkSchemaVersion(play *playbook.Play) error {
	varsValue, ok := play.Get("vars")
	if !ok {
		return nil
	}
	vars, ok := varsValue.(*ordered.Map)
	if !ok {
		return nil
	}
	schemaValue, ok := vars.Get("schema_version")
	if !ok {
		return nil
	}
	schemaVersion, ok := schemaValue.(string)
	if !ok {
		return nil
	}
	return version.CheckSchemaVersion(schemaVersion)
}

// revocationDigests extracts the revoked_playbooks field of the (already
// verified) revocation play and hex-decodes each entry's hash into a set.
func revocationDigests(play *playbook.Play) (map[[32]byte]struct{}, error) {
	value, ok := play.Get("revoked_playbooks")
	if !ok {
		return nil, &playbook.PreconditionError{Message: "revocation play does not have the key 'revoked_playbooks'"}
	}
	entries, ok := value.([]any)
	if !ok {
		return nil, &playbook.PreconditionError{Message: "'revoked_playbooks' is not a sequence"}
	}

	set := make(map[[32]byte]struct{}, len(entries))
	for i, item := range entries {
		entry, ok := item.(*ordered.Map)
		if !ok {
			return nil, &playbook.PreconditionError{Message: fmt.Sprintf("revoked_playbooks entry %d is not a mapping", i)}
		}
		hashValue, ok := entry.Get("hash")
		if !ok {
			return nil, &playbook.PreconditionError{Message: fmt.Sprintf("revoked_playbooks entry %d has no 'hash' field", i)}
		}
		hashHex, ok := hashValue.(string)
		if !ok {
			return nil, &playbook.PreconditionError{Message: fmt.Sprintf("revoked_playbooks entry %d 'hash' is not a string", i)}
		}
		decoded, err := hex.DecodeString(hashHex)
		if err != nil || len(decoded) != 32 {
			return nil, &playbook.PreconditionError{Message: fmt.Sprintf("revoked_playbooks entry %d 'hash' is not 64 hex characters", i)}
		}
		var sum [32]byte
		copy(sum[:], decoded)
		set[sum] = struct{}{}
	}
	return set, nil
}
