package signer

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// RPMSigner implements RemoteSigner by shelling out to the rpm-sign
// client, the signing-service collaborator the original implementation
// uses (insights_ansible_playbook_signer/app.py send_signing_request).
// rpm-sign reads the digest from a file and writes the detached signature
// next to it as "<file>.asc", the same convention the local gpg driver
// uses, which keeps this type a drop-in alternative to a local key.
type RPMSigner struct {
	// RPMSignPath defaults to "rpm-sign" (resolved via $PATH) if empty.
	RPMSignPath string
	// KeyName is the name of the signing key on the remote service.
	KeyName string
}

func (r *RPMSigner) path() string {
	if r.RPMSignPath != "" {
		return r.RPMSignPath
	}
	return "rpm-sign"
}

// Sign invokes `rpm-sign --detachsign --key <name> --nat <digestFile>` and
// returns the contents of the resulting "<digestFile>.asc".
func (r *RPMSigner) Sign(ctx context.Context, digestFile string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.path(), "--detachsign", "--key", r.KeyName, "--nat", digestFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Wrapf(err, "rpm-sign failed: %s", out)
	}
	return os.ReadFile(digestFile + ".asc")
}
