package signer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/gpgdriver"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/playbook"
)

func fakeSigningGPG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gpg")
	script := `#!/bin/sh
if [ "$1" = "--homedir" ]; then shift 2; fi
case "$1" in
  --version)
    echo "gpg (GnuPG) 2.2.27"
    ;;
  --import)
    ;;
  --detach-sign)
    echo "SIGNATURE-OVER-$(cat "$3")" > "$3.asc"
    ;;
  *)
    exit 1
    ;;
esac
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func fakeGPGConf(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gpgconf")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func newFakeDriver(t *testing.T) *gpgdriver.Driver {
	return &gpgdriver.Driver{
		GPGPath:          fakeSigningGPG(t),
		GPGConfPath:      fakeGPGConf(t),
		ScratchParentDir: t.TempDir(),
		ScratchPrefix:    "test-",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSignPlaybookInstallsSignatureAndOrdersTasksLast(t *testing.T) {
	src := `- name: p1
  tasks: [echo hi]
  hosts: localhost
`
	plays, err := playbook.Load(src)
	require.NoError(t, err)

	s := New(newFakeDriver(t), []byte("private key"))
	s.Logger = discardLogger()

	out, err := s.SignPlaybook(context.Background(), plays)
	require.NoError(t, err)

	signed, err := playbook.Load(out)
	require.NoError(t, err)
	require.Len(t, signed, 1)

	assert.Equal(t, "tasks", signed[0].Keys()[len(signed[0].Keys())-1])

	varsValue, ok := signed[0].Get("vars")
	require.True(t, ok)
	sig, ok := varsValue.(*playbook.Play).Get("insights_signature")
	require.True(t, ok)
	assert.NotEmpty(t, sig)

	exclusion, ok := varsValue.(*playbook.Play).Get("insights_signature_exclude")
	require.True(t, ok)
	assert.Equal(t, defaultUserExclusion, exclusion)
}

func TestSignPlaybookRejectsEmptyPlaybook(t *testing.T) {
	s := New(newFakeDriver(t), []byte("private key"))
	s.Logger = discardLogger()

	_, err := s.SignPlaybook(context.Background(), playbook.Playbook{})
	require.Error(t, err)
	var precondition *playbook.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestSignPlaybookRequiresTasks(t *testing.T) {
	src := `- name: p1
  hosts: localhost
`
	plays, err := playbook.Load(src)
	require.NoError(t, err)

	s := New(newFakeDriver(t), []byte("private key"))
	s.Logger = discardLogger()

	_, err = s.SignPlaybook(context.Background(), plays)
	require.Error(t, err)
	var precondition *playbook.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestSignRevocationListRequiresSinglePlay(t *testing.T) {
	src := `- revoked_playbooks: []
- revoked_playbooks: []
`
	plays, err := playbook.Load(src)
	require.NoError(t, err)

	s := New(newFakeDriver(t), []byte("private key"))
	s.Logger = discardLogger()

	_, err = s.SignRevocationList(context.Background(), plays)
	require.Error(t, err)
	var precondition *playbook.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestSignRevocationListOrdersRevokedPlaybooksLast(t *testing.T) {
	src := `- name: revocation list
  revoked_playbooks: []
`
	plays, err := playbook.Load(src)
	require.NoError(t, err)

	s := New(newFakeDriver(t), []byte("private key"))
	s.Logger = discardLogger()

	out, err := s.SignRevocationList(context.Background(), plays)
	require.NoError(t, err)

	signed, err := playbook.Load(out)
	require.NoError(t, err)
	require.Len(t, signed, 1)
	assert.Equal(t, "revoked_playbooks", signed[0].Keys()[len(signed[0].Keys())-1])
}

type stubRemoteSigner struct {
	called bool
}

func (s *stubRemoteSigner) Sign(ctx context.Context, digestFile string) ([]byte, error) {
	s.called = true
	data, err := os.ReadFile(digestFile)
	if err != nil {
		return nil, err
	}
	return append([]byte("remote-sig-"), data...), nil
}

func TestSignPlaybookUsesRemoteSignerWhenConfigured(t *testing.T) {
	src := `- name: p1
  tasks: []
`
	plays, err := playbook.Load(src)
	require.NoError(t, err)

	remote := &stubRemoteSigner{}
	s := &Signer{RemoteSigner: remote, Logger: discardLogger()}

	_, err = s.SignPlaybook(context.Background(), plays)
	require.NoError(t, err)
	assert.True(t, remote.called)
}
