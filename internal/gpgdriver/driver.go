// Package gpgdriver implements the ephemeral OpenPGP verification/signing
// driver (spec component F). It shells out to the external gpg/gpgconf
// binaries in a process-private scratch home directory; it never implements
// OpenPGP cryptography itself, per spec.md §1's "Out of scope" boundary.
//
// Grounded on GPGCommand/GPGCommandResult in
// insights_ansible_playbook_lib/crypto.py, translated from subprocess.Popen
// to os/exec.CommandContext.
package gpgdriver

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	rootScratchParentDir    = "/var/lib/insights-ansible-playbook-verifier/"
	rootScratchPrefix       = "gpg-"
	fallbackScratchPrefix   = "insights-ansible-playbook-verifier-gpg-"
	minKillAllVersionMajor  = 2
	minKillAllVersionMinor  = 1
	minKillAllVersionPoint  = 18
	cleanupRemoveAttempts   = 5
	cleanupRemoveRetryDelay = 20 * time.Millisecond
)

// ErrTimeout is returned (wrapped) when an invocation is cancelled by a
// caller-supplied context deadline, distinct from an ordinary non-zero exit
// (signature mismatch), per spec.md §5.
var ErrTimeout = errors.New("gpg invocation timed out")

// ExternalToolError reports that the scratch GPG home could not be created
// or that the gpg binary could not be run at all, as distinct from a
// verify/sign operation simply failing.
type ExternalToolError struct {
	Message string
	Cause   error
}

func (e *ExternalToolError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ExternalToolError) Unwrap() error {
	return e.Cause
}

// Result is the outcome of one gpg invocation.
type Result struct {
	OK       bool
	ExitCode int
	Stdout   string
	Stderr   string
	Command  []string
}

// Driver runs gpg commands against a fresh scratch home per invocation.
type Driver struct {
	// GPGPath and GPGConfPath default to "/usr/bin/gpg" and
	// "/usr/bin/gpgconf" if empty.
	GPGPath     string
	GPGConfPath string

	// If ScratchParentDir is empty, both the directory and the prefix come
	// from the process-wide ScratchParent(); ScratchPrefix is used only
	// together with a non-empty ScratchParentDir.
	ScratchParentDir string
	ScratchPrefix    string
}

var (
	scratchOnce      sync.Once
	scratchParentDir string
	scratchPrefix    string
)

// ScratchParent returns the process-wide scratch parent directory and file
// name prefix, computed once from the effective user id and a filesystem
// probe, per spec.md §9 "Global state" (compute in one place, do not
// re-probe on each invocation).
func ScratchParent() (dir, prefix string) {
	scratchOnce.Do(func() {
		if os.Geteuid() == 0 {
			if info, err := os.Stat(rootScratchParentDir); err == nil && info.IsDir() {
				scratchParentDir = rootScratchParentDir
				scratchPrefix = rootScratchPrefix
				return
			}
		}
		scratchParentDir = os.TempDir()
		scratchPrefix = fallbackScratchPrefix
	})
	return scratchParentDir, scratchPrefix
}

// New returns a Driver using the default gpg/gpgconf paths and the
// process-wide scratch parent.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) gpgPath() string {
	if d.GPGPath != "" {
		return d.GPGPath
	}
	return "/usr/bin/gpg"
}

func (d *Driver) gpgConfPath() string {
	if d.GPGConfPath != "" {
		return d.GPGConfPath
	}
	return "/usr/bin/gpgconf"
}

func (d *Driver) scratchParent() (string, string) {
	if d.ScratchParentDir != "" {
		return d.ScratchParentDir, d.ScratchPrefix
	}
	return ScratchParent()
}

// ScratchParent returns the scratch parent directory and file-name prefix
// this Driver creates its ephemeral homes under: d's own override fields if
// set, otherwise the process-wide default from the package-level
// ScratchParent. Callers outside this package that need a sibling scratch
// directory alongside the Driver's own (e.g. to stage a digest/key/signature
// before invoking Verify/Sign) should use this instead of re-deriving the
// scratch parent themselves.
func (d *Driver) ScratchParent() (string, string) {
	return d.scratchParent()
}

// Verify invokes `gpg --verify <signature> <file>` against key, in a fresh
// scratch home.
func (d *Driver) Verify(ctx context.Context, key, file, signature string) (Result, error) {
	return d.evaluate(ctx, key, []string{"--verify", signature, file})
}

// Sign invokes `gpg --detach-sign --armor <file>` using key as the home's
// imported (private) key.
func (d *Driver) Sign(ctx context.Context, key, file string) (Result, error) {
	return d.evaluate(ctx, key, []string{"--detach-sign", "--armor", file})
}

// evaluate runs the full command lifecycle: create a scratch home, import
// key, run command, and tear down the home — guaranteed on every exit path.
func (d *Driver) evaluate(ctx context.Context, key string, command []string) (Result, error) {
	parent, prefix := d.scratchParent()
	home, err := os.MkdirTemp(parent, prefix)
	if err != nil {
		return Result{}, &ExternalToolError{Message: "failed to create scratch GPG home", Cause: err}
	}
	defer d.cleanup(home)

	setupResult, err := d.run(ctx, home, []string{"--import", key})
	if err != nil {
		return setupResult, err
	}
	if !setupResult.OK {
		return setupResult, errors.Errorf("failed to import key %q: %s", key, setupResult.Stderr)
	}

	return d.run(ctx, home, command)
}

func (d *Driver) run(ctx context.Context, home string, command []string) (Result, error) {
	args := append([]string{"--homedir", home}, command...)
	full := append([]string{d.gpgPath()}, args...)

	cmd := exec.CommandContext(ctx, d.gpgPath(), args...)
	cmd.Env = []string{"LC_ALL=C.UTF-8"}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, errors.Wrapf(ErrTimeout, "gpg %s", strings.Join(command, " "))
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, &ExternalToolError{Message: "failed to run gpg", Cause: err}
		}
	}

	return Result{
		OK:       exitCode == 0,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Command:  full,
	}, nil
}

// cleanup mirrors _cleanup in crypto.py: kill the gpg-agent socket if the
// installed gpg is new enough to support `gpgconf --kill all`, then
// recursively remove the scratch home, tolerating a race where the agent
// removes its own socket file mid-rmtree.
func (d *Driver) cleanup(home string) {
	if d.supportsKillAll(home) {
		d.killAll(home)
	}

	for i := 0; i < cleanupRemoveAttempts; i++ {
		err := os.RemoveAll(home)
		if err == nil || os.IsNotExist(err) {
			return
		}
		time.Sleep(cleanupRemoveRetryDelay)
	}
}

func (d *Driver) killAll(home string) {
	cmd := exec.Command(d.gpgConfPath(), "--kill", "all")
	cmd.Env = []string{"GNUPGHOME=" + home, "LC_ALL=C.UTF-8"}
	_ = cmd.Run()
}

var versionLineRe = regexp.MustCompile(`^gpg \(GnuPG\) (\d+)\.(\d+)\.(\d+)`)

// supportsKillAll queries `gpg --version` and reports whether the installed
// GnuPG is at least 2.1.18, the version that introduced `gpgconf --kill
// all`. Any failure to run or parse the version is treated as "no" rather
// than propagated, matching crypto.py's _supports_cleanup_socket, which logs
// a warning and returns False.
func (d *Driver) supportsKillAll(home string) bool {
	cmd := exec.Command(d.gpgPath(), "--version")
	cmd.Env = []string{"GNUPGHOME=" + home, "LC_ALL=C.UTF-8"}

	out, err := cmd.Output()
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(out), "\n") {
		m := versionLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		point, _ := strconv.Atoi(m[3])
		return compareVersion(major, minor, point) >= 0
	}
	return false
}

func compareVersion(major, minor, point int) int {
	want := [3]int{minKillAllVersionMajor, minKillAllVersionMinor, minKillAllVersionPoint}
	got := [3]int{major, minor, point}
	for i := range want {
		if got[i] != want[i] {
			if got[i] > want[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}
