// Package version carries the module's own build version and the
// revocation-list schema constraint it understands, mirroring
// helm-helm/internal/version's GetVersion/BuildInfo shape.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

var (
	// version is the current release version of this module. Update on
	// release; the format is plain semver, no "v" prefix.
	version = "1.0.0"

	// gitCommit is the git sha1, set via -ldflags at build time.
	gitCommit = ""
)

// SchemaConstraint is the range of revoked_playbooks.yml schema versions
// this build understands. A revocation list may optionally carry a
// vars/schema_version field; when present, it is checked against this
// constraint before the revocation set is trusted, guarding against
// silently misinterpreting a revocation list written for a future,
// incompatible schema.
const SchemaConstraint = "^1.0.0"

// BuildInfo describes the compile-time build of this binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the semver string of this build.
func GetVersion() string {
	return version
}

// Get returns the full build info record. The commands' --version output
// uses GetVersion only.
func Get() BuildInfo {
	return BuildInfo{
		Version:   GetVersion(),
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
}

// CheckSchemaVersion reports an error if schemaVersion does not satisfy
// SchemaConstraint. An empty schemaVersion (no vars/schema_version field
// present) is always accepted, for compatibility with revocation lists
// written before this field existed.
func CheckSchemaVersion(schemaVersion string) error {
	if schemaVersion == "" {
		return nil
	}

	v, err := semver.NewVersion(schemaVersion)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", schemaVersion, err)
	}

	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		// SchemaConstraint is a compile-time constant; a parse failure here
		// is a programming error, not a runtime condition callers can act on.
		panic(fmt.Sprintf("invalid schema constraint %q: %s", SchemaConstraint, err))
	}

	if !constraint.Check(v) {
		return fmt.Errorf("revocation list schema_version %q does not satisfy %q", schemaVersion, SchemaConstraint)
	}
	return nil
}
