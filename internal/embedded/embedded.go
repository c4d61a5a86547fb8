// Package embedded carries the module's default trust material: the
// public key used when no --key is given, and the revocation playbook used
// when no --revocation-list is given.
//
// Go's //go:embed is the idiomatic replacement for Python's
// pkgutil.get_data(__package__, "data/..."): both embed a static asset at
// build time rather than reading it from a runtime-relative path, so this
// is a direct semantic port rather than a design change.
package embedded

import _ "embed"

//go:embed data/public.gpg
var PublicKey []byte

//go:embed data/revoked_playbooks.yml
var RevocationList string
