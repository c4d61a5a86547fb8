// Package digest implements the digest builder (spec component E): a thin
// SHA-256 wrapper, plus a composition helper that serializes and hashes an
// already-cleaned play the same way both orchestrators need to.
//
// Grounded on create_play_digest in insights_ansible_playbook_lib/__init__.py
// and mirrored in shape on helm-helm/pkg/provenance's Digest/DigestFile pair.
package digest

import (
	"crypto/sha256"

	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/canon"
	"github.com/RedHatInsights/insights-ansible-playbook-verifier/internal/ordered"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// Sum returns the SHA-256 digest of the UTF-8 bytes of serialized. No
// truncation, no hex encoding: callers that need a textual form (e.g. to
// check a play against a revocation list) do that themselves.
func Sum(serialized []byte) [Size]byte {
	return sha256.Sum256(serialized)
}

// Play serializes the cleaned play and returns both the serialized bytes and
// their digest, so callers that need to report the serialized form on
// failure (spec §4.G step 4.f) do not have to re-serialize.
func Play(cleaned *ordered.Map) (serialized []byte, sum [Size]byte) {
	serialized = []byte(canon.Serialize(cleaned))
	sum = Sum(serialized)
	return serialized, sum
}
