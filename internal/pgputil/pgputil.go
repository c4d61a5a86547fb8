// Package pgputil provides non-cryptographic introspection of armored
// OpenPGP key material: identities, fingerprint, and key-kind sniffing. It
// never verifies or produces a signature — that stays the external gpg
// binary's job per spec.md §1 — it only reads the packet structure that
// gpg itself already trusts, for diagnostics and for writing
// key.fingerprint.txt during key generation.
//
// Grounded on canonical-chisel/internal/pgputil/openpgp.go, which decodes
// the same way for the same reason (describing a key without re-deriving
// trust in it).
package pgputil

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

// KeyInfo summarizes one public key packet's identities and fingerprint,
// the subset of key material useful for a --debug banner or a generated
// key's fingerprint file.
type KeyInfo struct {
	Fingerprint string
	KeyID       string
	Identities  []string
}

// DecodeKeys decodes public and private key packets from armored data, in
// the order they appear.
func DecodeKeys(armoredData []byte) (pubKeys []*packet.PublicKey, privKeys []*packet.PrivateKey, err error) {
	block, err := armor.Decode(bytes.NewReader(armoredData))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode armored data: %w", err)
	}

	reader := packet.NewReader(block.Body)
	for {
		p, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}
		switch key := p.(type) {
		case *packet.PrivateKey:
			privKeys = append(privKeys, key)
		case *packet.PublicKey:
			pubKeys = append(pubKeys, key)
		}
	}
	return pubKeys, privKeys, nil
}

// DecodePubKey decodes a single primary public key packet from armored
// data. The data must contain exactly one primary public key packet and no
// private key packets; public subkey packets are ignored.
func DecodePubKey(armoredData []byte) (*packet.PublicKey, error) {
	allPubKeys, privKeys, err := DecodeKeys(armoredData)
	if err != nil {
		return nil, err
	}
	if len(privKeys) > 0 {
		return nil, fmt.Errorf("armored data contains a private key, expected a public key")
	}
	var pubKeys []*packet.PublicKey
	for _, key := range allPubKeys {
		if !key.IsSubkey {
			pubKeys = append(pubKeys, key)
		}
	}
	if len(pubKeys) == 0 {
		return nil, fmt.Errorf("armored data contains no public key")
	}
	if len(pubKeys) > 1 {
		return nil, fmt.Errorf("armored data contains more than one public key")
	}
	return pubKeys[0], nil
}

// IsArmoredPrivateKey reports whether armoredData decodes to at least one
// private key packet, for sniffing which of two exported files is which
// before writing them out.
func IsArmoredPrivateKey(armoredData []byte) bool {
	_, privKeys, err := DecodeKeys(armoredData)
	return err == nil && len(privKeys) > 0
}

// Identities reads the user ID packets immediately following pubKey in an
// armored keyring and returns their display strings ("Name <email>"),
// alongside the key's fingerprint and short key ID.
//
// golang.org/x/crypto/openpgp/packet exposes identities only as raw
// UserId packets interspersed with signature packets, not pre-grouped by
// key the way golang.org/x/crypto/openpgp (the higher-level, deprecated
// package) does; since this is read-only diagnostics rather than trust
// validation, collecting every UserId packet in the stream is sufficient.
func Identities(armoredData []byte) (KeyInfo, error) {
	pubKey, err := DecodePubKey(armoredData)
	if err != nil {
		return KeyInfo{}, err
	}

	block, err := armor.Decode(bytes.NewReader(armoredData))
	if err != nil {
		return KeyInfo{}, fmt.Errorf("cannot decode armored data: %w", err)
	}

	info := KeyInfo{
		Fingerprint: fmt.Sprintf("%X", pubKey.Fingerprint),
		KeyID:       fmt.Sprintf("%016X", pubKey.KeyId),
	}

	reader := packet.NewReader(block.Body)
	for {
		p, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return info, err
		}
		if uid, ok := p.(*packet.UserId); ok {
			info.Identities = append(info.Identities, uid.Id)
		}
	}
	return info, nil
}
