package gpgdriver

import "fmt"

// SignatureMismatchError reports that an OpenPGP verify invocation returned
// a non-zero exit code. It carries the serialized play bytes, digest, and
// raw signature bytes that were checked, so a --debug caller can dump
// exactly what failed to verify without re-deriving it.
type SignatureMismatchError struct {
	Serialized []byte
	Digest     [32]byte
	Signature  []byte
	Result     Result
}

func (e *SignatureMismatchError) Error() string {
	return "signature verification failed"
}

// DebugString renders the full diagnostic shown only in --debug mode.
func (e *SignatureMismatchError) DebugString() string {
	return fmt.Sprintf(
		"signature verification failed\n  digest: %x\n  serialized: %s\n  gpg exit code: %d\n  gpg stderr: %s",
		e.Digest, e.Serialized, e.Result.ExitCode, e.Result.Stderr,
	)
}
