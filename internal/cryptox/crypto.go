// Package cryptox holds the content digests used to address and verify blobs.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

var ErrDigestMismatch = errors.New("content digest mismatch")

// Digest returns the hex-encoded BLAKE2b-256 of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks data against a digest produced by Digest.
func Verify(data []byte, digest string) error {
	want, err := hex.DecodeString(digest)
	if err != nil || len(want) != blake2b.Size256 {
		return fmt.Errorf("invalid digest %q", digest)
	}
	sum := blake2b.Sum256(data)
	if subtle.ConstantTimeCompare(sum[:], want) != 1 {
		return ErrDigestMismatch
	}
	return nil
}
