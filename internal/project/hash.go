package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 content hash.
type Digest [32]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest { return sha256.Sum256(data) }

// Combine hashes content followed by every dep in order. Callers pass deps
// in a deterministic order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hex returns the lowercase hex form.
func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }
