// Package hash provides a canonical, domain-separated transcript hasher
// built on BLAKE3, used for Fiat-Shamir challenges (switch OR-proofs and
// partial-decryption DLEQ proofs). Scalar derivation from a fixed hash function (SHA-256)
// lives in pkg/math/curve instead, kept separate from this transcript
// hasher.
package hash

import (
	"encoding/binary"

	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/zeebo/blake3"
)

const domainSeparator = "github.com/veilmix/mixnet transcript v1"

// Hash accumulates a transcript and produces either raw bytes or a scalar
// reduced mod a group's order.
type Hash struct {
	h *blake3.Hasher
}

// New starts a fresh transcript, pre-seeded with a domain separator so
// transcripts from unrelated protocols never collide.
func New() *Hash {
	h := blake3.New()
	_, _ = h.Write([]byte(domainSeparator))
	return &Hash{h: h}
}

// WriteBytes appends a length-prefixed byte string, so that concatenation
// of variable-length fields is unambiguous.
func (h *Hash) WriteBytes(b []byte) *Hash {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(b)))
	_, _ = h.h.Write(length[:])
	_, _ = h.h.Write(b)
	return h
}

// WritePoint appends a curve point's canonical encoding.
func (h *Hash) WritePoint(p curve.Point) *Hash {
	b, err := p.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return h.WriteBytes(b)
}

// WriteScalar appends a scalar's canonical encoding.
func (h *Hash) WriteScalar(s curve.Scalar) *Hash {
	b, err := s.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return h.WriteBytes(b)
}

// WriteAny appends an arbitrary byte string (e.g. a RID, a session ID).
func (h *Hash) WriteAny(b []byte) *Hash {
	return h.WriteBytes(b)
}

// Sum returns a 32-byte digest of the transcript so far. It does not
// consume the Hash; further writes continue the same transcript.
func (h *Hash) Sum() []byte {
	digest := make([]byte, 32)
	_, _ = h.h.Digest().Read(digest)
	return digest
}

// SumScalar reduces the digest modulo the group's order.
func (h *Hash) SumScalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetBytesMod(h.Sum())
}
