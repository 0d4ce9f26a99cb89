// Package curve provides a curve-agnostic group abstraction over an
// elliptic curve of prime order, following the group/scalar split used
// throughout this module's cryptographic core. The default implementation,
// Secp256r1, wraps NIST P-256.
package curve

import (
	"crypto/sha256"
	"encoding/binary"
)

// Curve is a prime-order elliptic curve group. Implementations must be
// comparable and safe for concurrent read-only use; all arithmetic on the
// returned Points/Scalars is single-threaded per call site.
type Curve interface {
	// NewScalar returns the additive identity (0) of the scalar field.
	NewScalar() Scalar
	// NewPoint returns the identity element (point at infinity).
	NewPoint() Point
	// Generator returns the curve's base point G.
	Generator() Point
	// Order returns the prime order q of the scalar field, as a
	// big-endian byte string (field-byte-length bytes).
	Order() []byte
	// FieldBytes is the byte length of an encoded coordinate/scalar.
	FieldBytes() int
	// Name identifies the curve, e.g. "secp256r1".
	Name() string
}

// Scalar is an element of Z_q.
type Scalar interface {
	Add(other Scalar) Scalar
	Sub(other Scalar) Scalar
	Mul(other Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	Equal(other Scalar) bool
	IsZero() bool
	// ActOnBase returns scalar * G.
	ActOnBase() Point
	// Act returns scalar * p.
	Act(p Point) Point
	// SetBytesMod reduces an arbitrary-length big-endian byte string
	// modulo the group order and assigns it to the receiver.
	SetBytesMod(data []byte) Scalar
	// SetRandom assigns a uniform value in [1, q) sampled from rnd via
	// rejection sampling, and returns the receiver.
	SetRandom(rnd interface {
		Read([]byte) (int, error)
	}) Scalar
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// Point is an element of the curve group, including the identity.
type Point interface {
	Add(other Point) Point
	Negate() Point
	Equal(other Point) bool
	IsIdentity() bool
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// HashToScalar reduces SHA-256(data) mod q. It is kept separate from the
// BLAKE3-based transcript hashing in pkg/hash, which is used everywhere
// else a challenge or transcript digest is needed.
func HashToScalar(group Curve, data ...[]byte) Scalar {
	h := sha256.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	digest := h.Sum(nil)
	return group.NewScalar().SetBytesMod(digest)
}

// NewScalarUint64 builds a small scalar from a uint64, the way the
// teacher builds party-index scalars via group.NewScalar().SetNat(...).
func NewScalarUint64(group Curve, v uint64) Scalar {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return group.NewScalar().SetBytesMod(buf[:])
}
