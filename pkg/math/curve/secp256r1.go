package curve

import (
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Secp256r1 is the default group: NIST P-256. Point arithmetic is delegated
// to crypto/elliptic's constant-time P-256 implementation rather than
// hand-rolled, since no pack library implements NIST-curve point
// arithmetic (see DESIGN.md); scalar-field arithmetic uses saferith, the
// vetted finite-field library the rest of this module's Lagrange and
// polynomial code relies on, so modular inverse is never re-implemented.
type Secp256r1 struct{}

var p256 = elliptic.P256()

var p256Order = func() *saferith.Modulus {
	return saferith.ModulusFromBytes(p256.Params().N.Bytes())
}()

func (Secp256r1) NewScalar() Scalar {
	return &r1Scalar{nat: new(saferith.Nat).SetUint64(0)}
}

func (Secp256r1) NewPoint() Point {
	return &r1Point{x: nil, y: nil} // identity
}

func (Secp256r1) Generator() Point {
	params := p256.Params()
	return &r1Point{x: new(big.Int).Set(params.Gx), y: new(big.Int).Set(params.Gy)}
}

func (Secp256r1) Order() []byte {
	return p256.Params().N.Bytes()
}

func (Secp256r1) FieldBytes() int { return 32 }

func (Secp256r1) Name() string { return "secp256r1" }

// r1Scalar is an element of Z_q represented as a saferith.Nat reduced mod
// the P-256 group order.
type r1Scalar struct {
	nat *saferith.Nat
}

func (s *r1Scalar) Add(other Scalar) Scalar {
	o := other.(*r1Scalar)
	return &r1Scalar{nat: new(saferith.Nat).ModAdd(s.nat, o.nat, p256Order)}
}

func (s *r1Scalar) Sub(other Scalar) Scalar {
	o := other.(*r1Scalar)
	negO := new(saferith.Nat).ModNeg(o.nat, p256Order)
	return &r1Scalar{nat: new(saferith.Nat).ModAdd(s.nat, negO, p256Order)}
}

func (s *r1Scalar) Mul(other Scalar) Scalar {
	o := other.(*r1Scalar)
	return &r1Scalar{nat: new(saferith.Nat).ModMul(s.nat, o.nat, p256Order)}
}

func (s *r1Scalar) Invert() Scalar {
	return &r1Scalar{nat: new(saferith.Nat).ModInverse(s.nat, p256Order)}
}

func (s *r1Scalar) Negate() Scalar {
	return &r1Scalar{nat: new(saferith.Nat).ModNeg(s.nat, p256Order)}
}

func (s *r1Scalar) Equal(other Scalar) bool {
	o := other.(*r1Scalar)
	return s.nat.Eq(o.nat) == 1
}

func (s *r1Scalar) IsZero() bool {
	return s.nat.EqZero() == 1
}

func (s *r1Scalar) ActOnBase() Point {
	x, y := p256.ScalarBaseMult(s.nat.Bytes())
	return normalizePoint(x, y)
}

func (s *r1Scalar) Act(p Point) Point {
	pp := p.(*r1Point)
	if pp.x == nil {
		return &r1Point{}
	}
	x, y := p256.ScalarMult(pp.x, pp.y, s.nat.Bytes())
	return normalizePoint(x, y)
}

func (s *r1Scalar) SetBytesMod(data []byte) Scalar {
	wide := new(saferith.Nat).SetBytes(data)
	s.nat = new(saferith.Nat).Mod(wide, p256Order)
	return s
}

func (s *r1Scalar) SetRandom(rnd interface {
	Read([]byte) (int, error)
}) Scalar {
	if rnd == nil {
		rnd = rand.Reader
	}
	order := p256.Params().N
	buf := make([]byte, 32)
	for {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			panic(err)
		}
		candidate := new(big.Int).SetBytes(buf)
		if candidate.Sign() != 0 && candidate.Cmp(order) < 0 {
			s.nat = new(saferith.Nat).SetBytes(candidate.Bytes())
			return s
		}
	}
}

func (s *r1Scalar) MarshalBinary() ([]byte, error) {
	out := make([]byte, 32)
	b := s.nat.Bytes()
	copy(out[32-len(b):], b)
	return out, nil
}

func (s *r1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return errors.New("curve: scalar must be 32 bytes")
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(p256.Params().N) >= 0 {
		return errors.New("curve: scalar out of range")
	}
	s.nat = new(saferith.Nat).SetBytes(data)
	return nil
}

// r1Point is a P-256 affine point; x == nil denotes the identity.
type r1Point struct {
	x, y *big.Int
}

func normalizePoint(x, y *big.Int) *r1Point {
	if x.Sign() == 0 && y.Sign() == 0 {
		return &r1Point{}
	}
	return &r1Point{x: x, y: y}
}

func (p *r1Point) Add(other Point) Point {
	o := other.(*r1Point)
	if p.x == nil {
		return o
	}
	if o.x == nil {
		return p
	}
	x, y := p256.Add(p.x, p.y, o.x, o.y)
	return normalizePoint(x, y)
}

func (p *r1Point) Negate() Point {
	if p.x == nil {
		return &r1Point{}
	}
	negY := new(big.Int).Sub(p256.Params().P, p.y)
	return &r1Point{x: new(big.Int).Set(p.x), y: negY}
}

func (p *r1Point) Equal(other Point) bool {
	o := other.(*r1Point)
	if p.x == nil || o.x == nil {
		return p.x == nil && o.x == nil
	}
	return p.x.Cmp(o.x) == 0 && p.y.Cmp(o.y) == 0
}

func (p *r1Point) IsIdentity() bool {
	return p.x == nil
}

func (p *r1Point) MarshalBinary() ([]byte, error) {
	if p.x == nil {
		return make([]byte, 33), nil // all-zero sentinel for the identity
	}
	return elliptic.MarshalCompressed(p256, p.x, p.y), nil
}

func (p *r1Point) UnmarshalBinary(data []byte) error {
	if len(data) != 33 {
		return errors.New("curve: point must be 33 bytes (SEC1 compressed)")
	}
	zero := true
	for _, b := range data {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		p.x, p.y = nil, nil
		return nil
	}
	x, y := elliptic.UnmarshalCompressed(p256, data)
	if x == nil {
		return errors.New("curve: invalid point encoding")
	}
	p.x, p.y = x, y
	return nil
}
