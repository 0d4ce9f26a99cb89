// Package elgamal implements EC-ElGamal encryption, decryption and
// re-randomization over a curve.Curve.
package elgamal

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

// PublicKey is the pair (G, H) with H = s*G for a (possibly
// threshold-shared) secret s.
type PublicKey struct {
	Group curve.Curve
	H     curve.Point
}

// Ciphertext is the pair (C1, C2) with invariant C2 - s*C1 = M.
type Ciphertext struct {
	C1, C2 curve.Point
}

// ErrIdentityComponent is returned when Encrypt would produce an identity
// component, which never happens for honest inputs but is checked anyway.
var ErrIdentityComponent = errors.New("elgamal: encryption produced an identity component")

// Encrypt computes (C1, C2) = (k*G, M + k*H) for a fresh k in [1, q).
func Encrypt(pk PublicKey, m curve.Point, rnd io.Reader) (Ciphertext, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	k := sample.Scalar(rnd, pk.Group)
	c1 := k.ActOnBase()
	c2 := m.Add(k.Act(pk.H))
	if c1.IsIdentity() || c2.IsIdentity() {
		return Ciphertext{}, ErrIdentityComponent
	}
	return Ciphertext{C1: c1, C2: c2}, nil
}

// Decrypt returns M = C2 - s*C1 for secret key s.
func Decrypt(sk curve.Scalar, c Ciphertext) curve.Point {
	return c.C2.Add(sk.Act(c.C1).Negate())
}

// Rerandomize returns (C1 + r*G, C2 + r*H) for a fresh independent r.
func Rerandomize(pk PublicKey, c Ciphertext, r curve.Scalar) Ciphertext {
	return Ciphertext{
		C1: c.C1.Add(r.ActOnBase()),
		C2: c.C2.Add(r.Act(pk.H)),
	}
}

// RandomRerandomize re-randomizes with a freshly-sampled scalar and
// returns both the new ciphertext and the randomizer used (the switch
// proof needs the randomizer as its witness).
func RandomRerandomize(pk PublicKey, c Ciphertext, rnd io.Reader) (Ciphertext, curve.Scalar) {
	if rnd == nil {
		rnd = rand.Reader
	}
	r := sample.Scalar(rnd, pk.Group)
	return Rerandomize(pk, c, r), r
}

// MarshalBinary encodes (C1, C2) as the concatenation of their SEC1
// compressed encodings.
func (c Ciphertext) MarshalBinary() ([]byte, error) {
	c1, err := c.C1.MarshalBinary()
	if err != nil {
		return nil, err
	}
	c2, err := c.C2.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(c1, c2...), nil
}

// UnmarshalBinary decodes a ciphertext produced by MarshalBinary.
func (c *Ciphertext) UnmarshalBinary(group curve.Curve, data []byte) error {
	n := group.FieldBytes() + 1
	if len(data) != 2*n {
		return errors.New("elgamal: wrong ciphertext length")
	}
	c1 := group.NewPoint()
	if err := c1.UnmarshalBinary(data[:n]); err != nil {
		return err
	}
	c2 := group.NewPoint()
	if err := c2.UnmarshalBinary(data[n:]); err != nil {
		return err
	}
	c.C1, c.C2 = c1, c2
	return nil
}

// Equal reports whether two ciphertexts encode the same pair of points.
func (c Ciphertext) Equal(o Ciphertext) bool {
	return c.C1.Equal(o.C1) && c.C2.Equal(o.C2)
}
