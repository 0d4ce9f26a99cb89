// Package sample provides uniform sampling of scalars from a CSPRNG, via
// rejection sampling on the group order.
package sample

import (
	"io"

	"github.com/veilmix/mixnet/pkg/math/curve"
)

// Scalar samples a uniform value in [1, q) from rnd.
func Scalar(rnd io.Reader, group curve.Curve) curve.Scalar {
	return group.NewScalar().SetRandom(rnd)
}
