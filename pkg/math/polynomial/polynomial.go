// Package polynomial implements Shamir secret-sharing polynomials over a
// curve's scalar field, and Lagrange-coefficient reconstruction at x=0.
package polynomial

import (
	"crypto/rand"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

// Polynomial is f(x) = a_0 + a_1 x + ... + a_d x^d over Z_q, with a_0 the
// secret constant term.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// NewPolynomial builds a degree-d polynomial with constant term constant.
// If constant is nil, a random constant term is sampled too (used when the
// caller doesn't need to fix the secret, e.g. auxiliary JVSS polynomials).
// All other coefficients are sampled uniformly.
func NewPolynomial(group curve.Curve, degree int, constant curve.Scalar) *Polynomial {
	coeffs := make([]curve.Scalar, degree+1)
	if constant == nil {
		constant = sample.Scalar(rand.Reader, group)
	}
	coeffs[0] = constant
	for i := 1; i <= degree; i++ {
		coeffs[i] = sample.Scalar(rand.Reader, group)
	}
	return &Polynomial{group: group, coefficients: coeffs}
}

// Constant returns the secret a_0.
func (p *Polynomial) Constant() curve.Scalar {
	return p.coefficients[0]
}

// Degree returns d.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Evaluate computes f(x) by Horner's method.
func (p *Polynomial) Evaluate(x curve.Scalar) curve.Scalar {
	result := p.group.NewScalar()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Commit returns the Feldman commitment to p's coefficients,
// [a_0*G, a_1*G, ..., a_d*G], letting any holder of a share verify it
// against the polynomial without learning the coefficients.
func (p *Polynomial) Commit() []curve.Point {
	points := make([]curve.Point, len(p.coefficients))
	for i, c := range p.coefficients {
		points[i] = c.ActOnBase()
	}
	return points
}

// EvaluateCommitment computes sum_i x^i * commitments[i] by Horner's
// method in the exponent, i.e. f(x)*G for the polynomial f committed to
// by commitments, without knowing f's coefficients.
func EvaluateCommitment(group curve.Curve, commitments []curve.Point, x curve.Scalar) curve.Point {
	result := group.NewPoint()
	for i := len(commitments) - 1; i >= 0; i-- {
		result = x.Act(result).Add(commitments[i])
	}
	return result
}

// Lagrange computes, for the given set of party IDs evaluated at their
// party.ID.Scalar(group) points, the Lagrange coefficients lambda_j(0)
// such that sum_j lambda_j(0) * f(x_j) = f(0) for any degree-(len(ids)-1)
// polynomial f. len(ids) must equal the reconstruction threshold.
func Lagrange(group curve.Curve, ids []party.ID) map[party.ID]curve.Scalar {
	xs := make(map[party.ID]curve.Scalar, len(ids))
	for _, id := range ids {
		xs[id] = id.Scalar(group)
	}

	coeffs := make(map[party.ID]curve.Scalar, len(ids))
	for _, j := range ids {
		xj := xs[j]
		num := curve.NewScalarUint64(group, 1)
		den := curve.NewScalarUint64(group, 1)
		for _, k := range ids {
			if k == j {
				continue
			}
			xk := xs[k]
			// num *= (0 - x_k) = -x_k
			num = num.Mul(xk.Negate())
			// den *= (x_j - x_k)
			den = den.Mul(xj.Sub(xk))
		}
		coeffs[j] = num.Mul(den.Invert())
	}
	return coeffs
}
