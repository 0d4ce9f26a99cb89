package dkg

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/hash"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/polynomial"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

// ErrInsufficientShares is returned when fewer than the threshold's worth
// of verified partial decryptions are available to combine.
var ErrInsufficientShares = errors.New("dkg: fewer verified partial decryptions than the reconstruction threshold")

// ErrInvalidPartialProof is returned when a partial decryption's
// Chaum-Pedersen proof fails to verify against the claimed public share.
var ErrInvalidPartialProof = errors.New("dkg: partial decryption proof is invalid")

// DLEQProof proves log_G(publicShare) = log_C1(D) for a Diffie-Hellman
// tuple (G, publicShare, C1, D), so a combiner can trust a partial
// decryption without trusting the party that produced it.
type DLEQProof struct {
	CommitG, CommitC1 curve.Point
	Challenge         curve.Scalar
	Response          curve.Scalar
}

func dleqChallenge(group curve.Curve, publicShare, c1, d, commitG, commitC1 curve.Point) curve.Scalar {
	h := hash.New()
	h.WritePoint(publicShare)
	h.WritePoint(c1)
	h.WritePoint(d)
	h.WritePoint(commitG)
	h.WritePoint(commitC1)
	return h.SumScalar(group)
}

// ProveDLEQ proves that d = share*c1 and publicShare = share*G for the
// same share, without revealing it.
func ProveDLEQ(rnd io.Reader, group curve.Curve, share curve.Scalar, publicShare, c1, d curve.Point) *DLEQProof {
	if rnd == nil {
		rnd = rand.Reader
	}
	t := sample.Scalar(rnd, group)
	commitG := t.ActOnBase()
	commitC1 := t.Act(c1)
	e := dleqChallenge(group, publicShare, c1, d, commitG, commitC1)
	resp := t.Add(e.Mul(share))
	return &DLEQProof{CommitG: commitG, CommitC1: commitC1, Challenge: e, Response: resp}
}

// VerifyDLEQ checks a DLEQProof produced by ProveDLEQ.
func VerifyDLEQ(group curve.Curve, publicShare, c1, d curve.Point, proof *DLEQProof) bool {
	e := dleqChallenge(group, publicShare, c1, d, proof.CommitG, proof.CommitC1)
	if !e.Equal(proof.Challenge) {
		return false
	}
	lhsG := proof.Response.ActOnBase()
	rhsG := proof.CommitG.Add(proof.Challenge.Act(publicShare))
	if !lhsG.Equal(rhsG) {
		return false
	}
	lhsC1 := proof.Response.Act(c1)
	rhsC1 := proof.CommitC1.Add(proof.Challenge.Act(d))
	return lhsC1.Equal(rhsC1)
}

// PartialDecryption is one trustee's contribution to decrypting a single
// ciphertext: D = share*C1, with a proof that share is the same value
// committed to by the trustee's public share from key generation.
type PartialDecryption struct {
	From  party.ID
	D     curve.Point
	Proof *DLEQProof
}

// ComputePartial computes this trustee's partial decryption of c and its
// accompanying DLEQ proof.
func ComputePartial(rnd io.Reader, group curve.Curve, self party.ID, share curve.Scalar, publicShare curve.Point, c elgamal.Ciphertext) PartialDecryption {
	d := share.Act(c.C1)
	proof := ProveDLEQ(rnd, group, share, publicShare, c.C1, d)
	return PartialDecryption{From: self, D: d, Proof: proof}
}

// CombinePartials verifies each partial decryption against its claimed public
// share (from a prior Result.PublicShares) and Lagrange-combines the
// verified partials in the exponent to recover the plaintext point
// M = C2 - s*C1, without ever reconstructing the full secret s.
func CombinePartials(group curve.Curve, publicShares map[party.ID]curve.Point, c elgamal.Ciphertext, threshold int, partials map[party.ID]PartialDecryption) (curve.Point, error) {
	verified := make([]party.ID, 0, len(partials))
	for id, p := range partials {
		pub, ok := publicShares[id]
		if !ok {
			continue
		}
		if !VerifyDLEQ(group, pub, c.C1, p.D, p.Proof) {
			continue
		}
		verified = append(verified, id)
	}
	if len(verified) < threshold {
		return nil, ErrInsufficientShares
	}
	verified = verified[:threshold]

	coeffs := polynomial.Lagrange(group, verified)
	sC1 := group.NewPoint()
	for _, id := range verified {
		sC1 = sC1.Add(coeffs[id].Act(partials[id].D))
	}
	return c.C2.Add(sC1.Negate()), nil
}
