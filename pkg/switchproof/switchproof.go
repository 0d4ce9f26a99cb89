// Package switchproof implements the 2x2 switch OR-proof: a
// non-interactive zero-knowledge proof that an output pair (C, D) is
// EITHER a straight re-encryption of the input pair (A, B) OR a swapped
// re-encryption, without revealing which.
//
// Each branch is an AND of two Chaum-Pedersen DLEQ proofs ("X is a
// re-encryption of Y" iff log_G(X1-Y1) = log_H(X2-Y2)). The two branches
// are combined with the standard Fiat-Shamir Sigma-OR technique: one real
// branch proved honestly, one fake branch simulated from a chosen
// challenge, with the real challenge derived so both challenges sum to
// the Fiat-Shamir hash of all four commitment pairs.
//
// The commitment layout is always (pairing0, pairing1) regardless of
// which branch is real, so a verifier can recompute the Fiat-Shamir hash
// deterministically without knowing the prover's secret bit.
package switchproof

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/hash"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

// ErrZeroChallenge is returned by Prove on the astronomically unlikely
// event that the Fiat-Shamir challenge reduces to zero mod q; Verify
// rejects such a proof by returning false.
var ErrZeroChallenge = errors.New("switchproof: fiat-shamir challenge is zero")

// ErrInvalidBranch is returned when a branch bit outside {0,1} is given.
var ErrInvalidBranch = errors.New("switchproof: branch must be 0 or 1")

// subCommitment is one Chaum-Pedersen commitment pair (A_G, A_H).
type subCommitment struct {
	AG, AH curve.Point
}

// Proof is the full OR-proof transcript: two commitment pairs and two
// responses per pairing, plus the single stored challenge (pairing0's);
// the verifier derives pairing1's challenge as e - ChallengeA.
type Proof struct {
	Commit0 [2]subCommitment
	Commit1 [2]subCommitment
	Resp0   [2]curve.Scalar
	Resp1   [2]curve.Scalar
	// ChallengeA is the Fiat-Shamir challenge assigned to pairing0
	// (A->C, B->D), whether or not pairing0 is the real branch.
	ChallengeA curve.Scalar
}

// statementPoints returns, for the given pairing (0 = A->C,B->D; 1 =
// B->C,A->D), the two DLEQ statement point pairs (X_k, Y_k) for k=1,2:
// X_k = C1-Y1, Y_k = C2-Y2 where Y is the claimed pre-image of the
// re-encryption for that sub-proof.
func statementPoints(pairing int, a, b, c, d elgamal.Ciphertext) [2][2]curve.Point {
	if pairing == 0 {
		return [2][2]curve.Point{
			{c.C1.Add(a.C1.Negate()), c.C2.Add(a.C2.Negate())},
			{d.C1.Add(b.C1.Negate()), d.C2.Add(b.C2.Negate())},
		}
	}
	return [2][2]curve.Point{
		{c.C1.Add(b.C1.Negate()), c.C2.Add(b.C2.Negate())},
		{d.C1.Add(a.C1.Negate()), d.C2.Add(a.C2.Negate())},
	}
}

func transcriptChallenge(group curve.Curve, commit0, commit1 [2]subCommitment) curve.Scalar {
	h := hash.New()
	for _, pc := range [][2]subCommitment{commit0, commit1} {
		for _, sc := range pc {
			h.WritePoint(sc.AG)
			h.WritePoint(sc.AH)
		}
	}
	return h.SumScalar(group)
}

// Prove builds an OR-proof that (c, d) is a permute-and-re-encrypt of
// (a, b) under pk, where branch selects which half of the statement is
// real (0: c=reenc(a), d=reenc(b); 1: c=reenc(b), d=reenc(a)), and rC, rD
// are the re-randomization scalars actually used to produce c and d from
// their real-branch pre-images.
func Prove(rnd io.Reader, pk elgamal.PublicKey, a, b, c, d elgamal.Ciphertext, branch int, rC, rD curve.Scalar) (*Proof, error) {
	if branch != 0 && branch != 1 {
		return nil, ErrInvalidBranch
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	group := pk.Group
	fake := 1 - branch

	tReal := [2]curve.Scalar{sample.Scalar(rnd, group), sample.Scalar(rnd, group)}
	commitReal := [2]subCommitment{
		{tReal[0].ActOnBase(), tReal[0].Act(pk.H)},
		{tReal[1].ActOnBase(), tReal[1].Act(pk.H)},
	}

	cFake := sample.Scalar(rnd, group)
	zFake := [2]curve.Scalar{sample.Scalar(rnd, group), sample.Scalar(rnd, group)}
	fakePoints := statementPoints(fake, a, b, c, d)
	commitFake := [2]subCommitment{}
	for k := 0; k < 2; k++ {
		ag := zFake[k].ActOnBase().Add(cFake.Act(fakePoints[k][0]).Negate())
		ah := zFake[k].Act(pk.H).Add(cFake.Act(fakePoints[k][1]).Negate())
		commitFake[k] = subCommitment{AG: ag, AH: ah}
	}

	var commit0, commit1 [2]subCommitment
	if branch == 0 {
		commit0, commit1 = commitReal, commitFake
	} else {
		commit0, commit1 = commitFake, commitReal
	}

	e := transcriptChallenge(group, commit0, commit1)
	if e.IsZero() {
		return nil, ErrZeroChallenge
	}
	cReal := e.Sub(cFake)

	r := [2]curve.Scalar{rC, rD}
	respReal := [2]curve.Scalar{
		tReal[0].Add(cReal.Mul(r[0])),
		tReal[1].Add(cReal.Mul(r[1])),
	}

	var resp0, resp1 [2]curve.Scalar
	var challengeA curve.Scalar
	if branch == 0 {
		resp0, resp1 = respReal, zFake
		challengeA = cReal
	} else {
		resp0, resp1 = zFake, respReal
		challengeA = cFake
	}

	return &Proof{
		Commit0:    commit0,
		Commit1:    commit1,
		Resp0:      resp0,
		Resp1:      resp1,
		ChallengeA: challengeA,
	}, nil
}

// Verify checks an OR-proof that (c, d) is a permute-and-re-encrypt of
// (a, b) under pk.
func Verify(pk elgamal.PublicKey, a, b, c, d elgamal.Ciphertext, proof *Proof) bool {
	group := pk.Group
	e := transcriptChallenge(group, proof.Commit0, proof.Commit1)
	if e.IsZero() {
		return false
	}
	challengeB := e.Sub(proof.ChallengeA)

	points0 := statementPoints(0, a, b, c, d)
	points1 := statementPoints(1, a, b, c, d)

	return verifyPairing(pk, proof.Commit0, proof.Resp0, points0, proof.ChallengeA) &&
		verifyPairing(pk, proof.Commit1, proof.Resp1, points1, challengeB)
}

func verifyPairing(pk elgamal.PublicKey, commit [2]subCommitment, resp [2]curve.Scalar, points [2][2]curve.Point, challenge curve.Scalar) bool {
	for k := 0; k < 2; k++ {
		lhsG := resp[k].ActOnBase()
		rhsG := commit[k].AG.Add(challenge.Act(points[k][0]))
		if !lhsG.Equal(rhsG) {
			return false
		}
		lhsH := resp[k].Act(pk.H)
		rhsH := commit[k].AH.Add(challenge.Act(points[k][1]))
		if !lhsH.Equal(rhsH) {
			return false
		}
	}
	return true
}
