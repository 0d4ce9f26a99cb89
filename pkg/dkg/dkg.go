// Package dkg implements dealer-free threshold key generation and
// threshold decryption for the trustee set: a (t,n) Feldman verifiable
// secret sharing round produces a jointly-held EC-ElGamal key
// pair with no party ever holding the full secret, and threshold
// decryption combines t authenticated partial decryptions, each
// accompanied by a mandatory Chaum-Pedersen proof that the partial was
// computed honestly from the party's public share.
package dkg

import (
	"errors"
	"io"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/polynomial"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

// ErrInvalidShare is returned when a received share fails its Feldman
// commitment check.
var ErrInvalidShare = errors.New("dkg: share failed feldman verification against sender's commitment")

// ErrDkgFailed wraps a failure of the key generation protocol, naming the
// party whose contribution could not be verified.
type ErrDkgFailed struct {
	From party.ID
	Err  error
}

func (e *ErrDkgFailed) Error() string {
	return "dkg: generation failed due to " + string(e.From) + ": " + e.Err.Error()
}

func (e *ErrDkgFailed) Unwrap() error { return e.Err }

// Broadcast is one participant's round-1 message: the Feldman commitment
// to its secret polynomial's coefficients. It is sent to every
// participant, itself included, over the broadcast channel.
type Broadcast struct {
	From        party.ID
	Commitments []curve.Point // length threshold
}

// ShareMessage is one participant's private share of its secret,
// destined for exactly one recipient.
type ShareMessage struct {
	From, To party.ID
	Share    curve.Scalar
}

// Round1 samples a participant's secret polynomial of degree threshold-1
// and returns its broadcast commitment plus the private shares to send to
// every participant in ids (including, harmlessly, itself).
func Round1(group curve.Curve, threshold int, ids []party.ID, self party.ID, rnd io.Reader) (*polynomial.Polynomial, Broadcast, map[party.ID]ShareMessage) {
	poly := polynomial.NewPolynomial(group, threshold-1, sample.Scalar(rnd, group))
	bc := Broadcast{From: self, Commitments: poly.Commit()}
	shares := make(map[party.ID]ShareMessage, len(ids))
	for _, to := range ids {
		shares[to] = ShareMessage{
			From:  self,
			To:    to,
			Share: poly.Evaluate(to.Scalar(group)),
		}
	}
	return poly, bc, shares
}

// Result is the output of a successful key generation run for one
// participant: its combined secret share, the joint public key, and
// every participant's public share (needed to verify partial
// decryptions later).
type Result struct {
	GroupKey     elgamal.PublicKey
	Self         party.ID
	Share        curve.Scalar
	PublicShares map[party.ID]curve.Point
}

// Combine verifies every received share against its sender's published
// commitment, sums the verified shares into this participant's combined
// secret share, sums the senders' constant-term commitments into the
// joint public key, and derives every participant's public share from
// the sum of the senders' commitment polynomials evaluated at that
// participant's point.
func Combine(group curve.Curve, threshold int, self party.ID, ids []party.ID, broadcasts map[party.ID]Broadcast, shares map[party.ID]ShareMessage) (*Result, error) {
	if len(broadcasts) != len(ids) || len(shares) != len(ids) {
		return nil, errors.New("dkg: combine requires exactly one broadcast and one share per participant")
	}

	combinedShare := group.NewScalar()
	groupKey := group.NewPoint()
	for _, id := range ids {
		bc, ok := broadcasts[id]
		if !ok || len(bc.Commitments) != threshold {
			return nil, &ErrDkgFailed{From: id, Err: errors.New("missing or malformed commitment broadcast")}
		}
		sm, ok := shares[id]
		if !ok {
			return nil, &ErrDkgFailed{From: id, Err: errors.New("missing share")}
		}
		expected := polynomial.EvaluateCommitment(group, bc.Commitments, self.Scalar(group))
		if !sm.Share.ActOnBase().Equal(expected) {
			return nil, &ErrDkgFailed{From: id, Err: ErrInvalidShare}
		}
		combinedShare = combinedShare.Add(sm.Share)
		groupKey = groupKey.Add(bc.Commitments[0])
	}

	publicShares := make(map[party.ID]curve.Point, len(ids))
	for _, holder := range ids {
		sum := group.NewPoint()
		for _, id := range ids {
			bc := broadcasts[id]
			sum = sum.Add(polynomial.EvaluateCommitment(group, bc.Commitments, holder.Scalar(group)))
		}
		publicShares[holder] = sum
	}

	return &Result{
		GroupKey:     elgamal.PublicKey{Group: group, H: groupKey},
		Self:         self,
		Share:        combinedShare,
		PublicShares: publicShares,
	}, nil
}
