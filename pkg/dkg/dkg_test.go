package dkg_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/internal/test"
	"github.com/veilmix/mixnet/pkg/dkg"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/polynomial"
)

func TestRunAllAgreesOnGroupKey(t *testing.T) {
	group := curve.Secp256r1{}
	ids := test.PartyIDs(5)

	results, err := dkg.RunAll(group, 3, ids, rand.Reader)
	require.NoError(t, err)
	require.Len(t, results, 5)

	var reference curve.Point
	for _, id := range ids {
		res := results[id]
		if reference == nil {
			reference = res.GroupKey.H
			continue
		}
		assert.True(t, reference.Equal(res.GroupKey.H))
	}
}

func TestCombineRejectsTamperedShare(t *testing.T) {
	group := curve.Secp256r1{}
	ids := test.PartyIDs(4)
	threshold := 2

	broadcasts := make(map[party.ID]dkg.Broadcast, len(ids))
	sharesFor := make(map[party.ID]map[party.ID]dkg.ShareMessage, len(ids))
	for _, id := range ids {
		_, bc, shares := dkg.Round1(group, threshold, ids, id, rand.Reader)
		broadcasts[id] = bc
		sharesFor[id] = shares
	}

	self := ids[0]
	received := make(map[party.ID]dkg.ShareMessage, len(ids))
	for _, from := range ids {
		received[from] = sharesFor[from][self]
	}
	// Tamper with one sender's share destined for self.
	tampered := received[ids[1]]
	tampered.Share = tampered.Share.Add(curve.NewScalarUint64(group, 1))
	received[ids[1]] = tampered

	_, err := dkg.Combine(group, threshold, self, ids, broadcasts, received)
	var dkgErr *dkg.ErrDkgFailed
	require.ErrorAs(t, err, &dkgErr)
	assert.Equal(t, ids[1], dkgErr.From)
}

func TestThresholdDecryptWithPartialProofs(t *testing.T) {
	group := curve.Secp256r1{}
	ids := test.PartyIDs(5)
	threshold := 3

	results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
	require.NoError(t, err)

	pk := results[ids[0]].GroupKey
	m, err := encode.Encode(group, []byte("yes"))
	require.NoError(t, err)
	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	require.NoError(t, err)

	publicShares := results[ids[0]].PublicShares
	partials := make(map[party.ID]dkg.PartialDecryption, threshold)
	for i := 0; i < threshold; i++ {
		id := ids[i]
		res := results[id]
		partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
	}

	recovered, err := dkg.CombinePartials(group, publicShares, ct, threshold, partials)
	require.NoError(t, err)
	assert.True(t, recovered.Equal(elgamal.Decrypt(fullSecret(t, group, ids, threshold, results), ct)))

	got, err := encode.Decode(group, recovered)
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), got)
}

func TestThresholdDecryptRejectsTamperedPartial(t *testing.T) {
	group := curve.Secp256r1{}
	ids := test.PartyIDs(5)
	threshold := 3

	results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
	require.NoError(t, err)
	pk := results[ids[0]].GroupKey
	m, err := encode.Encode(group, []byte("no"))
	require.NoError(t, err)
	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	require.NoError(t, err)

	publicShares := results[ids[0]].PublicShares
	partials := make(map[party.ID]dkg.PartialDecryption, threshold)
	for i := 0; i < threshold; i++ {
		id := ids[i]
		res := results[id]
		partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
	}
	// Forge the first partial's D without a matching proof.
	forged := partials[ids[0]]
	forged.D = forged.D.Add(group.Generator())
	partials[ids[0]] = forged

	_, err = dkg.CombinePartials(group, publicShares, ct, threshold, partials)
	assert.ErrorIs(t, err, dkg.ErrInsufficientShares)
}

// fullSecret reconstructs the shared secret directly (via Lagrange
// interpolation over all threshold shares) purely to cross-check
// CombinePartials against a ground truth in the test; production code
// never reconstructs the full secret in one place.
func fullSecret(t *testing.T, group curve.Curve, ids []party.ID, threshold int, results map[party.ID]*dkg.Result) curve.Scalar {
	t.Helper()
	subset := ids[:threshold]
	coeffs := polynomial.Lagrange(group, subset)
	secret := group.NewScalar()
	for _, id := range subset {
		secret = secret.Add(coeffs[id].Mul(results[id].Share))
	}
	return secret
}
