package sig_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
	"github.com/veilmix/mixnet/pkg/mixer"
	"github.com/veilmix/mixnet/pkg/sig"
)

func buildBatch(t *testing.T, serverID string) (*sig.MixBatchOutput, elgamal.PublicKey, sig.PublicKey) {
	t.Helper()
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	spk, ssk, err := sig.GenerateKey()
	require.NoError(t, err)

	n := 4
	in := make([]elgamal.Ciphertext, n)
	for i := range in {
		m, err := encode.Encode(group, []byte{byte(i)})
		require.NoError(t, err)
		in[i], err = elgamal.Encrypt(pk, m, rand.Reader)
		require.NoError(t, err)
	}

	server := mixer.Server{ID: serverID, PublicKey: pk, SigningKey: ssk}
	out, err := server.Run(in, rand.Reader)
	require.NoError(t, err)
	return out, pk, spk
}

func TestSignVerifyRoundTrip(t *testing.T) {
	out, _, spk := buildBatch(t, "mix-1")
	assert.NoError(t, sig.VerifyBatch(spk, out))
}

func TestSignatureRejectsTamperedBatch(t *testing.T) {
	out, _, spk := buildBatch(t, "mix-1")
	out.Columns[0][0], out.Columns[0][1] = out.Columns[0][1], out.Columns[0][0]
	assert.ErrorIs(t, sig.VerifyBatch(spk, out), sig.ErrInvalidSignature)
}

func TestVerifyChainDetectsMismatch(t *testing.T) {
	group := curve.Secp256r1{}
	batch1, _, _ := buildBatch(t, "mix-1")
	batch2, _, _ := buildBatch(t, "mix-2")
	err := sig.VerifyChain(group, []*sig.MixBatchOutput{batch1, batch2})
	assert.ErrorIs(t, err, sig.ErrChainBroken)
}

func TestVerifyChainAcceptsLinkedBatches(t *testing.T) {
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	n := 4
	in := make([]elgamal.Ciphertext, n)
	for i := range in {
		m, err := encode.Encode(group, []byte{byte(i)})
		require.NoError(t, err)
		in[i], err = elgamal.Encrypt(pk, m, rand.Reader)
		require.NoError(t, err)
	}

	_, ssk1, err := sig.GenerateKey()
	require.NoError(t, err)
	_, ssk2, err := sig.GenerateKey()
	require.NoError(t, err)

	server1 := mixer.Server{ID: "mix-1", PublicKey: pk, SigningKey: ssk1}
	out1, err := server1.Run(in, rand.Reader)
	require.NoError(t, err)

	server2 := mixer.Server{ID: "mix-2", PublicKey: pk, SigningKey: ssk2}
	out2, err := server2.Run(out1.Columns[len(out1.Columns)-1], rand.Reader)
	require.NoError(t, err)

	assert.NoError(t, sig.VerifyChain(group, []*sig.MixBatchOutput{out1, out2}))
}
