package elgamal_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	m, err := encode.Encode(group, []byte("ballot"))
	require.NoError(t, err)

	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	require.NoError(t, err)

	decrypted := elgamal.Decrypt(sk, ct)
	assert.True(t, m.Equal(decrypted))
}

func TestRerandomizePreservesPlaintext(t *testing.T) {
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	m, err := encode.Encode(group, []byte("x"))
	require.NoError(t, err)
	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	require.NoError(t, err)

	reRand, _ := elgamal.RandomRerandomize(pk, ct, rand.Reader)
	assert.False(t, ct.Equal(reRand))
	assert.True(t, m.Equal(elgamal.Decrypt(sk, reRand)))
}

func TestCiphertextMarshalRoundTrip(t *testing.T) {
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	m, err := encode.Encode(group, []byte("z"))
	require.NoError(t, err)
	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	require.NoError(t, err)

	data, err := ct.MarshalBinary()
	require.NoError(t, err)

	var got elgamal.Ciphertext
	require.NoError(t, got.UnmarshalBinary(group, data))
	assert.True(t, ct.Equal(got))
}
