// Package mixer implements one mix server's batch step:
// sample a fresh secret permutation, configure a Waksman network for it,
// apply the network to re-randomize and permute the incoming batch, and
// sign the result for the next hop in the chain.
package mixer

import (
	crand "crypto/rand"
	"errors"
	"io"
	mrand "math/rand/v2"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/waksman"
)

// ErrNotPowerOfTwo is returned when the input batch size is not a power
// of two, which the Waksman construction requires.
var ErrNotPowerOfTwo = errors.New("mixer: batch size must be a power of two")

// Server is one mix server's identity: its ElGamal public key (shared
// across the mixnet) and its own Ed25519 signing key.
type Server struct {
	ID         string
	PublicKey  elgamal.PublicKey
	SigningKey sig.PrivateKey
}

// RandomPermutation returns a uniformly random permutation of
// {0,...,n-1}, via a Fisher-Yates shuffle seeded from rnd.
func RandomPermutation(rnd io.Reader, n int) ([]int, error) {
	sigma := make([]int, n)
	for i := range sigma {
		sigma[i] = i
	}
	if rnd == nil {
		rnd = crand.Reader
	}
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rnd, seed); err != nil {
		return nil, err
	}
	src := mrand.NewChaCha8([32]byte(seed))
	for i := n - 1; i > 0; i-- {
		j := int(src.Uint64() % uint64(i+1))
		sigma[i], sigma[j] = sigma[j], sigma[i]
	}
	return sigma, nil
}

// Run executes one mix step: it samples a fresh random permutation,
// builds and applies a Waksman network for it, and returns the signed
// batch output ready for the next hop (or for publication on a bulletin
// board).
func (s Server) Run(in []elgamal.Ciphertext, rnd io.Reader) (*sig.MixBatchOutput, error) {
	n := len(in)
	if n < 2 || n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	if rnd == nil {
		rnd = crand.Reader
	}

	sigma, err := RandomPermutation(rnd, n)
	if err != nil {
		return nil, err
	}
	net, err := waksman.Configure(sigma)
	if err != nil {
		return nil, err
	}
	result, err := waksman.Apply(net, s.PublicKey, in, rnd)
	if err != nil {
		return nil, err
	}

	out := &sig.MixBatchOutput{
		ServerID:        s.ID,
		Header:          sig.NewHeader(n),
		Columns:         result.Columns,
		Proofs:          result.Proofs,
		SignerPublicKey: sig.PublicFromPrivate(s.SigningKey),
	}
	if err := sig.SignBatch(s.SigningKey, out); err != nil {
		return nil, err
	}
	return out, nil
}
