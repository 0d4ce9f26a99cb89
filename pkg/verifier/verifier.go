// Package verifier implements batch verification of a mix server's
// output: recursively re-deriving, from the shape of the ciphertext
// matrix alone, which four-ciphertext quadruple each switch proof must
// attest to, then checking every proof, and VerifyOutput, which adds the
// batch's signature check. Chain verification across a sequence of mix
// servers and authorized-signer enforcement live in pkg/sig.
package verifier

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/switchproof"
	"github.com/veilmix/mixnet/pkg/waksman"
)

// ErrShapeMismatch is returned when a batch's matrices are not shaped as
// Layers(n)+1 columns of n ciphertexts and Layers(n) columns of n/2
// proofs for some power-of-two n.
var ErrShapeMismatch = errors.New("verifier: batch matrices are not shaped for a valid waksman network")

// ErrProofFailed is returned when one switch proof fails to verify.
var ErrProofFailed = errors.New("verifier: a switch proof failed to verify")

// VerifyBatch checks that proofs are all valid with respect to columns
// under pk, i.e. that columns[last] is a faithful permute-and-re-encrypt
// of columns[0].
func VerifyBatch(pk elgamal.PublicKey, columns [][]elgamal.Ciphertext, proofs [][]*switchproof.Proof) error {
	if len(columns) == 0 {
		return ErrShapeMismatch
	}
	n := len(columns[0])
	if !isPowerOfTwo(n) {
		return ErrShapeMismatch
	}
	layers := waksman.Layers(n)
	if len(columns) != layers+1 || len(proofs) != layers {
		return ErrShapeMismatch
	}
	for _, col := range columns {
		if len(col) != n {
			return ErrShapeMismatch
		}
	}
	for _, layer := range proofs {
		if len(layer) != n/2 {
			return ErrShapeMismatch
		}
	}
	return verifySized(pk, columns, proofs, 0, 0, n)
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// verifySized performs the actual recursive check. n is the subtree size.
func verifySized(pk elgamal.PublicKey, columns [][]elgamal.Ciphertext, proofs [][]*switchproof.Proof, colOffset, rowOffset, n int) error {
	if n == 2 {
		a, b := columns[colOffset][rowOffset], columns[colOffset][rowOffset+1]
		c, d := columns[colOffset+1][rowOffset], columns[colOffset+1][rowOffset+1]
		proof := proofs[colOffset][rowOffset/2]
		if proof == nil || !switchproof.Verify(pk, a, b, c, d, proof) {
			return ErrProofFailed
		}
		return nil
	}

	m := n / 2

	var eg errgroup.Group
	for i := 0; i < m; i++ {
		i := i
		eg.Go(func() error {
			a, b := columns[colOffset][rowOffset+2*i], columns[colOffset][rowOffset+2*i+1]
			c, d := columns[colOffset+1][rowOffset+i], columns[colOffset+1][rowOffset+m+i]
			proof := proofs[colOffset][rowOffset/2+i]
			if proof == nil || !switchproof.Verify(pk, a, b, c, d, proof) {
				return ErrProofFailed
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	innerLayers := waksman.Layers(m)
	eg = errgroup.Group{}
	eg.Go(func() error { return verifySized(pk, columns, proofs, colOffset+1, rowOffset, m) })
	eg.Go(func() error { return verifySized(pk, columns, proofs, colOffset+1, rowOffset+m, m) })
	if err := eg.Wait(); err != nil {
		return err
	}

	lastLayer := colOffset + 1 + innerLayers
	eg = errgroup.Group{}
	for i := 0; i < m; i++ {
		i := i
		eg.Go(func() error {
			a := columns[lastLayer][rowOffset+i]
			b := columns[lastLayer][rowOffset+m+i]
			c := columns[lastLayer+1][rowOffset+2*i]
			d := columns[lastLayer+1][rowOffset+2*i+1]
			proof := proofs[lastLayer][rowOffset/2+i]
			if proof == nil || !switchproof.Verify(pk, a, b, c, d, proof) {
				return ErrProofFailed
			}
			return nil
		})
	}
	return eg.Wait()
}

// VerifyOutput checks a signed mix batch: its signature under signerKey,
// and the embedded switch proofs, returning the final output column.
func VerifyOutput(pk elgamal.PublicKey, signerKey sig.PublicKey, out *sig.MixBatchOutput) ([]elgamal.Ciphertext, error) {
	if err := sig.VerifyBatch(signerKey, out); err != nil {
		return nil, err
	}
	if err := VerifyBatch(pk, out.Columns, out.Proofs); err != nil {
		return nil, err
	}
	return out.Columns[len(out.Columns)-1], nil
}
