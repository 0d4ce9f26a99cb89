package main

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/internal/test"
	"github.com/veilmix/mixnet/pkg/dkg"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
)

// thresholdDecrypt collects the first `threshold` trustees' partial
// decryptions of ct, each with its Chaum-Pedersen proof, and combines
// them via Lagrange interpolation in the exponent.
func thresholdDecrypt(group curve.Curve, results map[party.ID]*dkg.Result, ids []party.ID, threshold int, ct elgamal.Ciphertext) (curve.Point, error) {
	publicShares := results[ids[0]].PublicShares
	partials := make(map[party.ID]dkg.PartialDecryption, threshold)
	for i := 0; i < threshold; i++ {
		id := ids[i]
		res := results[id]
		partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
	}
	return dkg.CombinePartials(group, publicShares, ct, threshold, partials)
}

// runDecrypt stands in for the trustees on its own: it runs key
// generation, encrypts one ballot under the resulting group key, and
// recovers the plaintext from exactly `threshold` trustees' partial
// decryptions, printing the recovered choice.
func runDecrypt(cmd *cobra.Command, args []string) error {
	if threshold < 1 || threshold > trustees {
		return fmt.Errorf("threshold must be between 1 and the number of trustees")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: mixnet-cli decrypt <ballot-choice-byte>")
	}

	group := curve.Secp256r1{}
	ids := test.PartyIDs(trustees)
	results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
	if err != nil {
		return fmt.Errorf("trustee key generation failed: %w", err)
	}
	pk := results[ids[0]].GroupKey

	m, err := encode.Encode(group, []byte(args[0]))
	if err != nil {
		return err
	}
	ct, err := elgamal.Encrypt(pk, m, rand.Reader)
	if err != nil {
		return err
	}

	recovered, err := thresholdDecrypt(group, results, ids, threshold, ct)
	if err != nil {
		return fmt.Errorf("threshold decryption failed: %w", err)
	}
	msg, err := encode.Decode(group, recovered)
	if err != nil {
		return fmt.Errorf("decoding recovered plaintext: %w", err)
	}

	fmt.Printf("recovered plaintext using %d of %d trustees: %q\n", threshold, trustees, msg)
	return nil
}
