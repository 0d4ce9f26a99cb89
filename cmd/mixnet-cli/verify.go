package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/pkg/board"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/verifier"
)

var (
	verifyInFile     string
	verifyPubKeyFile string
)

// runVerify loads a batch written by `mix` and re-checks it
// cold: the signer public key travels embedded in the batch itself, so
// only the group's ElGamal public key needs to be supplied out of band.
func runVerify(cmd *cobra.Command, args []string) error {
	group := curve.Secp256r1{}

	wire, err := os.ReadFile(verifyInFile)
	if err != nil {
		return fmt.Errorf("reading batch: %w", err)
	}
	out, err := board.DecodeWire(group, wire)
	if err != nil {
		return fmt.Errorf("decoding batch: %w", err)
	}

	pkHex, err := os.ReadFile(verifyPubKeyFile)
	if err != nil {
		return fmt.Errorf("reading public key: %w", err)
	}
	pkBytes, err := hex.DecodeString(strings.TrimSpace(string(pkHex)))
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}
	h := group.NewPoint()
	if err := h.UnmarshalBinary(pkBytes); err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}
	pk := elgamal.PublicKey{Group: group, H: h}

	final, err := verifier.VerifyOutput(pk, out.SignerPublicKey, out)
	if err != nil {
		return fmt.Errorf("batch failed verification: %w", err)
	}

	fmt.Printf("batch verified: %d switch layers, %d ciphertexts in, %d out\n",
		out.Header.Layers, len(out.Columns[0]), len(final))
	return nil
}
