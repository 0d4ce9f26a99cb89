package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/pkg/board"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/math/sample"
	"github.com/veilmix/mixnet/pkg/mixer"
	"github.com/veilmix/mixnet/pkg/sig"
)

var (
	mixServerID  string
	mixOutFile   string
	mixPubKeyOut string
)

// runMix stands up a single mix server against a fresh ElGamal key,
// encrypts a batch of dummy ballots, and writes the signed batch to disk
// in the same wire format a bulletin board would store (board.EncodeWire):
// base64 ciphertext/proof matrices, hex signature, and the mixer's own
// Ed25519 public key travelling with the record. The group public key is
// written alongside so a later `verify` run doesn't need to regenerate it.
func runMix(cmd *cobra.Command, args []string) error {
	if batchSize < 2 || batchSize&(batchSize-1) != 0 {
		return fmt.Errorf("batch size must be a power of two >= 2")
	}
	group := curve.Secp256r1{}
	sk := sample.Scalar(rand.Reader, group)
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	in := make([]elgamal.Ciphertext, batchSize)
	for i := range in {
		ct, err := elgamal.Encrypt(pk, group.Generator(), rand.Reader)
		if err != nil {
			return err
		}
		in[i] = ct
	}

	spk, ssk, err := sig.GenerateKey()
	if err != nil {
		return err
	}
	server := mixer.Server{ID: mixServerID, PublicKey: pk, SigningKey: ssk}
	out, err := server.Run(in, rand.Reader)
	if err != nil {
		return fmt.Errorf("mix server %q failed: %w", mixServerID, err)
	}

	wire, err := board.EncodeWire(out)
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	if err := os.WriteFile(mixOutFile, wire, 0o644); err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}

	pkBytes, err := pk.H.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(mixPubKeyOut, []byte(hex.EncodeToString(pkBytes)), 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	fmt.Printf("mix server %q produced a signed batch of %d ciphertexts -> %s\n", mixServerID, batchSize, mixOutFile)
	fmt.Printf("signer public key: %x\n", []byte(spk))
	fmt.Printf("elgamal public key written to %s\n", mixPubKeyOut)
	return nil
}
