package main

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/mixer"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/verifier"
)

func runBench(cmd *cobra.Command, args []string) error {
	if batchSize < 2 || batchSize&(batchSize-1) != 0 {
		return fmt.Errorf("batch size must be a power of two >= 2")
	}
	group := curve.Secp256r1{}
	sk := curve.NewScalarUint64(group, 12345).Invert()
	pk := elgamal.PublicKey{Group: group, H: sk.ActOnBase()}

	spk, ssk, err := sig.GenerateKey()
	if err != nil {
		return err
	}
	server := mixer.Server{ID: "bench", PublicKey: pk, SigningKey: ssk}

	in := make([]elgamal.Ciphertext, batchSize)
	for i := range in {
		in[i], err = elgamal.Encrypt(pk, group.Generator(), rand.Reader)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	out, err := server.Run(in, rand.Reader)
	if err != nil {
		return err
	}
	mixElapsed := time.Since(start)

	start = time.Now()
	if _, err := verifier.VerifyOutput(pk, spk, out); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	verifyElapsed := time.Since(start)

	fmt.Printf("batch size %d: mix %s, verify %s\n", batchSize, mixElapsed, verifyElapsed)
	return nil
}
