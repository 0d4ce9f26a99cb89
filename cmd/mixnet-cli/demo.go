package main

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/internal/test"
	"github.com/veilmix/mixnet/pkg/board"
	"github.com/veilmix/mixnet/pkg/dkg"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/mixer"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/tally"
	"github.com/veilmix/mixnet/pkg/verifier"
)

func runDemo(cmd *cobra.Command, args []string) error {
	if batchSize < 2 || batchSize&(batchSize-1) != 0 {
		return fmt.Errorf("batch size must be a power of two >= 2")
	}
	if threshold < 1 || threshold > trustees {
		return fmt.Errorf("threshold must be between 1 and the number of trustees")
	}

	group := curve.Secp256r1{}
	ids := test.PartyIDs(trustees)

	keyResults, err := dkg.RunAll(group, threshold, ids, rand.Reader)
	if err != nil {
		return fmt.Errorf("trustee key generation failed: %w", err)
	}
	first := keyResults[ids[0]]
	pk := first.GroupKey
	fmt.Printf("trustees generated joint key for %d voters\n", batchSize)

	ctx := context.Background()
	mixServers := []mixer.Server{}
	numServers := 3
	authorized := make(map[string]sig.PublicKey, numServers)
	for i := 0; i < numServers; i++ {
		spk, sk, err := sig.GenerateKey()
		if err != nil {
			return err
		}
		id := fmt.Sprintf("mix-%d", i+1)
		mixServers = append(mixServers, mixer.Server{ID: id, PublicKey: pk, SigningKey: sk})
		authorized[id] = spk
	}

	ballots := make([]elgamal.Ciphertext, batchSize)
	for i := range ballots {
		choice := byte(i % 2)
		p, err := encode.Encode(group, []byte{choice})
		if err != nil {
			return err
		}
		ct, err := elgamal.Encrypt(pk, p, rand.Reader)
		if err != nil {
			return err
		}
		ballots[i] = ct
	}

	bulletinBoard := board.NewMemoryBoard()
	current := ballots
	for i, server := range mixServers {
		out, err := server.Run(current, rand.Reader)
		if err != nil {
			return fmt.Errorf("mix server %d failed: %w", i+1, err)
		}
		if err := bulletinBoard.Publish(ctx, i, out); err != nil {
			return err
		}
		current = out.Columns[len(out.Columns)-1]
		fmt.Printf("mix server %d produced a signed batch of %d re-encrypted ballots\n", i+1, len(current))
	}

	chain, err := board.FetchChain(ctx, bulletinBoard)
	if err != nil {
		return err
	}
	if err := sig.AuthorizedSigners(authorized, chain); err != nil {
		return fmt.Errorf("chain authorization check failed: %w", err)
	}
	if err := sig.VerifyChain(group, chain); err != nil {
		return fmt.Errorf("chain linkage check failed: %w", err)
	}
	for i, batch := range chain {
		if _, err := verifier.VerifyOutput(pk, authorized[batch.ServerID], batch); err != nil {
			return fmt.Errorf("batch %d failed verification: %w", i, err)
		}
	}
	fmt.Println("chain verification passed: every mix step is a faithful shuffle-and-reencrypt")

	plaintexts := make([]curve.Point, 0, len(current))
	for _, ct := range current {
		m, err := thresholdDecrypt(group, keyResults, ids, threshold, ct)
		if err != nil {
			return err
		}
		plaintexts = append(plaintexts, m)
	}

	results, err := tally.Tally(group, plaintexts)
	if err != nil {
		return err
	}
	fmt.Println("final tally:")
	for _, c := range results {
		fmt.Printf("  %q: %d\n", c.Value, c.N)
	}
	return nil
}
