package main

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilmix/mixnet/internal/test"
	"github.com/veilmix/mixnet/pkg/dkg"
	"github.com/veilmix/mixnet/pkg/math/curve"
)

func runKeygen(cmd *cobra.Command, args []string) error {
	if threshold < 1 || threshold > trustees {
		return fmt.Errorf("threshold must be between 1 and the number of trustees")
	}
	group := curve.Secp256r1{}
	ids := test.PartyIDs(trustees)

	results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
	if err != nil {
		return fmt.Errorf("key generation failed: %w", err)
	}

	var any *dkg.Result
	for _, r := range results {
		any = r
		break
	}
	pubBytes, err := any.GroupKey.H.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("generated (%d,%d) threshold key for %d trustees\n", threshold, trustees, trustees)
	fmt.Printf("group public key: %x\n", pubBytes)
	return nil
}
