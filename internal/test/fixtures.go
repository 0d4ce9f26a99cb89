// Package test provides small deterministic fixtures shared by unit and
// integration tests across the module.
package test

import (
	"fmt"

	"github.com/veilmix/mixnet/internal/party"
)

// PartyIDs returns n distinct, deterministically-named party IDs.
func PartyIDs(n int) []party.ID {
	ids := make([]party.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = party.ID(fmt.Sprintf("trustee-%d", i+1))
	}
	return ids
}
