// Package tally decodes the final threshold-decrypted plaintexts from a
// mix batch and counts their occurrences, the last mile of an election
// run.
package tally

import (
	"sort"

	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
)

// Count pairs a decoded plaintext with how many times it appeared.
type Count struct {
	Value string
	N     int
}

// Tally decodes each plaintext point and counts occurrences, returning
// results sorted by descending count and then lexicographically by value
// for a deterministic, auditable ordering.
func Tally(group curve.Curve, plaintexts []curve.Point) ([]Count, error) {
	counts := make(map[string]int)
	for _, p := range plaintexts {
		msg, err := encode.Decode(group, p)
		if err != nil {
			return nil, err
		}
		counts[string(msg)]++
	}

	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, Count{Value: v, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}
