// Package party defines participant identifiers shared across the
// threshold key-generation and mix-server components.
package party

import (
	"sort"

	"github.com/veilmix/mixnet/pkg/math/curve"
)

// ID identifies a single participant (a decryption trustee or a mix
// server). IDs are opaque strings so callers can use stable names
// ("trustee-1") instead of bare integers.
type ID string

// Scalar maps an ID to its evaluation point in Z_q, via
// SHA-256("mixnet/party/" || id) mod q.
// Every participant and every Lagrange computation must agree on this
// mapping, so it is a pure function of the ID and the group alone.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return curve.HashToScalar(group, []byte("mixnet/party/"), []byte(id))
}

// IDSlice is a sortable set of IDs.
type IDSlice []ID

func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Sorted returns a sorted copy.
func (s IDSlice) Sorted() IDSlice {
	out := make(IDSlice, len(s))
	copy(out, s)
	sort.Sort(out)
	return out
}

// Contains reports whether id is present in s.
func (s IDSlice) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}
