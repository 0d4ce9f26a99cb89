// Package board defines the thin external interface a mixnet deployment
// uses to publish and retrieve batches on a bulletin board, plus an
// in-memory implementation for demos and tests.
package board

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/veilmix/mixnet/pkg/sig"
)

// ErrNotFound is returned when a requested batch has not been published.
var ErrNotFound = errors.New("board: batch not found")

// Client is the interface a mix server or verifier uses to interact with
// the bulletin board. Implementations need not be in-process: a real
// deployment would back this with an append-only ledger or distributed
// log; this package supplies only the in-memory reference implementation
// used by this repository's demo and tests.
type Client interface {
	// Publish appends a signed batch under the given sequence index.
	Publish(ctx context.Context, index int, out *sig.MixBatchOutput) error
	// Fetch retrieves the batch published at index.
	Fetch(ctx context.Context, index int) (*sig.MixBatchOutput, error)
	// Len returns the number of batches published so far.
	Len(ctx context.Context) (int, error)
}

// MemoryBoard is an in-memory Client, safe for concurrent use.
type MemoryBoard struct {
	mu      sync.RWMutex
	batches map[int]*sig.MixBatchOutput
	next    int
}

// NewMemoryBoard returns an empty MemoryBoard.
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{batches: make(map[int]*sig.MixBatchOutput)}
}

func (b *MemoryBoard) Publish(_ context.Context, index int, out *sig.MixBatchOutput) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches[index] = out
	if index+1 > b.next {
		b.next = index + 1
	}
	return nil
}

func (b *MemoryBoard) Fetch(_ context.Context, index int) (*sig.MixBatchOutput, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out, ok := b.batches[index]
	if !ok {
		return nil, ErrNotFound
	}
	return out, nil
}

func (b *MemoryBoard) Len(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.next, nil
}

// Digest returns a SHA3-256 checksum of a published batch, computed over
// its ServerID, every ciphertext and proof encoding, and its signature
// (the header and signer public key are not included), letting a client
// confirm it fetched the same batch another party published without
// re-sending the whole batch. It is independent
// of the Ed25519 signature scheme used for authenticity (pkg/sig), so a
// board operator can offer integrity checks without holding any signing
// key.
func Digest(out *sig.MixBatchOutput) ([32]byte, error) {
	h := sha3.New256()
	h.Write([]byte(out.ServerID))
	for _, col := range out.Columns {
		for _, ct := range col {
			b, err := ct.MarshalBinary()
			if err != nil {
				return [32]byte{}, err
			}
			h.Write(b)
		}
	}
	for _, layer := range out.Proofs {
		for _, p := range layer {
			b, err := p.MarshalBinary()
			if err != nil {
				return [32]byte{}, err
			}
			h.Write(b)
		}
	}
	h.Write(out.Signature)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// FetchChain retrieves batches [0, n) in order, the shape VerifyChain
// expects.
func FetchChain(ctx context.Context, c Client) ([]*sig.MixBatchOutput, error) {
	n, err := c.Len(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*sig.MixBatchOutput, n)
	for i := 0; i < n; i++ {
		b, err := c.Fetch(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
