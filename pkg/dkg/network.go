package dkg

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/pkg/math/curve"
)

// RunAll simulates an n-party in-process key generation session: one
// goroutine per participant, broadcasting its commitment to every
// participant (itself included) and sending each its private share over a dedicated
// channel. Messages cross each channel as CBOR-encoded envelopes, not
// bare Go values, so the simulation exercises the same wire format a
// real point-to-point transport would use. Every participant blocks
// until it has received exactly n broadcasts and n shares (its own
// included) before combining, but does so on a select that also watches
// the group's context: the first participant to fail (marshaling,
// unmarshaling, or Combine) cancels that context, so every other
// participant's blocked channel read wakes up and returns instead of
// waiting forever on a message that will now never arrive.
func RunAll(group curve.Curve, threshold int, ids []party.ID, rnd io.Reader) (map[party.ID]*Result, error) {
	n := len(ids)
	broadcastChans := make(map[party.ID]chan []byte, n)
	shareChans := make(map[party.ID]chan []byte, n)
	for _, id := range ids {
		broadcastChans[id] = make(chan []byte, n)
		shareChans[id] = make(chan []byte, n)
	}

	eg, ctx := errgroup.WithContext(context.Background())
	results := make(map[party.ID]*Result, n)
	var mu sync.Mutex

	for _, id := range ids {
		self := id
		eg.Go(func() error {
			_, bc, shares := Round1(group, threshold, ids, self, rnd)
			bcWire, err := bc.MarshalCBOR()
			if err != nil {
				return err
			}
			for _, to := range ids {
				shareWire, err := shares[to].MarshalCBOR()
				if err != nil {
					return err
				}
				select {
				case broadcastChans[to] <- bcWire:
				case <-ctx.Done():
					return ctx.Err()
				}
				select {
				case shareChans[to] <- shareWire:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			received := make(map[party.ID]Broadcast, n)
			receivedShares := make(map[party.ID]ShareMessage, n)
			for i := 0; i < n; i++ {
				var bWire, sWire []byte
				select {
				case bWire = <-broadcastChans[self]:
				case <-ctx.Done():
					return ctx.Err()
				}
				b, err := UnmarshalBroadcastCBOR(group, bWire)
				if err != nil {
					return err
				}
				received[b.From] = b

				select {
				case sWire = <-shareChans[self]:
				case <-ctx.Done():
					return ctx.Err()
				}
				s, err := UnmarshalShareMessageCBOR(group, sWire)
				if err != nil {
					return err
				}
				receivedShares[s.From] = s
			}

			res, err := Combine(group, threshold, self, ids, received, receivedShares)
			if err != nil {
				return err
			}
			mu.Lock()
			results[self] = res
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
