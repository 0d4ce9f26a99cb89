package dkg

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/pkg/math/curve"
)

// wireBroadcast and wireShare are the CBOR-encodable envelopes for
// Broadcast and ShareMessage: curve.Point and curve.Scalar are
// interfaces, so the wire format carries their canonical byte encoding
// rather than the Go value directly.
type wireBroadcast struct {
	From        string
	Commitments [][]byte
}

type wireShare struct {
	From, To string
	Share    []byte
}

// MarshalCBOR encodes bc as a round-message envelope suitable for
// sending to another participant over a real transport.
func (bc Broadcast) MarshalCBOR() ([]byte, error) {
	w := wireBroadcast{From: string(bc.From), Commitments: make([][]byte, len(bc.Commitments))}
	for i, c := range bc.Commitments {
		b, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.Commitments[i] = b
	}
	return cbor.Marshal(w)
}

// UnmarshalBroadcastCBOR decodes an envelope produced by
// Broadcast.MarshalCBOR, interpreting its points against group.
func UnmarshalBroadcastCBOR(group curve.Curve, data []byte) (Broadcast, error) {
	var w wireBroadcast
	if err := cbor.Unmarshal(data, &w); err != nil {
		return Broadcast{}, err
	}
	commitments := make([]curve.Point, len(w.Commitments))
	for i, b := range w.Commitments {
		p := group.NewPoint()
		if err := p.UnmarshalBinary(b); err != nil {
			return Broadcast{}, err
		}
		commitments[i] = p
	}
	return Broadcast{From: party.ID(w.From), Commitments: commitments}, nil
}

// MarshalCBOR encodes sm as a round-message envelope.
func (sm ShareMessage) MarshalCBOR() ([]byte, error) {
	b, err := sm.Share.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(wireShare{From: string(sm.From), To: string(sm.To), Share: b})
}

// UnmarshalShareMessageCBOR decodes an envelope produced by
// ShareMessage.MarshalCBOR, interpreting its share against group.
func UnmarshalShareMessageCBOR(group curve.Curve, data []byte) (ShareMessage, error) {
	var w wireShare
	if err := cbor.Unmarshal(data, &w); err != nil {
		return ShareMessage{}, err
	}
	s := group.NewScalar()
	if err := s.UnmarshalBinary(w.Share); err != nil {
		return ShareMessage{}, err
	}
	return ShareMessage{From: party.ID(w.From), To: party.ID(w.To), Share: s}, nil
}
