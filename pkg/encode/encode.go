// Package encode implements deterministic, reversible embedding of short
// byte strings as curve points, used to turn vote plaintexts into
// EC-ElGamal message points and back.
package encode

import (
	"errors"

	"github.com/veilmix/mixnet/pkg/math/curve"
)

// ErrEncodingExhausted is returned when no valid point was found within
// the 256 counter values tried.
var ErrEncodingExhausted = errors.New("encode: no valid point found within 256 tries")

// ErrMessageTooLong is returned when msg exceeds the admissible length,
// MaxMessageLen: field-byte-length minus 2, since one byte of the
// x-coordinate holds the counter and one holds the message length.
var ErrMessageTooLong = errors.New("encode: message exceeds field-byte-length minus 2")

// MaxMessageLen returns the longest message encode can embed for group.
func MaxMessageLen(group curve.Curve) int {
	return group.FieldBytes() - 2
}

// Encode embeds msg as a curve point. len(msg) must be <= MaxMessageLen.
// The message area (FieldBytes-1 bytes) starts with an explicit one-byte
// length, followed by msg and zero padding, so Decode can recover msg
// exactly even when it ends in (or consists entirely of) zero bytes. It
// then tries appending a one-byte counter 0..255 as the final byte of the
// x-coordinate, attempting both SEC1 sign bytes for each candidate, until
// it lands on valid curve point.
func Encode(group curve.Curve, msg []byte) (curve.Point, error) {
	fieldBytes := group.FieldBytes()
	padLen := fieldBytes - 1
	if len(msg) > padLen-1 {
		return nil, ErrMessageTooLong
	}

	padded := make([]byte, padLen)
	padded[0] = byte(len(msg))
	copy(padded[1:], msg)

	candidate := make([]byte, 1+fieldBytes) // sign byte + x-coordinate
	copy(candidate[1:1+padLen], padded)

	for counter := 0; counter < 256; counter++ {
		candidate[1+padLen] = byte(counter)
		for _, sign := range [2]byte{0x02, 0x03} {
			candidate[0] = sign
			p := group.NewPoint()
			if err := p.UnmarshalBinary(candidate); err == nil {
				return p, nil
			}
		}
	}
	return nil, ErrEncodingExhausted
}

// Decode recovers the original message from a point produced by Encode,
// reading the explicit length prefix rather than guessing it from trailing
// zero bytes (which would misdecode a message ending in, or consisting
// entirely of, zero bytes).
func Decode(group curve.Curve, p curve.Point) ([]byte, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	fieldBytes := group.FieldBytes()
	if len(data) != 1+fieldBytes {
		return nil, errors.New("encode: unexpected point encoding length")
	}
	padLen := fieldBytes - 1
	padded := data[1 : 1+padLen] // x-coordinate minus the trailing counter byte

	n := int(padded[0])
	if n > padLen-1 {
		return nil, errors.New("encode: invalid embedded message length")
	}
	out := make([]byte, n)
	copy(out, padded[1:1+n])
	return out, nil
}
