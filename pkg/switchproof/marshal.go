package switchproof

import (
	"errors"

	"github.com/veilmix/mixnet/pkg/math/curve"
)

// MarshalBinary encodes the proof as the fixed-order concatenation of its
// eight commitment points, four response scalars, and the stored
// challenge: each commitment is a group element, each response a
// 32-byte big-endian scalar.
func (p *Proof) MarshalBinary() ([]byte, error) {
	var out []byte
	for _, pc := range [][2]subCommitment{p.Commit0, p.Commit1} {
		for _, sc := range pc {
			for _, pt := range [2]curve.Point{sc.AG, sc.AH} {
				b, err := pt.MarshalBinary()
				if err != nil {
					return nil, err
				}
				out = append(out, b...)
			}
		}
	}
	for _, rs := range [][2]curve.Scalar{p.Resp0, p.Resp1} {
		for _, s := range rs {
			b, err := s.MarshalBinary()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	challengeBytes, err := p.ChallengeA.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, challengeBytes...)
	return out, nil
}

// UnmarshalBinary decodes a proof produced by MarshalBinary for the given
// group.
func UnmarshalBinary(group curve.Curve, data []byte) (*Proof, error) {
	pointLen := group.FieldBytes() + 1
	scalarLen := group.FieldBytes()
	wantLen := 8*pointLen + 5*scalarLen
	if len(data) != wantLen {
		return nil, errors.New("switchproof: wrong proof encoding length")
	}

	off := 0
	readPoint := func() (curve.Point, error) {
		p := group.NewPoint()
		if err := p.UnmarshalBinary(data[off : off+pointLen]); err != nil {
			return nil, err
		}
		off += pointLen
		return p, nil
	}
	readScalar := func() (curve.Scalar, error) {
		s := group.NewScalar()
		if err := s.UnmarshalBinary(data[off : off+scalarLen]); err != nil {
			return nil, err
		}
		off += scalarLen
		return s, nil
	}

	var pairs [2][2]subCommitment
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			ag, err := readPoint()
			if err != nil {
				return nil, err
			}
			ah, err := readPoint()
			if err != nil {
				return nil, err
			}
			pairs[i][k] = subCommitment{AG: ag, AH: ah}
		}
	}

	var resp [2][2]curve.Scalar
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			s, err := readScalar()
			if err != nil {
				return nil, err
			}
			resp[i][k] = s
		}
	}

	challengeA, err := readScalar()
	if err != nil {
		return nil, err
	}

	return &Proof{
		Commit0:    pairs[0],
		Commit1:    pairs[1],
		Resp0:      resp[0],
		Resp1:      resp[1],
		ChallengeA: challengeA,
	}, nil
}
