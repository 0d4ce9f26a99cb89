package board

import (
	"encoding/hex"
	"encoding/json"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/switchproof"
)

// wireMixBatchOutput is the bit-exact wire shape of a MixBatchOutput:
// base64(header_bytes), a matrix of base64(ciphertext_bytes), a matrix
// of base64(proof_bytes), a hex signature, and a base64 mixer Ed25519
// public key. encoding/json base64-encodes []byte fields by default, so
// only the signature needs an explicit hex encoding.
type wireMixBatchOutput struct {
	Header          []byte     `json:"header"`
	Columns         [][][]byte `json:"columns"`
	Proofs          [][][]byte `json:"proofs"`
	Signature       string     `json:"signature"`
	SignerPublicKey []byte     `json:"signer_public_key"`
}

// EncodeWire serializes out to the wire format a bulletin board stores
// and transmits: put_mix_batch/get_mix_batches exchange exactly these
// bytes.
func EncodeWire(out *sig.MixBatchOutput) ([]byte, error) {
	headerBytes, err := out.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	columns := make([][][]byte, len(out.Columns))
	for i, col := range out.Columns {
		row := make([][]byte, len(col))
		for j, ct := range col {
			b, err := ct.MarshalBinary()
			if err != nil {
				return nil, err
			}
			row[j] = b
		}
		columns[i] = row
	}

	proofs := make([][][]byte, len(out.Proofs))
	for i, layer := range out.Proofs {
		row := make([][]byte, len(layer))
		for j, p := range layer {
			b, err := p.MarshalBinary()
			if err != nil {
				return nil, err
			}
			row[j] = b
		}
		proofs[i] = row
	}

	w := wireMixBatchOutput{
		Header:          headerBytes,
		Columns:         columns,
		Proofs:          proofs,
		Signature:       hex.EncodeToString(out.Signature),
		SignerPublicKey: []byte(out.SignerPublicKey),
	}
	return json.Marshal(w)
}

// DecodeWire parses bytes produced by EncodeWire, interpreting
// ciphertexts and proofs against group. ServerID is not part of the wire
// record (a board keys batches by mixer_index, not by an embedded
// string), so the returned MixBatchOutput has an empty ServerID; callers
// that need it should set it from the index they fetched under.
func DecodeWire(group curve.Curve, data []byte) (*sig.MixBatchOutput, error) {
	var w wireMixBatchOutput
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	var header sig.Header
	if err := header.UnmarshalBinary(w.Header); err != nil {
		return nil, err
	}

	columns := make([][]elgamal.Ciphertext, len(w.Columns))
	for i, row := range w.Columns {
		cts := make([]elgamal.Ciphertext, len(row))
		for j, b := range row {
			var ct elgamal.Ciphertext
			if err := ct.UnmarshalBinary(group, b); err != nil {
				return nil, err
			}
			cts[j] = ct
		}
		columns[i] = cts
	}

	proofs := make([][]*switchproof.Proof, len(w.Proofs))
	for i, row := range w.Proofs {
		ps := make([]*switchproof.Proof, len(row))
		for j, b := range row {
			p, err := switchproof.UnmarshalBinary(group, b)
			if err != nil {
				return nil, err
			}
			ps[j] = p
		}
		proofs[i] = ps
	}

	sigBytes, err := hex.DecodeString(w.Signature)
	if err != nil {
		return nil, err
	}

	return &sig.MixBatchOutput{
		Header:          header,
		Columns:         columns,
		Proofs:          proofs,
		SignerPublicKey: sig.PublicKey(w.SignerPublicKey),
		Signature:       sigBytes,
	}, nil
}
