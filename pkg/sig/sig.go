// Package sig implements mix-batch authenticity: a canonical byte
// serialization of a mix server's output batch and its Ed25519
// signature, plus multiset-equality chain verification across a sequence
// of signed batches.
package sig

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"errors"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/switchproof"
	"github.com/veilmix/mixnet/pkg/waksman"
)

// PublicKey and PrivateKey alias the stdlib Ed25519 types, named here so
// callers need not import crypto/ed25519 directly.
type PublicKey = ed25519.PublicKey
type PrivateKey = ed25519.PrivateKey

// ErrInvalidSignature is returned when a batch's signature does not
// verify under the claimed signer key.
var ErrInvalidSignature = errors.New("sig: invalid batch signature")

// GenerateKey creates a fresh Ed25519 mix-server signing key.
func GenerateKey() (PublicKey, PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// PublicFromPrivate recovers the Ed25519 public key embedded in sk.
func PublicFromPrivate(sk PrivateKey) PublicKey {
	return sk.Public().(ed25519.PublicKey)
}

// Header is a mix batch's fixed-layout header: logN (so a verifier knows
// the network size before looking at the matrices) and layers, the
// switch-column count 2*logN-1.
type Header struct {
	LogN   uint32
	Layers uint32
}

// NewHeader derives the header for a batch of size n.
func NewHeader(n int) Header {
	return Header{LogN: uint32(waksman.Log2(n)), Layers: uint32(waksman.Layers(n))}
}

// MarshalBinary encodes Header as two big-endian uint32s (8 bytes).
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], h.LogN)
	binary.BigEndian.PutUint32(buf[4:8], h.Layers)
	return buf, nil
}

// UnmarshalBinary decodes a Header produced by MarshalBinary.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return errors.New("sig: header must be 8 bytes")
	}
	h.LogN = binary.BigEndian.Uint32(data[0:4])
	h.Layers = binary.BigEndian.Uint32(data[4:8])
	return nil
}

// MixBatchOutput is one mix server's complete, signed contribution: the
// batch header, the full column trace (input batch, every intermediate
// switch-layer output, final output batch), the accompanying switch
// proofs, and the Ed25519 public key of the signing server.
type MixBatchOutput struct {
	ServerID        string
	Header          Header
	Columns         [][]elgamal.Ciphertext
	Proofs          [][]*switchproof.Proof
	SignerPublicKey PublicKey
	Signature       []byte
}

// canonicalBytes serializes the header, ciphertextsMatrix, and
// proofsMatrix, in that fixed order, for signing and verification. It is
// never exposed directly: the signature covers exactly this byte string.
// ServerID and SignerPublicKey are carried on the record but are not part
// of the signed transcript, since the signature itself is already bound
// to a specific signing key.
func canonicalBytes(out *MixBatchOutput) ([]byte, error) {
	headerBytes, err := out.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := append([]byte(nil), headerBytes...)

	for _, col := range out.Columns {
		for _, ct := range col {
			b, err := ct.MarshalBinary()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
	}
	for _, layer := range out.Proofs {
		for _, p := range layer {
			b, err := p.MarshalBinary()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
	}
	return buf, nil
}

// SignBatch computes the canonical transcript of out and signs it with
// sk, filling in out.Signature.
func SignBatch(sk PrivateKey, out *MixBatchOutput) error {
	transcript, err := canonicalBytes(out)
	if err != nil {
		return err
	}
	out.Signature = ed25519.Sign(sk, transcript)
	return nil
}

// VerifyBatch checks out.Signature against its canonical transcript under
// pk.
func VerifyBatch(pk PublicKey, out *MixBatchOutput) error {
	transcript, err := canonicalBytes(out)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pk, transcript, out.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// ciphertextKey returns a comparable map key for a ciphertext, used by
// chain verification's multiset-equality check.
func ciphertextKey(group curve.Curve, c elgamal.Ciphertext) (string, error) {
	b, err := c.MarshalBinary()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ErrChainBroken is returned when a link's output batch is not, as a
// multiset, equal to the next link's input batch.
var ErrChainBroken = errors.New("sig: batch chain input/output multisets do not match")

// VerifyChain checks that, for each consecutive pair of batches, the
// predecessor's final column is a multiset-equal to the successor's
// first column (the links may reorder ciphertexts arbitrarily, but may
// not add, drop, or substitute any), without requiring both links to
// agree on exact row order.
func VerifyChain(group curve.Curve, batches []*MixBatchOutput) error {
	for i := 0; i+1 < len(batches); i++ {
		out := batches[i].Columns[len(batches[i].Columns)-1]
		in := batches[i+1].Columns[0]
		if len(out) != len(in) {
			return ErrChainBroken
		}
		counts := make(map[string]int, len(out))
		for _, c := range out {
			k, err := ciphertextKey(group, c)
			if err != nil {
				return err
			}
			counts[k]++
		}
		for _, c := range in {
			k, err := ciphertextKey(group, c)
			if err != nil {
				return err
			}
			counts[k]--
			if counts[k] < 0 {
				return ErrChainBroken
			}
		}
		for _, v := range counts {
			if v != 0 {
				return ErrChainBroken
			}
		}
	}
	return nil
}

// AuthorizedSigners enforces that every batch in a chain carries a
// signer public key matching the given authorized set (keyed by
// ServerID), and that the batch's signature verifies under that key —
// so a batch claiming an authorized ServerID but embedding a substituted
// public key is rejected, not merely one with a bad signature.
func AuthorizedSigners(authorized map[string]PublicKey, batches []*MixBatchOutput) error {
	for _, b := range batches {
		pk, ok := authorized[b.ServerID]
		if !ok {
			return errors.New("sig: batch signed by unauthorized server " + b.ServerID)
		}
		if !pk.Equal(b.SignerPublicKey) {
			return errors.New("sig: batch's embedded signer public key does not match the authorized key for " + b.ServerID)
		}
		if err := VerifyBatch(pk, b); err != nil {
			return err
		}
	}
	return nil
}
