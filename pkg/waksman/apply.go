package waksman

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/switchproof"
)

// ErrSizeMismatch is returned when the input batch size does not match
// the network it is applied to.
var ErrSizeMismatch = errors.New("waksman: input batch size does not match network size")

// Result holds the full layer-by-layer trace of applying a Network to a
// batch: Columns has Layers(n)+1 entries of n ciphertexts each (Columns[0]
// is the input batch, Columns[len-1] the output batch), and Proofs has
// Layers(n) entries of n/2 switch proofs each.
type Result struct {
	Columns [][]elgamal.Ciphertext
	Proofs  [][]*switchproof.Proof
}

// Apply runs the network as a circuit: each switch either passes its two
// inputs straight through or swaps them, re-randomizing both outputs and
// producing a switchproof.Proof attesting to one of those two behaviors.
func Apply(net *Network, pk elgamal.PublicKey, in []elgamal.Ciphertext, rnd io.Reader) (*Result, error) {
	if len(in) != net.N {
		return nil, ErrSizeMismatch
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	layers := Layers(net.N)
	res := &Result{
		Columns: make([][]elgamal.Ciphertext, layers+1),
		Proofs:  make([][]*switchproof.Proof, layers),
	}
	for i := range res.Columns {
		res.Columns[i] = make([]elgamal.Ciphertext, net.N)
	}
	for i := range res.Proofs {
		res.Proofs[i] = make([]*switchproof.Proof, net.N/2)
	}

	out, err := apply(net, pk, in, rnd, res, 0, 0)
	if err != nil {
		return nil, err
	}
	res.Columns[layers] = out
	return res, nil
}

// apply fills res in place for the subtree rooted at net, whose global
// column span starts at colOffset and whose rows occupy
// [rowOffset, rowOffset+net.N) of every column in that span. It returns
// the subtree's output batch (length net.N, in local row order).
func apply(net *Network, pk elgamal.PublicKey, in []elgamal.Ciphertext, rnd io.Reader, res *Result, colOffset, rowOffset int) ([]elgamal.Ciphertext, error) {
	copy(res.Columns[colOffset][rowOffset:rowOffset+net.N], in)

	if net.N == 2 {
		out0, out1, proof, err := applySwitch(pk, net.Switch, in[0], in[1], rnd)
		if err != nil {
			return nil, err
		}
		res.Proofs[colOffset][rowOffset/2] = proof
		return []elgamal.Ciphertext{out0, out1}, nil
	}

	m := net.N / 2
	shuffled := make([]elgamal.Ciphertext, net.N)
	for i := 0; i < m; i++ {
		out0, out1, proof, err := applySwitch(pk, net.FirstFlags[i], in[2*i], in[2*i+1], rnd)
		if err != nil {
			return nil, err
		}
		res.Proofs[colOffset][rowOffset/2+i] = proof
		shuffled[i], shuffled[m+i] = out0, out1
	}

	topOut, err := apply(net.Top, pk, shuffled[:m], rnd, res, colOffset+1, rowOffset)
	if err != nil {
		return nil, err
	}
	bottomOut, err := apply(net.Bottom, pk, shuffled[m:], rnd, res, colOffset+1, rowOffset+m)
	if err != nil {
		return nil, err
	}

	innerLayers := Layers(m)
	preLast := make([]elgamal.Ciphertext, net.N)
	copy(preLast[:m], topOut)
	copy(preLast[m:], bottomOut)
	copy(res.Columns[colOffset+1+innerLayers][rowOffset:rowOffset+net.N], preLast)

	out := make([]elgamal.Ciphertext, net.N)
	lastLayer := colOffset + 1 + innerLayers
	for i := 0; i < m; i++ {
		out0, out1, proof, err := applySwitch(pk, net.LastFlags[i], preLast[i], preLast[m+i], rnd)
		if err != nil {
			return nil, err
		}
		res.Proofs[lastLayer][rowOffset/2+i] = proof
		out[2*i], out[2*i+1] = out0, out1
	}
	return out, nil
}

// applySwitch re-randomizes in0, in1 in straight (flag 0) or swapped
// (flag 1) order and produces the accompanying switch proof. flag doubles
// as the proof's branch selector since the branch is defined identically:
// branch 0 is c=reenc(a), d=reenc(b); branch 1 is c=reenc(b), d=reenc(a).
func applySwitch(pk elgamal.PublicKey, flag int, in0, in1 elgamal.Ciphertext, rnd io.Reader) (elgamal.Ciphertext, elgamal.Ciphertext, *switchproof.Proof, error) {
	var out0, out1 elgamal.Ciphertext
	var r0, r1 curve.Scalar
	if flag == 0 {
		out0, r0 = elgamal.RandomRerandomize(pk, in0, rnd)
		out1, r1 = elgamal.RandomRerandomize(pk, in1, rnd)
	} else {
		out0, r0 = elgamal.RandomRerandomize(pk, in1, rnd)
		out1, r1 = elgamal.RandomRerandomize(pk, in0, rnd)
	}
	proof, err := switchproof.Prove(rnd, pk, in0, in1, out0, out1, flag, r0, r1)
	if err != nil {
		return elgamal.Ciphertext{}, elgamal.Ciphertext{}, nil, err
	}
	return out0, out1, proof, nil
}
