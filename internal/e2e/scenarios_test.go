package e2e_test

import (
	"context"
	"crypto/rand"
	mrand "math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/veilmix/mixnet/internal/party"
	"github.com/veilmix/mixnet/internal/test"
	"github.com/veilmix/mixnet/pkg/board"
	"github.com/veilmix/mixnet/pkg/dkg"
	"github.com/veilmix/mixnet/pkg/elgamal"
	"github.com/veilmix/mixnet/pkg/encode"
	"github.com/veilmix/mixnet/pkg/math/curve"
	"github.com/veilmix/mixnet/pkg/mixer"
	"github.com/veilmix/mixnet/pkg/sig"
	"github.com/veilmix/mixnet/pkg/switchproof"
	"github.com/veilmix/mixnet/pkg/tally"
	"github.com/veilmix/mixnet/pkg/verifier"
	"github.com/veilmix/mixnet/pkg/waksman"
)

func encryptAllPlaintexts(group curve.Curve, pk elgamal.PublicKey, msgs []string) []elgamal.Ciphertext {
	out := make([]elgamal.Ciphertext, len(msgs))
	for i, m := range msgs {
		p, err := encode.Encode(group, []byte(m))
		Expect(err).NotTo(HaveOccurred())
		ct, err := elgamal.Encrypt(pk, p, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		out[i] = ct
	}
	return out
}

func thresholdDecryptAll(group curve.Curve, results map[party.ID]*dkg.Result, ids []party.ID, threshold int, batch []elgamal.Ciphertext) []string {
	publicShares := results[ids[0]].PublicShares
	out := make([]string, len(batch))
	for i, ct := range batch {
		partials := make(map[party.ID]dkg.PartialDecryption, threshold)
		for k := 0; k < threshold; k++ {
			id := ids[k]
			res := results[id]
			partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
		}
		m, err := dkg.CombinePartials(group, publicShares, ct, threshold, partials)
		Expect(err).NotTo(HaveOccurred())
		msg, err := encode.Decode(group, m)
		Expect(err).NotTo(HaveOccurred())
		out[i] = string(msg)
	}
	return out
}

var _ = Describe("Mixnet end-to-end scenarios", func() {
	var group curve.Curve

	BeforeEach(func() {
		group = curve.Secp256r1{}
	})

	It("S1: two vote options through one mix server", func() {
		ids := test.PartyIDs(3)
		threshold := 2
		results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		pk := results[ids[0]].GroupKey

		in := encryptAllPlaintexts(group, pk, []string{"A", "B", "A", "B"})

		sigma := []int{2, 0, 3, 1}
		net, err := waksman.Configure(sigma)
		Expect(err).NotTo(HaveOccurred())

		spk, ssk, err := sig.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		result, err := waksman.Apply(net, pk, in, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		out := &sig.MixBatchOutput{
			ServerID:        "mix-1",
			Header:          sig.NewHeader(len(in)),
			Columns:         result.Columns,
			Proofs:          result.Proofs,
			SignerPublicKey: sig.PublicFromPrivate(ssk),
		}
		Expect(sig.SignBatch(ssk, out)).To(Succeed())

		final, err := verifier.VerifyOutput(pk, spk, out)
		Expect(err).NotTo(HaveOccurred())

		plaintexts := thresholdDecryptAll(group, results, ids, threshold, final)
		counts, err := tally.Tally(group, pointsFromStrings(group, plaintexts))
		Expect(err).NotTo(HaveOccurred())
		Expect(countsToMap(counts)).To(Equal(map[string]int{"A": 2, "B": 2}))
	})

	It("S2: eight distinct plaintexts through a three-server cascade, chain verifies", func() {
		ids := test.PartyIDs(3)
		threshold := 2
		results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		pk := results[ids[0]].GroupKey

		msgs := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		in := encryptAllPlaintexts(group, pk, msgs)

		ctx := context.Background()
		bulletinBoard := board.NewMemoryBoard()
		authorized := make(map[string]sig.PublicKey, 3)
		current := in
		for i := 0; i < 3; i++ {
			spk, ssk, err := sig.GenerateKey()
			Expect(err).NotTo(HaveOccurred())
			id := serverName(i)
			authorized[id] = spk
			server := mixer.Server{ID: id, PublicKey: pk, SigningKey: ssk}
			out, err := server.Run(current, rand.Reader)
			Expect(err).NotTo(HaveOccurred())
			Expect(bulletinBoard.Publish(ctx, i, out)).To(Succeed())
			current = out.Columns[len(out.Columns)-1]
		}

		chain, err := board.FetchChain(ctx, bulletinBoard)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.AuthorizedSigners(authorized, chain)).To(Succeed())
		Expect(sig.VerifyChain(group, chain)).To(Succeed())
		for _, batch := range chain {
			_, err := verifier.VerifyOutput(pk, authorized[batch.ServerID], batch)
			Expect(err).NotTo(HaveOccurred())
		}

		plaintexts := thresholdDecryptAll(group, results, ids, threshold, current)
		Expect(plaintexts).To(ConsistOf(msgs))
	})

	It("S3: a tampered proof makes the mixer's own batch fail verification", func() {
		ids := test.PartyIDs(3)
		threshold := 2
		results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		pk := results[ids[0]].GroupKey

		msgs := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		in := encryptAllPlaintexts(group, pk, msgs)

		spk1, ssk1, err := sig.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		server1 := mixer.Server{ID: "mix-1", PublicKey: pk, SigningKey: ssk1}
		out1, err := server1.Run(in, rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		// Flip a byte in one response scalar of layer 2's first proof, then
		// re-sign over the tampered transcript so the signature itself
		// stays internally consistent and only the switch proof is broken.
		proof := out1.Proofs[1][0]
		data, err := proof.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())
		// The first response scalar follows the eight commitment points;
		// flip its last byte.
		pointLen := group.FieldBytes() + 1
		data[8*pointLen+group.FieldBytes()-1] ^= 0x01
		tampered, err := switchproof.UnmarshalBinary(group, data)
		Expect(err).NotTo(HaveOccurred())
		out1.Proofs[1][0] = tampered
		Expect(sig.SignBatch(ssk1, out1)).To(Succeed())

		_, err = verifier.VerifyOutput(pk, spk1, out1)
		Expect(err).To(HaveOccurred())
	})

	It("S4: an unauthorized signing key is rejected by authorized-signer enforcement", func() {
		ids := test.PartyIDs(3)
		threshold := 2
		results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		pk := results[ids[0]].GroupKey

		msgs := []string{"1", "2", "3", "4"}
		in := encryptAllPlaintexts(group, pk, msgs)

		_, ssk1, err := sig.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		server1 := mixer.Server{ID: "mix-1", PublicKey: pk, SigningKey: ssk1}
		out1, err := server1.Run(in, rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		authorizedPK2, _, err := sig.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		_, rogueSK, err := sig.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		server2 := mixer.Server{ID: "mix-2", PublicKey: pk, SigningKey: rogueSK}
		out2, err := server2.Run(out1.Columns[len(out1.Columns)-1], rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		authorized := map[string]sig.PublicKey{"mix-1": pubKeyOf(ssk1), "mix-2": authorizedPK2}
		err = sig.AuthorizedSigners(authorized, []*sig.MixBatchOutput{out1, out2})
		Expect(err).To(HaveOccurred())

		// Batch 1 alone still verifies: the authorization failure is
		// specific to the substituted key on batch 2.
		Expect(sig.VerifyBatch(pubKeyOf(ssk1), out1)).To(Succeed())
	})

	It("S5: threshold decryption rejects fewer than t shares and accepts exactly t", func() {
		ids := test.PartyIDs(5)
		threshold := 3
		results, err := dkg.RunAll(group, threshold, ids, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		pk := results[ids[0]].GroupKey

		m, err := encode.Encode(group, []byte("ballot"))
		Expect(err).NotTo(HaveOccurred())
		ct, err := elgamal.Encrypt(pk, m, rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		publicShares := results[ids[0]].PublicShares
		partials := make(map[party.ID]dkg.PartialDecryption, 2)
		for i := 0; i < 2; i++ {
			id := ids[i]
			res := results[id]
			partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
		}
		_, err = dkg.CombinePartials(group, publicShares, ct, threshold, partials)
		Expect(err).To(MatchError(dkg.ErrInsufficientShares))

		for i := 2; i < 5; i++ {
			id := ids[i]
			res := results[id]
			partials[id] = dkg.ComputePartial(rand.Reader, group, id, res.Share, res.PublicShares[id], ct)
		}
		recovered, err := dkg.CombinePartials(group, publicShares, ct, threshold, partials)
		Expect(err).NotTo(HaveOccurred())
		got, err := encode.Decode(group, recovered)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(got)).To(Equal("ballot"))
	})

	It("S6: a uniformly random permutation round-trips through configure/apply/decrypt", func() {
		n := 8
		sk, pk := freshKeyPair(group)
		for trial := 0; trial < 20; trial++ {
			sigma := make([]int, n)
			for i := range sigma {
				sigma[i] = i
			}
			mrand.Shuffle(n, func(i, j int) { sigma[i], sigma[j] = sigma[j], sigma[i] })

			net, err := waksman.Configure(sigma)
			Expect(err).NotTo(HaveOccurred())

			in := make([]elgamal.Ciphertext, n)
			for i := range in {
				m, err := encode.Encode(group, []byte{byte(i)})
				Expect(err).NotTo(HaveOccurred())
				in[i], err = elgamal.Encrypt(pk, m, rand.Reader)
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := waksman.Apply(net, pk, in, rand.Reader)
			Expect(err).NotTo(HaveOccurred())
			Expect(verifier.VerifyBatch(pk, result.Columns, result.Proofs)).To(Succeed())

			out := result.Columns[len(result.Columns)-1]
			for x := 0; x < n; x++ {
				got, err := encode.Decode(group, elgamal.Decrypt(sk, out[sigma[x]]))
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal([]byte{byte(x)}))
			}
		}
	})
})

func freshKeyPair(group curve.Curve) (curve.Scalar, elgamal.PublicKey) {
	sk := group.NewScalar().SetRandom(rand.Reader)
	return sk, elgamal.PublicKey{Group: group, H: sk.ActOnBase()}
}

func serverName(i int) string {
	return []string{"mix-1", "mix-2", "mix-3"}[i]
}

func pointsFromStrings(group curve.Curve, msgs []string) []curve.Point {
	out := make([]curve.Point, len(msgs))
	for i, m := range msgs {
		p, err := encode.Encode(group, []byte(m))
		Expect(err).NotTo(HaveOccurred())
		out[i] = p
	}
	return out
}

func countsToMap(counts []tally.Count) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Value] = c.N
	}
	return m
}

func pubKeyOf(sk sig.PrivateKey) sig.PublicKey {
	return sk.Public().(sig.PublicKey)
}
