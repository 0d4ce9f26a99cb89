package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	trustees  int
	threshold int
	batchSize int
	verbose   bool

	rootCmd = &cobra.Command{
		Use:   "mixnet-cli",
		Short: "CLI tool for the verifiable re-encryption mixnet",
		Long: `A tool for driving the voting mixnet end to end: trustee key
generation, mix-server batch production, batch verification, and
threshold decryption of a final tally.`,
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Run dealer-free threshold key generation among the trustees",
		RunE:  runKeygen,
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run an end-to-end demo: keygen, encrypt a batch, mix it through several servers, verify, and tally",
		RunE:  runDemo,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark mix-batch production and verification for the given batch size",
		RunE:  runBench,
	}

	mixCmd = &cobra.Command{
		Use:   "mix",
		Short: "Run one mix server against a fresh key and write the signed batch to disk",
		RunE:  runMix,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Re-verify a signed batch written by mix",
		RunE:  runVerify,
	}

	decryptCmd = &cobra.Command{
		Use:   "decrypt <ballot-choice-byte>",
		Short: "Run trustee key generation and recover one ciphertext's plaintext by threshold decryption",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecrypt,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	keygenCmd.Flags().IntVarP(&trustees, "trustees", "n", 5, "Number of trustees")
	keygenCmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "Decryption threshold")

	demoCmd.Flags().IntVarP(&trustees, "trustees", "n", 5, "Number of trustees")
	demoCmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "Decryption threshold")
	demoCmd.Flags().IntVarP(&batchSize, "batch", "b", 16, "Batch size (must be a power of two)")

	benchCmd.Flags().IntVarP(&batchSize, "batch", "b", 64, "Batch size (must be a power of two)")

	mixCmd.Flags().IntVarP(&batchSize, "batch", "b", 16, "Batch size (must be a power of two)")
	mixCmd.Flags().StringVar(&mixServerID, "id", "mix-1", "Mix server identifier")
	mixCmd.Flags().StringVarP(&mixOutFile, "out", "o", "mix-batch.bin", "Output file for the signed batch")
	mixCmd.Flags().StringVar(&mixPubKeyOut, "pubkey-out", "mixnet-pubkey.hex", "Output file for the hex-encoded ElGamal public key")

	verifyCmd.Flags().StringVarP(&verifyInFile, "in", "i", "mix-batch.bin", "Signed batch file to verify")
	verifyCmd.Flags().StringVar(&verifyPubKeyFile, "pubkey", "mixnet-pubkey.hex", "Hex-encoded ElGamal public key file")

	decryptCmd.Flags().IntVarP(&trustees, "trustees", "n", 5, "Number of trustees")
	decryptCmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "Decryption threshold")

	rootCmd.AddCommand(keygenCmd, mixCmd, verifyCmd, decryptCmd, benchCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
