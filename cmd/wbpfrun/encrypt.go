package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/datenlord/wbpf-userspace/host"
	"github.com/datenlord/wbpf-userspace/program/aescbc"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [file]",
	Short: "Encrypt a file in place with AES-128-CBC",
	Long: `Encrypt a file with AES-128-CBC, the way the aes guest program does:
the whole buffer is transformed in place and the invocation ends with the
completion handoff.

The file length must be a multiple of 16 bytes; no padding is applied.`,
	Args: cobra.ExactArgs(1),
	Run:  runEncrypt,
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [file]",
	Short: "Decrypt a file encrypted with the encrypt command",
	Args:  cobra.ExactArgs(1),
	Run:   runDecrypt,
}

func init() {
	for _, cmd := range []*cobra.Command{encryptCmd, decryptCmd} {
		cmd.Flags().String("key", "", "16-byte key as hex (required)")
		cmd.Flags().String("iv", "", "16-byte IV as hex (required)")
		cmd.Flags().StringP("output", "o", "", "Output file (default: overwrite input)")
		cmd.Flags().Duration("timeout", 30*time.Second, "Invocation timeout")
		cmd.MarkFlagRequired("key")
		cmd.MarkFlagRequired("iv")
	}
	rootCmd.AddCommand(encryptCmd, decryptCmd)
}

func cipherFromFlags(cmd *cobra.Command) *aescbc.Cipher {
	keyHex, _ := cmd.Flags().GetString("key")
	ivHex, _ := cmd.Flags().GetString("iv")

	key, err := parseHexFlag("key", keyHex, aescbc.KeySize)
	if err != nil {
		fatalf("%v", err)
	}
	iv, err := parseHexFlag("iv", ivHex, aescbc.BlockSize)
	if err != nil {
		fatalf("%v", err)
	}

	c, err := aescbc.New(key, iv)
	if err != nil {
		fatalf("%v", err)
	}
	return c
}

func runEncrypt(cmd *cobra.Command, args []string) {
	keyHex, _ := cmd.Flags().GetString("key")
	ivHex, _ := cmd.Flags().GetString("iv")
	output, _ := cmd.Flags().GetString("output")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	key, err := parseHexFlag("key", keyHex, aescbc.KeySize)
	if err != nil {
		fatalf("%v", err)
	}
	iv, err := parseHexFlag("iv", ivHex, aescbc.BlockSize)
	if err != nil {
		fatalf("%v", err)
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	job, err := aescbc.NewJob(buf, key, iv)
	if err != nil {
		fatalf("%v", err)
	}

	inv := host.New(nil)
	result := inv.Run(context.Background(), job, host.WithTimeout(timeout))
	if result.Error != nil {
		fatalf("%v", result.Error)
	}

	if output == "" {
		output = args[0]
	}
	if err := os.WriteFile(output, buf, 0o644); err != nil {
		fatalf("%v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes encrypted (%s) in %v\n",
		output, len(buf), result.Outcome, result.Duration)
}

func runDecrypt(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	c := cipherFromFlags(cmd)

	buf, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("%v", err)
	}
	if err := c.DecryptBuffer(buf); err != nil {
		fatalf("%v", err)
	}

	if output == "" {
		output = args[0]
	}
	if err := os.WriteFile(output, buf, 0o644); err != nil {
		fatalf("%v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes decrypted\n", output, len(buf))
}
