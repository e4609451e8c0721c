package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datenlord/wbpf-userspace/wasm"
)

var rootCmd = &cobra.Command{
	Use:   "wbpfrun",
	Short: "Userspace runner for wbpf guest programs",
	Long: `wbpfrun - Invoke wbpf guest programs from userspace.

The built-in programs (AES-CBC encryption, name dispatch, unsigned
mul/div/mod) run natively. Guest builds compiled to WebAssembly run under an
embedded runtime that provides the wbpf host ABI (wbpf_host_complete,
callByName, extAdd).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// parseHexFlag decodes a hex flag value and enforces its byte length.
func parseHexFlag(name, value string, wantLen int) ([]byte, error) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: invalid hex: %v", name, err)
	}
	if len(b) != wantLen {
		return nil, fmt.Errorf("--%s: need %d bytes, got %d", name, wantLen, len(b))
	}
	return b, nil
}

func parseMemoryLimit(s string) uint32 {
	switch strings.ToLower(s) {
	case "1mb":
		return wasm.MemoryLimit1MB
	case "16mb":
		return wasm.MemoryLimit16MB
	case "64mb":
		return wasm.MemoryLimit64MB
	case "256mb":
		return wasm.MemoryLimit256MB
	default:
		return 0 // use default
	}
}
