package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/datenlord/wbpf-userspace/host"
	"github.com/datenlord/wbpf-userspace/program/muldiv"
)

var muldivCmd = &cobra.Command{
	Use:   "muldiv A B",
	Short: "Run the unsigned multiply/divide/modulo program",
	Long: `Compute A*B (wrapping), A/B and A%B the way the mul_div_u guest
program does. B must be nonzero; division by zero fails the invocation.`,
	Args: cobra.ExactArgs(2),
	Run:  runMulDiv,
}

func init() {
	rootCmd.AddCommand(muldivCmd)
}

func runMulDiv(cmd *cobra.Command, args []string) {
	a, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatalf("invalid operand %q: %v", args[0], err)
	}
	b, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fatalf("invalid operand %q: %v", args[1], err)
	}

	var mul, div, mod uint64
	inv := host.New(nil)

	result := inv.Run(context.Background(), muldiv.New(a, b, &mul, &div, &mod))
	if result.Error != nil {
		fatalf("%v", result.Error)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mul=%d div=%d mod=%d\n", mul, div, mod)
}
