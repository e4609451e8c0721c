package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
	"github.com/datenlord/wbpf-userspace/wasm"
)

var runCmd = &cobra.Command{
	Use:   "run FILE.wasm [args...]",
	Short: "Invoke a guest compiled to WebAssembly",
	Long: `Run an exported function of a wbpf guest built for WebAssembly.

The guest links against the host ABI exported from the "env" module:
wbpf_host_complete, callByName and extAdd. Bind names for callByName with
--resolve NAME=VALUE (repeatable). Arguments are passed as unsigned integers.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().String("entry", "entry", "Exported function to invoke")
	runCmd.Flags().Duration("timeout", 30*time.Second, "Invocation timeout")
	runCmd.Flags().String("memory", "", "Memory limit: 1mb, 16mb, 64mb, 256mb")
	runCmd.Flags().Bool("no-cache", false, "Disable compilation cache")
	runCmd.Flags().StringSlice("resolve", nil, "Bind NAME=VALUE for callByName (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func parseResolveBindings(specs []string) (*hostcall.Registry, error) {
	registry := hostcall.NewRegistry()
	for _, spec := range specs {
		name, valueStr, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid binding %q (expected NAME=VALUE)", spec)
		}
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %v", spec, err)
		}
		registry.RegisterValue(name, value)
	}
	return registry, nil
}

func runRun(cmd *cobra.Command, args []string) {
	entry, _ := cmd.Flags().GetString("entry")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	memoryLimit, _ := cmd.Flags().GetString("memory")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	bindings, _ := cmd.Flags().GetStringSlice("resolve")

	registry, err := parseResolveBindings(bindings)
	if err != nil {
		fatalf("%v", err)
	}

	guestArgs := make([]uint64, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			fatalf("invalid argument %q: %v", arg, err)
		}
		guestArgs = append(guestArgs, v)
	}

	var rtOpts []wasm.RuntimeOption
	if !noCache {
		rtOpts = append(rtOpts, wasm.WithDiskCache())
	}
	if pages := parseMemoryLimit(memoryLimit); pages > 0 {
		rtOpts = append(rtOpts, wasm.WithMemoryLimit(pages))
	}

	rt, err := wasm.New(registry, rtOpts...)
	if err != nil {
		fatalf("%v", err)
	}
	defer rt.Close()

	result := rt.InvokeWith(context.Background(), args[0], entry, guestArgs,
		wasm.WithTimeout(timeout))

	if result.Output != "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Output)
	}
	if result.Error != nil {
		fatalf("%v", result.Error)
	}

	switch result.Outcome {
	case program.OutcomeCompleted:
		fmt.Fprintf(cmd.OutOrStdout(), "completed in %v\n", result.Duration)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "returned %v in %v\n", result.Values, result.Duration)
	}
}
