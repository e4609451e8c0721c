package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program/dispatch"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session with the name-dispatch program",
	Long: `Poke the name-dispatch program interactively. The data table and
name bindings persist for the lifetime of the session.

Commands:
  get I              read data table slot I (0-2)
  set I V            write V into slot I
  add A B            callAddPlusOne(A, B)
  resolve NAME V     bind NAME to V for callByName
  entry              run the entry point (needs "test" and "test2" bound)
  names              list bound names
  help               show this list
  exit               end the session

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.wbpfrun_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".wbpfrun_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "wbpf> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fatalf("initializing readline: %v", err)
	}
	defer rl.Close()

	registry := hostcall.NewRegistry()
	prog := dispatch.New()
	h := hostcall.NewHost(registry, func(a, b int32) int32 { return a + b })

	fmt.Fprintln(os.Stderr, "wbpfrun dispatch REPL (type 'help' for commands, Ctrl+D to exit)")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if out, err := evalReplLine(prog, registry, h, line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else if out != "" {
			fmt.Println(out)
		}
	}
}

func evalReplLine(prog *dispatch.Program, registry *hostcall.Registry, h *hostcall.Host, line string) (string, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "get":
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: get I")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", err
		}
		v, err := prog.Table().Get(i)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%#x", v), nil

	case "set":
		if len(fields) != 3 {
			return "", fmt.Errorf("usage: set I V")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", err
		}
		v, err := strconv.ParseUint(fields[2], 0, 64)
		if err != nil {
			return "", err
		}
		if err := prog.Table().Set(i, v); err != nil {
			return "", err
		}
		return "ok", nil

	case "add":
		if len(fields) != 3 {
			return "", fmt.Errorf("usage: add A B")
		}
		a, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return "", err
		}
		b, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return "", err
		}
		v, err := prog.CallAddPlusOne(context.Background(), h, int32(a), int32(b))
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(v)), nil

	case "resolve":
		if len(fields) != 3 {
			return "", fmt.Errorf("usage: resolve NAME V")
		}
		v, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return "", err
		}
		registry.RegisterValue(fields[1], v)
		return "ok", nil

	case "entry":
		v, err := prog.Entry(context.Background(), h)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil

	case "names":
		names := registry.List()
		if len(names) == 0 {
			return "(none)", nil
		}
		return strings.Join(names, " "), nil

	case "help":
		return "commands: get set add resolve entry names help exit", nil

	default:
		return "", fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}
