// Command loxcraft is the thin CLI shell around the core packages: it
// owns argument parsing, reading the source file, and writing final exit
// codes, none of which the core packages do themselves. It mirrors the
// teacher's cmd/nenuphar entry point in spirit (a tiny main delegating to
// an internal/maincmd package) but dispatches subcommands directly off
// os.Args rather than through github.com/mna/mainer, since outer-executable
// argument parsing is explicitly out of scope for the core.
package main

import (
	"fmt"
	"os"

	"github.com/loxcraft/loxcraft/internal/config"
	"github.com/loxcraft/loxcraft/internal/maincmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: loxcraft <tokenize|parse|evaluate|run|compile|dump> <path>")
		return 64
	}
	cmd, path := args[0], args[1]

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxcraft: %v\n", err)
		return 64
	}

	switch cmd {
	case "tokenize":
		return maincmd.Tokenize(os.Stdout, os.Stderr, string(src))
	case "parse":
		return maincmd.Parse(os.Stdout, os.Stderr, string(src))
	case "evaluate":
		return maincmd.Evaluate(os.Stdout, os.Stderr, string(src))
	case "run":
		return maincmd.Run(os.Stdout, os.Stderr, string(src), path)
	case "compile":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "loxcraft: %v\n", err)
			return 64
		}
		return maincmd.Compile(os.Stdout, os.Stderr, string(src), cfg)
	case "dump":
		return maincmd.Dump(os.Stdout, os.Stderr, string(src))
	default:
		fmt.Fprintf(os.Stderr, "loxcraft: unknown command %q\n", cmd)
		return 64
	}
}
