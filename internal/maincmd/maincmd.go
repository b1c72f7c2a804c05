// Package maincmd holds the logic behind each loxcraft subcommand,
// factored out of cmd/loxcraft so it can be golden-file tested without
// shelling out to a built binary, the way the teacher's internal/maincmd
// backs cmd/nenuphar.
package maincmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/loxcraft/loxcraft/internal/config"
	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/compiler"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/evaluator"
	"github.com/loxcraft/loxcraft/lang/importer"
	"github.com/loxcraft/loxcraft/lang/machine"
	"github.com/loxcraft/loxcraft/lang/parser"
	"github.com/loxcraft/loxcraft/lang/scanner"
	"github.com/loxcraft/loxcraft/lang/token"
)

// Tokenize implements the `tokenize` subcommand: it prints each non-comment
// token of src to stdout and any lexer diagnostics to stderr, returning the
// process exit code (0 or 65).
func Tokenize(stdout, stderr io.Writer, src string) int {
	toks, errs := scanner.Tokenize(src)
	for _, tok := range toks {
		if tok.Kind == token.COMMENT {
			continue
		}
		fmt.Fprintln(stdout, formatToken(tok))
	}
	for _, e := range errs {
		fmt.Fprintln(stderr, e)
	}
	if len(errs) > 0 {
		return 65
	}
	return 0
}

// formatToken renders a token as "KIND lexeme literal": NUMBER literals in
// the parse pretty-printer's forced-"N.0" form, STRING literals as the raw
// decoded text, everything else as the word "null".
func formatToken(tok token.Token) string {
	lit := "null"
	switch v := tok.Literal.(type) {
	case float64:
		lit = ast.FormatNumber(v)
	case string:
		lit = v
	}
	lexeme := tok.Lexeme
	if tok.Kind == token.EOF {
		lexeme = ""
	}
	return fmt.Sprintf("%s %s %s", tok.Kind.String(), lexeme, lit)
}

func parseSource(stderr io.Writer, src string) (*ast.Program, bool) {
	toks, errs := scanner.Tokenize(src)
	prog, perrs := parser.Parse(toks)
	for _, e := range errs {
		fmt.Fprintln(stderr, e)
	}
	for _, e := range perrs {
		fmt.Fprintln(stderr, e)
	}
	return prog, len(errs) == 0 && len(perrs) == 0
}

// Parse implements the `parse` subcommand: one pretty-printed statement per
// line, prefix-parenthesized the way ast.PrintStmt renders it.
func Parse(stdout, stderr io.Writer, src string) int {
	prog, ok := parseSource(stderr, src)
	if !ok {
		return 65
	}
	for _, stmt := range prog.Stmts {
		fmt.Fprintln(stdout, ast.PrintStmt(stmt))
	}
	return 0
}

// Evaluate implements the `evaluate` subcommand: the tree-walk evaluator
// runs with top-level expression results printed, per spec.
func Evaluate(stdout, stderr io.Writer, src string) int {
	prog, ok := parseSource(stderr, src)
	if !ok {
		return 65
	}
	reg := builtins.New(stdout)
	ev := evaluator.New(reg, stdout)
	if err := ev.Run(prog, environment.New(), true); err != nil {
		return exitForEvalError(stderr, err)
	}
	return 0
}

// Run implements the `run` subcommand: imports are resolved relative to
// path's directory before the evaluator runs silently.
func Run(stdout, stderr io.Writer, src, path string) int {
	prog, ok := parseSource(stderr, src)
	if !ok {
		return 65
	}
	prog, err := importer.Load(prog, filepath.Dir(path))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 70
	}
	reg := builtins.New(stdout)
	ev := evaluator.New(reg, stdout)
	if err := ev.Run(prog, environment.New(), false); err != nil {
		return exitForEvalError(stderr, err)
	}
	return 0
}

func exitForEvalError(stderr io.Writer, err error) int {
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		fmt.Fprintln(stderr, rerr.Error())
		for _, frame := range rerr.Frames {
			fmt.Fprintf(stderr, "  at %s\n", frame)
		}
		return rerr.ExitCode
	}
	fmt.Fprintln(stderr, err)
	return 70
}

func compileSource(stdout, stderr io.Writer, src string) (*compiler.Bytecode, *builtins.Registry, bool) {
	prog, ok := parseSource(stderr, src)
	if !ok {
		return nil, nil, false
	}
	reg := builtins.New(stdout)
	bc, err := compiler.New(reg).Compile(prog)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return nil, nil, false
	}
	return bc, reg, true
}

// Compile implements the `compile` subcommand: src is compiled to
// bytecode, loaded with cfg's limits, and run in the VM.
func Compile(stdout, stderr io.Writer, src string, cfg config.Config) int {
	bc, reg, ok := compileSource(stdout, stderr, src)
	if !ok {
		return 65
	}
	var out bytes.Buffer
	m := machine.NewWithLimits(bc, reg, &out, cfg.GlobalsSize, cfg.StackSize, cfg.MaxCallDepth, cfg.FramePoolSize)
	runErr := m.Run()
	stdout.Write(out.Bytes())
	if runErr != nil {
		var exitErr *machine.ExitError
		if errors.As(runErr, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintln(stderr, runErr)
		return 70
	}
	return 0
}

// Dump implements the `dump` subcommand: src is compiled and its builtin
// symbol table, constant pool, and instruction vector are printed.
func Dump(stdout, stderr io.Writer, src string) int {
	bc, reg, ok := compileSource(stdout, stderr, src)
	if !ok {
		return 65
	}
	dumpSymbols(stdout, reg, bc)
	dumpConstants(stdout, bc)
	dumpInstructions(stdout, bc)
	return 0
}

func dumpSymbols(stdout io.Writer, reg *builtins.Registry, bc *compiler.Bytecode) {
	fmt.Fprintln(stdout, "== builtins ==")
	for _, name := range reg.Names() {
		fmt.Fprintf(stdout, "  %s\n", name)
	}
	fmt.Fprintln(stdout, "== globals ==")
	for _, name := range bc.GlobalNames {
		fmt.Fprintf(stdout, "  %s\n", name)
	}
}

func dumpConstants(stdout io.Writer, bc *compiler.Bytecode) {
	fmt.Fprintln(stdout, "== constants ==")
	for i, c := range bc.Constants {
		fmt.Fprintf(stdout, "%4d %-12s %s\n", i, c.Type(), c.String())
	}
}

// dumpInstructions disassembles the flat instruction vector one line per
// slot. Closure is the only opcode carrying a second operand (constant
// index plus free-variable count), so it gets special-cased rather than
// folded into opcodeHasOperand.
func dumpInstructions(stdout io.Writer, bc *compiler.Bytecode) {
	fmt.Fprintln(stdout, "== instructions ==")
	for i, insn := range bc.Instructions {
		marker := " "
		if i == bc.EntryPoint {
			marker = ">"
		}
		line := fmt.Sprintf("%s%4d %s", marker, i, insn.Op)
		switch {
		case insn.Op == compiler.Closure:
			line += fmt.Sprintf(" %d %d", insn.Operand, insn.Operand2)
		case opcodeHasOperand(insn.Op):
			line += fmt.Sprintf(" %d", insn.Operand)
		}
		fmt.Fprintln(stdout, line)
	}
}

// opcodeHasOperand mirrors lang/compiler's unexported hasOperand table for
// the subset Dump needs to render; the compiler package doesn't export
// disassembly support itself.
func opcodeHasOperand(op compiler.Opcode) bool {
	switch op {
	case compiler.LoadConstant, compiler.GetGlobal, compiler.SetGlobal,
		compiler.GetLocal, compiler.SetLocal, compiler.GetFree,
		compiler.GetBuiltin, compiler.Call, compiler.Jump,
		compiler.JumpIfFalse, compiler.Assert, compiler.Exit,
		compiler.Print, compiler.MakeArray, compiler.MakeHash,
		compiler.NewInstance:
		return true
	default:
		return false
	}
}
