package compiler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/compiler"
	"github.com/loxcraft/loxcraft/lang/parser"
	"github.com/loxcraft/loxcraft/lang/scanner"
)

func compile(t *testing.T, src string) *compiler.Bytecode {
	t.Helper()
	toks, errs := scanner.Tokenize(src)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	reg := builtins.New(&bytes.Buffer{})
	bc, err := compiler.New(reg).Compile(prog)
	require.NoError(t, err)
	return bc
}

func TestGlobalNamesExcludesBuiltins(t *testing.T) {
	bc := compile(t, `var a = 1; var b = 2; print len("x");`)
	require.Equal(t, []string{"a", "b"}, bc.GlobalNames)
}

func TestConstantPoolDeduplicatesNothingButCollectsLiterals(t *testing.T) {
	bc := compile(t, `print 1; print "two"; print 1;`)
	require.Len(t, bc.Constants, 3)
	require.Equal(t, "number", bc.Constants[0].Type())
	require.Equal(t, "string", bc.Constants[1].Type())
	require.Equal(t, "number", bc.Constants[2].Type())
}

func TestEntryPointSkipsFunctionBodies(t *testing.T) {
	bc := compile(t, `fun f() { return 1; } print f();`)
	require.Less(t, 0, bc.EntryPoint, "function body is compiled before the top level and spliced ahead of it")
}

func TestAssignToFreeOrBuiltinIsCompileError(t *testing.T) {
	toks, errs := scanner.Tokenize(`fun f() { var x = 0; fun g() { x = 1; } return g; }`)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	reg := builtins.New(&bytes.Buffer{})
	_, err := compiler.New(reg).Compile(prog)
	require.Error(t, err)
}
