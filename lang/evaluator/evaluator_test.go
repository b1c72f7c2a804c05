package evaluator_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/environment"
	"github.com/loxcraft/loxcraft/lang/evaluator"
	"github.com/loxcraft/loxcraft/lang/parser"
	"github.com/loxcraft/loxcraft/lang/scanner"
)

func run(t *testing.T, src string) string {
	t.Helper()
	toks, errs := scanner.Tokenize(src)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	var out bytes.Buffer
	ev := evaluator.New(builtins.New(&out), &out)
	err := ev.Run(prog, environment.New(), false)
	require.NoError(t, err)
	return out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7", run(t, "print 1 + 2 * 3;"))
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "foobar", run(t, `var a = "foo"; var b = "bar"; print a + b;`))
}

func TestRecursiveFunction(t *testing.T) {
	src := `fun f(n) { if (n == 0) { return 1; } return n * f(n - 1); } print f(5);`
	require.Equal(t, "120", run(t, src))
}

func TestClassInitAndMethod(t *testing.T) {
	src := `class C { init(x) { this.x = x; } get() { return this.x; } } var c = new C(7); print c.get();`
	require.Equal(t, "7", run(t, src))
}

func TestHashAssignAndForIn(t *testing.T) {
	src := `var h = {"a": 1, "b": 2}; h["c"] = 3; for (var k in h) { print k; }`
	out := run(t, src)
	require.Contains(t, out, "a")
	require.Contains(t, out, "b")
	require.Contains(t, out, "c")
}

func TestAssertFailureReturnsRuntimeError(t *testing.T) {
	toks, errs := scanner.Tokenize(`assert 1 > 2, "nope";`)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	var out bytes.Buffer
	ev := evaluator.New(builtins.New(&out), &out)
	err := ev.Run(prog, environment.New(), false)
	require.Error(t, err)

	var rerr *evaluator.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, 70, rerr.ExitCode)
	require.Contains(t, out.String(), "nope")
}

func TestUndefinedVariableExits70(t *testing.T) {
	toks, errs := scanner.Tokenize(`print missing;`)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	ev := evaluator.New(builtins.New(&bytes.Buffer{}), &bytes.Buffer{})
	err := ev.Run(prog, environment.New(), false)
	require.Error(t, err)

	var rerr *evaluator.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, 70, rerr.ExitCode)
}

func TestClosureCapturesByReference(t *testing.T) {
	src := `var x = 1; fun get() { return x; } x = 2; print get();`
	require.Equal(t, "2", run(t, src))
}

func TestSwitchNoFallthrough(t *testing.T) {
	src := `switch 2 { case 1: print "one"; case 2: print "two"; default: print "other"; }`
	require.Equal(t, "two", run(t, src))
}

func TestEvaluateTopLevelPrintsExpressionResults(t *testing.T) {
	toks, errs := scanner.Tokenize(`1 + 1;`)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	var out bytes.Buffer
	ev := evaluator.New(builtins.New(&out), &out)
	require.NoError(t, ev.Run(prog, environment.New(), true))
	require.Equal(t, "2\n", out.String())
}
