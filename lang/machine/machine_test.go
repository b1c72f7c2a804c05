package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/builtins"
	"github.com/loxcraft/loxcraft/lang/compiler"
	"github.com/loxcraft/loxcraft/lang/machine"
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
	reg := builtins.New(&out)
	c := compiler.New(reg)
	bc, err := c.Compile(prog)
	require.NoError(t, err)

	m := machine.New(bc, reg, &out, 1024, 1024)
	require.NoError(t, m.Run())
	return out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7", run(t, "print 1 + 2 * 3;"))
}

func TestGlobalVarAssignment(t *testing.T) {
	require.Equal(t, "3", run(t, "var a = 1; a = a + 2; print a;"))
}

func TestRecursiveFunction(t *testing.T) {
	src := `fun f(n) { if (n == 0) { return 1; } return n * f(n - 1); } print f(5);`
	require.Equal(t, "120", run(t, src))
}

func TestClosureCapturesFreeVariable(t *testing.T) {
	src := `
	fun makeAdder(x) {
		fun adder(y) { return x + y; }
		return adder;
	}
	var add5 = makeAdder(5);
	print add5(10);
	`
	require.Equal(t, "15", run(t, src))
}

func TestWhileLoop(t *testing.T) {
	src := `var i = 0; var sum = 0; while (i < 5) { sum = sum + i; i = i + 1; } print sum;`
	require.Equal(t, "10", run(t, src))
}

func TestForLoopAndCompoundAssign(t *testing.T) {
	src := `var sum = 0; for (var i = 0; i < 5; i = i + 1) { sum += i; } print sum;`
	require.Equal(t, "10", run(t, src))
}

func TestArrayIndexAndCompoundAssign(t *testing.T) {
	src := `var a = [1, 2, 3]; a[1] += 10; print a[1];`
	require.Equal(t, "12", run(t, src))
}

func TestHashIndexAssign(t *testing.T) {
	src := `var h = {"a": 1}; h["b"] = 2; print h["a"] + h["b"];`
	require.Equal(t, "3", run(t, src))
}

func TestClassInitFieldAndMethod(t *testing.T) {
	src := `
	class Counter {
		var count = 0;
		fun init(start) { this.count = start; }
		fun increment() { this.count = this.count + 1; return this.count; }
	}
	var c = new Counter(10);
	print c.increment();
	print c.increment();
	`
	require.Equal(t, "1112", run(t, src))
}

func TestIfExpressionBranches(t *testing.T) {
	src := `var x = 5; if (x > 10) { print "big"; } else if (x > 3) { print "mid"; } else { print "small"; }`
	require.Equal(t, "mid", run(t, src))
}

func TestSwitchNoFallthrough(t *testing.T) {
	src := `
	var x = 2;
	switch (x) {
	case 1:
		print "one";
	case 2:
		print "two";
	default:
		print "other";
	}
	`
	require.Equal(t, "two", run(t, src))
}

func TestAssertFailureExits3(t *testing.T) {
	toks, errs := scanner.Tokenize(`assert 1 > 2, "nope";`)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	var out bytes.Buffer
	reg := builtins.New(&out)
	bc, err := compiler.New(reg).Compile(prog)
	require.NoError(t, err)

	m := machine.New(bc, reg, &out, 1024, 1024)
	err = m.Run()
	var exitErr *machine.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Contains(t, out.String(), "nope")
}

func TestBuiltinLenCall(t *testing.T) {
	require.Equal(t, "3", run(t, `print len("abc");`))
}

func TestForInOverArray(t *testing.T) {
	src := `var total = 0; for (var x in [1, 2, 3]) { total += x; } print total;`
	require.Equal(t, "6", run(t, src))
}
