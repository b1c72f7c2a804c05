package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/parser"
	"github.com/loxcraft/loxcraft/lang/scanner"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, errs := scanner.Tokenize(src)
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	return prog
}

func TestParsePrecedence(t *testing.T) {
	prog := parseSrc(t, "1 + 2 * 3;")
	require.Len(t, prog.Stmts, 1)
	es := prog.Stmts[0].(*ast.ExprStmt)
	infix := es.X.(*ast.InfixExpr)
	require.Equal(t, "+", infix.Op)
	require.IsType(t, &ast.NumberLit{}, infix.Left)
	rhs := infix.Right.(*ast.InfixExpr)
	require.Equal(t, "*", rhs.Op)
}

func TestParseVarDeclarationDefaultsToNil(t *testing.T) {
	prog := parseSrc(t, "var a;")
	v := prog.Stmts[0].(*ast.VarStmt)
	require.Equal(t, "a", v.Name)
	require.IsType(t, &ast.NilLit{}, v.Init)
}

func TestParseAssignmentTargets(t *testing.T) {
	prog := parseSrc(t, `a = 1; this.x = 2; h[k] = 3;`)
	require.Len(t, prog.Stmts, 3)
	require.IsType(t, &ast.IdentExpr{}, prog.Stmts[0].(*ast.AssignStmt).Target)
	require.IsType(t, &ast.ThisExpr{}, prog.Stmts[1].(*ast.AssignStmt).Target)
	require.IsType(t, &ast.IndexExpr{}, prog.Stmts[2].(*ast.AssignStmt).Target)
}

func TestParseClassWithInitAndMethod(t *testing.T) {
	prog := parseSrc(t, `class C { init(x) { this.x = x; } get() { return this.x; } }`)
	cls := prog.Stmts[0].(*ast.ClassStmt)
	require.Equal(t, "C", cls.Name)
	require.Len(t, cls.Methods, 2)
	require.Equal(t, "init", cls.Methods[0].Name)
	require.Equal(t, "get", cls.Methods[1].Name)
}

func TestParseForIn(t *testing.T) {
	prog := parseSrc(t, `for (var k in h) { print k; }`)
	fi := prog.Stmts[0].(*ast.ForInStmt)
	require.Equal(t, "k", fi.VarName)
}

func TestParseSwitch(t *testing.T) {
	prog := parseSrc(t, `switch x { case 1: print 1; default: print 0; }`)
	sw := prog.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 1)
	require.Len(t, sw.Default, 1)
}

func TestParseErrorRecoveryContinuesAfterBadStatement(t *testing.T) {
	toks, errs := scanner.Tokenize("var ;\nvar b = 1;")
	require.Empty(t, errs)
	prog, perrs := parser.Parse(toks)
	require.NotEmpty(t, perrs)
	require.Len(t, prog.Stmts, 1)
	require.Equal(t, "b", prog.Stmts[0].(*ast.VarStmt).Name)
}
