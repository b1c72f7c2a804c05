package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/importer"
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

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLoadResolvesSingleImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.lox", `var greeting = "hi";`)

	prog := parseSrc(t, `import "greet"; print greeting;`)
	out, err := importer.Load(prog, dir)
	require.NoError(t, err)

	require.Len(t, out.Stmts, 3)
	require.IsType(t, &ast.VarStmt{}, out.Stmts[0])
	require.IsType(t, &ast.ImportStmt{}, out.Stmts[1])
	require.IsType(t, &ast.ExprStmt{}, out.Stmts[2])
}

func TestLoadIsRecursiveAndCachesByFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.lox", `var base = 1;`)
	writeFile(t, dir, "mid.lox", `import "base"; var mid = 2;`)

	prog := parseSrc(t, `import "mid"; import "base"; print mid;`)
	out, err := importer.Load(prog, dir)
	require.NoError(t, err)

	var varNames []string
	for _, s := range out.Stmts {
		if v, ok := s.(*ast.VarStmt); ok {
			varNames = append(varNames, v.Name)
		}
	}
	// "base" must appear only once even though it is reachable both
	// transitively (via mid) and directly.
	require.Equal(t, []string{"base", "mid"}, varNames)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	prog := parseSrc(t, `import "missing";`)
	_, err := importer.Load(prog, dir)
	require.Error(t, err)
}

func TestLoadParseErrorIsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.lox", `var ;`)
	prog := parseSrc(t, `import "broken";`)
	_, err := importer.Load(prog, dir)
	require.Error(t, err)
}
