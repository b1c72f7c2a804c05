// Package importer recursively resolves `import "name"` statements against
// a base directory, the way the original implementation's imports.rs loads
// sibling source files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/parser"
	"github.com/loxcraft/loxcraft/lang/scanner"
)

// Error wraps a failure to load or parse an imported file.
type Error struct {
	Module string
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("import %q: %v", e.Module, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Load walks prog's Import statements, recursively resolving each
// `{name}.lox` file relative to baseDir, and returns a new Program that is
// the concatenation of every transitively imported program (in discovery
// order, each imported at most once) followed by prog itself.
func Load(prog *ast.Program, baseDir string) (*ast.Program, error) {
	l := &loader{baseDir: baseDir, cache: make(map[string]bool)}
	var out []ast.Stmt
	for _, stmt := range prog.Stmts {
		imp, ok := stmt.(*ast.ImportStmt)
		if !ok {
			continue
		}
		stmts, err := l.load(imp.Module)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	out = append(out, prog.Stmts...)
	return &ast.Program{Stmts: out}, nil
}

type loader struct {
	baseDir string
	cache   map[string]bool // filename -> already loaded
}

func (l *loader) load(module string) ([]ast.Stmt, error) {
	path := filepath.Join(l.baseDir, module+".lox")
	if l.cache[path] {
		return nil, nil
	}
	l.cache[path] = true

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Module: module, Err: err}
	}

	toks, errs := scanner.Tokenize(string(src))
	if len(errs) > 0 {
		return nil, &Error{Module: module, Err: fmt.Errorf("%s", strings.Join(errs, "; "))}
	}
	prog, perrs := parser.Parse(toks)
	if len(perrs) > 0 {
		return nil, &Error{Module: module, Err: fmt.Errorf("%s", strings.Join(perrs, "; "))}
	}

	var out []ast.Stmt
	for _, stmt := range prog.Stmts {
		if imp, ok := stmt.(*ast.ImportStmt); ok {
			nested, err := l.load(imp.Module)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
	}
	out = append(out, prog.Stmts...)
	return out, nil
}
