// Package parser implements a Pratt parser that turns a token stream into
// an AST, reporting diagnostics without stopping the whole parse where
// recovery is possible.
package parser

import (
	"fmt"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/token"
)

// Parser consumes a fixed token slice (as produced by the scanner) and
// produces a Program.
type Parser struct {
	toks []token.Token
	pos  int // index into toks of the token after cur

	prev, cur, next token.Token
	errors          []string
}

// New returns a Parser ready to parse toks, which must end with an EOF
// token. Comment tokens are skipped transparently.
func New(toks []token.Token) *Parser {
	p := &Parser{toks: filterComments(toks)}
	// prime prev/cur/next
	p.advance()
	p.advance()
	return p
}

func filterComments(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.COMMENT {
			out = append(out, t)
		}
	}
	return out
}

// Parse scans toks into a Program. It always returns the statements
// successfully parsed so far, even when errors occurred, together with
// the diagnostics collected; the result is complete only when that list
// is empty.
func Parse(toks []token.Token) (*ast.Program, []string) {
	p := New(toks)
	return p.ParseProgram(), p.errors
}

// Errors returns the diagnostics collected during parsing.
func (p *Parser) Errors() []string { return p.errors }

// HasErrors reports whether any diagnostic was collected.
func (p *Parser) HasErrors() bool { return len(p.errors) > 0 }

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("[line %d] Error at '%s': %s", p.cur.Line, tokenLexeme(p.cur), msg))
}

func tokenLexeme(t token.Token) string {
	if t.Kind == token.EOF {
		return "end"
	}
	return t.Lexeme
}

func (p *Parser) advance() {
	p.prev = p.cur
	p.cur = p.next
	if p.pos < len(p.toks) {
		p.next = p.toks[p.pos]
		p.pos++
	} else {
		p.next = token.Token{Kind: token.EOF}
	}
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

// expect consumes the current token if it has kind k, reporting an error
// and returning false otherwise.
func (p *Parser) expect(k token.Kind, what string) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	p.errorf("expect %s.", what)
	return false
}

// ParseProgram parses statements until EOF, recovering at the next
// statement boundary after a parse error so one mistake doesn't swallow
// the rest of the file.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		stmt, ok := p.parseDeclaration()
		if !ok {
			p.synchronize()
			continue
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog
}

// synchronize discards tokens until a likely statement boundary, so the
// parser can keep reporting independent errors in the rest of the file.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.prev.Kind == token.SEMICOLON {
			return
		}
		switch p.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.IMPORT, token.ASSERT:
			return
		}
		p.advance()
	}
}
