package parser

import (
	"strconv"

	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/token"
)

func precedenceOf(k token.Kind) ast.Precedence {
	switch k {
	case token.AMP_AMP, token.PIPE_PIPE:
		return ast.And
	case token.EQUAL_EQUAL, token.BANG_EQUAL:
		return ast.Equals
	case token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return ast.LessGreater
	case token.PLUS, token.MINUS:
		return ast.Plus
	case token.STAR, token.SLASH, token.PERCENT:
		return ast.Star
	case token.LPAREN:
		return ast.Call
	case token.LBRACK:
		return ast.Index
	case token.DOT:
		return ast.Class
	default:
		return ast.Lowest
	}
}

// parseExpr implements Pratt/precedence-climbing parsing: it reads a
// prefix expression, then consumes infix operators whose precedence
// exceeds minPrec.
func (p *Parser) parseExpr(minPrec ast.Precedence) (ast.Expr, bool) {
	left, ok := p.parsePrefix()
	if !ok {
		return nil, false
	}

	for precedenceOf(p.cur.Kind) > minPrec {
		var infixOK bool
		left, infixOK = p.parseInfix(left)
		if !infixOK {
			return nil, false
		}
	}
	return left, true
}

func (p *Parser) parsePrefix() (ast.Expr, bool) {
	switch {
	case p.match(token.NUMBER):
		return &ast.NumberLit{Value: p.prev.Literal.(float64)}, true
	case p.match(token.STRING):
		return &ast.StringLit{Value: p.prev.Literal.(string)}, true
	case p.match(token.TRUE):
		return &ast.BoolLit{Value: true}, true
	case p.match(token.FALSE):
		return &ast.BoolLit{Value: false}, true
	case p.match(token.NIL):
		return &ast.NilLit{}, true
	case p.check(token.THIS):
		return p.parseThisExpr()
	case p.match(token.IDENTIFIER):
		return &ast.IdentExpr{Name: p.prev.Lexeme}, true
	case p.match(token.LPAREN):
		return p.parseGrouping()
	case p.match(token.LBRACK):
		return p.parseArrayLit()
	case p.match(token.LBRACE):
		return p.parseHashLit()
	case p.check(token.MINUS), p.check(token.BANG), p.check(token.PLUS):
		p.advance()
		op := p.prev.Lexeme
		right, ok := p.parseExpr(ast.Prefix)
		if !ok {
			return nil, false
		}
		return &ast.PrefixExpr{Op: op, Right: right}, true
	case p.match(token.NEW):
		return p.parseClassInit()
	case p.check(token.IF):
		p.advance()
		return p.parseIfExpr()
	case p.match(token.FUN):
		return p.parseFunctionExpr()
	case p.match(token.PRINT):
		return p.parsePrintExpr()
	default:
		p.errorf("Expect expression.")
		return nil, false
	}
}

func (p *Parser) parseGrouping() (ast.Expr, bool) {
	e, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	if !p.expect(token.RPAREN, "')' after expression") {
		return nil, false
	}
	return &ast.GroupingExpr{X: e}, true
}

func (p *Parser) parseArrayLit() (ast.Expr, bool) {
	lit := &ast.ArrayLit{}
	for !p.check(token.RBRACK) {
		e, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		lit.Elems = append(lit.Elems, e)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RBRACK, "']' after array elements") {
		return nil, false
	}
	return lit, true
}

func (p *Parser) parseHashLit() (ast.Expr, bool) {
	lit := &ast.HashLit{}
	for !p.check(token.RBRACE) {
		key, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		if !p.expect(token.COLON, "':' after hash key") {
			return nil, false
		}
		val, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		lit.Entries = append(lit.Entries, ast.HashEntry{Key: key, Value: val})
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RBRACE, "'}' after hash entries") {
		return nil, false
	}
	return lit, true
}

func (p *Parser) parseThisExpr() (ast.Expr, bool) {
	p.advance() // consume 'this'
	if !p.expect(token.DOT, "'.' after 'this'") {
		return nil, false
	}
	if !p.check(token.IDENTIFIER) {
		p.errorf("Expect property name after 'this.'.")
		return nil, false
	}
	name := p.cur.Lexeme
	p.advance()
	if p.match(token.LPAREN) {
		args, ok := p.parseArgList()
		if !ok {
			return nil, false
		}
		return &ast.ThisCallExpr{Method: name, Args: args}, true
	}
	return &ast.ThisExpr{Field: name}, true
}

func (p *Parser) parseClassInit() (ast.Expr, bool) {
	if !p.check(token.IDENTIFIER) {
		p.errorf("Expect class name after 'new'.")
		return nil, false
	}
	name := p.cur.Lexeme
	p.advance()
	if !p.expect(token.LPAREN, "'(' after class name") {
		return nil, false
	}
	args, ok := p.parseArgList()
	if !ok {
		return nil, false
	}
	return &ast.ClassInitExpr{ClassName: name, Args: args}, true
}

func (p *Parser) parseFunctionExpr() (ast.Expr, bool) {
	params, ok := p.parseParamList()
	if !ok {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ast.FunctionExpr{Params: params, Body: body}, true
}

func (p *Parser) parsePrintExpr() (ast.Expr, bool) {
	pr := &ast.PrintExpr{}
	for {
		e, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		pr.Args = append(pr.Args, e)
		if !p.match(token.COMMA) {
			break
		}
	}
	return pr, true
}

// parseArgList parses a call argument list up to and including the closing
// ')'; the opening '(' must already have been consumed.
func (p *Parser) parseArgList() ([]ast.Expr, bool) {
	var args []ast.Expr
	for !p.check(token.RPAREN) {
		e, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		args = append(args, e)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN, "')' after arguments") {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseInfix(left ast.Expr) (ast.Expr, bool) {
	switch p.cur.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQUAL_EQUAL, token.BANG_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.AMP_AMP, token.PIPE_PIPE:
		op := p.cur.Lexeme
		prec := precedenceOf(p.cur.Kind)
		p.advance()
		right, ok := p.parseExpr(prec)
		if !ok {
			return nil, false
		}
		return &ast.InfixExpr{Left: left, Op: op, Right: right}, true

	case token.LPAREN:
		p.advance()
		args, ok := p.parseArgList()
		if !ok {
			return nil, false
		}
		return &ast.CallExpr{Callee: left, Args: args}, true

	case token.LBRACK:
		p.advance()
		idx, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		if !p.expect(token.RBRACK, "']' after index") {
			return nil, false
		}
		return &ast.IndexExpr{Target: left, Index: idx}, true

	case token.DOT:
		p.advance()
		if _, ok := left.(*ast.IdentExpr); !ok {
			p.errorf("'.' requires an identifier receiver.")
			return nil, false
		}
		if !p.check(token.IDENTIFIER) {
			p.errorf("Expect property name after '.'.")
			return nil, false
		}
		name := p.cur.Lexeme
		p.advance()
		if p.match(token.LPAREN) {
			args, ok := p.parseArgList()
			if !ok {
				return nil, false
			}
			return &ast.ClassCallExpr{Receiver: left, Method: name, Args: args}, true
		}
		return &ast.ClassGetExpr{Receiver: left, Field: name}, true

	default:
		p.errorf("Unexpected token in expression.")
		return nil, false
	}
}

// parseNumber parses a NUMBER token's lexeme as a float64; nothing in the
// module calls it.
func parseNumber(lexeme string) (float64, error) {
	return strconv.ParseFloat(lexeme, 64)
}
