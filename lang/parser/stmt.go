package parser

import (
	"github.com/loxcraft/loxcraft/lang/ast"
	"github.com/loxcraft/loxcraft/lang/token"
)

func (p *Parser) parseDeclaration() (ast.Stmt, bool) {
	switch {
	case p.match(token.VAR):
		return p.parseVarStmt()
	case p.match(token.CLASS):
		return p.parseClassStmt()
	case p.match(token.FUN):
		return p.parseFunctionStmt()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseVarStmt() (ast.Stmt, bool) {
	if !p.check(token.IDENTIFIER) {
		p.errorf("Expect variable name.")
		return nil, false
	}
	name := p.cur.Lexeme
	p.advance()

	var init ast.Expr = &ast.NilLit{}
	if p.match(token.EQUAL) {
		e, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		init = e
	}
	p.match(token.SEMICOLON)
	return &ast.VarStmt{Name: name, Init: init}, true
}

func (p *Parser) parseFunctionStmt() (ast.Stmt, bool) {
	if !p.check(token.IDENTIFIER) {
		p.errorf("Expect function name.")
		return nil, false
	}
	name := p.cur.Lexeme
	p.advance()

	params, ok := p.parseParamList()
	if !ok {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}, true
}

func (p *Parser) parseParamList() ([]string, bool) {
	if !p.expect(token.LPAREN, "'(' after name") {
		return nil, false
	}
	var params []string
	for !p.check(token.RPAREN) {
		if !p.check(token.IDENTIFIER) {
			p.errorf("Expect parameter name.")
			return nil, false
		}
		params = append(params, p.cur.Lexeme)
		p.advance()
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN, "')' after parameters") {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseClassStmt() (ast.Stmt, bool) {
	if !p.check(token.IDENTIFIER) {
		p.errorf("Expect class name.")
		return nil, false
	}
	name := p.cur.Lexeme
	p.advance()

	if !p.expect(token.LBRACE, "'{' before class body") {
		return nil, false
	}
	cls := &ast.ClassStmt{Name: name}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch {
		case p.match(token.VAR):
			f, ok := p.parseVarStmt()
			if !ok {
				return nil, false
			}
			cls.Fields = append(cls.Fields, f.(*ast.VarStmt))
		case p.match(token.FUN), p.check(token.IDENTIFIER) && p.next.Kind == token.LPAREN:
			m, ok := p.parseFunctionStmt()
			if !ok {
				return nil, false
			}
			cls.Methods = append(cls.Methods, m.(*ast.FunctionStmt))
		default:
			p.errorf("Expect field or method declaration.")
			return nil, false
		}
	}
	if !p.expect(token.RBRACE, "'}' after class body") {
		return nil, false
	}
	return cls, true
}

func (p *Parser) parseBlock() (*ast.BlockStmt, bool) {
	if !p.expect(token.LBRACE, "'{'") {
		return nil, false
	}
	block := &ast.BlockStmt{}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt, ok := p.parseDeclaration()
		if !ok {
			p.synchronize()
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if !p.expect(token.RBRACE, "'}' after block") {
		return nil, false
	}
	return block, true
}

func (p *Parser) parseStatement() (ast.Stmt, bool) {
	switch {
	case p.match(token.SEMICOLON):
		return &ast.BlankStmt{}, true
	case p.check(token.LBRACE):
		return p.parseBlock()
	case p.match(token.IF):
		return p.parseIfStmt()
	case p.match(token.WHILE):
		return p.parseWhileStmt()
	case p.match(token.FOR):
		return p.parseForStmt()
	case p.match(token.SWITCH):
		return p.parseSwitchStmt()
	case p.match(token.RETURN):
		return p.parseReturnStmt()
	case p.match(token.IMPORT):
		return p.parseImportStmt()
	case p.match(token.ASSERT):
		return p.parseAssertStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseIfStmt() (ast.Stmt, bool) {
	ie, ok := p.parseIfExpr()
	if !ok {
		return nil, false
	}
	return &ast.ExprStmt{X: ie}, true
}

func (p *Parser) parseIfExpr() (ast.Expr, bool) {
	if !p.expect(token.LPAREN, "'(' after 'if'") {
		return nil, false
	}
	cond, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	if !p.expect(token.RPAREN, "')' after condition") {
		return nil, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}

	ifExpr := &ast.IfExpr{Cond: cond, Then: then}
	for p.check(token.ELSE) {
		save := p.pos
		_ = save
		p.advance() // consume 'else'
		if p.match(token.IF) {
			if !p.expect(token.LPAREN, "'(' after 'if'") {
				return nil, false
			}
			econd, ok := p.parseExpr(ast.Lowest)
			if !ok {
				return nil, false
			}
			if !p.expect(token.RPAREN, "')' after condition") {
				return nil, false
			}
			ethen, ok := p.parseBlock()
			if !ok {
				return nil, false
			}
			ifExpr.ElseIfs = append(ifExpr.ElseIfs, ast.ElseIf{Cond: econd, Then: ethen})
			continue
		}
		els, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		ifExpr.Else = els
		break
	}
	return ifExpr, true
}

func (p *Parser) parseWhileStmt() (ast.Stmt, bool) {
	if !p.expect(token.LPAREN, "'(' after 'while'") {
		return nil, false
	}
	cond, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	if !p.expect(token.RPAREN, "')' after condition") {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, true
}

func (p *Parser) parseForStmt() (ast.Stmt, bool) {
	if !p.expect(token.LPAREN, "'(' after 'for'") {
		return nil, false
	}

	if p.match(token.VAR) {
		if p.next.Kind == token.IN {
			// for (var IDENT in EXPR) BLOCK
			if !p.check(token.IDENTIFIER) {
				p.errorf("Expect loop variable name.")
				return nil, false
			}
			name := p.cur.Lexeme
			p.advance()
			p.advance() // consume 'in'
			iter, ok := p.parseExpr(ast.Lowest)
			if !ok {
				return nil, false
			}
			if !p.expect(token.RPAREN, "')' after for clauses") {
				return nil, false
			}
			body, ok := p.parseBlock()
			if !ok {
				return nil, false
			}
			return &ast.ForInStmt{VarName: name, Iter: iter, Body: body}, true
		}

		initStmt, ok := p.parseVarStmt()
		if !ok {
			return nil, false
		}
		return p.parseCStyleForRest(initStmt)
	}

	var initStmt ast.Stmt
	if !p.match(token.SEMICOLON) {
		e, ok := p.parseExprOrAssignStmtNoSemi()
		if !ok {
			return nil, false
		}
		initStmt = e
		if !p.expect(token.SEMICOLON, "';' after loop initializer") {
			return nil, false
		}
	}
	return p.parseCStyleForRest(initStmt)
}

func (p *Parser) parseCStyleForRest(init ast.Stmt) (ast.Stmt, bool) {
	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		c, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		cond = c
	}
	if !p.expect(token.SEMICOLON, "';' after loop condition") {
		return nil, false
	}

	var step ast.Stmt
	if !p.check(token.RPAREN) {
		s, ok := p.parseExprOrAssignStmtNoSemi()
		if !ok {
			return nil, false
		}
		step = s
	}
	if !p.expect(token.RPAREN, "')' after for clauses") {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ast.ForStmt{Init: init, Cond: cond, Step: step, Body: body}, true
}

func (p *Parser) parseSwitchStmt() (ast.Stmt, bool) {
	tag, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	if !p.expect(token.LBRACE, "'{' after switch value") {
		return nil, false
	}
	sw := &ast.SwitchStmt{Tag: tag}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch {
		case p.match(token.CASE):
			val, ok := p.parseExpr(ast.Lowest)
			if !ok {
				return nil, false
			}
			if !p.expect(token.COLON, "':' after case value") {
				return nil, false
			}
			body, ok := p.parseCaseBody()
			if !ok {
				return nil, false
			}
			sw.Cases = append(sw.Cases, &ast.CaseClause{Value: val, Body: body})
		case p.match(token.DEFAULT):
			if !p.expect(token.COLON, "':' after 'default'") {
				return nil, false
			}
			body, ok := p.parseCaseBody()
			if !ok {
				return nil, false
			}
			sw.Default = body
		default:
			p.errorf("Expect 'case' or 'default'.")
			return nil, false
		}
	}
	if !p.expect(token.RBRACE, "'}' after switch body") {
		return nil, false
	}
	return sw, true
}

func (p *Parser) parseCaseBody() ([]ast.Stmt, bool) {
	var stmts []ast.Stmt
	for !p.check(token.CASE) && !p.check(token.DEFAULT) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt, ok := p.parseDeclaration()
		if !ok {
			return nil, false
		}
		stmts = append(stmts, stmt)
	}
	return stmts, true
}

func (p *Parser) parseReturnStmt() (ast.Stmt, bool) {
	var val ast.Expr = &ast.NilLit{}
	if !p.check(token.SEMICOLON) {
		e, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		val = e
	}
	p.match(token.SEMICOLON)
	return &ast.ReturnStmt{Value: val}, true
}

func (p *Parser) parseImportStmt() (ast.Stmt, bool) {
	if !p.check(token.STRING) {
		p.errorf("Expect module name string after 'import'.")
		return nil, false
	}
	name := p.cur.Literal.(string)
	p.advance()
	p.match(token.SEMICOLON)
	return &ast.ImportStmt{Module: name}, true
}

func (p *Parser) parseAssertStmt() (ast.Stmt, bool) {
	cond, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	var msg ast.Expr
	if p.match(token.COMMA) {
		m, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		msg = m
	}
	p.match(token.SEMICOLON)
	return &ast.AssertStmt{Cond: cond, Message: msg}, true
}

// parseExprOrAssignStmt parses an expression statement, which may also be
// an assignment or compound-assignment, consuming the trailing ';'.
func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, bool) {
	stmt, ok := p.parseExprOrAssignStmtNoSemi()
	if !ok {
		return nil, false
	}
	p.match(token.SEMICOLON)
	return stmt, true
}

var assignOps = map[token.Kind]string{
	token.EQUAL:         "=",
	token.PLUS_EQUAL:    "+=",
	token.MINUS_EQUAL:   "-=",
	token.STAR_EQUAL:    "*=",
	token.SLASH_EQUAL:   "/=",
	token.PERCENT_EQUAL: "%=",
}

// parseExprOrAssignStmtNoSemi parses a single expression statement or
// assignment without consuming a trailing ';', for use inside for-loop
// clauses.
func (p *Parser) parseExprOrAssignStmtNoSemi() (ast.Stmt, bool) {
	e, ok := p.parseExpr(ast.Lowest)
	if !ok {
		return nil, false
	}
	if op, isAssign := assignOps[p.cur.Kind]; isAssign {
		if !isValidAssignTarget(e) {
			p.errorf("Invalid assignment target.")
			return nil, false
		}
		p.advance()
		val, ok := p.parseExpr(ast.Lowest)
		if !ok {
			return nil, false
		}
		return &ast.AssignStmt{Target: e, Op: op, Value: val}, true
	}
	return &ast.ExprStmt{X: e}, true
}

func isValidAssignTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentExpr, *ast.ThisExpr, *ast.IndexExpr, *ast.ClassGetExpr:
		return true
	default:
		return false
	}
}
