package parser

import (
	"fmt"

	"github.com/bob-lang/bob/internal/ast"
	"github.com/bob-lang/bob/internal/lexer"
	"github.com/bob-lang/bob/internal/token"
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) check(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) consume(t token.TokenType, message string) (token.Token, bool) {
	if p.check(t) {
		tok := p.curToken
		p.nextToken()
		return tok, true
	}
	p.errorAt(p.curToken, message)
	return p.curToken, false
}

func (p *Parser) errorAt(tok token.Token, message string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d:%d: %s", tok.Line, tok.Column, message))
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.nextToken()
	}
}

// skipTerminators consumes statement separators between declarations.
func (p *Parser) skipTerminators() {
	for p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
		p.nextToken()
	}
}

// synchronize advances to the next statement boundary after a parse error.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
			p.nextToken()
			return
		}
		switch p.curToken.Type {
		case token.VAR, token.FUNC, token.IF, token.WHILE, token.FOR,
			token.PARALLEL, token.RETURN, token.RBRACE:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	p.skipTerminators()
	for !p.check(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.skipTerminators()
	}
	return program
}

func (p *Parser) parseDeclaration() ast.Statement {
	before := len(p.errors)
	tok := p.curToken
	stmt := p.parseStatement()
	if stmt == nil && len(p.errors) > before {
		p.synchronize()
		// A token that is both the failure point and a sync boundary, like a
		// stray '}' at statement position, is consumed by neither side; skip
		// it so recovery always makes progress.
		if !p.check(token.EOF) && p.curToken.Line == tok.Line && p.curToken.Column == tok.Column {
			p.nextToken()
		}
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarStatement()
	case token.FUNC:
		return p.parseFunctionStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.PARALLEL:
		return p.parseParallelStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	nameTok, ok := p.consume(token.IDENT, "expected variable name")
	if !ok {
		return nil
	}
	stmt := &ast.VarStatement{
		Token: tok,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}

	if p.match(token.ASSIGN) {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	nameTok, ok := p.consume(token.IDENT, "expected function name")
	if !ok {
		return nil
	}
	if _, ok := p.consume(token.LPAREN, "expected '(' after function name"); !ok {
		return nil
	}

	var params []*ast.Identifier
	if !p.check(token.RPAREN) {
		for {
			paramTok, ok := p.consume(token.IDENT, "expected parameter name")
			if !ok {
				return nil
			}
			params = append(params, &ast.Identifier{Token: paramTok, Value: paramTok.Lexeme})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after parameters"); !ok {
		return nil
	}

	if !p.check(token.LBRACE) {
		p.errorAt(p.curToken, "expected '{' before function body")
		return nil
	}
	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}

	return &ast.FunctionStatement{
		Token:      tok,
		Name:       &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
		Parameters: params,
		Body:       body.(*ast.BlockStatement),
	}
}

func (p *Parser) parseBlockStatement() ast.Statement {
	tok := p.curToken // '{'
	p.nextToken()

	block := &ast.BlockStatement{Token: tok}
	p.skipTerminators()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipTerminators()
	}

	if _, ok := p.consume(token.RBRACE, "expected '}' after block"); !ok {
		return nil
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken // 'if' or 'elif'
	p.nextToken()

	if _, ok := p.consume(token.LPAREN, "expected '(' after 'if'"); !ok {
		return nil
	}
	condition := p.parseExpression()
	if condition == nil {
		return nil
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after if condition"); !ok {
		return nil
	}

	consequence := p.parseStatement()
	if consequence == nil {
		return nil
	}

	stmt := &ast.IfStatement{Token: tok, Condition: condition, Consequence: consequence}

	// the elif/else may start on the following line
	p.skipNewlines()

	// elif chains become nested if statements
	if p.check(token.ELIF) {
		stmt.Alternative = p.parseIfStatement()
		if stmt.Alternative == nil {
			return nil
		}
	} else if p.match(token.ELSE) {
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	if _, ok := p.consume(token.LPAREN, "expected '(' after 'while'"); !ok {
		return nil
	}
	condition := p.parseExpression()
	if condition == nil {
		return nil
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after while condition"); !ok {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.WhileStatement{Token: tok, Condition: condition, Body: body}
}

// parseLoopClauses parses the shared "(init; cond; incr)" header of for and
// parallel loops. All three clauses may be empty.
func (p *Parser) parseLoopClauses(keyword string) (ast.Statement, ast.Expression, ast.Expression, bool) {
	if _, ok := p.consume(token.LPAREN, "expected '(' after '"+keyword+"'"); !ok {
		return nil, nil, nil, false
	}

	var init ast.Statement
	if p.match(token.SEMICOLON) {
		init = nil
	} else if p.check(token.VAR) {
		init = p.parseVarStatement()
		if init == nil {
			return nil, nil, nil, false
		}
		if _, ok := p.consume(token.SEMICOLON, "expected ';' after loop initializer"); !ok {
			return nil, nil, nil, false
		}
	} else {
		expr := p.parseExpression()
		if expr == nil {
			return nil, nil, nil, false
		}
		init = &ast.ExpressionStatement{Token: expr.GetToken(), Expression: expr}
		if _, ok := p.consume(token.SEMICOLON, "expected ';' after loop initializer"); !ok {
			return nil, nil, nil, false
		}
	}

	var condition ast.Expression
	if !p.check(token.SEMICOLON) {
		condition = p.parseExpression()
		if condition == nil {
			return nil, nil, nil, false
		}
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after loop condition"); !ok {
		return nil, nil, nil, false
	}

	var increment ast.Expression
	if !p.check(token.RPAREN) {
		increment = p.parseExpression()
		if increment == nil {
			return nil, nil, nil, false
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after loop clauses"); !ok {
		return nil, nil, nil, false
	}
	return init, condition, increment, true
}

// parseForStatement desugars "for (init; cond; incr) body" into
// "{ init; while (cond) { body; incr } }".
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	init, condition, increment, ok := p.parseLoopClauses("for")
	if !ok {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		var stmts []ast.Statement
		if block, isBlock := body.(*ast.BlockStatement); isBlock {
			stmts = append(stmts, block.Statements...)
		} else {
			stmts = append(stmts, body)
		}
		stmts = append(stmts, &ast.ExpressionStatement{Token: increment.GetToken(), Expression: increment})
		body = &ast.BlockStatement{Token: tok, Statements: stmts}
	}

	if condition == nil {
		condition = &ast.BooleanLiteral{Token: tok, Value: true}
	}
	var loop ast.Statement = &ast.WhileStatement{Token: tok, Condition: condition, Body: body}

	if init != nil {
		loop = &ast.BlockStatement{Token: tok, Statements: []ast.Statement{init, loop}}
	}
	return loop
}

// parseParallelStatement keeps the clauses intact; the evaluator reduces them
// to a numeric range (or falls back to sequential execution).
func (p *Parser) parseParallelStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	init, condition, increment, ok := p.parseLoopClauses("parallel")
	if !ok {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.ParallelStatement{
		Token:     tok,
		Init:      init,
		Condition: condition,
		Increment: increment,
		Body:      body,
	}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	stmt := &ast.ReturnStatement{Token: tok}
	if !p.check(token.SEMICOLON) && !p.check(token.NEWLINE) &&
		!p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}
