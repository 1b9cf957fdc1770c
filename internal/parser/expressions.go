package parser

import (
	"fmt"

	"github.com/bob-lang/bob/internal/ast"
	"github.com/bob-lang/bob/internal/token"
)

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	expr := p.parseOr()
	if expr == nil {
		return nil
	}

	if p.check(token.ASSIGN) {
		tok := p.curToken
		p.nextToken()
		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		switch target := expr.(type) {
		case *ast.Identifier:
			return &ast.AssignExpression{Token: tok, Name: target, Value: value}
		case *ast.IndexExpression:
			return &ast.IndexAssignExpression{Token: tok, Left: target.Left, Index: target.Index, Value: value}
		}
		p.errorAt(tok, "invalid assignment target")
		return nil
	}

	if p.check(token.PLUS_ASSIGN) || p.check(token.MINUS_ASSIGN) ||
		p.check(token.STAR_ASSIGN) || p.check(token.SLASH_ASSIGN) ||
		p.check(token.PERCENT_ASSIGN) {
		tok := p.curToken
		p.nextToken()
		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		if target, ok := expr.(*ast.Identifier); ok {
			return &ast.CompoundAssignExpression{Token: tok, Name: target, Operator: tok.Lexeme, Value: value}
		}
		p.errorAt(tok, "invalid assignment target")
		return nil
	}

	return expr
}

func (p *Parser) parseOr() ast.Expression {
	expr := p.parseAnd()
	for expr != nil && p.check(token.OR) {
		tok := p.curToken
		p.nextToken()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseAnd() ast.Expression {
	expr := p.parseEquality()
	for expr != nil && p.check(token.AND) {
		tok := p.curToken
		p.nextToken()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseEquality() ast.Expression {
	expr := p.parseComparison()
	for expr != nil && (p.check(token.EQ) || p.check(token.NOT_EQ)) {
		tok := p.curToken
		p.nextToken()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseComparison() ast.Expression {
	expr := p.parseAddition()
	for expr != nil && (p.check(token.GT) || p.check(token.GTE) ||
		p.check(token.LT) || p.check(token.LTE) || p.check(token.IN)) {
		tok := p.curToken
		p.nextToken()
		right := p.parseAddition()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseAddition() ast.Expression {
	expr := p.parseMultiplication()
	for expr != nil && (p.check(token.PLUS) || p.check(token.MINUS)) {
		tok := p.curToken
		p.nextToken()
		right := p.parseMultiplication()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseMultiplication() ast.Expression {
	expr := p.parseExponent()
	for expr != nil && (p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT)) {
		tok := p.curToken
		p.nextToken()
		right := p.parseExponent()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseExponent() ast.Expression {
	expr := p.parseUnary()
	for expr != nil && p.check(token.POW) {
		tok := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		expr = &ast.InfixExpression{Token: tok, Left: expr, Operator: tok.Lexeme, Right: right}
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.NOT) || p.check(token.BANG) || p.check(token.MINUS) {
		tok := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: right}
	}
	return p.parsePostfix()
}

// parsePostfix handles calls, indexing and postfix ++/--, all of which bind
// tighter than unary operators.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for expr != nil {
		switch {
		case p.check(token.LPAREN):
			tok := p.curToken
			p.nextToken()
			args, ok := p.parseArguments()
			if !ok {
				return nil
			}
			expr = &ast.CallExpression{Token: tok, Callee: expr, Arguments: args}
		case p.check(token.LBRACKET):
			tok := p.curToken
			p.nextToken()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if _, ok := p.consume(token.RBRACKET, "expected ']' after index"); !ok {
				return nil
			}
			expr = &ast.IndexExpression{Token: tok, Left: expr, Index: index}
		case p.check(token.PLUS_PLUS) || p.check(token.MINUS_MINUS):
			tok := p.curToken
			p.nextToken()
			target, ok := expr.(*ast.Identifier)
			if !ok {
				p.errorAt(tok, "invalid postfix target")
				return nil
			}
			expr = &ast.PostfixExpression{Token: tok, Name: target, Operator: tok.Lexeme}
		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parseArguments() ([]ast.Expression, bool) {
	var args []ast.Expression
	if !p.check(token.RPAREN) {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil, false
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after arguments"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.curToken.Type {
	case token.TRUE:
		tok := p.curToken
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: true}
	case token.FALSE:
		tok := p.curToken
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: false}
	case token.NIL:
		tok := p.curToken
		p.nextToken()
		return &ast.NilLiteral{Token: tok}
	case token.NUMBER:
		tok := p.curToken
		p.nextToken()
		value, _ := tok.Literal.(float64)
		return &ast.NumberLiteral{Token: tok, Value: value}
	case token.STRING:
		tok := p.curToken
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Lexeme}
	case token.IDENT:
		tok := p.curToken
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Lexeme}
	case token.LPAREN:
		tok := p.curToken
		p.nextToken()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if _, ok := p.consume(token.RPAREN, "expected ')' after expression"); !ok {
			return nil
		}
		return &ast.GroupedExpression{Token: tok, Expression: expr}
	case token.LBRACKET:
		tok := p.curToken
		p.nextToken()
		var elements []ast.Expression
		if !p.check(token.RBRACKET) {
			for {
				el := p.parseExpression()
				if el == nil {
					return nil
				}
				elements = append(elements, el)
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		if _, ok := p.consume(token.RBRACKET, "expected ']' after array elements"); !ok {
			return nil
		}
		return &ast.ArrayLiteral{Token: tok, Elements: elements}
	case token.ILLEGAL:
		if p.curToken.Lexeme == "unterminated string" {
			p.errorAt(p.curToken, "unterminated string")
		} else {
			p.errorAt(p.curToken, fmt.Sprintf("unexpected character %q", p.curToken.Lexeme))
		}
		p.nextToken()
		return nil
	default:
		p.errorAt(p.curToken, fmt.Sprintf("expected expression, got %q", p.curToken.Lexeme))
		return nil
	}
}
