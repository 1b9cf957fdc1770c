package ast

import (
	"strings"

	"github.com/bob-lang/bob/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST our parser produces.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VarStatement represents a variable declaration: var x = expr
// Value is nil when the declaration carries no initializer.
type VarStatement struct {
	Token token.Token // the 'var' token
	Name  *Identifier
	Value Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token {
	if vs == nil {
		return token.Token{}
	}
	return vs.Token
}

// FunctionStatement represents a named function declaration:
// func name(a, b) { ... }
type FunctionStatement struct {
	Token      token.Token // the 'func' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// BlockStatement is a braced statement sequence introducing a new scope.
type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// IfStatement covers if/elif/else; elif chains are nested IfStatements in
// Alternative.
type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil when absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// ParallelStatement keeps its three loop clauses intact; the evaluator decides
// whether they reduce to a numeric range worth running on worker threads.
// parallel (var i = 0; i < n; i++) { ... }
type ParallelStatement struct {
	Token     token.Token // the 'parallel' token
	Init      Statement   // nil when omitted
	Condition Expression  // nil when omitted
	Increment Expression  // nil when omitted
	Body      Statement
}

func (ps *ParallelStatement) statementNode()       {}
func (ps *ParallelStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *ParallelStatement) GetToken() token.Token {
	if ps == nil {
		return token.Token{}
	}
	return ps.Token
}

type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

type NilLiteral struct {
	Token token.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NilLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}

type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token {
	if al == nil {
		return token.Token{}
	}
	return al.Token
}

type GroupedExpression struct {
	Token      token.Token // the '(' token
	Expression Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Lexeme }
func (ge *GroupedExpression) GetToken() token.Token {
	if ge == nil {
		return token.Token{}
	}
	return ge.Token
}

type PrefixExpression struct {
	Token    token.Token // the operator token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

type InfixExpression struct {
	Token    token.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// AssignExpression assigns to an existing variable: x = expr
type AssignExpression struct {
	Token token.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// CompoundAssignExpression covers += -= *= /= %= on a variable name.
// Operator holds the compound form, e.g. "+=".
type CompoundAssignExpression struct {
	Token    token.Token
	Name     *Identifier
	Operator string
	Value    Expression
}

func (ca *CompoundAssignExpression) expressionNode()      {}
func (ca *CompoundAssignExpression) TokenLiteral() string { return ca.Token.Lexeme }
func (ca *CompoundAssignExpression) GetToken() token.Token {
	if ca == nil {
		return token.Token{}
	}
	return ca.Token
}

// BinaryOperator returns the underlying binary operator, e.g. "+" for "+=".
func (ca *CompoundAssignExpression) BinaryOperator() string {
	return strings.TrimSuffix(ca.Operator, "=")
}

// PostfixExpression covers i++ and i-- on a variable name.
type PostfixExpression struct {
	Token    token.Token
	Name     *Identifier
	Operator string // "++" or "--"
}

func (pe *PostfixExpression) expressionNode()      {}
func (pe *PostfixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PostfixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

type IndexExpression struct {
	Token token.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// IndexAssignExpression mutates an array element in place: a[i] = expr
type IndexAssignExpression struct {
	Token token.Token // the '=' token
	Left  Expression
	Index Expression
	Value Expression
}

func (ia *IndexAssignExpression) expressionNode()      {}
func (ia *IndexAssignExpression) TokenLiteral() string { return ia.Token.Lexeme }
func (ia *IndexAssignExpression) GetToken() token.Token {
	if ia == nil {
		return token.Token{}
	}
	return ia.Token
}

type CallExpression struct {
	Token     token.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}
