package token

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // float64 for NUMBER, string otherwise
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Literals
	NUMBER = "NUMBER"
	STRING = "STRING"
	IDENT  = "IDENT"

	// Operators
	PLUS    = "+"
	MINUS   = "-"
	STAR    = "*"
	SLASH   = "/"
	PERCENT = "%"
	POW     = "**"

	PLUS_PLUS   = "++"
	MINUS_MINUS = "--"

	ASSIGN         = "="
	PLUS_ASSIGN    = "+="
	MINUS_ASSIGN   = "-="
	STAR_ASSIGN    = "*="
	SLASH_ASSIGN   = "/="
	PERCENT_ASSIGN = "%="

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	LTE    = "<="
	GT     = ">"
	GTE    = ">="

	BANG  = "!"
	ARROW = "->"
	DOT   = "."

	// Delimiters
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"
	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"

	// Keywords
	VAR      = "VAR"
	FUNC     = "FUNC"
	IF       = "IF"
	ELIF     = "ELIF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	PARALLEL = "PARALLEL"
	RETURN   = "RETURN"
	IN       = "IN"
	AND      = "AND"
	OR       = "OR"
	NOT      = "NOT"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NIL      = "NIL"
)

var keywords = map[string]TokenType{
	"var":      VAR,
	"func":     FUNC,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"parallel": PARALLEL,
	"return":   RETURN,
	"in":       IN,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
}

// LookupIdent returns the keyword type for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
