package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bob-lang/bob/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, l.line, l.column)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.EQ, "==")
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			tok = l.twoCharToken(token.PLUS_PLUS, "++")
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.PLUS_ASSIGN, "+=")
		} else {
			tok = newToken(token.PLUS, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = l.twoCharToken(token.ARROW, "->")
		} else if l.peekChar() == '-' {
			l.readChar()
			tok = l.twoCharToken(token.MINUS_MINUS, "--")
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.MINUS_ASSIGN, "-=")
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = l.twoCharToken(token.POW, "**")
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.STAR_ASSIGN, "*=")
		} else {
			tok = newToken(token.STAR, l.ch, l.line, l.column)
		}
	case '/':
		if l.peekChar() == '/' {
			l.skipComment()
			return l.NextToken()
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.SLASH_ASSIGN, "/=")
		} else {
			tok = newToken(token.SLASH, l.ch, l.line, l.column)
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.PERCENT_ASSIGN, "%=")
		} else {
			tok = newToken(token.PERCENT, l.ch, l.line, l.column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.NOT_EQ, "!=")
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.LTE, "<=")
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.GTE, ">=")
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ':':
		tok = newToken(token.COLON, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '.':
		tok = newToken(token.DOT, l.ch, l.line, l.column)
	case '"':
		return l.readString()
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Literal: "", Line: l.line, Column: l.column}
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isLetter(l.ch) {
			return l.readIdentifier()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() token.Token {
	line, column := l.line, l.column
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{
		Type:    token.LookupIdent(lexeme),
		Lexeme:  lexeme,
		Literal: lexeme,
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) readNumber() token.Token {
	line, column := l.line, l.column
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	value, _ := strconv.ParseFloat(lexeme, 64)
	return token.Token{
		Type:    token.NUMBER,
		Lexeme:  lexeme,
		Literal: value,
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) readString() token.Token {
	line, column := l.line, l.column
	var sb strings.Builder

	l.readChar() // consume opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case 0:
				// unterminated escape at end of input
				return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated string", Literal: sb.String(), Line: line, Column: column}
			default:
				// unknown escapes are kept verbatim
				sb.WriteRune('\\')
				sb.WriteRune(l.ch)
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch == 0 {
		return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated string", Literal: sb.String(), Line: line, Column: column}
	}

	l.readChar() // consume closing quote
	return token.Token{
		Type:    token.STRING,
		Lexeme:  sb.String(),
		Literal: sb.String(),
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) twoCharToken(t token.TokenType, lexeme string) token.Token {
	return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: l.line, Column: l.column - 1}
}

func newToken(t token.TokenType, ch rune, line, column int) token.Token {
	return token.Token{Type: t, Lexeme: string(ch), Literal: string(ch), Line: line, Column: column}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
