package literal

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenString // 'text' or "text"
	TokenInt    // 42, -7
	TokenFloat  // 1.5, -2e3, .5

	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenComma        // ,
	TokenColon        // :
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenString:
		return "STRING"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenLeftBracket:
		return "LEFT_BRACKET"
	case TokenRightBracket:
		return "RIGHT_BRACKET"
	case TokenLeftBrace:
		return "LEFT_BRACE"
	case TokenRightBrace:
		return "RIGHT_BRACE"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type     TokenType
	Value    string // decoded text for strings, raw text otherwise
	Position int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return fmt.Sprintf("ILLEGAL(%s)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
}

// Lexer splits literal text into tokens.
type Lexer struct {
	input    string
	position int  // current position in input (points to current char)
	readPos  int  // current reading position (after current char)
	ch       byte // current char under examination
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.position = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	pos := l.position

	switch l.ch {
	case 0:
		if l.position >= len(l.input) {
			return Token{Type: TokenEOF, Position: pos}
		}
		l.readChar()
		return Token{Type: TokenIllegal, Value: "\\x00", Position: pos}
	case '[':
		l.readChar()
		return Token{Type: TokenLeftBracket, Value: "[", Position: pos}
	case ']':
		l.readChar()
		return Token{Type: TokenRightBracket, Value: "]", Position: pos}
	case '{':
		l.readChar()
		return Token{Type: TokenLeftBrace, Value: "{", Position: pos}
	case '}':
		l.readChar()
		return Token{Type: TokenRightBrace, Value: "}", Position: pos}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ",", Position: pos}
	case ':':
		l.readChar()
		return Token{Type: TokenColon, Value: ":", Position: pos}
	case '"', '\'':
		return l.readString()
	}

	if isDigit(l.ch) || ((l.ch == '-' || l.ch == '+' || l.ch == '.') && (isDigit(l.peekChar()) || l.peekChar() == '.')) {
		return l.readNumber()
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenIllegal, Value: string(ch), Position: pos}
}

// readString reads a quoted string. Backslash escapes \n \t \r \\ and the
// quote characters are decoded; any other escape is kept verbatim.
func (l *Lexer) readString() Token {
	pos := l.position
	quote := l.ch
	var b strings.Builder
	l.readChar()
	for {
		switch l.ch {
		case 0:
			if l.position >= len(l.input) {
				return Token{Type: TokenIllegal, Value: "unterminated string", Position: pos}
			}
			b.WriteByte(l.ch)
		case quote:
			l.readChar()
			return Token{Type: TokenString, Value: b.String(), Position: pos}
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(l.ch)
			case 0:
				if l.position >= len(l.input) {
					return Token{Type: TokenIllegal, Value: "unterminated string", Position: pos}
				}
				b.WriteString("\\\x00")
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
		default:
			b.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func (l *Lexer) readNumber() Token {
	pos := l.position
	isFloat := false

	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	digits := 0
	for isDigit(l.ch) {
		digits++
		l.readChar()
	}
	if l.ch == '.' {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			digits++
			l.readChar()
		}
	}
	if digits == 0 {
		return Token{Type: TokenIllegal, Value: l.input[pos:l.position], Position: pos}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return Token{Type: TokenIllegal, Value: l.input[pos:l.position], Position: pos}
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenIllegal, Value: l.input[pos:l.position], Position: pos}
	}

	tt := TokenInt
	if isFloat {
		tt = TokenFloat
	}
	return Token{Type: tt, Value: l.input[pos:l.position], Position: pos}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}
