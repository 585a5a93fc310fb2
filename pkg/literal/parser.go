// Package literal parses the small literal language accepted for attribute
// values: quoted strings, integers, floats, [lists] of those, and {dicts}
// mapping quoted names to values. It never evaluates expressions.
package literal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/hbnb/pkg/core"
)

// ErrSyntax is returned for any input outside the literal grammar.
var ErrSyntax = errors.New("invalid literal")

// Parser is a recursive-descent parser over a Lexer.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrSyntax, fmt.Sprintf(format, args...), p.current.Position)
}

func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.errorf("expected %s, got %s", tt, p.current)
	}
	p.next()
	return nil
}

// Parse parses a scalar or list literal.
func Parse(input string) (core.Value, error) {
	p := NewParser(input)
	v, err := p.parseValue()
	if err != nil {
		return core.Value{}, err
	}
	if p.current.Type != TokenEOF {
		return core.Value{}, p.errorf("unexpected %s", p.current)
	}
	return v, nil
}

// ParseDict parses a {name: value, ...} literal. Field order follows the
// input; a repeated name keeps its last value in place of the first.
func ParseDict(input string) ([]core.Field, error) {
	p := NewParser(input)
	fields, err := p.parseDict()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected %s", p.current)
	}
	return fields, nil
}

// IsDict reports whether input looks like a dict literal (after leading
// whitespace).
func IsDict(input string) bool {
	return NewLexer(input).NextToken().Type == TokenLeftBrace
}

func (p *Parser) parseValue() (core.Value, error) {
	tok := p.current
	switch tok.Type {
	case TokenString:
		p.next()
		return core.String(tok.Value), nil
	case TokenInt:
		p.next()
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: integer out of range: %s", ErrSyntax, tok.Value)
		}
		return core.Int(i), nil
	case TokenFloat:
		p.next()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: float out of range: %s", ErrSyntax, tok.Value)
		}
		return core.Float(f), nil
	case TokenLeftBracket:
		return p.parseList()
	case TokenLeftBrace:
		return core.Value{}, p.errorf("nested dict is not supported")
	case TokenEOF:
		return core.Value{}, p.errorf("empty literal")
	default:
		return core.Value{}, p.errorf("unexpected %s", tok)
	}
}

func (p *Parser) parseList() (core.Value, error) {
	if err := p.expect(TokenLeftBracket); err != nil {
		return core.Value{}, err
	}
	items := []core.Value{}
	for p.current.Type != TokenRightBracket {
		v, err := p.parseValue()
		if err != nil {
			return core.Value{}, err
		}
		items = append(items, v)
		if p.current.Type == TokenComma {
			p.next()
			continue
		}
		if p.current.Type != TokenRightBracket {
			return core.Value{}, p.errorf("expected , or ], got %s", p.current)
		}
	}
	p.next()
	return core.List(items...), nil
}

func (p *Parser) parseDict() ([]core.Field, error) {
	if err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}
	var fields []core.Field
	index := make(map[string]int)
	for p.current.Type != TokenRightBrace {
		if p.current.Type != TokenString {
			return nil, p.errorf("dict keys must be quoted strings, got %s", p.current)
		}
		name := p.current.Value
		p.next()
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if i, ok := index[name]; ok {
			fields[i].Value = v
		} else {
			index[name] = len(fields)
			fields = append(fields, core.Field{Name: name, Value: v})
		}
		if p.current.Type == TokenComma {
			p.next()
			continue
		}
		if p.current.Type != TokenRightBrace {
			return nil, p.errorf("expected , or }, got %s", p.current)
		}
	}
	p.next()
	return fields, nil
}
