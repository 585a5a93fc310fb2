package console

import (
	"regexp"
	"strings"
)

// Token is one argument of a command line.
type Token struct {
	Text    string // decoded word, or the raw literal text
	Raw     string // source text of the word
	Quoted  bool   // some part of the word was quoted
	Literal bool   // a [list] or {dict} literal kept unparsed
}

// dictUpdate matches the argument shape produced by Kind.update("id", {...}).
var dictUpdate = regexp.MustCompile(`^(\w+) "([\w-]+)", ({.*})$`)

// Tokenize splits the arguments of a command into tokens. A bracketed list
// or braced dict literal ends the word list: the text before it is word
// split and the literal is appended as a single unparsed token. Tokenize
// never fails; malformed literals are reported by whoever parses them.
func Tokenize(line string) []Token {
	line = strings.TrimSpace(line)
	if m := dictUpdate.FindStringSubmatch(line); m != nil {
		return []Token{
			{Text: m[1], Raw: m[1]},
			{Text: m[2], Raw: `"` + m[2] + `"`, Quoted: true},
			{Text: m[3], Raw: m[3], Literal: true},
		}
	}

	if start, end, ok := findLiteral(line); ok {
		tokens := splitWords(line[:start])
		lit := line[start:end]
		return append(tokens, Token{Text: lit, Raw: lit, Literal: true})
	}
	return splitWords(line)
}

// TokenizeParams splits create parameters into words and literals in
// source order. Unlike Tokenize it keeps reading after a literal, so
// key=[...] may appear anywhere among the parameters.
func TokenizeParams(line string) []Token {
	var tokens []Token
	for {
		start, end, ok := findLiteral(line)
		if !ok {
			return append(tokens, splitWords(line)...)
		}
		tokens = append(tokens, splitWords(line[:start])...)
		lit := line[start:end]
		tokens = append(tokens, Token{Text: lit, Raw: lit, Literal: true})
		line = line[end:]
	}
}

// findLiteral locates the first [ or { outside quotes and its balanced
// closing bracket. Brackets inside quoted strings are ignored.
func findLiteral(line string) (start, end int, ok bool) {
	start = -1
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' && quote == '"' && i+1 < len(line) {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\\':
			i++
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '{':
			start = i
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	var stack []byte
	quote = 0
	for i := start; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(line) {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}

// splitWords is a shell-like word splitter. Single quotes are literal,
// double quotes honour \" and \\ escapes, and a backslash outside quotes
// escapes the next character. An unclosed quote runs to the end of the
// line. Trailing commas outside quotes are stripped from every word.
func splitWords(s string) []Token {
	var (
		tokens  []Token
		word    strings.Builder
		inWord  bool
		quoted  bool
		keep    int // word length up to the last quoted character
		quote   byte
		wordPos int
	)
	flush := func(end int) {
		if !inWord {
			return
		}
		text := word.String()
		if trimmed := strings.TrimRight(text[keep:], ","); len(trimmed) < len(text)-keep {
			text = text[:keep] + trimmed
		}
		raw := strings.TrimRight(s[wordPos:end], ",")
		if text != "" || quoted {
			tokens = append(tokens, Token{Text: text, Raw: raw, Quoted: quoted})
		}
		word.Reset()
		inWord, quoted, keep = false, false, 0
	}
	begin := func(i int) {
		if !inWord {
			inWord = true
			wordPos = i
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == quote:
				quote = 0
			case quote == '"' && c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
				i++
				word.WriteByte(s[i])
			default:
				word.WriteByte(c)
			}
			keep = word.Len()
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			flush(i)
		case '"', '\'':
			begin(i)
			quote = c
			quoted = true
			keep = word.Len()
		case '\\':
			begin(i)
			if i+1 < len(s) {
				i++
				word.WriteByte(s[i])
			}
		default:
			begin(i)
			word.WriteByte(c)
		}
	}
	flush(len(s))
	return tokens
}
