package pyimport

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokName
	tokOp
	tokString
	tokNumber
)

type token struct {
	kind tokenKind
	text string
}

// lexer splits Python source into the few token classes the import scanner
// needs. Malformed input never stops it; it produces tokens that the
// parser ignores.
//
// Logical lines follow Python's rules: newlines inside brackets and after a
// backslash continuation are not reported, comments are dropped and string
// literals (including triple-quoted and f-strings with nested expressions) are
// collapsed into a single tokString so their contents can never look like
// code.
type lexer struct {
	src   []rune
	pos   int
	depth int // open brackets
	done  bool
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) peekAt(off int) rune {
	if i := l.pos + off; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '\\' && (l.peekAt(1) == '\n' || (l.peekAt(1) == '\r' && l.peekAt(2) == '\n')):
			l.pos += 2
			if l.src[l.pos-1] == '\r' {
				l.pos++
			}
		case c == '\n' || c == '\r':
			l.pos++
			if l.depth == 0 {
				return token{kind: tokNewline}
			}
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			l.pos++
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			word := string(l.src[start:l.pos])
			if q := l.peekAt(0); (q == '\'' || q == '"') && isStringPrefix(word) {
				l.skipString(word)
				return token{kind: tokString}
			}
			return token{kind: tokName, text: word}
		case c == '\'' || c == '"':
			l.skipString("")
			return token{kind: tokString}
		case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
			l.skipNumber()
			return token{kind: tokNumber}
		default:
			l.pos++
			switch c {
			case '(', '[', '{':
				l.depth++
			case ')', ']', '}':
				if l.depth > 0 {
					l.depth--
				}
			}
			return token{kind: tokOp, text: string(c)}
		}
	}
	// Terminate the last logical line exactly once before EOF.
	if !l.done {
		l.done = true
		return token{kind: tokNewline}
	}
	return token{kind: tokEOF}
}

func (l *lexer) skipNumber() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentPart(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && l.pos > 0 && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			return
		}
	}
}

// skipString consumes a string literal whose opening quote is at l.pos.
// An unterminated single-line string stops at the end of the line.
func (l *lexer) skipString(prefix string) {
	lower := strings.ToLower(prefix)
	formatted := strings.ContainsAny(lower, "ft")
	quote := l.src[l.pos]
	triple := l.peekAt(1) == quote && l.peekAt(2) == quote
	if triple {
		l.pos += 3
	} else {
		l.pos++
	}

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
		case c == '\n' && !triple:
			return
		case c == quote:
			if !triple {
				l.pos++
				return
			}
			if l.peekAt(1) == quote && l.peekAt(2) == quote {
				l.pos += 3
				return
			}
			l.pos++
		case formatted && c == '{':
			if l.peekAt(1) == '{' {
				l.pos += 2
				continue
			}
			l.pos++
			l.skipReplacementField()
		default:
			l.pos++
		}
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

// skipReplacementField consumes an f-string expression up to its closing
// brace. Nested string literals are skipped recursively, so quotes reused
// inside the expression do not end the outer string.
func (l *lexer) skipReplacementField() {
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\'' || c == '"':
			l.skipString("")
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			if q := l.peekAt(0); (q == '\'' || q == '"') && isStringPrefix(string(l.src[start:l.pos])) {
				l.skipString(string(l.src[start:l.pos]))
			}
		case c == '{' || c == '(' || c == '[':
			depth++
			l.pos++
		case c == '}' || c == ')' || c == ']':
			depth--
			l.pos++
			if depth == 0 {
				return
			}
		default:
			l.pos++
		}
	}
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "t", "br", "rb", "fr", "rf", "tr", "rt":
		return true
	}
	return false
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
