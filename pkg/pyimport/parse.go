package pyimport

import "strings"

// Parse returns the absolute imports found anywhere in a Python source file,
// in order of first appearance and without duplicates.
//
//   - "import a.b, c as d" yields "a.b" and "c".
//   - "from x.y import a, b" yields "x.y.a" and "x.y.b".
//   - "from x import *" yields "x".
//   - Relative imports ("from . import a", "from .x import a") are skipped.
//
// Imports nested in functions, conditionals, try blocks or after ";" and a
// compound-statement ":" are found as well. Bytes that are not valid UTF-8
// are replaced with U+FFFD before scanning; Parse never fails.
func Parse(src []byte) []string {
	text := strings.ToValidUTF8(string(src), "\uFFFD")
	p := &parser{lex: newLexer(text), seen: make(map[string]bool)}
	p.advance()
	p.run()
	return p.out
}

type parser struct {
	lex  *lexer
	tok  token
	out  []string
	seen map[string]bool
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) isName(s string) bool { return p.tok.kind == tokName && p.tok.text == s }

func (p *parser) isOp(s string) bool { return p.tok.kind == tokOp && p.tok.text == s }

func (p *parser) record(name string) {
	if name == "" || p.seen[name] {
		return
	}
	p.seen[name] = true
	p.out = append(p.out, name)
}

func (p *parser) run() {
	atStart := true
	for p.tok.kind != tokEOF {
		switch {
		case p.tok.kind == tokNewline, p.isOp(";"):
			atStart = true
			p.advance()
		case p.isOp(":") && p.lex.depth == 0:
			// "if x: import y", "try: import y"
			atStart = true
			p.advance()
		case atStart && p.isName("import"):
			p.advance()
			p.importNames()
			atStart = false
		case atStart && p.isName("from"):
			p.advance()
			p.fromImport()
			atStart = false
		default:
			atStart = false
			p.advance()
		}
	}
}

// dotted reads "a.b.c" starting at the current name token.
func (p *parser) dotted() string {
	if p.tok.kind != tokName {
		return ""
	}
	parts := []string{p.tok.text}
	p.advance()
	for p.isOp(".") {
		p.advance()
		if p.tok.kind != tokName {
			break
		}
		parts = append(parts, p.tok.text)
		p.advance()
	}
	return strings.Join(parts, ".")
}

func (p *parser) skipAlias() {
	if p.isName("as") {
		p.advance()
		if p.tok.kind == tokName {
			p.advance()
		}
	}
}

func (p *parser) importNames() {
	for {
		name := p.dotted()
		if name == "" {
			return
		}
		p.record(name)
		p.skipAlias()
		if !p.isOp(",") {
			return
		}
		p.advance()
	}
}

func (p *parser) fromImport() {
	level := 0
	for p.isOp(".") {
		level++
		p.advance()
	}
	module := ""
	if !p.isName("import") {
		module = p.dotted()
	}
	if !p.isName("import") {
		return
	}
	p.advance()

	absolute := level == 0 && module != ""
	if p.isOp("*") {
		p.advance()
		if absolute {
			p.record(module)
		}
		return
	}

	paren := p.isOp("(")
	if paren {
		p.advance()
	}
	for p.tok.kind == tokName {
		name := p.tok.text
		p.advance()
		p.skipAlias()
		if absolute {
			p.record(module + "." + name)
		}
		if !p.isOp(",") {
			break
		}
		p.advance()
	}
	if paren && p.isOp(")") {
		p.advance()
	}
}
