// SPDX-License-Identifier: MIT
//
// File: parser.go
// Role: recursive-descent parser from extended Newick text to a syntax tree.
//
// Grammar:
//
//	tree  := node ';'? EOF
//	node  := ( '(' node ( ',' node )* ')' )? post
//	post  := label? ( '#' INT )? META? ( ':' META? NUMBER )?
//	label := WORD | QUOTED
//
// META is one "[&...]" block, split into key=value attributes at top-level
// commas; commas inside "..." or {...} do not split.

package newick

import (
	"strconv"
	"strings"
)

// attr is one metadata attribute. Value keeps its quotes and braces.
type attr struct {
	Key   string
	Value string
	Raw   string
}

type syntaxNode struct {
	children []*syntaxNode
	parent   *syntaxNode
	label    string
	hasLabel bool
	hybrid   int // -1 when absent
	meta     []attr
	length   float64
	pos      int

	height float64
}

func (n *syntaxNode) isHybridLeaf() bool { return n.hybrid >= 0 && len(n.children) == 0 }

type parser struct {
	lx *lexer
}

// parseSyntax parses src into a syntax tree.
func parseSyntax(src string) (*syntaxNode, error) {
	p := &parser{lx: newLexer(src)}
	root, err := p.node(nil)
	if err != nil {
		return nil, err
	}
	t, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if t.kind == tokSemi {
		if t, err = p.lx.Next(); err != nil {
			return nil, err
		}
	}
	if t.kind != tokEOF {
		return nil, unexpected(t, "expected end of input")
	}

	return root, nil
}

func unexpected(t token, msg string) *SyntaxError {
	text := t.text
	if t.kind == tokEOF {
		text = "EOF"
	}

	return &SyntaxError{Pos: t.pos, Token: text, Msg: msg}
}

func (p *parser) node(parent *syntaxNode) (*syntaxNode, error) {
	t, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	n := &syntaxNode{parent: parent, hybrid: -1, pos: t.pos}
	if t.kind == tokLParen {
		_, _ = p.lx.Next()
		for {
			child, err := p.node(n)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			t, err := p.lx.Next()
			if err != nil {
				return nil, err
			}
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, unexpected(t, "expected ',' or ')'")
			}
		}
	}
	if err := p.post(n); err != nil {
		return nil, err
	}

	return n, nil
}

func (p *parser) post(n *syntaxNode) error {
	t, err := p.lx.Peek()
	if err != nil {
		return err
	}
	if t.kind == tokWord || t.kind == tokQuoted {
		_, _ = p.lx.Next()
		n.label, n.hasLabel = t.text, true
		if t, err = p.lx.Peek(); err != nil {
			return err
		}
	}
	if t.kind == tokHash {
		_, _ = p.lx.Next()
		id, err := p.lx.Next()
		if err != nil {
			return err
		}
		v, convErr := strconv.Atoi(id.text)
		if id.kind != tokWord || convErr != nil || v < 0 {
			return unexpected(id, "expected conversion index after '#'")
		}
		n.hybrid = v
		if t, err = p.lx.Peek(); err != nil {
			return err
		}
	}
	if t.kind == tokMeta {
		if err := p.meta(n); err != nil {
			return err
		}
		if t, err = p.lx.Peek(); err != nil {
			return err
		}
	}
	if t.kind != tokColon {
		return nil
	}
	_, _ = p.lx.Next()
	if t, err = p.lx.Peek(); err != nil {
		return err
	}
	if t.kind == tokMeta {
		if err := p.meta(n); err != nil {
			return err
		}
	}
	num, err := p.lx.Next()
	if err != nil {
		return err
	}
	v, convErr := strconv.ParseFloat(num.text, 64)
	if num.kind != tokWord || convErr != nil {
		return unexpected(num, "expected branch length")
	}
	n.length = v

	return nil
}

func (p *parser) meta(n *syntaxNode) error {
	t, _ := p.lx.Next()
	attrs, err := splitAttrs(t.text, t.pos+2)
	if err != nil {
		return err
	}
	n.meta = append(n.meta, attrs...)

	return nil
}

// splitAttrs splits the body of a metadata block. base is the offset of
// body in the source, for error positions.
func splitAttrs(body string, base int) ([]attr, error) {
	var (
		out    []attr
		depth  int
		quoted bool
		start  int
	)
	flush := func(end int) {
		raw := strings.TrimSpace(body[start:end])
		if raw == "" {
			return
		}
		a := attr{Key: raw, Raw: raw}
		if k, v, ok := strings.Cut(raw, "="); ok {
			a.Key, a.Value = strings.TrimSpace(k), strings.TrimSpace(v)
		}
		out = append(out, a)
	}
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{':
			depth++
		case c == '}':
			if depth--; depth < 0 {
				return nil, &SyntaxError{Pos: base + i, Token: "}", Msg: "unbalanced braces in metadata"}
			}
		case c == ',' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	if depth != 0 || quoted {
		return nil, &SyntaxError{Pos: base + start, Token: body[start:], Msg: "unterminated metadata value"}
	}
	flush(len(body))

	return out, nil
}
