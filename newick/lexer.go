// SPDX-License-Identifier: MIT

package newick

import "strings"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokSemi
	tokHash
	tokMeta   // text between "[&" and the matching "]"
	tokWord   // unquoted label or number
	tokQuoted // single-quoted label, unescaped
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits extended Newick into tokens. Plain "[...]" comments are
// skipped; "[&...]" blocks become one tokMeta.
type lexer struct {
	src  string
	pos  int
	peek *token
}

func newLexer(src string) *lexer { return &lexer{src: src} }

const delimiters = "()[],:;#'"

var punctuation = map[byte]tokenKind{
	'(': tokLParen, ')': tokRParen, ',': tokComma,
	':': tokColon, ';': tokSemi, '#': tokHash,
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// Peek returns the next token without consuming it.
func (lx *lexer) Peek() (token, error) {
	if lx.peek == nil {
		t, err := lx.scan()
		if err != nil {
			return token{}, err
		}
		lx.peek = &t
	}

	return *lx.peek, nil
}

// Next consumes and returns the next token.
func (lx *lexer) Next() (token, error) {
	t, err := lx.Peek()
	lx.peek = nil

	return t, err
}

func (lx *lexer) scan() (token, error) {
	for {
		for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
			lx.pos++
		}
		if lx.pos >= len(lx.src) {
			return token{kind: tokEOF, pos: lx.pos}, nil
		}
		if lx.src[lx.pos] != '[' || strings.HasPrefix(lx.src[lx.pos:], "[&") {
			break
		}
		end := strings.IndexByte(lx.src[lx.pos:], ']')
		if end < 0 {
			return token{}, &SyntaxError{Pos: lx.pos, Token: "[", Msg: "unterminated comment"}
		}
		lx.pos += end + 1
	}

	start := lx.pos
	c := lx.src[start]
	if k, ok := punctuation[c]; ok {
		lx.pos++
		return token{kind: k, text: string(c), pos: start}, nil
	}
	switch c {
	case '[':
		end, err := metaEnd(lx.src, start)
		if err != nil {
			return token{}, err
		}
		lx.pos = end + 1
		return token{kind: tokMeta, text: lx.src[start+2 : end], pos: start}, nil
	case '\'':
		var sb strings.Builder
		i := start + 1
		for {
			if i >= len(lx.src) {
				return token{}, &SyntaxError{Pos: start, Token: "'", Msg: "unterminated quoted label"}
			}
			if lx.src[i] == '\'' {
				if i+1 < len(lx.src) && lx.src[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				break
			}
			sb.WriteByte(lx.src[i])
			i++
		}
		lx.pos = i + 1
		return token{kind: tokQuoted, text: sb.String(), pos: start}, nil
	case ']':
		return token{}, &SyntaxError{Pos: start, Token: "]", Msg: "unexpected ]"}
	}

	for lx.pos < len(lx.src) && !isSpace(lx.src[lx.pos]) && strings.IndexByte(delimiters, lx.src[lx.pos]) < 0 {
		lx.pos++
	}

	return token{kind: tokWord, text: lx.src[start:lx.pos], pos: start}, nil
}

// metaEnd returns the index of the "]" closing the metadata block opened
// at start, skipping brackets inside double-quoted strings.
func metaEnd(src string, start int) (int, error) {
	quoted := false
	for i := start + 2; i < len(src); i++ {
		switch src[i] {
		case '"':
			quoted = !quoted
		case ']':
			if !quoted {
				return i, nil
			}
		}
	}

	return 0, &SyntaxError{Pos: start, Token: "[&", Msg: "unterminated metadata"}
}
