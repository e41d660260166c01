/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package scan extracts require() call sites from JavaScript sources.
package scan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// ErrParse is returned when the source could not be parsed at all.
var ErrParse = errors.New("failed to parse source")

// Call names the form of a require call.
type Call string

const (
	// CallRequire is require("x").
	CallRequire Call = "require"
	// CallRequireResolve is require.resolve("x").
	CallRequireResolve Call = "require.resolve"
)

// Require is a statically known request found in a source file.
type Require struct {
	Request string `json:"request"`
	Call    Call   `json:"call"`
	// Line and Column are 1-based.
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Scanner parses JavaScript with tree-sitter. A Scanner may be shared
// between goroutines; each Scan uses its own parser.
type Scanner struct {
	language *tree_sitter.Language
}

// New creates a Scanner for JavaScript (including JSX).
func New() *Scanner {
	return &Scanner{
		language: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
	}
}

// Scan returns the require calls in src whose first argument is a string
// literal, in source order. Dynamic requests such as require(name) are
// skipped. Sources with syntax errors are scanned as far as tree-sitter
// recovers.
func (s *Scanner) Scan(src []byte) ([]Require, error) {
	if len(src) == 0 {
		return nil, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(s.language); err != nil {
		return nil, fmt.Errorf("setting javascript language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	var requires []Require
	walk(tree.RootNode(), func(node *tree_sitter.Node) {
		if node.Kind() != "call_expression" {
			return
		}
		if req, ok := parseRequireCall(node, src); ok {
			requires = append(requires, req)
		}
	})
	return requires, nil
}

func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		visit(child)
		walk(child, visit)
	}
}

func parseRequireCall(node *tree_sitter.Node, src []byte) (Require, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return Require{}, false
	}

	var call Call
	switch fn.Kind() {
	case "identifier":
		if fn.Utf8Text(src) != "require" {
			return Require{}, false
		}
		call = CallRequire
	case "member_expression":
		object := fn.ChildByFieldName("object")
		property := fn.ChildByFieldName("property")
		if object == nil || property == nil ||
			object.Utf8Text(src) != "require" || property.Utf8Text(src) != "resolve" {
			return Require{}, false
		}
		call = CallRequireResolve
	default:
		return Require{}, false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return Require{}, false
	}
	request, ok := stringLiteral(args.NamedChild(0), src)
	if !ok {
		return Require{}, false
	}

	pos := node.StartPosition()
	return Require{
		Request: request,
		Call:    call,
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
	}, true
}

// stringLiteral returns the value of a string or substitution-free
// template literal.
func stringLiteral(node *tree_sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string":
	case "template_string":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child != nil && child.Kind() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}

	text := node.Utf8Text(src)
	if len(text) < 2 {
		return "", false
	}
	value := text[1 : len(text)-1]
	if strings.ContainsRune(value, '\\') {
		var ok bool
		if value, ok = unescape(value); !ok {
			return "", false
		}
	}
	if value == "" || strings.ContainsAny(value, "\n") {
		return "", false
	}
	return value, true
}

// unescape decodes the escape sequences of a JavaScript string body. It
// reports false for a malformed sequence.
func unescape(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", false
		}
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if i+2 >= len(s) {
				return "", false
			}
			r, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(r))
			i += 2
		case 'u':
			hex := ""
			if i+1 < len(s) && s[i+1] == '{' {
				end := strings.IndexByte(s[i+1:], '}')
				if end < 0 {
					return "", false
				}
				hex = s[i+2 : i+1+end]
				i += end + 1
			} else {
				if i+4 >= len(s) {
					return "", false
				}
				hex = s[i+1 : i+5]
				i += 4
			}
			r, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || !utf8.ValidRune(rune(r)) {
				return "", false
			}
			b.WriteRune(rune(r))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}
