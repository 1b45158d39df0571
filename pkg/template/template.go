// Package template implements the placeholder grammar used by job
// configurations: literal text interleaved with {{key}} references,
// plus numeric range expansion ([a..b]) and strftime date directives.
//
// Templates are compiled once and rendered many times against different
// key/value maps. The grammar is total: every input string compiles,
// with unmatched "{{" sequences degrading to literal text.
package template

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenKey
)

type token struct {
	kind tokenKind
	text string // literal text, or key name
}

// Template is a compiled placeholder template.
//
// Supported syntax:
//   - `{{name}}`: replaced with the value bound to "name" at render time.
//     A single '{' or '}' is allowed inside the name; the reference ends
//     at the first "}}".
//   - any other text: emitted verbatim. Single braces need no escaping,
//     and a "{{" with no closing "}}" is kept as the literal "{{".
type Template struct {
	tokens []token
}

// Compile parses a template string into a token sequence.
func Compile(s string) *Template {
	var tokens []token
	for len(s) > 0 {
		open := strings.Index(s, "{{")
		if open == -1 {
			tokens = append(tokens, token{kind: tokenLiteral, text: s})
			break
		}
		if open > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: s[:open]})
			s = s[open:]
		}

		key, rest, ok := scanKey(s[2:])
		if !ok || key == "" {
			// No terminating "}}" (or an empty name): the braces are literal.
			tokens = append(tokens, token{kind: tokenLiteral, text: "{{"})
			s = s[2:]
			continue
		}
		tokens = append(tokens, token{kind: tokenKey, text: key})
		s = rest
	}
	return &Template{tokens: tokens}
}

// scanKey consumes a key name terminated by "}}". A '}' that is not
// immediately followed by another '}' belongs to the name.
func scanKey(s string) (key, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '}' && i+1 < len(s) && s[i+1] == '}' {
			return s[:i], s[i+2:], true
		}
	}
	return "", "", false
}

// Render substitutes every key reference with its value from vals.
// The first reference with no binding fails the whole render.
func (t *Template) Render(vals map[string]string) (string, error) {
	var b strings.Builder
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokenLiteral:
			b.WriteString(tok.text)
		case tokenKey:
			v, found := vals[tok.text]
			if !found {
				return "", fmt.Errorf("could not find value: %s", tok.text)
			}
			b.WriteString(v)
		}
	}
	return b.String(), nil
}

// Keys returns the distinct key names referenced by the template, in
// first-appearance order.
func (t *Template) Keys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, tok := range t.tokens {
		if tok.kind != tokenKey {
			continue
		}
		if _, dup := seen[tok.text]; dup {
			continue
		}
		seen[tok.text] = struct{}{}
		keys = append(keys, tok.text)
	}
	return keys
}
