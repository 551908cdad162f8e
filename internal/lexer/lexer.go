package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind classifies a token.
type Kind int

const (
	Keyword Kind = iota
	Ident
	Literal
	Number
	Bind
	Function
	Group
	Punct
)

// Token is one node of the shallow token tree. Function tokens carry
// the callee name in Text and their argument tokens in Children;
// Group tokens carry the parenthesized tokens in Children.
type Token struct {
	Kind     Kind
	Text     string
	Children []Token
}

// maxDepth bounds parenthesis nesting so pathological input cannot
// blow the stack.
const maxDepth = 200

// keywords are the navigation keywords the extractor cares about.
// Function-style names (COUNT, SUM, NVL, ...) are deliberately not
// listed so they tokenize as function calls.
var keywords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {}, "REPLACE": {},
	"FROM": {}, "WHERE": {}, "JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {},
	"FULL": {}, "CROSS": {}, "OUTER": {}, "ON": {}, "USING": {}, "NATURAL": {},
	"GROUP": {}, "ORDER": {}, "BY": {}, "HAVING": {}, "UNION": {}, "ALL": {},
	"DISTINCT": {}, "AS": {}, "INTO": {}, "VALUES": {}, "SET": {}, "AND": {},
	"OR": {}, "NOT": {}, "IN": {}, "IS": {}, "NULL": {}, "BETWEEN": {}, "LIKE": {},
	"EXISTS": {}, "CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {},
	"ASC": {}, "DESC": {}, "LIMIT": {}, "OFFSET": {}, "WITH": {}, "FOR": {},
	"CONNECT": {}, "START": {},
}

// Tokenize splits a SQL text into a token tree. It is permissive:
// unterminated literals and unbalanced parentheses consume to end of
// input instead of failing. Only runaway nesting returns an error.
func Tokenize(sql string) ([]Token, error) {
	s := &scanner{src: []rune(sql)}
	return s.scan(0)
}

type scanner struct {
	src []rune
	pos int
}

func (s *scanner) peek(off int) rune {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

// scan reads tokens until end of input or, when depth > 0, the closing
// parenthesis of the current group.
func (s *scanner) scan(depth int) ([]Token, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("parenthesis nesting exceeds %d", maxDepth)
	}

	var toks []Token
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		switch {
		case unicode.IsSpace(r):
			s.pos++

		case r == '-' && s.peek(1) == '-':
			s.skipLineComment()

		case r == '/' && s.peek(1) == '*':
			s.skipBlockComment()

		case r == '\'':
			toks = append(toks, Token{Kind: Literal, Text: s.stringLiteral()})

		case r == '"':
			toks = append(toks, Token{Kind: Ident, Text: s.quotedIdent()})

		case unicode.IsDigit(r):
			toks = append(toks, Token{Kind: Number, Text: s.number()})

		case r == ':' && isIdentRune(s.peek(1)):
			s.pos++
			toks = append(toks, Token{Kind: Bind, Text: ":" + s.word()})

		case isIdentStart(r):
			tok, err := s.identOrCall(depth)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)

		case r == '(':
			s.pos++
			children, err := s.scan(depth + 1)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: Group, Children: children})

		case r == ')':
			s.pos++
			if depth > 0 {
				return toks, nil
			}
			// Stray close at top level, drop it.

		default:
			toks = append(toks, Token{Kind: Punct, Text: string(r)})
			s.pos++
		}
	}
	return toks, nil
}

// identOrCall reads an identifier and promotes it to a function call
// when an opening parenthesis follows.
func (s *scanner) identOrCall(depth int) (Token, error) {
	word := s.word()
	if _, ok := keywords[strings.ToUpper(word)]; ok {
		return Token{Kind: Keyword, Text: word}, nil
	}

	// Whitespace between name and argument list is allowed.
	for s.pos < len(s.src) && unicode.IsSpace(s.src[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '(' {
		s.pos++
		children, err := s.scan(depth + 1)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: Function, Text: word, Children: children}, nil
	}
	return Token{Kind: Ident, Text: word}, nil
}

func (s *scanner) word() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentRune(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) number() string {
	start := s.pos
	for s.pos < len(s.src) && (unicode.IsDigit(s.src[s.pos]) || s.src[s.pos] == '.') {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

// stringLiteral consumes a single-quoted literal, honoring doubled
// quote escapes. An unterminated literal runs to end of input.
func (s *scanner) stringLiteral() string {
	start := s.pos
	s.pos++ // opening quote
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\'' {
			if s.peek(1) == '\'' {
				s.pos += 2
				continue
			}
			s.pos++
			break
		}
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) quotedIdent() string {
	s.pos++ // opening quote
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '"' {
		s.pos++
	}
	word := string(s.src[start:s.pos])
	if s.pos < len(s.src) {
		s.pos++ // closing quote
	}
	return word
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '#' || r == '.'
}
