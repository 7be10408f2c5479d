package query

import (
	"regexp"
	"strings"
)

// TokenKind is the lexical class of a token.
type TokenKind uint8

// Token kinds in rule priority order.
const (
	TokenFuzz TokenKind = iota + 1
	TokenBoost
	TokenQuoted
	TokenLParen
	TokenRParen
	TokenAnd
	TokenOr
	TokenNot
	TokenSpace
	TokenWord
)

var tokenKindNames = map[TokenKind]string{
	TokenFuzz:   "fuzz",
	TokenBoost:  "boost",
	TokenQuoted: "quoted_lit",
	TokenLParen: "lparen",
	TokenRParen: "rparen",
	TokenAnd:    "and_op",
	TokenOr:     "or_op",
	TokenNot:    "not_op",
	TokenSpace:  "space",
	TokenWord:   "word",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is one lexeme of a query string.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

type tokenRule struct {
	kind TokenKind
	re   *regexp.Regexp
	// keepParen leaves a trailing "(" in the input; RE2 has no lookahead.
	keepParen bool
}

// tokenRules are tried in order; the first rule that matches wins.
var tokenRules = []tokenRule{
	{kind: TokenFuzz, re: regexp.MustCompile(`^~(?:\d+(?:\.\d+)?|\.\d+)`)},
	{kind: TokenBoost, re: regexp.MustCompile(`^\^[-+]?\d+(?:\.\d+)?`)},
	{kind: TokenQuoted, re: regexp.MustCompile(`^\s*"(?:\\"|[^"])+"`)},
	{kind: TokenLParen, re: regexp.MustCompile(`^\s*\(\s*`)},
	{kind: TokenRParen, re: regexp.MustCompile(`^\s*\)\s*`)},
	{kind: TokenAnd, re: regexp.MustCompile(`^\s*(?:&&|AND)(?:\s+|$)`)},
	{kind: TokenAnd, re: regexp.MustCompile(`^\s*,\s*`)},
	{kind: TokenOr, re: regexp.MustCompile(`^\s*(?:\|\||OR)(?:\s+|$)`)},
	{kind: TokenNot, re: regexp.MustCompile(`^\s*NOT(?:\s+|\()`), keepParen: true},
	{kind: TokenNot, re: regexp.MustCompile(`^\s*[!-]\s*`)},
	{kind: TokenSpace, re: regexp.MustCompile(`^\s+`)},
	{kind: TokenWord, re: regexp.MustCompile(`^(?:\\[\s,()^~]|[^\s,()^~])+`)},
	{kind: TokenWord, re: regexp.MustCompile(`^(?:\\[\s,()]|[^\s,()])`)},
}

// Tokenize splits a query string into tokens. It is purely lexical:
// whether a token acts as an operator is decided by the expression builder.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for pos < len(input) {
		tok, ok := nextToken(input[pos:])
		if !ok {
			return nil, lexicalError(pos, "invalid character")
		}
		tok.Pos = pos
		tokens = append(tokens, tok)
		pos += len(tok.Text)
	}
	return tokens, nil
}

func nextToken(rest string) (Token, bool) {
	for _, rule := range tokenRules {
		loc := rule.re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}
		text := rest[:loc[1]]
		if rule.keepParen {
			text = strings.TrimSuffix(text, "(")
		}
		return Token{Kind: rule.kind, Text: text}, true
	}
	return Token{}, false
}
