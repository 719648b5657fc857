package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenIn
	tokenHas
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	lx := &lexer{input: input}
	for lx.pos < len(lx.input) {
		if err := lx.step(); err != nil {
			return nil, err
		}
	}
	return lx.tokens, nil
}

func (lx *lexer) emit(kind tokenKind, raw string) {
	lx.tokens = append(lx.tokens, token{kind: kind, raw: raw})
}

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos]
}

func (lx *lexer) step() error {
	ch := lx.input[lx.pos]
	switch {
	case isSpace(ch):
		lx.pos++
		return nil
	case ch == '"' || ch == '\'':
		return lx.quoted(ch)
	}

	if kind, raw, ok := lx.operator(); ok {
		lx.emit(kind, raw)
		return nil
	}

	switch ch {
	case '=', '&', '|':
		return fmt.Errorf("visibility/expr: unexpected %q at offset %d", ch, lx.pos)
	}

	start := lx.pos
	for lx.pos < len(lx.input) && !isDelimiter(lx.input[lx.pos]) {
		lx.pos++
	}
	word := lx.input[start:lx.pos]
	switch strings.ToLower(word) {
	case "true", "false":
		lx.emit(tokenBool, strings.ToLower(word))
	case "null", "nil":
		lx.emit(tokenNull, "null")
	case "in":
		lx.emit(tokenIn, "in")
	case "has":
		lx.emit(tokenHas, "has")
	default:
		if looksLikeNumber(word) {
			lx.emit(tokenNumber, word)
		} else {
			lx.emit(tokenIdentifier, word)
		}
	}
	return nil
}

func (lx *lexer) operator() (tokenKind, string, bool) {
	rest := lx.input[lx.pos:]
	for _, op := range []struct {
		raw  string
		kind tokenKind
	}{
		{"==", tokenEq}, {"!=", tokenNeq}, {"&&", tokenAnd}, {"||", tokenOr},
		{"!", tokenNot}, {"(", tokenLParen}, {")", tokenRParen},
		{"[", tokenLBracket}, {"]", tokenRBracket}, {",", tokenComma},
	} {
		if strings.HasPrefix(rest, op.raw) {
			lx.pos += len(op.raw)
			return op.kind, op.raw, true
		}
	}
	return 0, "", false
}

func (lx *lexer) quoted(quote byte) error {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.input) {
		switch lx.input[lx.pos] {
		case '\\':
			lx.pos += 2
			continue
		case quote:
			lx.pos++
			body := lx.input[start+1 : lx.pos-1]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			lx.emit(tokenString, value)
			return nil
		}
		lx.pos++
	}
	return errors.New("visibility/expr: unterminated string literal")
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	if isSpace(ch) {
		return true
	}
	switch ch {
	case '(', ')', '[', ']', ',', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}
