package expr

import (
	"errors"
	"fmt"
)

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return root, nil
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) match(kind tokenKind) bool {
	if p.done() || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.match(tokenNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.match(tokenLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	if p.done() {
		return nil, errors.New("visibility/expr: empty expression")
	}
	tok := p.tokens[p.pos]
	if tok.kind != tokenIdentifier {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", tok.raw)
	}
	p.pos++
	path := tok.raw

	switch {
	case p.match(tokenEq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{path: path, negate: false, want: lit}, nil
	case p.match(tokenNeq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{path: path, negate: true, want: lit}, nil
	case p.match(tokenIn):
		set, err := p.list()
		if err != nil {
			return nil, err
		}
		return inNode{path: path, set: set}, nil
	case p.match(tokenHas):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return hasNode{path: path, want: lit}, nil
	}
	return truthyNode{path: path}, nil
}

func (p *parser) list() ([]literal, error) {
	if !p.match(tokenLBracket) {
		return nil, errors.New("visibility/expr: 'in' expects a [list]")
	}
	var out []literal
	if p.match(tokenRBracket) {
		return out, nil
	}
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		if p.match(tokenComma) {
			continue
		}
		if p.match(tokenRBracket) {
			return out, nil
		}
		return nil, errors.New("visibility/expr: missing closing ']'")
	}
}

func (p *parser) literal() (literal, error) {
	if p.done() {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// Bare words are read as strings: `role == founder`.
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}
