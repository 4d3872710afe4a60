package parser

import (
	"github.com/policyai/policyai-go/internal/domain/policytype"
)

// Parse turns PolicyType surface syntax, e.g.
//
//	type policyai::EmailPolicy {
//	    is_spam: bool @ agreement,
//	    priority: ["low", "high"] = "low",
//	}
//
// into a policytype.PolicyType. Field names within the declaration must be
// unique; everything else about the grammar is documented on the Parser
// methods below.
func Parse(input string) (*policytype.PolicyType, error) {
	tokens, lexErr := newLexer(input).tokenize()
	if lexErr != nil {
		return nil, lexErr
	}
	p := &parser{tokens: tokens}
	pt, err := p.parsePolicyType()
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func init() {
	policytype.RegisterParser(Parse)
}

// parser is a recursive-descent parser over a flat token stream, in the
// same hand-rolled-scanner style as a bounded-grammar validator: no parser
// generator, no backtracking, one token of lookahead.
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) currentPosition() Position {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Pos
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1].Pos
		return Position{Line: last.Line, Column: last.Column + 1}
	}
	return Position{Line: 1, Column: 1}
}

func (p *parser) peek() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) peekKind(k TokenKind) bool {
	t := p.peek()
	return t != nil && t.Kind == k
}

func (p *parser) advance() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(k TokenKind) *ParseError {
	pos := p.currentPosition()
	t := p.peek()
	if t == nil {
		return unexpectedEOF(k.String(), pos)
	}
	if t.Kind != k {
		return unexpectedToken(k.String(), t.text(), pos)
	}
	p.advance()
	return nil
}

func (p *parser) parseIdentifier() (string, *ParseError) {
	pos := p.currentPosition()
	t := p.advance()
	if t == nil {
		return "", unexpectedEOF("identifier", pos)
	}
	if t.Kind != TokIdentifier {
		return "", unexpectedToken("identifier", t.text(), pos)
	}
	return t.Ident, nil
}

func (p *parser) parseStringLiteral() (string, *ParseError) {
	pos := p.currentPosition()
	t := p.advance()
	if t == nil {
		return "", unexpectedEOF("string literal", pos)
	}
	if t.Kind != TokStringLiteral {
		return "", unexpectedToken("string literal", t.text(), pos)
	}
	return t.Str, nil
}

func (p *parser) parseNumberLiteral() (float64, *ParseError) {
	pos := p.currentPosition()
	t := p.advance()
	if t == nil {
		return 0, unexpectedEOF("number literal", pos)
	}
	if t.Kind != TokNumberLiteral {
		return 0, unexpectedToken("number literal", t.text(), pos)
	}
	return t.Num, nil
}

func (p *parser) parseBoolConflict() (policytype.OnConflict, *ParseError) {
	if !p.peekKind(TokAt) {
		return policytype.ConflictDefault, nil
	}
	p.advance()
	switch {
	case p.peekKind(TokSticky):
		p.advance()
		return policytype.ConflictLargestValue, nil
	case p.peekKind(TokAgreement):
		p.advance()
		return policytype.ConflictAgreement, nil
	default:
		return "", customError("expected 'sticky' or 'agreement' after '@'", p.currentPosition())
	}
}

func (p *parser) parseStringConflict() (policytype.OnConflict, *ParseError) {
	if !p.peekKind(TokAt) {
		return policytype.ConflictDefault, nil
	}
	p.advance()
	switch {
	case p.peekKind(TokLast):
		p.advance()
		if err := p.expect(TokWins); err != nil {
			return "", err
		}
		return policytype.ConflictLargestValue, nil
	case p.peekKind(TokAgreement):
		p.advance()
		return policytype.ConflictAgreement, nil
	default:
		return "", customError("expected 'last wins' or 'agreement' after '@'", p.currentPosition())
	}
}

func (p *parser) parseStringEnumConflict() (policytype.OnConflict, *ParseError) {
	if !p.peekKind(TokAt) {
		return policytype.ConflictDefault, nil
	}
	p.advance()
	switch {
	case p.peekKind(TokHighest):
		p.advance()
		if err := p.expect(TokWins); err != nil {
			return "", err
		}
		return policytype.ConflictLargestValue, nil
	case p.peekKind(TokAgreement):
		p.advance()
		return policytype.ConflictAgreement, nil
	default:
		return "", customError("expected 'highest wins' or 'agreement' after '@'", p.currentPosition())
	}
}

func (p *parser) parseNumberConflict() (policytype.OnConflict, *ParseError) {
	if !p.peekKind(TokAt) {
		return policytype.ConflictDefault, nil
	}
	p.advance()
	switch {
	case p.peekKind(TokLast) || p.peekKind(TokLargest):
		p.advance()
		if err := p.expect(TokWins); err != nil {
			return "", err
		}
		return policytype.ConflictLargestValue, nil
	case p.peekKind(TokAgreement):
		p.advance()
		return policytype.ConflictAgreement, nil
	default:
		return "", customError("expected 'last wins', 'largest wins', or 'agreement' after '@'", p.currentPosition())
	}
}

// parseField parses a single `name: kind [@ conflict] [= default]`
// production. The field kind keyword determines which conflict-keyword
// vocabulary and default-literal type are legal, mirroring the grammar's
// per-kind branches.
func (p *parser) parseField() (policytype.Field, *ParseError) {
	name, err := p.parseIdentifier()
	if err != nil {
		return policytype.Field{}, err
	}
	if err := p.expect(TokColon); err != nil {
		return policytype.Field{}, err
	}

	t := p.peek()
	if t == nil {
		return policytype.Field{}, unexpectedEOF("field type (bool, string, number, or [...)", p.currentPosition())
	}

	switch t.Kind {
	case TokBool:
		p.advance()
		onConflict, err := p.parseBoolConflict()
		if err != nil {
			return policytype.Field{}, err
		}
		def := false
		if p.peekKind(TokEquals) {
			p.advance()
			lit := p.advance()
			pos := p.currentPosition()
			switch {
			case lit != nil && lit.Kind == TokTrue:
				def = true
			case lit != nil && lit.Kind == TokFalse:
				def = false
			default:
				return policytype.Field{}, customError("expected 'true' or 'false' after '='", pos)
			}
		}
		return policytype.Field{Name: name, Kind: policytype.KindBool, BoolDefault: def, OnConflict: onConflict}, nil

	case TokString:
		p.advance()
		onConflict, err := p.parseStringConflict()
		if err != nil {
			return policytype.Field{}, err
		}
		var def *string
		if p.peekKind(TokEquals) {
			p.advance()
			s, err := p.parseStringLiteral()
			if err != nil {
				return policytype.Field{}, err
			}
			def = &s
		}
		return policytype.Field{Name: name, Kind: policytype.KindString, StringDefault: def, OnConflict: onConflict}, nil

	case TokNumber:
		p.advance()
		onConflict, err := p.parseNumberConflict()
		if err != nil {
			return policytype.Field{}, err
		}
		var def *float64
		if p.peekKind(TokEquals) {
			p.advance()
			n, err := p.parseNumberLiteral()
			if err != nil {
				return policytype.Field{}, err
			}
			def = &n
		}
		return policytype.Field{Name: name, Kind: policytype.KindNumber, NumberDefault: def, OnConflict: onConflict}, nil

	case TokLeftBracket:
		p.advance()
		if p.peekKind(TokString) {
			p.advance()
			if err := p.expect(TokRightBracket); err != nil {
				return policytype.Field{}, err
			}
			return policytype.Field{Name: name, Kind: policytype.KindStringArray}, nil
		}
		first, err := p.parseStringLiteral()
		if err != nil {
			return policytype.Field{}, err
		}
		values := []string{first}
		for p.peekKind(TokComma) {
			p.advance()
			v, err := p.parseStringLiteral()
			if err != nil {
				return policytype.Field{}, err
			}
			values = append(values, v)
		}
		if err := p.expect(TokRightBracket); err != nil {
			return policytype.Field{}, err
		}
		onConflict, err := p.parseStringEnumConflict()
		if err != nil {
			return policytype.Field{}, err
		}
		var def *string
		if p.peekKind(TokEquals) {
			p.advance()
			s, err := p.parseStringLiteral()
			if err != nil {
				return policytype.Field{}, err
			}
			def = &s
		}
		return policytype.Field{Name: name, Kind: policytype.KindStringEnum, EnumValues: values, StringDefault: def, OnConflict: onConflict}, nil

	default:
		return policytype.Field{}, customError("expected field type (bool, string, number, or [...)", p.currentPosition())
	}
}

// parsePolicyType parses the full `type Name { field, field, ... }`
// declaration, rejecting duplicate field names.
func (p *parser) parsePolicyType() (*policytype.PolicyType, *ParseError) {
	if err := p.expect(TokType); err != nil {
		return nil, err
	}

	nameParts := []string{}
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	nameParts = append(nameParts, first)
	for p.peekKind(TokDoubleColon) {
		p.advance()
		next, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		nameParts = append(nameParts, next)
	}
	name := nameParts[0]
	for _, part := range nameParts[1:] {
		name += "::" + part
	}

	if err := p.expect(TokLeftBrace); err != nil {
		return nil, err
	}

	var fields []policytype.Field
	seen := make(map[string]bool)

	for !p.peekKind(TokRightBrace) && p.peek() != nil {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if seen[field.Name] {
			return nil, &ParseError{Kind: ErrDuplicateFieldName, Position: p.currentPosition(), Name: field.Name}
		}
		seen[field.Name] = true
		fields = append(fields, field)

		if p.peekKind(TokComma) {
			p.advance()
		} else if !p.peekKind(TokRightBrace) {
			return nil, customError("expected ',' or '}' after field definition", p.currentPosition())
		}
	}

	if err := p.expect(TokRightBrace); err != nil {
		return nil, err
	}

	return &policytype.PolicyType{Name: name, Fields: fields}, nil
}
