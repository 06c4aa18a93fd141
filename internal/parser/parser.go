// Package parser implements a recursive-descent parser for the Yamlet
// expression grammar (spec.md §4.1), producing an ast.Expr tree. The
// parser struct mirrors cue/parser's design: a scanner one token ahead,
// an errors.List that accumulates diagnostics instead of bailing out on
// the first one, and one parse method per precedence level.
package parser

import (
	"strconv"
	"strings"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/internal/scanner"
	"github.com/JoshDreamland/yamlet/token"
)

type parser struct {
	filename string
	scanner  scanner.Scanner
	errs     errors.List

	pos token.Position
	tok token.Token
	lit string
}

func (p *parser) init(filename string, base token.Position, src []byte) {
	p.filename = filename
	eh := func(pos token.Position, msg string) {
		p.errs.Add(errors.Newf(errors.LexError, pos, "%s", msg))
	}
	p.scanner.Init(filename, base, src, eh)
	p.next()
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.scanner.Scan()
}

func (p *parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.errs.Add(errors.Newf(errors.ParseError, pos, format, args...))
}

func (p *parser) expect(tok token.Token) token.Position {
	pos := p.pos
	if p.tok != tok {
		p.errorf(p.pos, "expected %s, found %s", tok, p.tok)
	} else {
		p.next()
	}
	return pos
}

// ParseExpr parses a complete !expr scalar.
func ParseExpr(filename string, base token.Position, src []byte) (ast.Expr, errors.List) {
	var p parser
	p.init(filename, base, src)
	x := p.parseExpr()
	if p.tok != token.EOF {
		p.errorf(p.pos, "unexpected %s after expression", p.tok)
	}
	return x, p.errs
}

// ParseLambdaSource parses a !lambda scalar: `params ':' body`, with an
// optional leading `lambda` keyword (spec.md §4.1 rule 1, §6.1).
func ParseLambdaSource(filename string, base token.Position, src []byte) (*ast.LambdaExpr, errors.List) {
	var p parser
	p.init(filename, base, src)
	start := p.pos
	if p.tok == token.LAMBDA {
		p.next()
	}
	params := p.parseParams()
	body := p.parseExpr()
	if p.tok != token.EOF {
		p.errorf(p.pos, "unexpected %s after lambda body", p.tok)
	}
	return &ast.LambdaExpr{LambdaPos: start, Params: params, Body: body}, p.errs
}

// ParseFormatString parses a !fmt scalar, or the interpolated contents of
// a quoted string literal, into literal runs interleaved with {expr}
// slots (spec.md §4.6).
func ParseFormatString(filename string, base token.Position, raw string) (*ast.FormatExpr, errors.List) {
	var errs errors.List
	parts, pos := splitFormatParts(filename, base, raw, &errs)
	return &ast.FormatExpr{StartPos: pos, Parts: parts}, errs
}

// splitFormatParts scans raw for literal runs and {expr} slots. {{ and }}
// are literal braces. A slot is brace-depth aware so a nested mapping
// literal inside a slot doesn't prematurely close it; it is not
// string-literal aware inside the slot scan, mirroring the byte-level,
// string-unaware preprocessor documented in spec.md §6.2.
func splitFormatParts(filename string, base token.Position, raw string, errs *errors.List) ([]ast.FormatPart, token.Position) {
	var parts []ast.FormatPart
	var lit strings.Builder
	i := 0
	n := len(raw)
	for i < n {
		c := raw[i]
		switch c {
		case '{':
			if i+1 < n && raw[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			if lit.Len() > 0 {
				parts = append(parts, ast.FormatPart{Literal: lit.String()})
				lit.Reset()
			}
			depth := 1
			start := i + 1
			j := start
			for j < n && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto found
					}
				}
				j++
			}
		found:
			if depth != 0 {
				errs.Add(errors.Newf(errors.ParseError, base, "unterminated {expression} slot in format string"))
				i = n
				break
			}
			slotSrc := raw[start:j]
			slotBase := base.Add(start)
			expr, slotErrs := ParseExpr(filename, slotBase, []byte(slotSrc))
			for _, e := range slotErrs {
				errs.Add(e)
			}
			parts = append(parts, ast.FormatPart{Slot: expr})
			i = j + 1
		case '}':
			if i+1 < n && raw[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			lit.WriteByte('}')
			i++
		case '\\':
			if i+1 < n {
				lit.WriteByte(unescapeByte(raw[i+1]))
				i += 2
				continue
			}
			lit.WriteByte('\\')
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.FormatPart{Literal: lit.String()})
	}
	return parts, base
}

func unescapeByte(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\\':
		return '\\'
	case '"':
		return '"'
	case '\'':
		return '\''
	default:
		return b
	}
}

// --- precedence levels, loosest to tightest (spec.md §4.1) ---

func (p *parser) parseExpr() ast.Expr {
	if p.tok == token.LAMBDA {
		return p.parseLambda()
	}
	return p.parseConditional()
}

func (p *parser) parseLambda() ast.Expr {
	start := p.pos
	p.next() // consume 'lambda'
	params := p.parseParams()
	body := p.parseExpr()
	return &ast.LambdaExpr{LambdaPos: start, Params: params, Body: body}
}

func (p *parser) parseParams() []*ast.Ident {
	var params []*ast.Ident
	if p.tok == token.COLON {
		p.next()
		return params
	}
	params = append(params, p.parseIdent())
	for p.tok == token.COMMA {
		p.next()
		params = append(params, p.parseIdent())
	}
	p.expect(token.COLON)
	return params
}

func (p *parser) parseIdent() *ast.Ident {
	pos, name := p.pos, p.lit
	if p.tok != token.IDENT {
		p.errorf(p.pos, "expected identifier, found %s", p.tok)
		name = ""
	} else {
		p.next()
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

func (p *parser) parseConditional() ast.Expr {
	then := p.parseLogicalOr()
	if p.tok == token.IF {
		ifPos := p.pos
		p.next()
		cond := p.parseLogicalOr()
		p.expect(token.ELSE)
		elseX := p.parseConditional()
		return &ast.CondExpr{Then: then, IfPos: ifPos, Cond: cond, Else: elseX}
	}
	return then
}

func (p *parser) parseLogicalOr() ast.Expr {
	x := p.parseLogicalAnd()
	for p.tok == token.OR {
		opPos, op := p.pos, p.tok
		p.next()
		y := p.parseLogicalAnd()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseLogicalAnd() ast.Expr {
	x := p.parseNot()
	for p.tok == token.AND {
		opPos, op := p.pos, p.tok
		p.next()
		y := p.parseNot()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseNot() ast.Expr {
	if p.tok == token.NOT {
		opPos := p.pos
		p.next()
		x := p.parseNot()
		return &ast.UnaryExpr{OpPos: opPos, Op: token.NOT, X: x}
	}
	return p.parseComparison()
}

func isComparisonOp(t token.Token) bool {
	switch t {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.IN, token.IS:
		return true
	}
	return false
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseAdditive()
	if isComparisonOp(p.tok) {
		opPos, op := p.pos, p.tok
		p.next()
		y := p.parseAdditive()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.tok == token.ADD || p.tok == token.SUB {
		opPos, op := p.pos, p.tok
		p.next()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.MUL || p.tok == token.QUO || p.tok == token.REM {
		opPos, op := p.pos, p.tok
		p.next()
		y := p.parseUnary()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.SUB {
		opPos := p.pos
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{OpPos: opPos, Op: token.SUB, X: x}
	}
	return p.parseComposition()
}

// startsPrimary reports whether tok can begin a primary expression, used
// to recognize juxtaposition composition: two primaries with nothing but
// whitespace between them.
func startsPrimary(tok token.Token) bool {
	switch tok {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.LPAREN, token.LBRACK, token.LBRACE:
		return true
	}
	return false
}

func (p *parser) parseComposition() ast.Expr {
	x := p.parsePostfix()
	for startsPrimary(p.tok) {
		y := p.parsePostfix()
		x = &ast.ComposeExpr{X: x, Y: y}
	}
	return x
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.PERIOD:
			p.next()
			sel := p.parseIdent()
			x = &ast.SelectorExpr{X: x, Sel: sel}
		case token.LPAREN:
			p.next()
			var args []ast.Expr
			if p.tok != token.RPAREN {
				args = append(args, p.parseExpr())
				for p.tok == token.COMMA {
					p.next()
					args = append(args, p.parseExpr())
				}
			}
			lparen := p.pos
			p.expect(token.RPAREN)
			x = &ast.CallExpr{Fun: x, Lparen: lparen, Args: args}
		case token.LBRACK:
			lbrack := p.pos
			p.next()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: idx}
		case token.LBRACE:
			lit := p.parseMapLit()
			x = &ast.ExtensionExpr{X: x, Elts: lit}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.IDENT, token.COND:
		pos, name := p.pos, p.lit
		p.next()
		return &ast.Ident{NamePos: pos, Name: name}
	case token.INT:
		pos, lit := p.pos, p.lit
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.errorf(pos, "malformed integer literal %q", lit)
		}
		p.next()
		return &ast.IntLit{ValuePos: pos, Value: v}
	case token.FLOAT:
		pos, lit := p.pos, p.lit
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			p.errorf(pos, "malformed float literal %q", lit)
		}
		p.next()
		return &ast.FloatLit{ValuePos: pos, Value: v}
	case token.STRING:
		pos, raw := p.pos, p.lit
		p.next()
		fe, errs := ParseFormatString(p.filename, pos, raw)
		for _, e := range errs {
			p.errs.Add(e)
		}
		return &ast.StringLit{ValuePos: pos, Raw: raw, Parts: fe.Parts}
	case token.LPAREN:
		lparen := p.pos
		p.next()
		x := p.parseExpr()
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen}
	case token.LBRACK:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseMapLit()
	default:
		pos := p.pos
		p.errorf(pos, "unexpected %s", p.tok)
		p.next()
		return &ast.BadExpr{From: pos}
	}
}

func (p *parser) parseListLit() ast.Expr {
	lbrack := p.pos
	p.next()
	var elts []ast.Expr
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elts = append(elts, p.parseExpr())
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RBRACK)
	return &ast.ListLit{Lbrack: lbrack, Elts: elts}
}

func (p *parser) parseMapLit() *ast.MapLit {
	lbrace := p.pos
	p.next()
	var elts []ast.MapEntry
	for p.tok != token.RBRACE && p.tok != token.EOF {
		var entry ast.MapEntry
		entry.KeyPos = p.pos
		switch p.tok {
		case token.IDENT:
			entry.Key = p.lit
			p.next()
		case token.STRING:
			raw := p.lit
			keyPos := p.pos
			p.next()
			fe, errs := ParseFormatString(p.filename, keyPos, raw)
			for _, e := range errs {
				p.errs.Add(e)
			}
			entry.Quoted = true
			entry.KeyExpr = &ast.StringLit{ValuePos: keyPos, Raw: raw, Parts: fe.Parts}
		default:
			p.errorf(p.pos, "expected mapping key, found %s", p.tok)
		}
		p.expect(token.COLON)
		entry.Value = p.parseExpr()
		elts = append(elts, entry)
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return &ast.MapLit{Lbrace: lbrace, Elts: elts}
}
