package parser

import (
	"strconv"

	"github.com/pontaoski/tawaqbe/ast"
	"github.com/pontaoski/tawaqbe/errors"
	"github.com/pontaoski/tawaqbe/types"
)

var factorKinds = []types.TokenKind{types.LPAREN, types.INT, types.FLOAT, types.IDENT}

// exprParser resolves one expression span. end stands in for the token
// following the span and is what gets reported when the span runs out.
type exprParser struct {
	tokens    []types.Token
	idx       int
	end       types.Token
	scope     *ast.Scope
	leftAssoc bool
}

func newExprParser(tokens []types.Token, end types.Location, scope *ast.Scope, opts Options) *exprParser {
	return &exprParser{
		tokens:    tokens,
		end:       types.Token{Kind: types.EOF, Location: end},
		scope:     scope,
		leftAssoc: opts.LeftAssociative,
	}
}

// ParseExpression resolves tokens as a single expression against scope.
func ParseExpression(tokens []types.Token, scope *ast.Scope, opts Options) (e ast.Expr, err error) {
	defer catch(&err)

	var end types.Location
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		end = last.Location
		end.Column += len(last.Text)
	}

	return newExprParser(tokens, end, scope, opts).parse(), nil
}

func (p *exprParser) peek() types.Token {
	if p.idx < len(p.tokens) {
		return p.tokens[p.idx]
	}
	return p.end
}

func (p *exprParser) accept() types.Token {
	tok := p.peek()
	if p.idx < len(p.tokens) {
		p.idx++
	}
	return tok
}

func (p *exprParser) expect(k ...types.TokenKind) types.Token {
	tok := p.peek()
	for _, kind := range k {
		if tok.Kind == kind {
			return p.accept()
		}
	}

	panic(unexpected(tok, k...))
}

func unexpected(tok types.Token, expected ...types.TokenKind) errors.UnexpectedToken {
	return errors.UnexpectedToken{
		Expected: expected,
		Got:      tok.Kind,
		Found:    tok.Text,
		Location: tok.Location,
	}
}

// parse consumes the whole span.
func (p *exprParser) parse() ast.Expr {
	expr := p.parseExpr()
	if p.idx != len(p.tokens) {
		panic(unexpected(p.peek(), types.PLUS, types.MINUS, types.STAR, types.SLASH))
	}
	return expr
}

// expr ::= term (('+' | '-') expr)?
func (p *exprParser) parseExpr() ast.Expr {
	if p.leftAssoc {
		return p.parseExprLeft()
	}

	term := p.parseTerm()

	switch p.peek().Kind {
	case types.PLUS:
		p.accept()
		return ast.Add{Left: term, Right: p.parseExpr()}
	case types.MINUS:
		p.accept()
		return ast.Sub{Left: term, Right: p.parseExpr()}
	}

	return term
}

// term ::= factor (('*' | '/') term)?
func (p *exprParser) parseTerm() ast.Expr {
	if p.leftAssoc {
		return p.parseTermLeft()
	}

	factor := p.parseFactor()

	switch p.peek().Kind {
	case types.STAR:
		p.accept()
		return ast.Mul{Left: factor, Right: p.parseTerm()}
	case types.SLASH:
		p.accept()
		return ast.Div{Left: factor, Right: p.parseTerm()}
	}

	return factor
}

func (p *exprParser) parseExprLeft() ast.Expr {
	lhs := p.parseTerm()
	for {
		switch p.peek().Kind {
		case types.PLUS:
			p.accept()
			lhs = ast.Add{Left: lhs, Right: p.parseTerm()}
		case types.MINUS:
			p.accept()
			lhs = ast.Sub{Left: lhs, Right: p.parseTerm()}
		default:
			return lhs
		}
	}
}

func (p *exprParser) parseTermLeft() ast.Expr {
	lhs := p.parseFactor()
	for {
		switch p.peek().Kind {
		case types.STAR:
			p.accept()
			lhs = ast.Mul{Left: lhs, Right: p.parseFactor()}
		case types.SLASH:
			p.accept()
			lhs = ast.Div{Left: lhs, Right: p.parseFactor()}
		default:
			return lhs
		}
	}
}

// factor ::= '(' expr ')' | INT | FLOAT | IDENT
func (p *exprParser) parseFactor() ast.Expr {
	tok := p.expect(factorKinds...)

	switch tok.Kind {
	case types.LPAREN:
		expr := p.parseExpr()
		p.expect(types.RPAREN)
		return expr
	case types.INT:
		parsed, err := strconv.ParseInt(tok.Text, 10, 64)
		if err == nil {
			return ast.IntConst(parsed)
		}
		// out of range or an exponent such as 1e5
		if f, ferr := strconv.ParseFloat(tok.Text, 64); ferr == nil {
			return ast.FloatConst(f)
		}
		panic(errors.MalformedNumericLiteral{Text: tok.Text, Location: tok.Location})
	case types.FLOAT:
		parsed, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			panic(errors.MalformedNumericLiteral{Text: tok.Text, Location: tok.Location})
		}
		return ast.FloatConst(parsed)
	case types.IDENT:
		return p.resolve(tok)
	}

	panic("unhandled")
}

func (p *exprParser) resolve(tok types.Token) ast.Expr {
	if n, ok := p.scope.Resolve(tok.Text); ok {
		if decl, ok := n.Kind.(*ast.VarDecl); ok {
			return ast.SymbolRef{Name: tok, Decl: decl}
		}
	}

	panic(errors.UndefinedSymbol{Name: tok.Text, Location: tok.Location})
}
