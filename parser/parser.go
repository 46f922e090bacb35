// Package parser builds the program tree from token lines. Expressions are
// resolved against the active scope while parsing, so the tree handed to
// code generation holds no unresolved names.
package parser

import (
	"runtime"

	"github.com/pontaoski/tawaqbe/ast"
	"github.com/pontaoski/tawaqbe/errors"
	"github.com/pontaoski/tawaqbe/types"
	"github.com/ztrue/tracerr"
)

// Options are the language choices that change how source is read.
type Options struct {
	// LexicalScoping lets function bodies see the names of the scope they
	// are declared in. Off, a function body starts with no names at all.
	LexicalScoping bool
	// LeftAssociative parses "a - b - c" as "(a - b) - c" instead of
	// "a - (b - c)".
	LeftAssociative bool
}

type Parser struct {
	lines types.Lines
	row   int
	col   int
	arena *ast.Arena
	scope *ast.Scope
	opts  Options
}

func NewParser(lines types.Lines, opts Options) *Parser {
	return &Parser{
		lines: lines,
		arena: ast.NewArena(),
		scope: ast.NewGlobalScope(),
		opts:  opts,
	}
}

// catch turns a diagnostic raised with panic into err.
func catch(err *error) {
	if r := recover(); r != nil {
		rerr, ok := r.(error)
		if _, isRuntime := r.(runtime.Error); ok && !isRuntime {
			*err = tracerr.Wrap(rerr)
		} else {
			panic(r)
		}
	}
}

func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer catch(&err)

	top := p.parseStatements(nil)

	return &ast.Program{
		Arena:    p.arena,
		TopLevel: top,
	}, nil
}

// skipBlank moves the cursor past exhausted and empty lines.
func (p *Parser) skipBlank() {
	for p.row < len(p.lines) && p.col >= len(p.lines[p.row]) {
		p.row++
		p.col = 0
	}
}

// peek returns the next token of the stream, crossing lines. It returns an
// EOF token once the stream is exhausted.
func (p *Parser) peek() types.Token {
	p.skipBlank()
	if p.row >= len(p.lines) {
		return types.Token{Kind: types.EOF, Location: p.eof()}
	}
	return p.lines[p.row][p.col]
}

func (p *Parser) advance() {
	p.col++
}

func (p *Parser) eof() types.Location {
	for row := len(p.lines) - 1; row >= 0; row-- {
		if len(p.lines[row]) > 0 {
			return endOf(p.lines[row])
		}
	}
	return types.Location{}
}

func endOf(line []types.Token) types.Location {
	last := line[len(line)-1]
	loc := last.Location
	loc.Column += len(last.Text)
	return loc
}

// current returns the token under the cursor without leaving the current
// line; past the end of the line it returns an EOF token.
func (p *Parser) current() types.Token {
	line := p.lines[p.row]
	if p.col < len(line) {
		return line[p.col]
	}
	return types.Token{Kind: types.EOF, Location: endOf(line)}
}

func (p *Parser) expect(k ...types.TokenKind) types.Token {
	tok := p.current()
	for _, kind := range k {
		if tok.Kind == kind {
			p.advance()
			return tok
		}
	}

	panic(unexpected(tok, k...))
}

func (p *Parser) resolve(tokens []types.Token, end types.Location, scope *ast.Scope) ast.Expr {
	return newExprParser(tokens, end, scope, p.opts).parse()
}

// parseStatements runs the statement loop until the stream ends or, when
// open is set, until the brace matching open.
func (p *Parser) parseStatements(open *types.Token) []int {
	var ids []int

	for {
		tok := p.peek()

		switch tok.Kind {
		case types.EOF:
			if open != nil {
				panic(errors.UnmatchedDelimiter{Delimiter: open.Text, Opening: open.Location})
			}
			return ids
		case types.RBRACKET:
			p.advance()
			if open != nil {
				return ids
			}
		case types.TYPE:
			ids = append(ids, p.parseVarDecl().ID)
		case types.IDENT:
			ids = append(ids, p.parseCall().ID)
		case types.FN:
			ids = append(ids, p.parseFnDecl().ID)
		default:
			p.advance()
		}
	}
}

// TYPE IDENT '=' expr ';'
func (p *Parser) parseVarDecl() *ast.Node {
	typeTok := p.current()
	kind := p.parseType()

	name := p.expect(types.IDENT)
	p.expect(types.EQUALS)

	line := p.lines[p.row]
	end := -1
	for i := p.col; i < len(line); i++ {
		if line[i].Kind == types.EOS {
			end = i
			break
		}
	}
	if end < 0 {
		panic(unexpected(types.Token{Kind: types.EOF, Location: endOf(line)}, types.EOS))
	}

	value := p.resolve(line[p.col:end], line[end].Location, p.scope)
	p.col = end + 1

	if ref, ok := value.(ast.SymbolRef); !ok || ast.KindOf(ref) != kind {
		value = ast.Eval(value, kind)
	}

	n := p.arena.Append(typeTok.Location, p.scope, &ast.VarDecl{
		Type:  kind,
		Name:  name,
		Value: value,
	})
	p.scope.Declare(name.Text, n)

	return n
}

// IDENT '(' (expr (',' expr)*)? ')'
func (p *Parser) parseCall() *ast.Node {
	name := p.expect(types.IDENT)
	open := p.expect(types.LPAREN)

	line := p.lines[p.row]
	args := p.scope.Args()

	var exprs []ast.Expr
	start := p.col
	depth := 0

	for i := p.col; ; i++ {
		if i >= len(line) {
			panic(errors.UnmatchedDelimiter{Delimiter: open.Text, Opening: open.Location})
		}

		tok := line[i]
		switch {
		case tok.Kind == types.LPAREN:
			depth++
		case tok.Kind == types.RPAREN && depth > 0:
			depth--
		case tok.Kind == types.COMMA && depth == 0:
			exprs = append(exprs, p.resolve(line[start:i], tok.Location, args))
			start = i + 1
		case tok.Kind == types.RPAREN:
			if i > start || len(exprs) > 0 {
				exprs = append(exprs, p.resolve(line[start:i], tok.Location, args))
			}
			p.col = i + 1

			return p.arena.Append(name.Location, p.scope, &ast.FnCall{
				Name: name,
				Args: exprs,
			})
		}
	}
}

// fn IDENT '(' (TYPE IDENT (',' TYPE IDENT)*)? ')' ('->' TYPE)? '{' body '}'
func (p *Parser) parseFnDecl() *ast.Node {
	fnTok := p.expect(types.FN)
	name := p.expect(types.IDENT)
	p.expect(types.LPAREN)

	var args []ast.FnArg
	if p.current().Kind != types.RPAREN {
		for {
			kind := p.parseType()
			argName := p.expect(types.IDENT)
			args = append(args, ast.FnArg{Type: kind, Name: argName})

			if p.expect(types.COMMA, types.RPAREN).Kind == types.RPAREN {
				break
			}
		}
	} else {
		p.expect(types.RPAREN)
	}

	var ret *types.Type
	if p.current().Kind == types.ARROW {
		p.advance()
		kind := p.parseType()
		ret = &kind
	}

	open := p.expect(types.LBRACKET)

	enclosing := p.scope
	p.scope = enclosing.Function(p.opts.LexicalScoping)
	body := p.parseStatements(&open)
	p.scope = enclosing

	return p.arena.Append(fnTok.Location, enclosing, &ast.FnDecl{
		Name:    name,
		Args:    args,
		Returns: ret,
		Body:    body,
	})
}

func (p *Parser) parseType() types.Type {
	tok := p.expect(types.TYPE)
	kind, ok := types.ParseType(tok.Text)
	if !ok {
		panic(unexpected(tok, types.TYPE))
	}
	return kind
}
