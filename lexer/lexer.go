// Package lexer turns source text into lines of tokens. Statements never
// span lines, so the parser consumes the result line by line.
package lexer

import (
	"bufio"
	"io"
	"unicode"

	"github.com/pontaoski/tawaqbe/types"
)

// Columns are byte offsets into the line.
type Lexer struct {
	pos    types.Location
	last   int
	reader *bufio.Reader
	line   []types.Token
	lines  types.Lines
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Location{Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

func (l *Lexer) newline() {
	l.lines = append(l.lines, l.line)
	l.line = nil
	l.pos.Row++
	l.pos.Column = 0
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos.Column -= l.last
}

func (l *Lexer) read() (rune, error) {
	r, size, err := l.reader.ReadRune()
	if err == nil {
		l.pos.Column += size
		l.last = size
	}
	return r, err
}

func (l *Lexer) peekByte() byte {
	byt, err := l.reader.Peek(1)
	if err != nil || len(byt) == 0 {
		return 0
	}
	return byt[0]
}

func (l *Lexer) emit(kind types.TokenKind, text string, at types.Location) {
	l.line = append(l.line, types.Token{
		Kind:     kind,
		Text:     text,
		Location: at,
	})
}

// Identifiers become QBE and LLVM names, so only ASCII is accepted.
func firstChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func digit(r rune) bool {
	return r >= '0' && r <= '9'
}

func otherChar(r rune) bool {
	return firstChar(r) || digit(r)
}

// numberChar also accepts letters so that "12ab" or "1.2.3" reach the
// parser as one literal and are reported as malformed there.
func numberChar(r rune) bool {
	return r == '.' || otherChar(r)
}

func (l *Lexer) lexWhile(first rune, accept func(rune) bool) (string, error) {
	lit := string(first)
	for {
		r, err := l.read()
		if err != nil {
			if err == io.EOF {
				return lit, nil
			}
			return lit, err
		}

		if !accept(r) {
			l.backup()
			return lit, nil
		}
		lit += string(r)
	}
}

func (l *Lexer) skipComment() error {
	for {
		if l.peekByte() == '\n' {
			return nil
		}
		if _, err := l.read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

var keywords = map[string]types.TokenKind{
	"fn":  types.FN,
	"i64": types.TYPE,
	"f64": types.TYPE,
}

var punctuation = map[rune]types.TokenKind{
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACKET,
	'}': types.RBRACKET,
	',': types.COMMA,
	';': types.EOS,
	'=': types.EQUALS,
	'+': types.PLUS,
	'*': types.STAR,
}

// Lex reads the whole input. The returned slice has one entry per source
// line, including empty entries for blank lines.
func (l *Lexer) Lex() (types.Lines, error) {
	for {
		at := l.pos
		r, err := l.read()
		if err != nil {
			if err == io.EOF {
				if l.pos.Column > 0 || len(l.line) > 0 {
					l.lines = append(l.lines, l.line)
					l.line = nil
				}
				return l.lines, nil
			}
			return nil, err
		}

		if kind, ok := punctuation[r]; ok {
			l.emit(kind, string(r), at)
			continue
		}

		switch {
		case r == '\n':
			l.newline()
		case r == '-':
			if l.peekByte() == '>' {
				if _, err := l.read(); err != nil {
					return nil, err
				}
				l.emit(types.ARROW, "->", at)
				continue
			}
			l.emit(types.MINUS, "-", at)
		case r == '/':
			if l.peekByte() == '/' {
				if err := l.skipComment(); err != nil {
					return nil, err
				}
				continue
			}
			l.emit(types.SLASH, "/", at)
		case unicode.IsSpace(r):
			continue
		case digit(r):
			lit, err := l.lexWhile(r, numberChar)
			if err != nil {
				return nil, err
			}

			kind := types.INT
			for _, c := range lit {
				if c == '.' {
					kind = types.FLOAT
					break
				}
			}
			l.emit(kind, lit, at)
		case firstChar(r):
			lit, err := l.lexWhile(r, otherChar)
			if err != nil {
				return nil, err
			}

			if kind, ok := keywords[lit]; ok {
				l.emit(kind, lit, at)
				continue
			}
			l.emit(types.IDENT, lit, at)
		default:
			l.emit(types.ILLEGAL, string(r), at)
		}
	}
}
