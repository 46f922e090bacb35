package types

import (
	"fmt"
)

// Location is a zero-based position in a source file.
type Location struct {
	Filename string
	Row      int
	Column   int
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	EQUALS
	ARROW

	EOS

	PLUS
	MINUS
	STAR
	SLASH

	INT
	FLOAT

	IDENT
	TYPE

	FN
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:      "EOF",
		ILLEGAL:  "ILLEGAL",
		LPAREN:   "LPAREN",
		RPAREN:   "RPAREN",
		LBRACKET: "LBRACKET",
		RBRACKET: "RBRACKET",
		COMMA:    "COMMA",
		EQUALS:   "EQUALS",
		ARROW:    "ARROW",
		EOS:      "EOS",
		PLUS:     "PLUS",
		MINUS:    "MINUS",
		STAR:     "STAR",
		SLASH:    "SLASH",
		INT:      "INT",
		FLOAT:    "FLOAT",
		IDENT:    "IDENT",
		TYPE:     "TYPE",
		FN:       "FN",
	}
	if s, ok := data[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// String renders the location the way editors expect it: one-based.
func (l Location) String() string {
	if l.Filename == "" {
		l.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Row+1, l.Column+1)
}

type Token struct {
	Kind     TokenKind
	Text     string
	Location Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Location, t.Kind, t.Text)
}

// Lines is the tokenized form of a source file, one slice per source line.
type Lines [][]Token

// Type is a numeric value type of the language.
type Type int

const (
	I64 Type = iota
	F64
)

// ParseType maps a type keyword to its Type.
func ParseType(keyword string) (Type, bool) {
	switch keyword {
	case "i64":
		return I64, true
	case "f64":
		return F64, true
	}
	return 0, false
}

// Tag is the single-letter IR type tag.
func (t Type) Tag() string {
	switch t {
	case I64:
		return "l"
	case F64:
		return "d"
	}
	panic("unhandled type")
}

func (t Type) String() string {
	switch t {
	case I64:
		return "i64"
	case F64:
		return "f64"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}
