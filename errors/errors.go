// Package errors holds the fatal diagnostics raised while compiling a file.
// Every error carries the location it refers to and renders as
// "file:row:col: error: message".
package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/tawaqbe/types"
)

// Located is implemented by every error in this package.
type Located interface {
	error
	Where() types.Location
}

type UndefinedSymbol struct {
	Name     string
	Location types.Location
}

func (e UndefinedSymbol) Where() types.Location { return e.Location }

func (e UndefinedSymbol) Error() string {
	return fmt.Sprintf("%s: error: undefined symbol: %s", e.Location, e.Name)
}

// UnexpectedToken is raised when a specific token kind is required and
// something else, or nothing, was found. Got is EOF when the line or the
// expression ran out.
type UnexpectedToken struct {
	Expected []types.TokenKind
	Got      types.TokenKind
	Found    string
	Location types.Location
}

func (e UnexpectedToken) Where() types.Location { return e.Location }

func (e UnexpectedToken) Error() string {
	found := e.Found
	if e.Got == types.EOF {
		found = "<eol>"
	}

	var kinds []string
	for _, k := range e.Expected {
		kinds = append(kinds, k.String())
	}

	if len(kinds) == 1 {
		return fmt.Sprintf("%s: error: expected %s, got %s `%s`", e.Location, kinds[0], e.Got, found)
	}
	return fmt.Sprintf("%s: error: expected one of %s, got %s `%s`", e.Location, strings.Join(kinds, ", "), e.Got, found)
}

type UnmatchedDelimiter struct {
	Delimiter string
	Opening   types.Location
}

func (e UnmatchedDelimiter) Where() types.Location { return e.Opening }

func (e UnmatchedDelimiter) Error() string {
	return fmt.Sprintf("%s: error: unmatched `%s`", e.Opening, e.Delimiter)
}

type MalformedNumericLiteral struct {
	Text     string
	Location types.Location
}

func (e MalformedNumericLiteral) Where() types.Location { return e.Location }

func (e MalformedNumericLiteral) Error() string {
	return fmt.Sprintf("%s: error: malformed numeric literal: %s", e.Location, e.Text)
}
