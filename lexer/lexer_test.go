package lexer

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/tawaqbe/types"
)

func lexString(t *testing.T, src string) types.Lines {
	t.Helper()
	lines, err := NewLexer(strings.NewReader(src), "stdin").Lex()
	be.Err(t, err, nil)
	return lines
}

func kinds(line []types.Token) []types.TokenKind {
	var ret []types.TokenKind
	for _, tok := range line {
		ret = append(ret, tok.Kind)
	}
	return ret
}

func TestLexer(t *testing.T) {
	lines := lexString(t, "i64 x = 2 + 3;\nprint(x);\n")

	be.Equal(t, len(lines), 2)
	be.Equal(t, kinds(lines[0]), []types.TokenKind{
		types.TYPE, types.IDENT, types.EQUALS, types.INT, types.PLUS, types.INT, types.EOS,
	})
	be.Equal(t, kinds(lines[1]), []types.TokenKind{
		types.IDENT, types.LPAREN, types.IDENT, types.RPAREN, types.EOS,
	})
	be.Equal(t, lines[1][2].Text, "x")
}

func TestLocations(t *testing.T) {
	lines := lexString(t, "fn main() {\n  f64 y = 1.5;\n}")

	be.Equal(t, len(lines), 3)
	be.Equal(t, lines[0][1].Location, types.Location{Filename: "stdin", Row: 0, Column: 3})
	be.Equal(t, lines[1][0].Location, types.Location{Filename: "stdin", Row: 1, Column: 2})
	be.Equal(t, lines[1][3].Kind, types.FLOAT)
	be.Equal(t, lines[1][3].Text, "1.5")
	be.Equal(t, lines[2][0].Kind, types.RBRACKET)
}

func TestArrowAndOperators(t *testing.T) {
	lines := lexString(t, "fn f(i64 a, f64 b) -> i64 { 8 - 4 * 2 / 1")

	be.Equal(t, kinds(lines[0]), []types.TokenKind{
		types.FN, types.IDENT, types.LPAREN, types.TYPE, types.IDENT, types.COMMA,
		types.TYPE, types.IDENT, types.RPAREN, types.ARROW, types.TYPE, types.LBRACKET,
		types.INT, types.MINUS, types.INT, types.STAR, types.INT, types.SLASH, types.INT,
	})
}

func TestBlankLinesAndComments(t *testing.T) {
	lines := lexString(t, "i64 a = 1; // one\n\n// nothing here\nprint(a);")

	be.Equal(t, len(lines), 4)
	be.Equal(t, len(lines[0]), 5)
	be.Equal(t, len(lines[1]), 0)
	be.Equal(t, len(lines[2]), 0)
	be.Equal(t, lines[3][0].Location.Row, 3)
}

func TestMalformedNumbersStayWhole(t *testing.T) {
	lines := lexString(t, "1.2.3 12ab 7")

	be.Equal(t, kinds(lines[0]), []types.TokenKind{types.FLOAT, types.INT, types.INT})
	be.Equal(t, lines[0][0].Text, "1.2.3")
	be.Equal(t, lines[0][1].Text, "12ab")
}

func TestIllegal(t *testing.T) {
	lines := lexString(t, "i64 a = 1 $ 2;")

	be.Equal(t, lines[0][4].Kind, types.ILLEGAL)
	be.Equal(t, lines[0][4].Text, "$")
}

func TestEmptyInput(t *testing.T) {
	be.Equal(t, len(lexString(t, "")), 0)
}

func TestNonASCIIIsIllegal(t *testing.T) {
	lines := lexString(t, "i64 hé = 1;\né x")

	be.Equal(t, kinds(lines[0]), []types.TokenKind{
		types.TYPE, types.IDENT, types.ILLEGAL, types.EQUALS, types.INT, types.EOS,
	})
	be.Equal(t, lines[0][1].Text, "h")
	be.Equal(t, lines[0][2].Text, "é")

	// columns are byte offsets
	be.Equal(t, lines[0][3].Location.Column, 7)
	be.Equal(t, lines[1][1].Location, types.Location{Filename: "stdin", Row: 1, Column: 3})
}
