package codegen

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/tawaqbe/ast"
	"github.com/pontaoski/tawaqbe/lexer"
	"github.com/pontaoski/tawaqbe/parser"
	"github.com/pontaoski/tawaqbe/types"
)

func parse(t *testing.T, src string, opts parser.Options) *ast.Program {
	t.Helper()
	lines, err := lexer.NewLexer(strings.NewReader(src), "main.tawa").Lex()
	be.Err(t, err, nil)
	prog, err := parser.NewParser(lines, opts).Parse()
	be.Err(t, err, nil)
	return prog
}

func compile(t *testing.T, src string) string {
	t.Helper()
	return QBE(parse(t, src, parser.Options{}))
}

func TestScenarioTopLevelPrint(t *testing.T) {
	out := compile(t, "i64 x = 2 + 3;\nprint(x);")

	be.Equal(t, out, `export function $_start() {
@start
	%x =l copy 5
	call $print_i64(l %x, w 1)
	call $syscall1(w 60, w 0)
	ret
}
`)
}

func TestScenarioDivisionByZero(t *testing.T) {
	out := compile(t, "fn main() { i64 y = 10 / 0; print(y); }")

	be.Equal(t, out, `function $main() {
@start
	%y =l copy 0
	call $print_i64(l %y, w 1)
	ret
}

export function $_start() {
@start
	%argc =l call $get_argc()
	call $main(l %argc)
	call $syscall1(w 60, w 0)
	ret
}
`)
}

func TestScenarioUndeclaredCallTarget(t *testing.T) {
	out := compile(t, "unknown_fn(1, 2)")
	be.True(t, strings.Contains(out, "\tcall $unknown_fn(l 1, l 2)\n"))
}

func TestFloatDeclIsBitPattern(t *testing.T) {
	out := compile(t, "f64 pi = 3.14159;")

	bits := strconv.FormatUint(math.Float64bits(3.14159), 10)
	be.True(t, strings.Contains(out, "\t%pi =d copy "+bits+"\n"))
}

func TestDeclarationTypeTags(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"i64 n = 42;", "\t%n =l copy 42\n"},
		{"i64 n = 7 / 2;", "\t%n =l copy 3\n"},
		{"i64 n = 2.9;", "\t%n =l copy 2\n"},
		{"f64 n = 7 / 2;", "\t%n =d copy " + strconv.FormatUint(math.Float64bits(3.5), 10) + "\n"},
		{"f64 n = 0;", "\t%n =d copy 0\n"},
		{"f64 n = 1 / 0;", "\t%n =d copy 0\n"},
	}

	for _, test := range tests {
		out := compile(t, test.input)
		be.True(t, strings.Contains(out, test.expected))
	}
}

func TestFloatBitsRoundTrip(t *testing.T) {
	values := []float64{0, 1.5, -2.25, 0.1, math.Pi, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1)}

	for _, v := range values {
		text := immediate(ast.FloatConst(v), types.F64)
		bits, err := strconv.ParseUint(text, 10, 64)
		be.Err(t, err, nil)
		be.Equal(t, math.Float64frombits(bits), v)
	}
}

func TestSymbolChainFollowed(t *testing.T) {
	out := compile(t, "f64 a = 0.5;\nf64 b = a;\nf64 c = b;")

	bits := strconv.FormatUint(math.Float64bits(0.5), 10)
	be.True(t, strings.Contains(out, "\t%c =d copy "+bits+"\n"))
}

func TestPrintInfersTypes(t *testing.T) {
	out := compile(t, "i64 a = 1;\nf64 b = 2;\nprint(a, b, 3, 4.5, a * 2);")

	bits2 := strconv.FormatUint(math.Float64bits(2), 10)
	bits45 := strconv.FormatUint(math.Float64bits(4.5), 10)

	be.True(t, strings.Contains(out, "\t%b =d copy "+bits2+"\n"))
	be.True(t, strings.Contains(out, `	call $print_i64(l %a, w 1)
	call $print_f64(d %b, w 1)
	call $print_i64(l 3, w 1)
	call $print_f64(d `+bits45+`, w 1)
	call $print_i64(l 2, w 1)
`))
}

func TestGeneralCallTypes(t *testing.T) {
	out := compile(t, "i64 a = 1;\nf64 b = 2;\nmix(a, b, 1.5 * 2)")

	bits := strconv.FormatUint(math.Float64bits(3), 10)
	be.True(t, strings.Contains(out, "\tcall $mix(l %a, d %b, d "+bits+")\n"))
}

func TestFunctionHeaders(t *testing.T) {
	src := `fn add(i64 a, f64 b) -> i64 {
}
fn half() -> f64 {
}
fn noop() {
}`
	out := compile(t, src)

	be.True(t, strings.Contains(out, "function l $add(l %a, d %b) {\n@start\n\tret 0\n}\n"))
	be.True(t, strings.Contains(out, "function d $half() {\n@start\n\tret 0\n}\n"))
	be.True(t, strings.Contains(out, "function $noop() {\n@start\n\tret\n}\n"))
	be.True(t, !strings.Contains(out, "call $main"))
}

func TestDeclarationOrder(t *testing.T) {
	out := compile(t, "fn b() {\n}\nfn a() {\n}\nfn main() {\n}")

	be.True(t, strings.Index(out, "$b()") < strings.Index(out, "$a()"))
	be.True(t, strings.Index(out, "$a()") < strings.Index(out, "function $main()"))
	be.True(t, strings.Index(out, "function $main()") < strings.Index(out, "export function $_start()"))
}

func TestNestedFunctionsAreHoisted(t *testing.T) {
	src := `fn outer() {
	i64 a = 1;
	fn inner() {
		i64 b = 2;
	}
	print(a);
}`
	out := compile(t, src)

	be.True(t, strings.Contains(out, "function $outer() {\n@start\n\t%a =l copy 1\n\tcall $print_i64(l %a, w 1)\n\tret\n}\n"))
	be.True(t, strings.Contains(out, "function $inner() {\n@start\n\t%b =l copy 2\n\tret\n}\n"))
	be.True(t, strings.Index(out, "$outer") < strings.Index(out, "$inner"))
}

func TestOuterVariablesPassedAsImmediates(t *testing.T) {
	src := "i64 x = 7;\nfn main() {\n\tprint(x);\n}"
	out := QBE(parse(t, src, parser.Options{LexicalScoping: true}))

	be.True(t, strings.Contains(out, "function $main() {\n@start\n\tcall $print_i64(l 7, w 1)\n"))
}

func TestRightAssociativityReachesOutput(t *testing.T) {
	be.True(t, strings.Contains(compile(t, "i64 r = 8 - 4 - 2;"), "\t%r =l copy 6\n"))

	out := QBE(parse(t, "i64 r = 8 - 4 - 2;", parser.Options{LeftAssociative: true}))
	be.True(t, strings.Contains(out, "\t%r =l copy 2\n"))
}

func TestRedeclaredFunctionKeepsLast(t *testing.T) {
	out := compile(t, "fn f() {\n\ti64 a = 1;\n}\nfn f() {\n\ti64 b = 2;\n}\nf()")

	be.Equal(t, strings.Count(out, "function $f()"), 1)
	be.True(t, !strings.Contains(out, "%a =l copy 1"))
	be.True(t, strings.Contains(out, "function $f() {\n@start\n\t%b =l copy 2\n\tret\n}\n"))
	be.True(t, strings.Contains(out, "\tcall $f()\n"))
}

func TestMainParametersFromArgc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fn main() {\n}", "\t%argc =l call $get_argc()\n\tcall $main(l %argc)\n"},
		{"fn main(i64 n, f64 x) {\n}", "\t%argc =l call $get_argc()\n\tcall $main(l %argc, d 0)\n"},
		{"fn main(f64 x) {\n}", "\t%argc =l call $get_argc()\n\t%argcd =d sltof %argc\n\tcall $main(d %argcd)\n"},
	}

	for _, test := range tests {
		be.True(t, strings.Contains(compile(t, test.input), test.expected))
	}
}
