// Package codegen lowers a parsed program to backend IR. The primary target
// is QBE's textual SSA; an LLVM module can be produced from the same tree.
package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pontaoski/tawaqbe/ast"
	"github.com/pontaoski/tawaqbe/types"
)

// function is the IR function currently being written.
type function struct {
	b      *strings.Builder
	locals map[*ast.VarDecl]bool
}

func newFunction() *function {
	return &function{
		b:      &strings.Builder{},
		locals: map[*ast.VarDecl]bool{},
	}
}

func (f *function) line(format string, args ...interface{}) {
	f.b.WriteString("\t")
	fmt.Fprintf(f.b, format, args...)
	f.b.WriteString("\n")
}

type qbeGen struct {
	prog    *ast.Program
	out     strings.Builder
	entry   *function
	pending []*ast.FnDecl
	main    *ast.FnDecl
	// last maps each function name to its last declaration; earlier ones
	// are not emitted.
	last map[string]*ast.FnDecl
}

// QBE renders prog as QBE IR. Functions come out in declaration order,
// followed by the exported $_start, which runs the top-level statements,
// calls $main with argc and exits with status 0.
func QBE(prog *ast.Program) string {
	g := &qbeGen{
		prog:  prog,
		entry: newFunction(),
		last:  prog.Functions(),
	}

	for _, n := range prog.Nodes() {
		g.node(g.entry, n)
	}

	g.out.WriteString("export function $_start() {\n@start\n")
	g.out.WriteString(g.entry.b.String())
	if g.main != nil {
		g.callMain()
	}
	g.out.WriteString("\tcall $syscall1(w 60, w 0)\n\tret\n}\n")

	return g.out.String()
}

func (g *qbeGen) node(f *function, n *ast.Node) {
	switch kind := n.Kind.(type) {
	case *ast.VarDecl:
		g.varDecl(f, kind)
	case *ast.FnCall:
		if kind.Name.Text == "print" {
			g.print(f, kind)
			return
		}
		g.call(f, kind)
	case *ast.FnDecl:
		if f == g.entry {
			if kind.Name.Text == "main" && g.last["main"] == kind {
				g.main = kind
			}
			g.fnDecl(kind)
			return
		}
		g.pending = append(g.pending, kind)
	default:
		panic("unhandled")
	}
}

func (g *qbeGen) varDecl(f *function, vd *ast.VarDecl) {
	f.line("%%%s =%s copy %s", vd.Name.Text, vd.Type.Tag(), immediate(ast.Base(vd.Value), vd.Type))
	f.locals[vd] = true
}

func (g *qbeGen) print(f *function, fc *ast.FnCall) {
	for _, arg := range fc.Args {
		kind, val := operand(f, arg)
		switch kind {
		case types.I64:
			f.line("call $print_i64(l %s, w 1)", val)
		case types.F64:
			f.line("call $print_f64(d %s, w 1)", val)
		}
	}
}

func (g *qbeGen) call(f *function, fc *ast.FnCall) {
	var args []string
	for _, arg := range fc.Args {
		kind, val := operand(f, arg)
		args = append(args, kind.Tag()+" "+val)
	}
	f.line("call $%s(%s)", fc.Name.Text, strings.Join(args, ", "))
}

// callMain passes argc as main's first parameter, converted when that is a
// float, and zero for any further ones.
func (g *qbeGen) callMain() {
	f := newFunction()
	f.line("%%argc =l call $get_argc()")

	var args []string
	for i, arg := range g.main.Args {
		switch {
		case i == 0 && arg.Type == types.F64:
			f.line("%%argcd =d sltof %%argc")
			args = append(args, "d %argcd")
		case i == 0:
			args = append(args, "l %argc")
		default:
			args = append(args, arg.Type.Tag()+" "+immediate(ast.IntConst(0), arg.Type))
		}
	}
	if len(g.main.Args) == 0 {
		args = append(args, "l %argc")
	}

	f.line("call $main(%s)", strings.Join(args, ", "))
	g.out.WriteString(f.b.String())
}

func (g *qbeGen) fnDecl(fn *ast.FnDecl) {
	if g.last[fn.Name.Text] != fn {
		return
	}
	f := newFunction()

	var params []string
	for _, arg := range fn.Args {
		params = append(params, fmt.Sprintf("%s %%%s", arg.Type.Tag(), arg.Name.Text))
	}

	ret := ""
	if fn.Returns != nil {
		ret = fn.Returns.Tag() + " "
	}
	fmt.Fprintf(f.b, "function %s$%s(%s) {\n@start\n", ret, fn.Name.Text, strings.Join(params, ", "))

	outer := g.pending
	g.pending = nil

	for _, n := range g.prog.Body(fn) {
		g.node(f, n)
	}

	if fn.Returns != nil {
		f.line("ret 0")
	} else {
		f.line("ret")
	}
	f.b.WriteString("}\n\n")
	g.out.WriteString(f.b.String())

	nested := g.pending
	g.pending = outer
	for _, inner := range nested {
		g.fnDecl(inner)
	}
}

// operand returns the type of e and how to pass it: by register when e
// names a variable defined in f, as an immediate otherwise.
func operand(f *function, e ast.Expr) (types.Type, string) {
	if ref, ok := e.(ast.SymbolRef); ok && ref.Decl != nil {
		kind := ast.KindOf(ref)
		if f.locals[ref.Decl] {
			return kind, "%" + ref.Decl.Name.Text
		}
		return kind, immediate(ref, kind)
	}

	kind := ast.KindOf(e)
	return kind, immediate(e, kind)
}

// immediate encodes e folded to t. Floats are written as their IEEE-754 bit
// pattern so that no precision is lost in the text.
func immediate(e ast.Expr, t types.Type) string {
	switch t {
	case types.I64:
		return strconv.FormatInt(ast.EvalInt(e), 10)
	case types.F64:
		return strconv.FormatUint(math.Float64bits(ast.EvalFloat(e)), 10)
	}
	panic("unhandled type")
}
