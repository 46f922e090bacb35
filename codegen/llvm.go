package codegen

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/tawaqbe/ast"
	tawatypes "github.com/pontaoski/tawaqbe/types"
)

type llvmCtx struct {
	prog  *ast.Program
	m     *ir.Module
	names []map[*ast.VarDecl]value.Value
	used  []map[string]int
	funcs map[string]*ir.Func
	last  map[string]*ast.FnDecl
	entry *ir.Func
	// forwardDeclarationPass only declares functions so that calls can be
	// emitted before the callee's body.
	forwardDeclarationPass bool
}

func (c *llvmCtx) pushScope() {
	c.names = append(c.names, make(map[*ast.VarDecl]value.Value))
	c.used = append(c.used, make(map[string]int))
}

func (c *llvmCtx) popScope() {
	c.names = c.names[:len(c.names)-1]
	c.used = c.used[:len(c.used)-1]
}

// top is the variables of the function being generated. LLVM values do not
// cross function boundaries, so lookups never go further.
func (c *llvmCtx) top() map[*ast.VarDecl]value.Value {
	return c.names[len(c.names)-1]
}

// localName keeps redeclared variables apart: x, x.1, x.2...
func (c *llvmCtx) localName(name string) string {
	used := c.used[len(c.used)-1]
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "." + strconv.Itoa(n)
}

func llvmType(t tawatypes.Type) types.Type {
	switch t {
	case tawatypes.I64:
		return types.I64
	case tawatypes.F64:
		return types.Double
	}
	panic("unhandled type")
}

func llvmConstant(e ast.Expr, t tawatypes.Type) value.Value {
	switch t {
	case tawatypes.I64:
		return constant.NewInt(types.I64, ast.EvalInt(e))
	case tawatypes.F64:
		return constant.NewFloat(types.Double, ast.EvalFloat(e))
	}
	panic("unhandled type")
}

func (c *llvmCtx) operand(e ast.Expr, b *ir.Block) (tawatypes.Type, value.Value) {
	if ref, ok := e.(ast.SymbolRef); ok && ref.Decl != nil {
		kind := ast.KindOf(ref)
		if slot, ok := c.top()[ref.Decl]; ok {
			return kind, b.NewLoad(llvmType(kind), slot)
		}
		return kind, llvmConstant(ref, kind)
	}

	kind := ast.KindOf(e)
	return kind, llvmConstant(e, kind)
}

// external returns the function called name, declaring it with the given
// parameter types if nothing by that name exists yet.
func (c *llvmCtx) external(name string, ret types.Type, params ...types.Type) *ir.Func {
	if fn, ok := c.funcs[name]; ok {
		return fn
	}

	var ps []*ir.Param
	for i, p := range params {
		ps = append(ps, ir.NewParam("arg"+strconv.Itoa(i), p))
	}
	fn := c.m.NewFunc(name, ret, ps...)
	c.funcs[name] = fn
	return fn
}

func (c *llvmCtx) node(n *ast.Node, b *ir.Block) {
	switch kind := n.Kind.(type) {
	case *ast.VarDecl:
		if c.forwardDeclarationPass {
			return
		}
		t := llvmType(kind.Type)
		slot := b.NewAlloca(t)
		slot.SetName(c.localName(kind.Name.Text))
		b.NewStore(llvmConstant(ast.Base(kind.Value), kind.Type), slot)
		c.top()[kind] = slot
	case *ast.FnCall:
		if c.forwardDeclarationPass {
			return
		}
		if kind.Name.Text == "print" {
			for _, arg := range kind.Args {
				t, val := c.operand(arg, b)
				fn := c.external("print_"+t.String(), types.Void, llvmType(t), types.I32)
				b.NewCall(fn, val, constant.NewInt(types.I32, 1))
			}
			return
		}

		var args []value.Value
		var params []types.Type
		for _, arg := range kind.Args {
			t, val := c.operand(arg, b)
			args = append(args, val)
			params = append(params, llvmType(t))
		}
		b.NewCall(c.external(kind.Name.Text, types.Void, params...), args...)
	case *ast.FnDecl:
		c.fnDecl(kind)
	default:
		panic("unhandled")
	}
}

func (c *llvmCtx) fnDecl(fn *ast.FnDecl) {
	if c.last[fn.Name.Text] != fn {
		return
	}

	if c.forwardDeclarationPass {
		var ret types.Type = types.Void
		if fn.Returns != nil {
			ret = llvmType(*fn.Returns)
		}

		var params []*ir.Param
		for _, arg := range fn.Args {
			params = append(params, ir.NewParam(arg.Name.Text, llvmType(arg.Type)))
		}

		c.funcs[fn.Name.Text] = c.m.NewFunc(fn.Name.Text, ret, params...)
		for _, n := range c.prog.Body(fn) {
			c.node(n, nil)
		}
		return
	}

	f := c.funcs[fn.Name.Text]
	bloc := f.NewBlock("start")

	var nested []*ast.FnDecl

	c.pushScope()
	for _, n := range c.prog.Body(fn) {
		if inner, ok := n.Kind.(*ast.FnDecl); ok {
			nested = append(nested, inner)
			continue
		}
		c.node(n, bloc)
	}
	c.popScope()

	if fn.Returns == nil {
		bloc.NewRet(nil)
	} else {
		bloc.NewRet(llvmConstant(ast.IntConst(0), *fn.Returns))
	}

	for _, inner := range nested {
		c.fnDecl(inner)
	}
}

// typeInfo is embedded in the module as a NUL terminated JSON string named
// __tawa_types, listing every function with its signature.
type typeInfo struct {
	Functions map[string]string `json:"functions"`
}

func (c *llvmCtx) registerTypeInfo() {
	t := typeInfo{Functions: map[string]string{}}
	for name, fn := range c.last {
		t.Functions[name] = fn.Signature()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		panic(err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	g := c.m.NewGlobalDef("__tawa_types", constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}

// LLVM lowers prog to an LLVM module with the same layout as the QBE
// output: user functions, then _start running the top-level statements.
func LLVM(prog *ast.Program) *ir.Module {
	c := &llvmCtx{
		prog:  prog,
		m:     ir.NewModule(),
		funcs: map[string]*ir.Func{},
		last:  prog.Functions(),
	}

	c.forwardDeclarationPass = true
	for _, n := range prog.Nodes() {
		c.node(n, nil)
	}
	c.forwardDeclarationPass = false

	c.registerTypeInfo()

	c.entry = c.m.NewFunc("_start", types.Void)
	bloc := c.entry.NewBlock("_entry")

	c.pushScope()
	for _, n := range prog.Nodes() {
		c.node(n, bloc)
	}
	c.popScope()

	if main, ok := c.funcs["main"]; ok && len(main.Blocks) > 0 {
		argc := bloc.NewCall(c.external("get_argc", types.I64))

		var args []value.Value
		for i, p := range main.Params {
			var arg value.Value = constant.NewInt(types.I64, 0)
			if i == 0 {
				arg = argc
			}
			if p.Type().Equal(types.Double) {
				if i == 0 {
					arg = bloc.NewSIToFP(argc, types.Double)
				} else {
					arg = constant.NewFloat(types.Double, 0)
				}
			}
			args = append(args, arg)
		}
		bloc.NewCall(main, args...)
	}

	exit := ir.NewInlineAsm(types.NewPointer(types.NewFunc(types.Void)), `movq $$0x3C, %rax; movq $$0x0, %rdi; syscall`, ``)
	exit.SideEffect = true
	bloc.NewCall(exit)
	bloc.NewUnreachable()

	return c.m
}
