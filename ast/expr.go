package ast

import (
	"math"

	"github.com/pontaoski/tawaqbe/types"
)

type Expr interface {
	isExpr()
}

type IntConst int64

func (v IntConst) isExpr() {}

type FloatConst float64

func (v FloatConst) isExpr() {}

// SymbolRef is a use of a variable. Decl is the declaration the name
// resolved to at parse time; it is never looked up again.
type SymbolRef struct {
	Name types.Token
	Decl *VarDecl
}

func (v SymbolRef) isExpr() {}

type Add struct {
	Left, Right Expr
}

func (v Add) isExpr() {}

type Sub struct {
	Left, Right Expr
}

func (v Sub) isExpr() {}

type Mul struct {
	Left, Right Expr
}

func (v Mul) isExpr() {}

type Div struct {
	Left, Right Expr
}

func (v Div) isExpr() {}

// truncate converts f toward zero, clamping to the int64 range. NaN is 0.
func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f < math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// EvalInt folds e as 64-bit integer arithmetic. Floats are truncated and
// saturate at the int64 range, integer overflow wraps and division by zero
// yields 0.
func EvalInt(e Expr) int64 {
	switch v := e.(type) {
	case IntConst:
		return int64(v)
	case FloatConst:
		return truncate(float64(v))
	case SymbolRef:
		if v.Decl == nil {
			return 0
		}
		return EvalInt(v.Decl.Value)
	case Add:
		return EvalInt(v.Left) + EvalInt(v.Right)
	case Sub:
		return EvalInt(v.Left) - EvalInt(v.Right)
	case Mul:
		return EvalInt(v.Left) * EvalInt(v.Right)
	case Div:
		rhs := EvalInt(v.Right)
		if rhs == 0 {
			return 0
		}
		return EvalInt(v.Left) / rhs
	case nil:
		return 0
	}

	panic("unhandled expression")
}

// EvalFloat folds e as 64-bit float arithmetic. Division by zero yields 0.0.
func EvalFloat(e Expr) float64 {
	switch v := e.(type) {
	case IntConst:
		return float64(v)
	case FloatConst:
		return float64(v)
	case SymbolRef:
		if v.Decl == nil {
			return 0
		}
		return EvalFloat(v.Decl.Value)
	case Add:
		return EvalFloat(v.Left) + EvalFloat(v.Right)
	case Sub:
		return EvalFloat(v.Left) - EvalFloat(v.Right)
	case Mul:
		return EvalFloat(v.Left) * EvalFloat(v.Right)
	case Div:
		rhs := EvalFloat(v.Right)
		if rhs == 0 {
			return 0
		}
		return EvalFloat(v.Left) / rhs
	case nil:
		return 0
	}

	panic("unhandled expression")
}

// Eval folds e according to t.
func Eval(e Expr, t types.Type) Expr {
	if t == types.F64 {
		return FloatConst(EvalFloat(e))
	}
	return IntConst(EvalInt(e))
}

// KindOf walks e down to its literals and reports F64 if any of them is a
// float, I64 otherwise. Symbol references are followed to their declarations.
func KindOf(e Expr) types.Type {
	switch v := e.(type) {
	case IntConst:
		return types.I64
	case FloatConst:
		return types.F64
	case SymbolRef:
		if v.Decl == nil {
			return types.I64
		}
		return KindOf(v.Decl.Value)
	case Add:
		return widest(v.Left, v.Right)
	case Sub:
		return widest(v.Left, v.Right)
	case Mul:
		return widest(v.Left, v.Right)
	case Div:
		return widest(v.Left, v.Right)
	}

	return types.I64
}

func widest(l, r Expr) types.Type {
	if KindOf(l) == types.F64 || KindOf(r) == types.F64 {
		return types.F64
	}
	return types.I64
}

// Base follows a chain of symbol references to the first expression that is
// not one.
func Base(e Expr) Expr {
	for {
		ref, ok := e.(SymbolRef)
		if !ok || ref.Decl == nil {
			return e
		}
		e = ref.Decl.Value
	}
}
