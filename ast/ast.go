package ast

import (
	"fmt"
	"strings"

	"github.com/pontaoski/tawaqbe/types"
)

type NodeKind interface {
	isNodeKind()
}

// VarDecl binds Name to an already resolved value: either a folded
// constant of the declared type or a SymbolRef chain ending in one.
type VarDecl struct {
	Type  types.Type
	Name  types.Token
	Value Expr
}

func (v *VarDecl) isNodeKind() {}

type FnArg struct {
	Type types.Type
	Name types.Token
}

// FnDecl is a function definition. Returns is nil for unit functions and
// Body holds the arena ids of the body nodes in order.
type FnDecl struct {
	Name    types.Token
	Args    []FnArg
	Returns *types.Type
	Body    []int
}

func (v *FnDecl) isNodeKind() {}

// Signature renders the parameter and return types, e.g. "fn(i64, f64) -> i64".
func (v *FnDecl) Signature() string {
	var args []string
	for _, arg := range v.Args {
		args = append(args, arg.Type.String())
	}
	sig := fmt.Sprintf("fn(%s)", strings.Join(args, ", "))
	if v.Returns != nil {
		sig += " -> " + v.Returns.String()
	}
	return sig
}

type FnCall struct {
	Name types.Token
	Args []Expr
}

func (v *FnCall) isNodeKind() {}

type Node struct {
	ID       int
	Next     int
	Location types.Location
	Scope    *Scope
	Kind     NodeKind
}

// Arena owns every node of a compilation. Nodes are only ever appended and
// a node's ID is its index.
type Arena struct {
	nodes []*Node
}

func NewArena() *Arena {
	return &Arena{nodes: make([]*Node, 0, 1024)}
}

func (a *Arena) Append(loc types.Location, scope *Scope, kind NodeKind) *Node {
	id := len(a.nodes)
	n := &Node{
		ID:       id,
		Next:     id + 1,
		Location: loc,
		Scope:    scope,
		Kind:     kind,
	}
	a.nodes = append(a.nodes, n)
	return n
}

func (a *Arena) Node(id int) *Node {
	if id < 0 || id >= len(a.nodes) {
		panic(fmt.Sprintf("node %d out of range (%d nodes)", id, len(a.nodes)))
	}
	return a.nodes[id]
}

func (a *Arena) Len() int {
	return len(a.nodes)
}

// Program is the ordered list of top-level nodes of one file. The order is
// both declaration and emission order.
type Program struct {
	Arena    *Arena
	TopLevel []int
}

func (p *Program) Nodes() []*Node {
	ret := make([]*Node, 0, len(p.TopLevel))
	for _, id := range p.TopLevel {
		ret = append(ret, p.Arena.Node(id))
	}
	return ret
}

// Body returns the body nodes of fn in order.
func (p *Program) Body(fn *FnDecl) []*Node {
	ret := make([]*Node, 0, len(fn.Body))
	for _, id := range fn.Body {
		ret = append(ret, p.Arena.Node(id))
	}
	return ret
}

// Functions maps every function name to its last declaration in arena
// order. A later fn with the same name replaces the earlier one.
func (p *Program) Functions() map[string]*FnDecl {
	ret := map[string]*FnDecl{}
	for i := 0; i < p.Arena.Len(); i++ {
		if fn, ok := p.Arena.Node(i).Kind.(*FnDecl); ok {
			ret[fn.Name.Text] = fn
		}
	}
	return ret
}
