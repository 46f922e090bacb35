package ast

type ScopeKind int

const (
	Global ScopeKind = iota
	Function
	CallArgs
)

func (k ScopeKind) String() string {
	switch k {
	case Global:
		return "global"
	case Function:
		return "function"
	case CallArgs:
		return "call-args"
	}
	return "unknown"
}

// Scope is the symbol map of one lexical region. A scope only falls through
// to its parent when it was created chained; function scopes are isolated
// unless lexical scoping is switched on.
type Scope struct {
	Kind    ScopeKind
	parent  *Scope
	symbols map[string]*Node
}

func NewGlobalScope() *Scope {
	return &Scope{Kind: Global, symbols: map[string]*Node{}}
}

// Function opens a function body scope below s. The new scope starts empty.
func (s *Scope) Function(chained bool) *Scope {
	ret := &Scope{Kind: Function, symbols: map[string]*Node{}}
	if chained {
		ret.parent = s
	}
	return ret
}

// Args is the scope call arguments are resolved in. It shares s's symbols.
func (s *Scope) Args() *Scope {
	return &Scope{Kind: CallArgs, parent: s.parent, symbols: s.symbols}
}

// Declare binds name in s. A later declaration of the same name wins.
func (s *Scope) Declare(name string, n *Node) {
	s.symbols[name] = n
}

func (s *Scope) Resolve(name string) (*Node, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if n, ok := sc.symbols[name]; ok {
			return n, true
		}
	}
	return nil, false
}

// Parent is the enclosing scope for chained scopes, nil otherwise.
func (s *Scope) Parent() *Scope {
	return s.parent
}
