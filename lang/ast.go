package lang

// Node is an element of a parsed program.
type Node interface {
	Pos() Position
	node()
}

// Program is a parsed script: its top-level block and the source it came
// from.
type Program struct {
	*Block
	Source string
}

// Literal is a constant scalar value.
type Literal struct {
	Value Value
	At    Position
}

// Identifier names a variable, possibly through a dotted path.
type Identifier struct {
	Name string
	At   Position
}

// Assignment binds the value of Expr at the dotted path Path.
// Op is [TokenAssign] or one of the compound assignment operators.
type Assignment struct {
	Path string
	Op   TokenKind
	Expr Node
	At   Position
}

// BinaryOp applies an infix operator.
type BinaryOp struct {
	Op  TokenKind
	LHS Node
	RHS Node
	At  Position
}

// UnaryOp applies a prefix operator.
type UnaryOp struct {
	Op   TokenKind
	Expr Node
	At   Position
}

// Call invokes a macro or function.
//
// Name is set when the callee is a plain identifier, which may refer either
// to a Function in scope or to a registered macro. Otherwise Callee holds an
// expression that must evaluate to a Function. Method is set for calls
// written with the method operator, in which case Args[0] is the receiver.
type Call struct {
	Callee Node
	Name   string
	Args   []Node
	Method bool
	At     Position
}

// Yield evaluates LHS, binds it to input in a child scope, and evaluates RHS
// there.
type Yield struct {
	LHS Node
	RHS Node
	At  Position
}

// FunctionLiteral is an unevaluated block that closes over its defining
// scope.
type FunctionLiteral struct {
	Body *Block
	At   Position
}

// ListLiteral builds a List from its elements.
type ListLiteral struct {
	Elems []Node
	At    Position
}

// MapLiteral builds a Map from plain assignments.
type MapLiteral struct {
	Entries []*Assignment
	At      Position
}

// Block is a sequence of statements. Its value is that of the last one.
type Block struct {
	Stmts []Node
	At    Position
}

// AsyncGroup evaluates each branch concurrently on its own scope snapshot.
type AsyncGroup struct {
	Branches []Node
	At       Position
}

// Watch re-evaluates Body each time the path named by Path changes.
type Watch struct {
	Path Node
	Body Node
	At   Position
}

func (n *Literal) Pos() Position         { return n.At }
func (n *Identifier) Pos() Position      { return n.At }
func (n *Assignment) Pos() Position      { return n.At }
func (n *BinaryOp) Pos() Position        { return n.At }
func (n *UnaryOp) Pos() Position         { return n.At }
func (n *Call) Pos() Position            { return n.At }
func (n *Yield) Pos() Position           { return n.At }
func (n *FunctionLiteral) Pos() Position { return n.At }
func (n *ListLiteral) Pos() Position     { return n.At }
func (n *MapLiteral) Pos() Position      { return n.At }
func (n *Block) Pos() Position           { return n.At }
func (n *AsyncGroup) Pos() Position      { return n.At }
func (n *Watch) Pos() Position           { return n.At }

func (*Literal) node()         {}
func (*Identifier) node()      {}
func (*Assignment) node()      {}
func (*BinaryOp) node()        {}
func (*UnaryOp) node()         {}
func (*Call) node()            {}
func (*Yield) node()           {}
func (*FunctionLiteral) node() {}
func (*ListLiteral) node()     {}
func (*MapLiteral) node()      {}
func (*Block) node()           {}
func (*AsyncGroup) node()      {}
func (*Watch) node()           {}

// callee returns a display name for the target of a call.
func (n *Call) callee() string {
	if n.Name != "" {
		return n.Name
	}

	return FormatNode(n.Callee)
}

// Walk calls fn for node and each of its descendants in depth-first order,
// stopping early when fn returns false for a node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Assignment:
		Walk(n.Expr, fn)
	case *BinaryOp:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
	case *UnaryOp:
		Walk(n.Expr, fn)
	case *Call:
		if n.Callee != nil {
			Walk(n.Callee, fn)
		}

		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Yield:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
	case *FunctionLiteral:
		Walk(n.Body, fn)
	case *ListLiteral:
		for _, e := range n.Elems {
			Walk(e, fn)
		}
	case *MapLiteral:
		for _, e := range n.Entries {
			Walk(e, fn)
		}
	case *Block:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
	case *AsyncGroup:
		for _, b := range n.Branches {
			Walk(b, fn)
		}
	case *Watch:
		Walk(n.Path, fn)
		Walk(n.Body, fn)
	}
}
