package ir

// Patterns bind names; none of them has expression children in the sense
// of MapExpressions, so mapping a pattern returns it unchanged.

// PName binds (or, if blank, ignores) the whole scrutinee. It always
// matches.
type PName struct {
	Header
	Name *Name
}

// PConstructor matches a constructor application and its fields.
type PConstructor struct {
	Header
	Constructor *Name
	Fields      []Pattern
}

// PLiteral matches a literal value.
type PLiteral struct {
	Header
	Literal *Literal
}

// PType binds Name when the scrutinee has type Type.
type PType struct {
	Header
	Name *Name
	Type Expr
}

// PDocumentation is a pattern carrying a doc comment. It exists only until
// documentation comments are processed.
type PDocumentation struct {
	Header
	Doc     string
	Pattern Pattern
}

func (*PName) Kind() Kind          { return KindPName }
func (*PConstructor) Kind() Kind   { return KindPConstructor }
func (*PLiteral) Kind() Kind       { return KindPLiteral }
func (*PType) Kind() Kind          { return KindPType }
func (*PDocumentation) Kind() Kind { return KindPDocumentation }

func (*PName) patternNode()          {}
func (*PConstructor) patternNode()   {}
func (*PLiteral) patternNode()       {}
func (*PType) patternNode()          {}
func (*PDocumentation) patternNode() {}

// BindingName returns the name bound by a binding position (PName or
// PType).
func BindingName(p Pattern) (*Name, bool) {
	switch p := p.(type) {
	case *PName:
		return p.Name, true
	case *PType:
		return p.Name, true
	}
	return nil, false
}

// PName

func (n *PName) eachChild(yield func(Node)) { yield(n.Name) }

func (n *PName) Duplicate(u *Unit, keep Keep) Node {
	c := &PName{Name: Copy(u, n.Name, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *PName) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// WithName returns a copy of n binding name instead.
func (n *PName) WithName(u *Unit, name *Name) *PName {
	c := &PName{Name: name}
	u.inherit(c, n, KeepAll)
	return c
}

// PConstructor

func (n *PConstructor) eachChild(yield func(Node)) {
	yield(n.Constructor)
	for _, f := range n.Fields {
		yield(f)
	}
}

func (n *PConstructor) Duplicate(u *Unit, keep Keep) Node {
	c := &PConstructor{Constructor: Copy(u, n.Constructor, keep)}
	if n.Fields != nil {
		c.Fields = make([]Pattern, len(n.Fields))
		for i, f := range n.Fields {
			if f != nil {
				c.Fields[i] = Copy(u, f, keep)
			}
		}
	}
	u.inherit(c, n, keep)
	return c
}

func (n *PConstructor) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// WithFields returns a copy of n with its field patterns replaced.
func (n *PConstructor) WithFields(u *Unit, fields []Pattern) *PConstructor {
	c := &PConstructor{Constructor: n.Constructor, Fields: fields}
	u.inherit(c, n, KeepAll)
	return c
}

// PLiteral

func (n *PLiteral) eachChild(yield func(Node)) { yield(n.Literal) }

func (n *PLiteral) Duplicate(u *Unit, keep Keep) Node {
	c := &PLiteral{Literal: Copy(u, n.Literal, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *PLiteral) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// PType

func (n *PType) eachChild(yield func(Node)) {
	yield(n.Name)
	if n.Type != nil {
		yield(n.Type)
	}
}

func (n *PType) Duplicate(u *Unit, keep Keep) Node {
	c := &PType{Name: Copy(u, n.Name, keep), Type: dupExpr(u, n.Type, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *PType) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// WithName returns a copy of n binding name instead.
func (n *PType) WithName(u *Unit, name *Name) *PType {
	c := &PType{Name: name, Type: n.Type}
	u.inherit(c, n, KeepAll)
	return c
}

// PDocumentation

func (n *PDocumentation) eachChild(yield func(Node)) {
	if n.Pattern != nil {
		yield(n.Pattern)
	}
}

func (n *PDocumentation) Duplicate(u *Unit, keep Keep) Node {
	c := &PDocumentation{Doc: n.Doc}
	if n.Pattern != nil {
		c.Pattern = Copy(u, n.Pattern, keep)
	}
	u.inherit(c, n, keep)
	return c
}

func (n *PDocumentation) MapExpressions(*Unit, func(Expr) Expr) Node { return n }
