package ir

// Method is a method definition. TypeName is empty for module-level
// functions.
type Method struct {
	Header
	TypeName string
	Name     string
	Body     Expr
}

// Module is the root of a compilation unit.
type Module struct {
	Header
	Name  string
	Decls []Decl
}

func (*Method) Kind() Kind { return KindMethod }
func (*Module) Kind() Kind { return KindModule }

func (*Method) declNode() {}

// QualifiedName returns Type.name, or name for module-level methods.
func (n *Method) QualifiedName() string {
	if n.TypeName == "" {
		return n.Name
	}
	return n.TypeName + "." + n.Name
}

func (n *Method) eachChild(yield func(Node)) {
	if n.Body != nil {
		yield(n.Body)
	}
}

func (n *Method) Duplicate(u *Unit, keep Keep) Node {
	c := &Method{TypeName: n.TypeName, Name: n.Name, Body: dupExpr(u, n.Body, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *Method) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	body := mapExpr(n.Body, f)
	if body == n.Body {
		return n
	}
	c := &Method{TypeName: n.TypeName, Name: n.Name, Body: body}
	u.inherit(c, n, KeepAll)
	return c
}

func (n *Module) eachChild(yield func(Node)) {
	for _, d := range n.Decls {
		yield(d)
	}
}

func (n *Module) Duplicate(u *Unit, keep Keep) Node {
	c := &Module{Name: n.Name}
	if n.Decls != nil {
		c.Decls = make([]Decl, len(n.Decls))
		for i, d := range n.Decls {
			c.Decls[i] = Copy(u, d, keep)
		}
	}
	u.inherit(c, n, keep)
	return c
}

// MapExpressions maps every declaration in turn; declarations are not
// passed to f.
func (n *Module) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	changed := false
	decls := make([]Decl, len(n.Decls))
	for i, d := range n.Decls {
		decls[i] = Map(u, d, f)
		changed = changed || decls[i] != d
	}
	if !changed {
		return n
	}
	c := &Module{Name: n.Name, Decls: decls}
	u.inherit(c, n, KeepAll)
	return c
}
