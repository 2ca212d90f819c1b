package ir

// LiteralForm distinguishes literal payloads.
type LiteralForm uint8

const (
	LitNumber LiteralForm = iota
	LitText
)

func (f LiteralForm) String() string {
	if f == LitText {
		return "text"
	}
	return "number"
}

// Literal is a number or text literal. Value holds the source text.
type Literal struct {
	Header
	Form  LiteralForm
	Value string
}

// Name is a reference to, or binder of, a name. A blank name is the
// anonymous placeholder `_`: it matches or discards without binding.
type Name struct {
	Header
	Text  string
	Blank bool
}

const BlankText = "_"

// NewBlank creates an anonymous placeholder.
func NewBlank(loc *Location) *Name {
	return &Name{Header: Header{Loc: cloneLocation(loc)}, Text: BlankText, Blank: true}
}

// Application applies Fn to ordered arguments.
type Application struct {
	Header
	Fn   Expr
	Args []Expr
}

// Lambda binds Params in Body.
type Lambda struct {
	Header
	Params []*Name
	Body   Expr
}

// Block evaluates Exprs in order and yields Result.
type Block struct {
	Header
	Exprs  []Expr
	Result Expr
}

// Binding is `Name = Value` inside a block.
type Binding struct {
	Header
	Name  *Name
	Value Expr
}

// Case matches Scrutinee against Branches in order.
type Case struct {
	Header
	Scrutinee Expr
	Branches  []*Branch
	// Nested is set on cases synthesised by nested pattern desugaring.
	Nested bool
}

// Branch is one `Pattern -> Body` arm of a case. Branches live inside a
// Case; a pass sees a bare branch only when compiling one in isolation.
type Branch struct {
	Header
	Pattern  Pattern
	Body     Expr
	Terminal bool
}

func (*Literal) Kind() Kind     { return KindLiteral }
func (*Name) Kind() Kind        { return KindName }
func (*Application) Kind() Kind { return KindApplication }
func (*Lambda) Kind() Kind      { return KindLambda }
func (*Block) Kind() Kind       { return KindBlock }
func (*Binding) Kind() Kind     { return KindBinding }
func (*Case) Kind() Kind        { return KindCase }
func (*Branch) Kind() Kind      { return KindBranch }

func (*Literal) exprNode()     {}
func (*Name) exprNode()        {}
func (*Application) exprNode() {}
func (*Lambda) exprNode()      {}
func (*Block) exprNode()       {}
func (*Binding) exprNode()     {}
func (*Case) exprNode()        {}
func (*Branch) exprNode()      {}

// Literal

func (n *Literal) eachChild(func(Node)) {}

func (n *Literal) Duplicate(u *Unit, keep Keep) Node {
	c := &Literal{Form: n.Form, Value: n.Value}
	u.inherit(c, n, keep)
	return c
}

func (n *Literal) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// Name

func (n *Name) eachChild(func(Node)) {}

func (n *Name) Duplicate(u *Unit, keep Keep) Node {
	c := &Name{Text: n.Text, Blank: n.Blank}
	u.inherit(c, n, keep)
	return c
}

func (n *Name) MapExpressions(*Unit, func(Expr) Expr) Node { return n }

// Application

func (n *Application) eachChild(yield func(Node)) {
	yield(n.Fn)
	for _, a := range n.Args {
		yield(a)
	}
}

func (n *Application) Duplicate(u *Unit, keep Keep) Node {
	c := &Application{Fn: dupExpr(u, n.Fn, keep), Args: dupExprs(u, n.Args, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *Application) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	fn := mapExpr(n.Fn, f)
	args, changed := mapExprs(n.Args, f)
	if fn == n.Fn && !changed {
		return n
	}
	c := &Application{Fn: fn, Args: args}
	u.inherit(c, n, KeepAll)
	return c
}

// Lambda

func (n *Lambda) eachChild(yield func(Node)) {
	for _, p := range n.Params {
		yield(p)
	}
	if n.Body != nil {
		yield(n.Body)
	}
}

func (n *Lambda) Duplicate(u *Unit, keep Keep) Node {
	c := &Lambda{Body: dupExpr(u, n.Body, keep)}
	if n.Params != nil {
		c.Params = make([]*Name, len(n.Params))
		for i, p := range n.Params {
			c.Params[i] = Copy(u, p, keep)
		}
	}
	u.inherit(c, n, keep)
	return c
}

// MapExpressions maps the body; parameters are binders, not expressions.
func (n *Lambda) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	body := mapExpr(n.Body, f)
	if body == n.Body {
		return n
	}
	c := &Lambda{Params: n.Params, Body: body}
	u.inherit(c, n, KeepAll)
	return c
}

// Block

func (n *Block) eachChild(yield func(Node)) {
	for _, e := range n.Exprs {
		yield(e)
	}
	if n.Result != nil {
		yield(n.Result)
	}
}

func (n *Block) Duplicate(u *Unit, keep Keep) Node {
	c := &Block{Exprs: dupExprs(u, n.Exprs, keep), Result: dupExpr(u, n.Result, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *Block) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	exprs, changed := mapExprs(n.Exprs, f)
	result := mapExpr(n.Result, f)
	if !changed && result == n.Result {
		return n
	}
	c := &Block{Exprs: exprs, Result: result}
	u.inherit(c, n, KeepAll)
	return c
}

// Binding

func (n *Binding) eachChild(yield func(Node)) {
	yield(n.Name)
	if n.Value != nil {
		yield(n.Value)
	}
}

func (n *Binding) Duplicate(u *Unit, keep Keep) Node {
	c := &Binding{Name: Copy(u, n.Name, keep), Value: dupExpr(u, n.Value, keep)}
	u.inherit(c, n, keep)
	return c
}

func (n *Binding) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	value := mapExpr(n.Value, f)
	if value == n.Value {
		return n
	}
	c := &Binding{Name: n.Name, Value: value}
	u.inherit(c, n, KeepAll)
	return c
}

// Case

func (n *Case) eachChild(yield func(Node)) {
	if n.Scrutinee != nil {
		yield(n.Scrutinee)
	}
	for _, b := range n.Branches {
		yield(b)
	}
}

func (n *Case) Duplicate(u *Unit, keep Keep) Node {
	c := &Case{Scrutinee: dupExpr(u, n.Scrutinee, keep), Nested: n.Nested}
	if n.Branches != nil {
		c.Branches = make([]*Branch, len(n.Branches))
		for i, b := range n.Branches {
			c.Branches[i] = Copy(u, b, keep)
		}
	}
	u.inherit(c, n, keep)
	return c
}

// MapExpressions applies f to the scrutinee and maps every branch in turn,
// so branch bodies are reached but branches themselves are not passed to f.
func (n *Case) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	scrutinee := mapExpr(n.Scrutinee, f)
	changed := scrutinee != n.Scrutinee
	var branches []*Branch
	if n.Branches != nil {
		branches = make([]*Branch, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = Map(u, b, f)
			changed = changed || branches[i] != b
		}
	}
	if !changed {
		return n
	}
	c := &Case{Scrutinee: scrutinee, Branches: branches, Nested: n.Nested}
	u.inherit(c, n, KeepAll)
	return c
}

// WithBranches returns a copy of n with its branches replaced.
func (n *Case) WithBranches(u *Unit, branches []*Branch) *Case {
	c := &Case{Scrutinee: n.Scrutinee, Branches: branches, Nested: n.Nested}
	u.inherit(c, n, KeepAll)
	return c
}

// Branch

func (n *Branch) eachChild(yield func(Node)) {
	if n.Pattern != nil {
		yield(n.Pattern)
	}
	if n.Body != nil {
		yield(n.Body)
	}
}

func (n *Branch) Duplicate(u *Unit, keep Keep) Node {
	c := &Branch{Body: dupExpr(u, n.Body, keep), Terminal: n.Terminal}
	if n.Pattern != nil {
		c.Pattern = Copy(u, n.Pattern, keep)
	}
	u.inherit(c, n, keep)
	return c
}

func (n *Branch) MapExpressions(u *Unit, f func(Expr) Expr) Node {
	body := mapExpr(n.Body, f)
	if body == n.Body {
		return n
	}
	c := &Branch{Pattern: n.Pattern, Body: body, Terminal: n.Terminal}
	u.inherit(c, n, KeepAll)
	return c
}

// WithPattern returns a copy of n matching p instead.
func (n *Branch) WithPattern(u *Unit, p Pattern) *Branch {
	c := &Branch{Pattern: p, Body: n.Body, Terminal: n.Terminal}
	u.inherit(c, n, KeepAll)
	return c
}
