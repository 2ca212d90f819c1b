package irfile

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"lumen/internal/ir"
	"lumen/internal/pass"
	"lumen/internal/source"
)

// wireNode is one node. Children are positional per kind; optional
// children are encoded as nil:
//
//	Application    Fn, Args...
//	Lambda         Body, Params...
//	Block          Result, Exprs...
//	Binding        Name, Value
//	Case           Scrutinee, Branches...     Flag = nested
//	Branch         Pattern, Body              Flag = terminal
//	PName          Name
//	PConstructor   Constructor, Fields...
//	PLiteral       Literal
//	PType          Name, Type
//	PDocumentation Pattern                    Text = doc
//	Method         Body                       Text = name, Aux = type
//	Module         Decls...                   Text = name
//	Literal                                   Text = value, Flag = text form
//	Name                                      Text = name, Flag = blank
type wireNode struct {
	Kind     ir.Kind                       `msgpack:"k"`
	ID       ir.NodeID                     `msgpack:"id,omitempty"`
	Loc      *ir.Location                  `msgpack:"loc,omitempty"`
	Text     string                        `msgpack:"t,omitempty"`
	Aux      string                        `msgpack:"a,omitempty"`
	Flag     bool                          `msgpack:"f,omitempty"`
	Children []*wireNode                   `msgpack:"c,omitempty"`
	Meta     map[string]msgpack.RawMessage `msgpack:"m,omitempty"`
	Diags    []ir.Diagnostic               `msgpack:"d,omitempty"`
}

func encodeNode(u *ir.Unit, n ir.Node) (*wireNode, error) {
	if n == nil {
		return nil, nil
	}
	w := &wireNode{
		Kind:  n.Kind(),
		ID:    ir.Identity(n),
		Loc:   ir.Loc(n).Clone(),
		Diags: u.Diagnostics(n),
	}
	for _, id := range u.MetadataPasses(n) {
		fact, _ := u.Metadata(n, id)
		raw, err := msgpack.Marshal(fact)
		if err != nil {
			return nil, fmt.Errorf("irfile: metadata of %s on %s: %w", id, n.Kind(), err)
		}
		if w.Meta == nil {
			w.Meta = make(map[string]msgpack.RawMessage)
		}
		w.Meta[id.String()] = raw
	}

	var children []ir.Node
	switch n := n.(type) {
	case *ir.Literal:
		w.Text, w.Flag = n.Value, n.Form == ir.LitText
	case *ir.Name:
		w.Text, w.Flag = n.Text, n.Blank
	case *ir.Application:
		children = append(children, n.Fn)
		children = appendExprs(children, n.Args)
	case *ir.Lambda:
		children = append(children, n.Body)
		for _, p := range n.Params {
			children = append(children, p)
		}
	case *ir.Block:
		children = append(children, n.Result)
		children = appendExprs(children, n.Exprs)
	case *ir.Binding:
		children = append(children, n.Name, n.Value)
	case *ir.Case:
		w.Flag = n.Nested
		children = append(children, n.Scrutinee)
		for _, b := range n.Branches {
			children = append(children, b)
		}
	case *ir.Branch:
		w.Flag = n.Terminal
		children = append(children, n.Pattern, n.Body)
	case *ir.PName:
		children = append(children, n.Name)
	case *ir.PConstructor:
		children = append(children, n.Constructor)
		for _, f := range n.Fields {
			children = append(children, f)
		}
	case *ir.PLiteral:
		children = append(children, n.Literal)
	case *ir.PType:
		children = append(children, n.Name, n.Type)
	case *ir.PDocumentation:
		w.Text = n.Doc
		children = append(children, n.Pattern)
	case *ir.Method:
		w.Text, w.Aux = n.Name, n.TypeName
		children = append(children, n.Body)
	case *ir.Module:
		w.Text = n.Name
		for _, d := range n.Decls {
			children = append(children, d)
		}
	default:
		return nil, fmt.Errorf("irfile: cannot encode %T", n)
	}

	w.Children = make([]*wireNode, len(children))
	for i, c := range children {
		wc, err := encodeNode(u, c)
		if err != nil {
			return nil, err
		}
		w.Children[i] = wc
	}
	return w, nil
}

func appendExprs(dst []ir.Node, es []ir.Expr) []ir.Node {
	for _, e := range es {
		dst = append(dst, e)
	}
	return dst
}

type decoder struct {
	codec Codec
	u     *ir.Unit
	names *source.Interner
}

// ident returns the NFC spelling of an identifier, sharing storage between
// repeated occurrences.
func (d *decoder) ident(s string) string {
	return d.names.MustLookup(d.names.Intern(s))
}

func (d *decoder) node(w *wireNode) (ir.Node, error) {
	n, err := d.build(w)
	if err != nil {
		return nil, err
	}
	if w.ID.IsValid() {
		d.u.SetID(n, w.ID)
	}
	if err := d.sideTables(n, w); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) build(w *wireNode) (ir.Node, error) {
	c := children{d: d, w: w}
	h := ir.Header{Loc: w.Loc}
	switch w.Kind {
	case ir.KindLiteral:
		form := ir.LitNumber
		if w.Flag {
			form = ir.LitText
		}
		return &ir.Literal{Header: h, Form: form, Value: w.Text}, nil
	case ir.KindName:
		return &ir.Name{Header: h, Text: d.ident(w.Text), Blank: w.Flag}, nil
	case ir.KindApplication:
		n := &ir.Application{Header: h, Fn: c.expr(0)}
		n.Args = c.exprs(1)
		return n, c.err
	case ir.KindLambda:
		n := &ir.Lambda{Header: h, Body: c.expr(0)}
		for i := 1; i < len(w.Children); i++ {
			n.Params = append(n.Params, c.name(i))
		}
		return n, c.err
	case ir.KindBlock:
		n := &ir.Block{Header: h, Result: c.expr(0)}
		n.Exprs = c.exprs(1)
		return n, c.err
	case ir.KindBinding:
		return &ir.Binding{Header: h, Name: c.name(0), Value: c.expr(1)}, c.err
	case ir.KindCase:
		n := &ir.Case{Header: h, Scrutinee: c.expr(0), Nested: w.Flag}
		for i := 1; i < len(w.Children); i++ {
			if b, ok := c.expr(i).(*ir.Branch); ok {
				n.Branches = append(n.Branches, b)
			} else {
				c.fail(i, "branch")
			}
		}
		return n, c.err
	case ir.KindBranch:
		return &ir.Branch{Header: h, Pattern: c.pattern(0), Body: c.expr(1), Terminal: w.Flag}, c.err
	case ir.KindPName:
		return &ir.PName{Header: h, Name: c.name(0)}, c.err
	case ir.KindPConstructor:
		n := &ir.PConstructor{Header: h, Constructor: c.name(0)}
		n.Fields = c.patterns(1)
		return n, c.err
	case ir.KindPLiteral:
		lit, ok := c.node(0).(*ir.Literal)
		if !ok {
			c.fail(0, "literal")
		}
		return &ir.PLiteral{Header: h, Literal: lit}, c.err
	case ir.KindPType:
		return &ir.PType{Header: h, Name: c.name(0), Type: c.expr(1)}, c.err
	case ir.KindPDocumentation:
		return &ir.PDocumentation{Header: h, Doc: w.Text, Pattern: c.pattern(0)}, c.err
	case ir.KindMethod:
		return &ir.Method{Header: h, Name: d.ident(w.Text), TypeName: d.ident(w.Aux), Body: c.expr(0)}, c.err
	case ir.KindModule:
		n := &ir.Module{Header: h, Name: d.ident(w.Text)}
		for i := range w.Children {
			if decl, ok := c.node(i).(ir.Decl); ok {
				n.Decls = append(n.Decls, decl)
			} else {
				c.fail(i, "declaration")
			}
		}
		return n, c.err
	}
	return nil, fmt.Errorf("irfile: unknown node kind %d", w.Kind)
}

func (d *decoder) sideTables(n ir.Node, w *wireNode) error {
	for _, diagnostic := range w.Diags {
		d.u.AddDiagnostic(n, diagnostic)
	}
	for name, raw := range w.Meta {
		id, err := pass.Parse(name)
		if err != nil {
			if d.codec.Strict {
				return fmt.Errorf("irfile: metadata on %s: %w", n.Kind(), err)
			}
			continue
		}
		newFact, ok := d.codec.Facts[id]
		if !ok {
			if d.codec.Strict {
				return fmt.Errorf("irfile: no fact type registered for %s", id)
			}
			continue
		}
		fact := newFact()
		if err := msgpack.Unmarshal(raw, fact); err != nil {
			return fmt.Errorf("irfile: metadata of %s on %s: %w", id, n.Kind(), err)
		}
		ir.UpdateMetadata(d.u, n, id, fact)
	}
	return nil
}

// children decodes positional children, remembering the first error.
type children struct {
	d   *decoder
	w   *wireNode
	err error
}

func (c *children) node(i int) ir.Node {
	if c.err != nil || i >= len(c.w.Children) || c.w.Children[i] == nil {
		return nil
	}
	n, err := c.d.node(c.w.Children[i])
	if err != nil {
		c.err = err
		return nil
	}
	return n
}

func (c *children) fail(i int, want string) {
	if c.err == nil {
		c.err = fmt.Errorf("irfile: child %d of %s is not a %s", i, c.w.Kind, want)
	}
}

func (c *children) expr(i int) ir.Expr {
	n := c.node(i)
	if n == nil {
		return nil
	}
	e, ok := n.(ir.Expr)
	if !ok {
		c.fail(i, "expression")
	}
	return e
}

// exprs decodes list children from index from on. List elements are never
// optional.
func (c *children) exprs(from int) []ir.Expr {
	var out []ir.Expr
	for i := from; i < len(c.w.Children); i++ {
		if c.w.Children[i] == nil {
			c.fail(i, "expression")
			continue
		}
		out = append(out, c.expr(i))
	}
	return out
}

func (c *children) patterns(from int) []ir.Pattern {
	var out []ir.Pattern
	for i := from; i < len(c.w.Children); i++ {
		if c.w.Children[i] == nil {
			c.fail(i, "pattern")
			continue
		}
		out = append(out, c.pattern(i))
	}
	return out
}

func (c *children) pattern(i int) ir.Pattern {
	n := c.node(i)
	if n == nil {
		return nil
	}
	p, ok := n.(ir.Pattern)
	if !ok {
		c.fail(i, "pattern")
	}
	return p
}

func (c *children) name(i int) *ir.Name {
	n := c.node(i)
	if n == nil {
		c.fail(i, "name")
		return nil
	}
	name, ok := n.(*ir.Name)
	if !ok {
		c.fail(i, "name")
	}
	return name
}
