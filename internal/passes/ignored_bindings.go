package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pass"
)

// IgnoredBindings records on every binder whether it discards its value.
// It only writes metadata; the tree is returned as is.
var IgnoredBindings Whole = ignoredBindings{}

type ignoredBindings struct{}

func (ignoredBindings) ID() pass.ID { return pass.IgnoredBindings }

func (p ignoredBindings) RunModule(u *ir.Unit, m *ir.Module) *ir.Module {
	p.mark(u, m)
	return m
}

func (p ignoredBindings) RunExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	p.mark(u, e)
	return e
}

func (ignoredBindings) mark(u *ir.Unit, root ir.Node) {
	set := func(n ir.Node, name *ir.Name) {
		ir.UpdateMetadata(u, n, pass.IgnoredBindings, &Ignored{Blank: name.Blank})
	}
	ir.Walk(root, func(n ir.Node) bool {
		switch n := n.(type) {
		case *ir.PName:
			set(n, n.Name)
		case *ir.PType:
			set(n, n.Name)
		case *ir.Binding:
			set(n, n.Name)
		case *ir.Lambda:
			for _, param := range n.Params {
				set(param, param)
			}
		}
		return true
	})
}
