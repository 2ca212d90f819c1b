// Package mini runs local expression rewrites ("mini-passes").
//
// A mini-pass sees one expression at a time, after all of its children have
// already been rewritten, and returns the replacement. It has no access to
// anything outside the subtree it is given, so the same pass works for a
// whole module and for a single expression compiled inline. Several
// mini-passes scheduled back to back are fused and share one traversal.
package mini

import (
	"strings"

	"lumen/internal/ir"
	"lumen/internal/pass"
)

// Pass is a mini-pass. TransformExpression must not mutate e; it returns e
// itself or a newly built node. Diagnostics go onto the returned node.
type Pass interface {
	ID() pass.ID
	TransformExpression(u *ir.Unit, e ir.Expr) ir.Expr
}

// Factory creates mini-pass instances. A fresh instance is created per unit
// so passes may keep per-run state.
type Factory interface {
	ID() pass.ID
	ForModule(m *ir.Module) Pass
	ForInline(e ir.Expr) Pass
}

// Fused applies several passes per node in order.
type Fused struct {
	passes []Pass
}

// Fuse combines ps into one pass. Nested fused passes are flattened.
func Fuse(ps ...Pass) *Fused {
	f := &Fused{passes: make([]Pass, 0, len(ps))}
	for _, p := range ps {
		if inner, ok := p.(*Fused); ok {
			f.passes = append(f.passes, inner.passes...)
			continue
		}
		f.passes = append(f.passes, p)
	}
	return f
}

// ID of a fused pass is the ID of its first member.
func (f *Fused) ID() pass.ID {
	if len(f.passes) == 0 {
		return pass.NoID
	}
	return f.passes[0].ID()
}

// IDs returns the member pass IDs in application order.
func (f *Fused) IDs() []pass.ID {
	out := make([]pass.ID, len(f.passes))
	for i, p := range f.passes {
		out[i] = p.ID()
	}
	return out
}

func (f *Fused) Len() int { return len(f.passes) }

func (f *Fused) String() string {
	names := make([]string, len(f.passes))
	for i, p := range f.passes {
		names[i] = p.ID().String()
	}
	return "fused(" + strings.Join(names, "+") + ")"
}

func (f *Fused) TransformExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	for _, p := range f.passes {
		e = p.TransformExpression(u, e)
		if e == nil {
			ir.Fatalf(p.ID(), nil, "mini-pass returned nil")
		}
	}
	return e
}

// Run rewrites the tree rooted at n bottom-up with p and returns the new
// root. Expressions are handed to p after their children; module and method
// nodes are rebuilt around their rewritten bodies.
func Run(u *ir.Unit, n ir.Node, p Pass) ir.Node {
	var visit func(e ir.Expr) ir.Expr
	visit = func(e ir.Expr) ir.Expr {
		rebuilt := e.MapExpressions(u, visit).(ir.Expr)
		out := p.TransformExpression(u, rebuilt)
		if out == nil {
			ir.Fatalf(p.ID(), e, "mini-pass returned nil")
		}
		return out
	}
	if e, ok := n.(ir.Expr); ok {
		return visit(e)
	}
	return n.MapExpressions(u, visit)
}

// RunExpr is Run for a single expression compiled on its own.
func RunExpr(u *ir.Unit, e ir.Expr, p Pass) ir.Expr {
	return Run(u, e, p).(ir.Expr)
}
