package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pass"
)

// TailCall marks every expression with whether it is in tail position of
// its enclosing method or lambda. Metadata only.
var TailCall Whole = tailCall{}

type tailCall struct{}

func (tailCall) ID() pass.ID { return pass.TailCall }

func (tailCall) RunModule(u *ir.Unit, m *ir.Module) *ir.Module {
	for _, d := range m.Decls {
		if meth, ok := d.(*ir.Method); ok && meth.Body != nil {
			markTail(u, meth.Body, true)
		}
	}
	return m
}

// RunExpression treats an inline expression as not being in tail position.
func (tailCall) RunExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	markTail(u, e, false)
	return e
}

func markTail(u *ir.Unit, e ir.Expr, tail bool) {
	if e == nil {
		return
	}
	ir.UpdateMetadata(u, e, pass.TailCall, &TailPosition{Tail: tail})
	switch e := e.(type) {
	case *ir.Application:
		markTail(u, e.Fn, false)
		for _, a := range e.Args {
			markTail(u, a, false)
		}
	case *ir.Lambda:
		// тело лямбды — новая функция
		markTail(u, e.Body, true)
	case *ir.Block:
		for _, x := range e.Exprs {
			markTail(u, x, false)
		}
		markTail(u, e.Result, tail)
	case *ir.Binding:
		markTail(u, e.Value, false)
	case *ir.Case:
		markTail(u, e.Scrutinee, false)
		for _, b := range e.Branches {
			markTail(u, b, tail)
		}
	case *ir.Branch:
		markTail(u, e.Body, tail)
	case *ir.Literal, *ir.Name:
	}
}
