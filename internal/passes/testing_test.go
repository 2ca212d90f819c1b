package passes_test

import (
	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/source"
)

func span(start, end uint32) ir.Header {
	return ir.At(source.Span{Start: start, End: end})
}

func nm(text string) *ir.Name { return &ir.Name{Text: text} }

func pname(text string) *ir.PName { return &ir.PName{Name: nm(text)} }

func blank() *ir.PName { return &ir.PName{Name: ir.NewBlank(nil)} }

func cons(name string, fields ...ir.Pattern) *ir.PConstructor {
	return &ir.PConstructor{Constructor: nm(name), Fields: fields}
}

func num(v string) *ir.Literal { return &ir.Literal{Form: ir.LitNumber, Value: v} }

func branch(h ir.Header, p ir.Pattern, body ir.Expr) *ir.Branch {
	return &ir.Branch{Header: h, Pattern: p, Body: body, Terminal: true}
}

func caseOf(branches ...*ir.Branch) *ir.Case {
	return &ir.Case{Header: span(0, 100), Scrutinee: nm("v"), Branches: branches}
}

func run(u *ir.Unit, f mini.Factory, e ir.Expr) ir.Expr {
	return mini.RunExpr(u, e, f.ForInline(e))
}

func catchPanic(fn func()) (err error) {
	defer ir.Recover(&err)
	fn()
	return nil
}
