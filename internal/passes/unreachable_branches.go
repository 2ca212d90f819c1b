package passes

import (
	"slices"

	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/pass"
)

// UnreachableMatchBranches removes case branches that follow the first
// catch-all branch and reports them once on the case expression.
//
// Only bare name patterns count as catch-all; no coverage analysis is done.
var UnreachableMatchBranches mini.Factory = unreachableFactory{}

type unreachableFactory struct{}

func (unreachableFactory) ID() pass.ID                  { return pass.UnreachableMatchBranches }
func (unreachableFactory) ForModule(*ir.Module) mini.Pass { return unreachableMini{} }
func (unreachableFactory) ForInline(ir.Expr) mini.Pass    { return unreachableMini{} }

type unreachableMini struct{}

func (unreachableMini) ID() pass.ID { return pass.UnreachableMatchBranches }

func (unreachableMini) TransformExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case *ir.Case:
		return optimizeCase(u, e)
	case *ir.Branch:
		ir.Fatalf(pass.UnreachableMatchBranches, e, "unexpected case branch outside of a case expression")
	}
	return e
}

// optimizeCase drops every branch after the first catch-all. The warning
// spans the first through the last dropped branch that has a location;
// dropped branches without one are skipped rather than voiding the span.
// The warning is unlocated only when no dropped branch has a location.
func optimizeCase(u *ir.Unit, cse *ir.Case) *ir.Case {
	firstCatchAll := slices.IndexFunc(cse.Branches, ir.IsCatchAll)
	if firstCatchAll < 0 || firstCatchAll == len(cse.Branches)-1 {
		return cse
	}
	unreachable := cse.Branches[firstCatchAll+1:]

	var first, last *ir.Branch
	for _, b := range unreachable {
		if ir.Loc(b) == nil {
			continue
		}
		if first == nil {
			first = b
		}
		last = b
	}
	var loc *ir.Location
	if first != nil {
		loc = &ir.Location{
			Span: ir.Loc(first).Span.Between(ir.Loc(last).Span),
			ID:   u.ID(first),
		}
	}

	out := cse.WithBranches(u, slices.Clone(cse.Branches[:firstCatchAll+1]))
	u.AddDiagnostic(out, ir.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.OptUnreachableBranches,
		Loc:      loc,
	})
	return out
}
