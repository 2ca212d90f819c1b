package passes

import (
	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/pass"
	"lumen/internal/source"
)

// ShadowedPatternFields replaces every later binding of a name already bound
// earlier in the same pattern with a blank, and warns on it.
//
// Without this, alias analysis would see two binders for one name in one
// scope.
var ShadowedPatternFields mini.Factory = shadowedFactory{}

type shadowedFactory struct{}

func (shadowedFactory) ID() pass.ID                  { return pass.ShadowedPatternFields }
func (shadowedFactory) ForModule(*ir.Module) mini.Pass { return shadowedMini{} }
func (shadowedFactory) ForInline(ir.Expr) mini.Pass    { return shadowedMini{} }

type shadowedMini struct{}

func (shadowedMini) ID() pass.ID { return pass.ShadowedPatternFields }

func (shadowedMini) TransformExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case *ir.Branch:
		return lintBranch(u, e)
	case *ir.Case:
		var branches []*ir.Branch
		for i, b := range e.Branches {
			nb := lintBranch(u, b)
			if nb != b && branches == nil {
				branches = make([]*ir.Branch, i, len(e.Branches))
				copy(branches, e.Branches[:i])
			}
			if branches != nil {
				branches = append(branches, nb)
			}
		}
		if branches == nil {
			return e
		}
		return e.WithBranches(u, branches)
	}
	return e
}

func lintBranch(u *ir.Unit, b *ir.Branch) *ir.Branch {
	s := &shadowScope{
		u:        u,
		seen:     make(map[string]struct{}),
		lastSeen: make(map[string]ir.Pattern),
	}
	p := s.lint(b.Pattern)
	if p == b.Pattern {
		return b
	}
	return b.WithPattern(u, p)
}

// shadowScope is the single flat scope of one pattern.
type shadowScope struct {
	u        *ir.Unit
	seen     map[string]struct{}
	lastSeen map[string]ir.Pattern
}

func (s *shadowScope) lint(p ir.Pattern) ir.Pattern {
	switch p := p.(type) {
	case *ir.PName:
		if s.shadows(p, p.Name) {
			out := p.WithName(s.u, ir.NewBlank(ir.Loc(p)))
			s.report(out, p.Name.Text)
			return out
		}
		return p
	case *ir.PType:
		if s.shadows(p, p.Name) {
			out := p.WithName(s.u, ir.NewBlank(ir.Loc(p)))
			s.report(out, p.Name.Text)
			return out
		}
		return p
	case *ir.PConstructor:
		var fields []ir.Pattern
		// слева направо: первое вхождение побеждает
		for i, f := range p.Fields {
			nf := s.lint(f)
			if nf != f && fields == nil {
				fields = make([]ir.Pattern, i, len(p.Fields))
				copy(fields, p.Fields[:i])
			}
			if fields != nil {
				fields = append(fields, nf)
			}
		}
		if fields == nil {
			return p
		}
		return p.WithFields(s.u, fields)
	case *ir.PLiteral:
		return p
	case *ir.PDocumentation:
		ir.Fatalf(pass.ShadowedPatternFields, p, "branch documentation should be desugared at an earlier stage")
	}
	return p
}

// shadows records a binding position and reports whether its name was
// already bound in this pattern. Blank names are not tracked; names are
// compared in NFC.
func (s *shadowScope) shadows(p ir.Pattern, name *ir.Name) bool {
	if name.Blank {
		return false
	}
	key := source.Normalize(name.Text)
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	s.lastSeen[key] = p
	return false
}

// report attaches the warning to the blanked occurrence. The warning
// references the previous occurrence, and the blanked node becomes the
// previous occurrence for the next one.
func (s *shadowScope) report(out ir.Pattern, name string) {
	key := source.Normalize(name)
	prev := s.lastSeen[key]
	s.u.AddDiagnostic(out, ir.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.LintShadowedPatternBinding,
		Args:     []string{name},
		Loc:      ir.Loc(out).Clone(),
		Ref:      s.u.ID(prev),
	})
	s.lastSeen[key] = out
}
