package passes

import (
	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/pass"
)

// Whole is a pass that walks the unit itself instead of being driven by the
// mini-pass traversal.
type Whole interface {
	ID() pass.ID
	RunModule(u *ir.Unit, m *ir.Module) *ir.Module
	RunExpression(u *ir.Unit, e ir.Expr) ir.Expr
}

// Impl is the implementation of one pass; exactly one field is set.
type Impl struct {
	Mini  mini.Factory
	Whole Whole
}

func (i Impl) ID() pass.ID {
	switch {
	case i.Mini != nil:
		return i.Mini.ID()
	case i.Whole != nil:
		return i.Whole.ID()
	}
	return pass.NoID
}

func (i Impl) IsMini() bool { return i.Mini != nil }

// Builtin returns the implementations provided by this package.
func Builtin() map[pass.ID]Impl {
	return map[pass.ID]Impl{
		pass.DocumentationComments:    {Mini: DocumentationComments},
		pass.ShadowedPatternFields:    {Mini: ShadowedPatternFields},
		pass.UnreachableMatchBranches: {Mini: UnreachableMatchBranches},
		pass.IgnoredBindings:          {Whole: IgnoredBindings},
		pass.TailCall:                 {Whole: TailCall},
	}
}

// FactTypes returns constructors for the metadata facts stored by the
// builtin passes, keyed by the pass storing them. Decoders use it to
// restore typed facts.
func FactTypes() map[pass.ID]func() any {
	return map[pass.ID]func() any{
		pass.DocumentationComments: func() any { return new(Doc) },
		pass.IgnoredBindings:       func() any { return new(Ignored) },
		pass.TailCall:              func() any { return new(TailPosition) },
	}
}
