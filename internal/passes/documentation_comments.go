package passes

import (
	"strings"

	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/pass"
)

// DocumentationComments moves doc comments out of branch patterns into Doc
// metadata on the branch.
var DocumentationComments mini.Factory = docFactory{}

type docFactory struct{}

func (docFactory) ID() pass.ID                  { return pass.DocumentationComments }
func (docFactory) ForModule(*ir.Module) mini.Pass { return docMini{} }
func (docFactory) ForInline(ir.Expr) mini.Pass    { return docMini{} }

type docMini struct{}

func (docMini) ID() pass.ID { return pass.DocumentationComments }

func (docMini) TransformExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case *ir.Branch:
		return attachDoc(u, e)
	case *ir.Case:
		changed := false
		branches := make([]*ir.Branch, len(e.Branches))
		for i, b := range e.Branches {
			branches[i] = attachDoc(u, b)
			changed = changed || branches[i] != b
		}
		if !changed {
			return e
		}
		return e.WithBranches(u, branches)
	}
	return e
}

func attachDoc(u *ir.Unit, b *ir.Branch) *ir.Branch {
	var docs []string
	p := b.Pattern
	for {
		d, ok := p.(*ir.PDocumentation)
		if !ok {
			break
		}
		docs = append(docs, d.Doc)
		p = d.Pattern
	}
	p = stripDocs(u, p)
	if len(docs) == 0 && p == b.Pattern {
		return b
	}
	out := b.WithPattern(u, p)
	if len(docs) > 0 {
		ir.UpdateMetadata(u, out, pass.DocumentationComments, &Doc{Text: strings.Join(docs, "\n")})
	}
	return out
}

// stripDocs drops doc comments on nested field patterns; only the branch
// itself can carry documentation.
func stripDocs(u *ir.Unit, p ir.Pattern) ir.Pattern {
	switch q := p.(type) {
	case *ir.PDocumentation:
		return stripDocs(u, q.Pattern)
	case *ir.PConstructor:
		changed := false
		fields := make([]ir.Pattern, len(q.Fields))
		for i, f := range q.Fields {
			fields[i] = stripDocs(u, f)
			changed = changed || fields[i] != f
		}
		if changed {
			return q.WithFields(u, fields)
		}
	}
	return p
}
