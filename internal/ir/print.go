package ir

import (
	"fmt"
	"io"
	"strings"
)

// PrintOptions configures tree dumping.
type PrintOptions struct {
	Locations   bool
	IDs         bool
	Metadata    bool
	Diagnostics bool
}

// Printer is used to dump a tree to text format, one node per line.
type Printer struct {
	w      io.Writer
	u      *Unit
	indent int
	opts   PrintOptions
	err    error
}

// NewPrinter creates a printer. u may be nil when no side tables should be
// shown.
func NewPrinter(w io.Writer, u *Unit, opts PrintOptions) *Printer {
	return &Printer{w: w, u: u, opts: opts}
}

// Print writes the tree rooted at n.
func Print(w io.Writer, u *Unit, n Node, opts PrintOptions) error {
	p := NewPrinter(w, u, opts)
	p.PrintNode(n)
	return p.err
}

// Sprint renders n with default options; handy in tests and error messages.
func Sprint(n Node) string {
	var sb strings.Builder
	_ = Print(&sb, nil, n, PrintOptions{})
	return sb.String()
}

func (p *Printer) PrintNode(n Node) {
	if n == nil {
		p.line("<nil>")
		return
	}
	p.line(p.label(n) + p.annotations(n))
	if p.u != nil && p.opts.Diagnostics {
		for _, d := range p.u.Diagnostics(n) {
			p.indent++
			p.line(formatDiagnostic(d))
			p.indent--
		}
	}
	p.indent++
	n.eachChild(p.PrintNode)
	p.indent--
}

func (p *Printer) label(n Node) string {
	switch n := n.(type) {
	case *Literal:
		if n.Form == LitText {
			return fmt.Sprintf("Literal %q", n.Value)
		}
		return "Literal " + n.Value
	case *Name:
		if n.Blank {
			return "Blank"
		}
		return "Name " + n.Text
	case *Case:
		if n.Nested {
			return "Case nested"
		}
	case *Branch:
		if n.Terminal {
			return "Branch"
		}
		return "Branch fallthrough"
	case *PConstructor:
		return "PConstructor " + n.Constructor.Text
	case *PDocumentation:
		return fmt.Sprintf("PDocumentation %q", n.Doc)
	case *Method:
		return "Method " + n.QualifiedName()
	case *Module:
		return "Module " + n.Name
	}
	return n.Kind().String()
}

func (p *Printer) annotations(n Node) string {
	var sb strings.Builder
	h := n.header()
	if p.opts.IDs && h.id.IsValid() {
		fmt.Fprintf(&sb, " %s", h.id)
	}
	if p.opts.Locations && h.Loc != nil {
		fmt.Fprintf(&sb, " @%s", h.Loc)
	}
	if p.u != nil && p.opts.Metadata {
		for _, id := range p.u.MetadataPasses(n) {
			fact, _ := p.u.Metadata(n, id)
			fmt.Fprintf(&sb, " {%s: %v}", id, fact)
		}
	}
	return sb.String()
}

func formatDiagnostic(d Diagnostic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "! %s %s", d.Severity, d.Code.ID())
	if len(d.Args) > 0 {
		fmt.Fprintf(&sb, " %s", strings.Join(d.Args, ","))
	}
	if d.Loc != nil {
		fmt.Fprintf(&sb, " @%s", d.Loc)
	}
	if d.Ref.IsValid() {
		fmt.Fprintf(&sb, " ref=%s", d.Ref)
	}
	return sb.String()
}

func (p *Printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), s)
}
