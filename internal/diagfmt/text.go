package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"lumen/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// Text writes one line per diagnostic of bag:
//
//	<unit>[:<span>]: <SEV> <ID>: <message>
//
// Items are written in bag order; call bag.Sort first for stable output.
func Text(w io.Writer, unit string, bag *diag.Bag, opts TextOpts) error {
	for _, d := range bag.Items() {
		if _, err := fmt.Fprintln(w, Line(unit, d, opts)); err != nil {
			return err
		}
	}
	return nil
}

// Line renders a single diagnostic.
func Line(unit string, d diag.Diagnostic, opts TextOpts) string {
	where := unit
	if d.Located {
		where += ":" + d.Primary.String()
	}
	sev := d.Severity.String()
	if opts.Color {
		switch d.Severity {
		case diag.SevError:
			sev = errorColor.Sprint(sev)
		case diag.SevWarning:
			sev = warningColor.Sprint(sev)
		}
	}
	line := fmt.Sprintf("%s: %s %s: %s", where, sev, d.Code.ID(), Message(d))
	if opts.ShowNodes && d.Node != 0 {
		line += fmt.Sprintf(" [node #%d", d.Node)
		if d.Ref != 0 {
			line += fmt.Sprintf(", see #%d", d.Ref)
		}
		line += "]"
	}
	return line
}
