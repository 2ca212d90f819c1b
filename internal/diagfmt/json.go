package diagfmt

import (
	"encoding/json"
	"io"

	"lumen/internal/diag"
)

// LocationJSON is a byte range in a source file.
type LocationJSON struct {
	File      uint32 `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// DiagnosticJSON is the machine-readable form of one diagnostic.
type DiagnosticJSON struct {
	Unit     string        `json:"unit"`
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Args     []string      `json:"args,omitempty"`
	Location *LocationJSON `json:"location,omitempty"`
	Node     uint32        `json:"node,omitempty"`
	Ref      uint32        `json:"ref,omitempty"`
}

// DiagnosticsOutput is the document written when Lines is off.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// Build converts the items of bag, at most opts.Max of them when set.
func Build(unit string, bag *diag.Bag, opts JSONOpts) []DiagnosticJSON {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	out := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		dj := DiagnosticJSON{
			Unit:     unit,
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  Message(d),
			Args:     d.Args,
			Node:     d.Node,
			Ref:      d.Ref,
		}
		if d.Located {
			dj.Location = &LocationJSON{File: uint32(d.Primary.File), StartByte: d.Primary.Start, EndByte: d.Primary.End}
		}
		out = append(out, dj)
	}
	return out
}

// JSON writes the diagnostics of bag.
func JSON(w io.Writer, unit string, bag *diag.Bag, opts JSONOpts) error {
	items := Build(unit, bag, opts)
	enc := json.NewEncoder(w)
	if opts.Lines {
		for _, d := range items {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	}
	enc.SetIndent("", "  ")
	return enc.Encode(DiagnosticsOutput{Diagnostics: items, Count: len(items)})
}
