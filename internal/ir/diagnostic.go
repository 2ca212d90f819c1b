package ir

import (
	"slices"

	"lumen/internal/diag"
)

// Diagnostic is a diagnostic attached to a node.
type Diagnostic struct {
	Severity diag.Severity `msgpack:"severity"`
	Code     diag.Code     `msgpack:"code"`
	Args     []string      `msgpack:"args,omitempty"`
	Loc      *Location     `msgpack:"loc,omitempty"`
	// Ref is the identity of the node explaining the diagnostic.
	Ref NodeID `msgpack:"ref,omitempty"`
}

func Warning(code diag.Code, loc *Location, args ...string) Diagnostic {
	return Diagnostic{Severity: diag.SevWarning, Code: code, Args: args, Loc: cloneLocation(loc)}
}

// AddDiagnostic appends d to the diagnostics of n.
func (u *Unit) AddDiagnostic(n Node, d Diagnostic) {
	slot := u.slotOf(n, true)
	u.diags[slot] = append(u.diags[slot], d)
}

// Diagnostics returns a copy of the diagnostics attached to n.
func (u *Unit) Diagnostics(n Node) []Diagnostic {
	slot := u.slotOf(n, false)
	if slot == 0 {
		return nil
	}
	return slices.Clone(u.diags[slot])
}

// Export converts an attached diagnostic into the record handed to
// reporters.
func (d Diagnostic) Export(node NodeID) diag.Diagnostic {
	out := diag.New(d.Severity, d.Code, d.Args...)
	if d.Loc != nil {
		out = out.At(d.Loc.Span)
	}
	out.Node = uint32(node)
	return out.Referencing(uint32(d.Ref))
}

// CollectDiagnostics reports every diagnostic reachable from root in tree
// order. Node identities are minted where missing so each record names its
// node.
func CollectDiagnostics(u *Unit, root Node, r diag.Reporter) int {
	count := 0
	Walk(root, func(n Node) bool {
		ds := u.Diagnostics(n)
		if len(ds) == 0 {
			return true
		}
		id := u.ID(n)
		for _, d := range ds {
			r.Report(d.Export(id))
			count++
		}
		return true
	})
	return count
}
