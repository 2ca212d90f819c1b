package diag

import (
	"lumen/internal/source"
)

// Diagnostic is the structured record handed to the external renderer.
//
// Code doubles as the message key: the renderer looks the template up by
// code and substitutes Args positionally. Primary is meaningful only when
// Located is set. Node and Ref are node identities (0 = none): Node is the
// node the diagnostic was attached to, Ref the node explaining it.
type Diagnostic struct {
	Severity Severity    `json:"severity" msgpack:"severity"`
	Code     Code        `json:"code" msgpack:"code"`
	Args     []string    `json:"args,omitempty" msgpack:"args,omitempty"`
	Primary  source.Span `json:"primary" msgpack:"primary"`
	Located  bool        `json:"located" msgpack:"located"`
	Node     uint32      `json:"node,omitempty" msgpack:"node,omitempty"`
	Ref      uint32      `json:"ref,omitempty" msgpack:"ref,omitempty"`
}

func New(sev Severity, code Code, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Args:     args,
	}
}

func NewWarning(code Code, args ...string) Diagnostic {
	return New(SevWarning, code, args...)
}

// At returns a copy of d located at sp.
func (d Diagnostic) At(sp source.Span) Diagnostic {
	d.Primary = sp
	d.Located = true
	return d
}

// Referencing returns a copy of d that points at the explaining node.
func (d Diagnostic) Referencing(node uint32) Diagnostic {
	d.Ref = node
	return d
}
