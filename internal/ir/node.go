package ir

import "lumen/internal/source"

// Kind enumerates node variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	// expressions
	KindLiteral
	KindName
	KindApplication
	KindLambda
	KindBlock
	KindBinding
	KindCase
	KindBranch
	// patterns
	KindPName
	KindPConstructor
	KindPLiteral
	KindPType
	KindPDocumentation
	// declarations
	KindMethod
	KindModule
)

var kindNames = [...]string{
	KindInvalid:        "Invalid",
	KindLiteral:        "Literal",
	KindName:           "Name",
	KindApplication:    "Application",
	KindLambda:         "Lambda",
	KindBlock:          "Block",
	KindBinding:        "Binding",
	KindCase:           "Case",
	KindBranch:         "Branch",
	KindPName:          "PName",
	KindPConstructor:   "PConstructor",
	KindPLiteral:       "PLiteral",
	KindPType:          "PType",
	KindPDocumentation: "PDocumentation",
	KindMethod:         "Method",
	KindModule:         "Module",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Header is embedded in every node variant.
type Header struct {
	Loc *Location

	id   NodeID
	slot uint32
	unit *Unit
}

// At returns a header located at sp.
func At(sp source.Span) Header {
	return Header{Loc: &Location{Span: sp}}
}

func (h *Header) header() *Header { return h }

// Node is implemented by every variant. The set of variants is closed:
// header and eachChild are unexported.
type Node interface {
	Kind() Kind
	// Duplicate returns a deep copy of the subtree. Slots are always fresh;
	// keep selects which of locations, metadata, diagnostics and
	// identities are carried over.
	Duplicate(u *Unit, keep Keep) Node
	// MapExpressions rebuilds the node with f applied to each immediate
	// expression child. It does not recurse. The result keeps identity,
	// location, metadata and diagnostics; when f returned every child
	// unchanged the result is n itself.
	MapExpressions(u *Unit, f func(Expr) Expr) Node

	header() *Header
	eachChild(func(Node))
}

// Expr is a node that can appear where a value is computed.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a node on the left side of a case branch.
type Pattern interface {
	Node
	patternNode()
}

// Decl is a module-level declaration.
type Decl interface {
	Node
	declNode()
}

// Copy is Duplicate keeping the static type of n.
func Copy[T Node](u *Unit, n T, keep Keep) T {
	return n.Duplicate(u, keep).(T)
}

// Map is MapExpressions keeping the static type of n.
func Map[T Node](u *Unit, n T, f func(Expr) Expr) T {
	return n.MapExpressions(u, f).(T)
}

func dupExprs(u *Unit, es []Expr, keep Keep) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = dupExpr(u, e, keep)
	}
	return out
}

// dupExpr copies an optional expression child.
func dupExpr(u *Unit, e Expr, keep Keep) Expr {
	if e == nil {
		return nil
	}
	return Copy(u, e, keep)
}

func mapExpr(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	return f(e)
}

// mapExprs maps es with f; changed is false when every element came back
// unchanged.
func mapExprs(es []Expr, f func(Expr) Expr) (out []Expr, changed bool) {
	if es == nil {
		return nil, false
	}
	out = make([]Expr, len(es))
	for i, e := range es {
		out[i] = mapExpr(e, f)
		changed = changed || out[i] != e
	}
	return out, changed
}
