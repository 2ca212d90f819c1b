// Package ir is the tree representation passed between the front-end, the
// passes of this middle-end and the back-end.
//
// Tree nodes are values: passes never change the structure of a node they
// received, they build a replacement. What does change in place are the two
// side tables owned by the Unit the tree belongs to: per-pass metadata facts
// and attached diagnostics. Both are keyed by a slot that every node instance
// receives the first time a table is touched for it, so two structurally
// equal nodes never share facts.
//
// Identity (NodeID) is a separate facet. It names "the same conceptual
// occurrence" across rebuilds: MapExpressions and Duplicate with
// KeepIdentifiers carry it over to the new instance, diagnostics refer to
// nodes by it.
package ir

import (
	"fmt"

	"lumen/internal/source"
)

// NodeID is the synthetic identity of a node. Zero means "not assigned yet";
// Unit.ID mints one on demand.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

func (id NodeID) String() string { return fmt.Sprintf("#%d", uint32(id)) }

// Location is an identified source range.
type Location struct {
	Span source.Span `msgpack:"span"`
	// ID identifies the source fragment, usually the identity of the node
	// the location was taken from.
	ID NodeID `msgpack:"id,omitempty"`
}

func (l *Location) String() string {
	if l == nil {
		return "<no location>"
	}
	return l.Span.String()
}

// Clone returns a copy of l; nil stays nil.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func cloneLocation(l *Location) *Location { return l.Clone() }

// Keep selects the facets Duplicate carries over to the copy.
type Keep uint8

const (
	KeepLocations Keep = 1 << iota
	KeepMetadata
	KeepDiagnostics
	KeepIdentifiers

	KeepNone Keep = 0
	KeepAll       = KeepLocations | KeepMetadata | KeepDiagnostics | KeepIdentifiers
)

func (k Keep) Has(f Keep) bool { return k&f == f }
