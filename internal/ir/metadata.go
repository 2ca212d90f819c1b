package ir

import (
	"fmt"
	"reflect"

	"lumen/internal/pass"
)

// UpdateMetadata stores fact as the metadata of p on n, replacing any
// earlier fact.
func UpdateMetadata(u *Unit, n Node, p pass.ID, fact any) {
	slot := u.slotOf(n, true)
	facts := u.meta[slot]
	if facts == nil {
		facts = make(map[pass.ID]any, 2)
		u.meta[slot] = facts
	}
	facts[p] = fact
}

// Metadata returns the raw fact of p on n.
func (u *Unit) Metadata(n Node, p pass.ID) (any, bool) {
	slot := u.slotOf(n, false)
	if slot == 0 {
		return nil, false
	}
	fact, ok := u.meta[slot][p]
	return fact, ok
}

// GetMetadata returns the fact of p on n. A missing fact and a fact of
// another type both panic with a *MetadataError, of distinct kinds.
func GetMetadata[T any](u *Unit, n Node, p pass.ID) T {
	fact, ok := GetMetadataOK[T](u, n, p)
	if !ok {
		panic(&MetadataError{Kind: MetadataMissing, Pass: p, Node: n.Kind(), ID: Identity(n)})
	}
	return fact
}

// GetMetadataOK is GetMetadata for facts that are legitimately optional.
// It still panics when the stored fact has the wrong type.
func GetMetadataOK[T any](u *Unit, n Node, p pass.ID) (T, bool) {
	var zero T
	raw, ok := u.Metadata(n, p)
	if !ok {
		return zero, false
	}
	fact, ok := raw.(T)
	if !ok {
		panic(&MetadataError{
			Kind: MetadataWrongType,
			Pass: p,
			Node: n.Kind(),
			ID:   Identity(n),
			Want: reflect.TypeFor[T]().String(),
			Got:  fmt.Sprintf("%T", raw),
		})
	}
	return fact, true
}
