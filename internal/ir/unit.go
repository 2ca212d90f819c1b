package ir

import (
	"fmt"
	"maps"
	"slices"

	"fortio.org/safecast"

	"lumen/internal/pass"
)

// Unit owns the side tables and identity counters of one compilation unit.
//
// A Unit is not safe for concurrent use. Units share nothing, so distinct
// units may be processed in parallel.
type Unit struct {
	Name string

	slots uint32
	ids   uint32

	meta  map[uint32]map[pass.ID]any
	diags map[uint32][]Diagnostic
}

func NewUnit(name string) *Unit {
	return &Unit{
		Name:  name,
		meta:  make(map[uint32]map[pass.ID]any),
		diags: make(map[uint32][]Diagnostic),
	}
}

func (u *Unit) String() string { return fmt.Sprintf("unit %q", u.Name) }

// ID returns the identity of n, minting a fresh one if n has none.
func (u *Unit) ID(n Node) NodeID {
	h := n.header()
	if h.id == NoNodeID {
		h.id = u.nextID()
	}
	return h.id
}

// SetID gives n the identity id, as read back from a serialised tree.
// Identities minted later never collide with it.
func (u *Unit) SetID(n Node, id NodeID) {
	n.header().id = id
	if uint32(id) > u.ids {
		u.ids = uint32(id)
	}
}

// Identity returns the identity of n without minting.
func Identity(n Node) NodeID {
	return n.header().id
}

// Loc returns the location of n, or nil.
func Loc(n Node) *Location {
	return n.header().Loc
}

func (u *Unit) nextID() NodeID {
	next, err := safecast.Conv[uint32](uint64(u.ids) + 1)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	u.ids = next
	return NodeID(next)
}

// slotOf returns the side-table slot of n, allocating it when alloc is set.
// A node carrying a slot of another unit is a contract violation.
func (u *Unit) slotOf(n Node, alloc bool) uint32 {
	h := n.header()
	if h.slot != 0 {
		if h.unit != u {
			panic(&InternalError{Node: n.Kind(), Msg: fmt.Sprintf("node %s belongs to another unit", n.Kind())})
		}
		return h.slot
	}
	if !alloc {
		return 0
	}
	next, err := safecast.Conv[uint32](uint64(u.slots) + 1)
	if err != nil {
		panic(fmt.Errorf("node slot overflow: %w", err))
	}
	u.slots = next
	h.slot = next
	h.unit = u
	return next
}

// inherit resets the header of dst and carries over the facets of src
// selected by keep.
func (u *Unit) inherit(dst, src Node, keep Keep) {
	d, s := dst.header(), src.header()
	*d = Header{}
	if keep.Has(KeepLocations) {
		d.Loc = cloneLocation(s.Loc)
	}
	if keep.Has(KeepIdentifiers) {
		d.id = u.ID(src)
	}
	if !keep.Has(KeepMetadata) && !keep.Has(KeepDiagnostics) {
		return
	}
	from := u.slotOf(src, false)
	if from == 0 {
		return
	}
	if keep.Has(KeepMetadata) {
		if facts := u.meta[from]; len(facts) > 0 {
			u.meta[u.slotOf(dst, true)] = maps.Clone(facts)
		}
	}
	if keep.Has(KeepDiagnostics) {
		if ds := u.diags[from]; len(ds) > 0 {
			u.diags[u.slotOf(dst, true)] = slices.Clone(ds)
		}
	}
}

// MetadataPasses lists the passes that stored a fact on n, in ID order.
func (u *Unit) MetadataPasses(n Node) []pass.ID {
	slot := u.slotOf(n, false)
	if slot == 0 {
		return nil
	}
	ids := slices.Collect(maps.Keys(u.meta[slot]))
	slices.Sort(ids)
	return ids
}

// Stats reports how many node instances touched the side tables.
func (u *Unit) Stats() (slots, ids uint32) {
	return u.slots, u.ids
}
