package pass

// Staleness tracks which passes have valid metadata on one unit.
//
// A pass becomes valid when it runs and stale when a later pass lists it in
// Invalidates. Passes that never ran are neither valid nor stale.
type Staleness struct {
	graph Graph
	ran   map[ID]bool
	stale map[ID]bool
}

func NewStaleness(g Graph) *Staleness {
	return &Staleness{
		graph: g,
		ran:   make(map[ID]bool),
		stale: make(map[ID]bool),
	}
}

// MarkRan records that id completed: its own metadata is valid again and
// everything it invalidates becomes stale.
func (s *Staleness) MarkRan(id ID) {
	s.ran[id] = true
	delete(s.stale, id)
	for _, inv := range s.graph[id].Invalidates {
		if inv == id {
			continue
		}
		if s.ran[inv] {
			s.stale[inv] = true
		}
	}
}

// Stale reports whether id ran earlier and was invalidated since.
func (s *Staleness) Stale(id ID) bool {
	return s.stale[id]
}

// Valid reports whether id ran and was not invalidated since.
func (s *Staleness) Valid(id ID) bool {
	return s.ran[id] && !s.stale[id]
}

// StaleAmong returns the stale passes of ids, keeping their order.
func (s *Staleness) StaleAmong(ids []ID) []ID {
	var out []ID
	for _, id := range ids {
		if s.stale[id] {
			out = append(out, id)
		}
	}
	return out
}
