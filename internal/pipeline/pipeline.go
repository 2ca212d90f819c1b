// Package pipeline drives compilation units through the passes of the
// middle-end.
//
// New resolves the requested passes once: it checks that each has an
// implementation, orders them along the precursor graph and decides up front
// where stale passes must be recomputed. The outcome is a list of steps, each
// either one whole pass or a fused batch of mini-passes sharing a single
// traversal. Run executes the steps on one unit; RunAll runs many units in
// parallel, each with its own side tables.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"lumen/internal/dump"
	"lumen/internal/pass"
	"lumen/internal/passes"
)

// ErrConfig marks errors caused by the pass configuration rather than by a
// unit.
var ErrConfig = errors.New("pipeline configuration")

// Options configure a pipeline.
type Options struct {
	// Passes requested for every unit. Order does not matter.
	Passes []pass.ID
	// Graph overrides the built-in descriptor table.
	Graph pass.Graph
	// External supplies or replaces pass implementations.
	External map[pass.ID]passes.Impl
	// RefreshStale reruns stale requested passes after the last step, so
	// the back-end reads valid metadata.
	RefreshStale bool
	// MaxDiagnostics caps Result.Diagnostics; 0 means no limit.
	MaxDiagnostics int
	// Jobs bounds RunAll parallelism; 0 means GOMAXPROCS.
	Jobs int
	// Dumper sees the tree before and after every step.
	Dumper dump.Dumper
	// Progress receives unit and step events.
	Progress ProgressSink
	// CheckInvariants validates the final tree. Only meaningful when the
	// pipeline includes the passes establishing the invariants
	// (DocumentationComments, ShadowedPatternFields, UnreachableMatchBranches).
	CheckInvariants bool
}

// Step is one unit of execution: a whole pass or a fused mini batch.
type Step struct {
	Passes []pass.ID
	// Rerun marks recomputation of passes made stale by earlier steps.
	Rerun bool
	mini  bool
}

// Name is the pass name, or fused(A+B) for a batch of mini-passes.
func (s Step) Name() string {
	if len(s.Passes) == 1 {
		return s.Passes[0].String()
	}
	names := make([]string, len(s.Passes))
	for i, id := range s.Passes {
		names[i] = id.String()
	}
	return "fused(" + strings.Join(names, "+") + ")"
}

// IsMini reports whether the step is a (possibly single) mini-pass batch.
func (s Step) IsMini() bool { return s.mini }

func (s Step) String() string {
	if s.Rerun {
		return s.Name() + " (rerun)"
	}
	return s.Name()
}

// Pipeline is an immutable, validated pass configuration. It is safe to
// share between goroutines.
type Pipeline struct {
	opts  Options
	graph pass.Graph
	impls map[pass.ID]passes.Impl
	plan  *pass.Plan
	steps []Step
}

// New validates opts and computes the steps.
func New(opts Options) (*Pipeline, error) {
	graph := opts.Graph
	if graph == nil {
		graph = pass.Builtin()
	}
	impls := passes.Builtin()
	for id, impl := range opts.External {
		impls[id] = impl
	}
	for _, id := range opts.Passes {
		impl, ok := impls[id]
		if !ok {
			return nil, fmt.Errorf("%w: pass %s has no implementation", ErrConfig, id)
		}
		if impl.ID() != id {
			return nil, fmt.Errorf("%w: implementation registered for %s reports %s", ErrConfig, id, impl.ID())
		}
	}

	plan, err := pass.Schedule(graph, opts.Passes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	p := &Pipeline{opts: opts, graph: graph, impls: impls, plan: plan}
	entries, err := p.expand()
	if err != nil {
		return nil, err
	}
	p.steps = p.fuse(entries)
	return p, nil
}

// Plan returns the schedule of the requested passes.
func (p *Pipeline) Plan() *pass.Plan { return p.plan }

// Steps returns the execution steps in order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

type entry struct {
	id    pass.ID
	rerun bool
}

// expand walks the schedule with a simulated staleness table and inserts a
// rerun of every stale requested precursor right before the pass that reads
// it. Passes are referentially transparent, so the simulation holds for any
// unit.
func (p *Pipeline) expand() ([]entry, error) {
	requested := make(map[pass.ID]bool, len(p.plan.Order))
	for _, id := range p.plan.Order {
		requested[id] = true
	}
	st := pass.NewStaleness(p.graph)
	var out []entry

	// Reruns of one precursor may invalidate another; bounded by the
	// number of passes, past that the precursors keep invalidating each
	// other.
	limit := len(p.plan.Order) + 1
	var runOne func(id pass.ID, rerun bool) error
	runOne = func(id pass.ID, rerun bool) error {
		for round := 0; ; round++ {
			var stale []pass.ID
			for _, pre := range p.graph[id].Precursors {
				if requested[pre] && st.Stale(pre) {
					stale = append(stale, pre)
				}
			}
			if len(stale) == 0 {
				break
			}
			if round == limit {
				return fmt.Errorf("%w: precursors of %s keep invalidating each other: %v", ErrConfig, id, stale)
			}
			for _, pre := range stale {
				if err := runOne(pre, true); err != nil {
					return err
				}
			}
		}
		out = append(out, entry{id: id, rerun: rerun})
		st.MarkRan(id)
		return nil
	}

	for _, id := range p.plan.Order {
		if err := runOne(id, false); err != nil {
			return nil, err
		}
	}
	if p.opts.RefreshStale {
		for round := 0; ; round++ {
			stale := st.StaleAmong(p.plan.Order)
			if len(stale) == 0 {
				break
			}
			if round == limit {
				return nil, fmt.Errorf("%w: stale passes never settle: %v", ErrConfig, stale)
			}
			for _, id := range stale {
				if !st.Stale(id) {
					continue
				}
				if err := runOne(id, true); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// fuse merges consecutive mini-passes into one step. A rerun never shares
// a traversal with a first run.
func (p *Pipeline) fuse(entries []entry) []Step {
	var steps []Step
	for _, e := range entries {
		isMini := p.impls[e.id].IsMini()
		if n := len(steps); n > 0 && isMini {
			last := &steps[n-1]
			if last.mini && last.Rerun == e.rerun {
				last.Passes = append(last.Passes, e.id)
				continue
			}
		}
		steps = append(steps, Step{Passes: []pass.ID{e.id}, Rerun: e.rerun, mini: isMini})
	}
	return steps
}

// WithProgress returns a copy of p reporting to sink.
func (p *Pipeline) WithProgress(sink ProgressSink) *Pipeline {
	c := *p
	c.opts.Progress = sink
	return &c
}
