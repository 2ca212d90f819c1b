package pass

import (
	"errors"
	"slices"
	"testing"
)

func before(order []ID, a, b ID) bool {
	return slices.Index(order, a) < slices.Index(order, b)
}

func TestScheduleRespectsPrecursors(t *testing.T) {
	g := Builtin()
	requested := []ID{UnreachableMatchBranches, DocumentationComments, ShadowedPatternFields, TailCall, IgnoredBindings}
	plan, err := Schedule(g, requested)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(plan.Order) != len(requested) {
		t.Fatalf("order = %v, want %d passes", plan.Order, len(requested))
	}
	for _, id := range plan.Order {
		for _, pre := range g[id].Precursors {
			if slices.Contains(plan.Order, pre) && !before(plan.Order, pre, id) {
				t.Fatalf("%s scheduled before its precursor %s: %v", id, pre, plan.Order)
			}
		}
	}
	wantExternal := []ID{ComplexType, FunctionBinding, GenerateMethodBodies, LambdaShorthandToLambda}
	if !slices.Equal(plan.External, wantExternal) {
		t.Fatalf("external = %v, want %v", plan.External, wantExternal)
	}
}

func TestScheduleBatchesAreDeterministic(t *testing.T) {
	g := Graph{
		ComplexType:     {ID: ComplexType},
		FunctionBinding: {ID: FunctionBinding, Precursors: []ID{TailCall}},
		TailCall:        {ID: TailCall},
	}
	plan, err := Schedule(g, []ID{TailCall, FunctionBinding, ComplexType})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	wantOrder := []ID{ComplexType, TailCall, FunctionBinding}
	if !slices.Equal(plan.Order, wantOrder) {
		t.Fatalf("order = %v, want %v", plan.Order, wantOrder)
	}
	wantBatches := [][]ID{{ComplexType, TailCall}, {FunctionBinding}}
	if len(plan.Batches) != len(wantBatches) {
		t.Fatalf("batches = %v, want %v", plan.Batches, wantBatches)
	}
	for i := range wantBatches {
		if !slices.Equal(plan.Batches[i], wantBatches[i]) {
			t.Fatalf("batch[%d] = %v, want %v", i, plan.Batches[i], wantBatches[i])
		}
	}
}

func TestScheduleDetectsCycle(t *testing.T) {
	g := Graph{
		ComplexType:     {ID: ComplexType, Precursors: []ID{FunctionBinding}},
		FunctionBinding: {ID: FunctionBinding, Precursors: []ID{ComplexType}},
		TailCall:        {ID: TailCall},
	}
	plan, err := Schedule(g, []ID{ComplexType, FunctionBinding, TailCall})
	if plan != nil {
		t.Fatalf("expected no plan for a cyclic graph, got %+v", plan)
	}
	var cyc *CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
	if !slices.Equal(cyc.Passes, []ID{ComplexType, FunctionBinding}) {
		t.Fatalf("cycle = %v", cyc.Passes)
	}
}

func TestScheduleSelfCycle(t *testing.T) {
	g := Graph{TailCall: {ID: TailCall, Precursors: []ID{TailCall}}}
	if _, err := Schedule(g, []ID{TailCall}); err == nil {
		t.Fatalf("self precursor must be reported as a cycle")
	}
}

func TestScheduleIgnoresCycleOutsideRequest(t *testing.T) {
	g := Graph{
		ComplexType:     {ID: ComplexType, Precursors: []ID{FunctionBinding}},
		FunctionBinding: {ID: FunctionBinding, Precursors: []ID{ComplexType}},
		TailCall:        {ID: TailCall, Precursors: []ID{ComplexType}},
	}
	plan, err := Schedule(g, []ID{TailCall})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !slices.Equal(plan.Order, []ID{TailCall}) {
		t.Fatalf("order = %v", plan.Order)
	}
}

func TestScheduleRejectsUnknownPass(t *testing.T) {
	if _, err := Schedule(Graph{}, []ID{TailCall}); err == nil {
		t.Fatalf("expected error for pass without descriptor")
	}
	if _, err := Schedule(Builtin(), []ID{NoID}); err == nil {
		t.Fatalf("expected error for NoID")
	}
}

func TestBuiltinGraphIsAcyclic(t *testing.T) {
	if _, err := Schedule(Builtin(), All()); err != nil {
		t.Fatalf("builtin graph: %v", err)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, id := range All() {
		got, err := Parse(id.String())
		if err != nil || got != id {
			t.Fatalf("Parse(%q) = %v, %v", id.String(), got, err)
		}
	}
	if _, err := Parse("NoSuchPass"); err == nil {
		t.Fatalf("Parse accepted an unknown name")
	}
}

func TestStaleness(t *testing.T) {
	s := NewStaleness(Builtin())
	s.MarkRan(IgnoredBindings)
	s.MarkRan(TailCall)
	if !s.Valid(IgnoredBindings) || s.Stale(IgnoredBindings) {
		t.Fatalf("IgnoredBindings should be valid after running")
	}

	s.MarkRan(ShadowedPatternFields)
	if !s.Stale(IgnoredBindings) || !s.Stale(TailCall) {
		t.Fatalf("ShadowedPatternFields must invalidate IgnoredBindings and TailCall")
	}
	if s.Stale(AliasAnalysis) {
		t.Fatalf("a pass that never ran cannot be stale")
	}
	if got := s.StaleAmong([]ID{TailCall, DocumentationComments, IgnoredBindings}); !slices.Equal(got, []ID{TailCall, IgnoredBindings}) {
		t.Fatalf("StaleAmong = %v", got)
	}

	s.MarkRan(TailCall)
	if !s.Valid(TailCall) {
		t.Fatalf("rerunning TailCall must make it valid")
	}
}
