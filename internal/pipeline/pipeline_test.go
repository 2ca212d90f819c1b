package pipeline_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/dump"
	"lumen/internal/ir"
	"lumen/internal/pass"
	"lumen/internal/passes"
	"lumen/internal/pipeline"
	"lumen/internal/source"
)

// fake is a whole pass that records its runs and can be told to fail on a
// unit.
type fake struct {
	id     pass.ID
	log    *[]string
	failOn string
}

func (f fake) ID() pass.ID { return f.id }

func (f fake) RunModule(u *ir.Unit, m *ir.Module) *ir.Module {
	f.record(u)
	return m
}

func (f fake) RunExpression(u *ir.Unit, e ir.Expr) ir.Expr {
	f.record(u)
	return e
}

func (f fake) record(u *ir.Unit) {
	if f.log != nil {
		*f.log = append(*f.log, f.id.String())
	}
	if f.failOn != "" && u.Name == f.failOn {
		ir.Fatalf(f.id, nil, "broken on purpose")
	}
}

func stepNames(p *pipeline.Pipeline) []string {
	var out []string
	for _, s := range p.Steps() {
		out = append(out, s.String())
	}
	return out
}

var lints = []pass.ID{
	pass.UnreachableMatchBranches,
	pass.ShadowedPatternFields,
	pass.TailCall,
	pass.IgnoredBindings,
	pass.DocumentationComments,
}

func TestStepsFuseAdjacentMiniPasses(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{Passes: lints})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"DocumentationComments",
		"IgnoredBindings",
		"TailCall",
		"fused(ShadowedPatternFields+UnreachableMatchBranches)",
	}
	if got := stepNames(p); !slices.Equal(got, want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}
	if !p.Steps()[3].IsMini() || p.Steps()[1].IsMini() {
		t.Fatal("wrong step kinds")
	}
	if !slices.Contains(p.Plan().External, pass.GenerateMethodBodies) {
		t.Fatalf("external = %v", p.Plan().External)
	}
}

func TestRefreshStaleRerunsAtEnd(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{Passes: lints, RefreshStale: true})
	if err != nil {
		t.Fatal(err)
	}
	got := stepNames(p)
	want := []string{
		"DocumentationComments",
		"IgnoredBindings",
		"TailCall",
		"fused(ShadowedPatternFields+UnreachableMatchBranches)",
		"IgnoredBindings (rerun)",
		"TailCall (rerun)",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}
}

func TestStalePrecursorIsRecomputedBeforeUse(t *testing.T) {
	var log []string
	graph := pass.Graph{
		pass.ComplexType:     {ID: pass.ComplexType},
		pass.FunctionBinding: {ID: pass.FunctionBinding, Invalidates: []pass.ID{pass.ComplexType}},
		pass.GenerateMethodBodies: {
			ID:         pass.GenerateMethodBodies,
			Precursors: []pass.ID{pass.ComplexType, pass.FunctionBinding},
		},
	}
	ext := map[pass.ID]passes.Impl{}
	for id := range graph {
		ext[id] = passes.Impl{Whole: fake{id: id, log: &log}}
	}
	p, err := pipeline.New(pipeline.Options{
		Passes:   []pass.ID{pass.GenerateMethodBodies, pass.FunctionBinding, pass.ComplexType},
		Graph:    graph,
		External: ext,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ComplexType", "FunctionBinding", "ComplexType (rerun)", "GenerateMethodBodies"}
	if got := stepNames(p); !slices.Equal(got, want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}

	res := p.Run(context.Background(), pipeline.Input{Unit: ir.NewUnit("m"), Root: &ir.Module{Name: "M"}})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if !slices.Equal(log, []string{"ComplexType", "FunctionBinding", "ComplexType", "GenerateMethodBodies"}) {
		t.Fatalf("ran %v", log)
	}
	if res.Completed != 4 || len(res.Timing.Phases) != 4 {
		t.Fatalf("completed %d, %d timed phases", res.Completed, len(res.Timing.Phases))
	}
}

func TestMutuallyInvalidatingPrecursorsRejected(t *testing.T) {
	graph := pass.Graph{
		pass.ComplexType:     {ID: pass.ComplexType, Invalidates: []pass.ID{pass.FunctionBinding}},
		pass.FunctionBinding: {ID: pass.FunctionBinding, Invalidates: []pass.ID{pass.ComplexType}},
		pass.GenerateMethodBodies: {
			ID:         pass.GenerateMethodBodies,
			Precursors: []pass.ID{pass.ComplexType, pass.FunctionBinding},
		},
	}
	ext := map[pass.ID]passes.Impl{}
	for id := range graph {
		ext[id] = passes.Impl{Whole: fake{id: id}}
	}
	_, err := pipeline.New(pipeline.Options{
		Passes:   []pass.ID{pass.ComplexType, pass.FunctionBinding, pass.GenerateMethodBodies},
		Graph:    graph,
		External: ext,
	})
	if !errors.Is(err, pipeline.ErrConfig) || !strings.Contains(err.Error(), "invalidating") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	_, err := pipeline.New(pipeline.Options{Passes: []pass.ID{pass.NestedPatternMatch}})
	if !errors.Is(err, pipeline.ErrConfig) {
		t.Fatalf("missing implementation: err = %v", err)
	}

	_, err = pipeline.New(pipeline.Options{
		Passes:   []pass.ID{pass.ComplexType},
		External: map[pass.ID]passes.Impl{pass.ComplexType: {Whole: fake{id: pass.TailCall}}},
	})
	if !errors.Is(err, pipeline.ErrConfig) {
		t.Fatalf("mismatched implementation: err = %v", err)
	}

	graph := pass.Graph{
		pass.ComplexType:     {ID: pass.ComplexType, Precursors: []pass.ID{pass.FunctionBinding}},
		pass.FunctionBinding: {ID: pass.FunctionBinding, Precursors: []pass.ID{pass.ComplexType}},
	}
	_, err = pipeline.New(pipeline.Options{
		Passes: []pass.ID{pass.ComplexType, pass.FunctionBinding},
		Graph:  graph,
		External: map[pass.ID]passes.Impl{
			pass.ComplexType:     {Whole: fake{id: pass.ComplexType}},
			pass.FunctionBinding: {Whole: fake{id: pass.FunctionBinding}},
		},
	})
	var cyc *pass.CycleError
	if !errors.As(err, &cyc) || !errors.Is(err, pipeline.ErrConfig) {
		t.Fatalf("cycle: err = %v", err)
	}
}

func at(start, end uint32) ir.Header {
	return ir.At(source.Span{Start: start, End: end})
}

// lintModule has one shadowed field and one unreachable branch.
func lintModule() *ir.Module {
	x1 := &ir.PName{Header: at(5, 6), Name: &ir.Name{Text: "x"}}
	x2 := &ir.PName{Header: at(8, 9), Name: &ir.Name{Text: "x"}}
	c := &ir.Case{
		Header:    at(0, 60),
		Scrutinee: &ir.Name{Text: "v"},
		Branches: []*ir.Branch{
			{Header: at(1, 20), Pattern: &ir.PConstructor{Constructor: &ir.Name{Text: "P"}, Fields: []ir.Pattern{x1, x2}}, Body: &ir.Name{Text: "x"}, Terminal: true},
			{Header: at(21, 30), Pattern: &ir.PName{Name: ir.NewBlank(nil)}, Body: &ir.Literal{Value: "0"}, Terminal: true},
			{Header: at(31, 40), Pattern: &ir.PLiteral{Literal: &ir.Literal{Value: "5"}}, Body: &ir.Literal{Value: "5"}, Terminal: true},
		},
	}
	return &ir.Module{Name: "M", Decls: []ir.Decl{&ir.Method{TypeName: "T", Name: "m", Body: c}}}
}

func TestRunModule(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{Passes: lints, RefreshStale: true, CheckInvariants: true})
	if err != nil {
		t.Fatal(err)
	}
	u := ir.NewUnit("lint")
	in := lintModule()
	res := p.Run(context.Background(), pipeline.Input{Unit: u, Root: in})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Root == ir.Node(in) {
		t.Fatal("tree was not rewritten")
	}
	var codes []diag.Code
	for _, d := range res.Diagnostics.Items() {
		codes = append(codes, d.Code)
	}
	slices.Sort(codes)
	if !slices.Equal(codes, []diag.Code{diag.LintShadowedPatternBinding, diag.OptUnreachableBranches}) {
		t.Fatalf("codes = %v", codes)
	}
	c := res.Root.(*ir.Module).Decls[0].(*ir.Method).Body.(*ir.Case)
	if len(c.Branches) != 2 {
		t.Fatalf("branches:\n%s", ir.Sprint(c))
	}
	tail := ir.GetMetadata[*passes.TailPosition](u, c, pass.TailCall)
	if !tail.Tail {
		t.Fatal("method body not in tail position")
	}
}

func TestRunExpression(t *testing.T) {
	var log []string
	p, err := pipeline.New(pipeline.Options{
		Passes:   []pass.ID{pass.ComplexType},
		External: map[pass.ID]passes.Impl{pass.ComplexType: {Whole: fake{id: pass.ComplexType, log: &log}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := p.Run(context.Background(), pipeline.Input{Unit: ir.NewUnit("e"), Root: &ir.Name{Text: "x"}})
	if res.Err != nil || len(log) != 1 {
		t.Fatalf("err %v, log %v", res.Err, log)
	}

	res = p.Run(context.Background(), pipeline.Input{Unit: ir.NewUnit("p"), Root: &ir.PName{Name: &ir.Name{Text: "x"}}})
	if res.Err == nil {
		t.Fatal("pattern root accepted")
	}
}

func TestInternalErrorStopsOnlyThatUnit(t *testing.T) {
	var mu sync.Mutex
	var events []pipeline.Event
	p, err := pipeline.New(pipeline.Options{
		Passes:   []pass.ID{pass.ComplexType, pass.DocumentationComments},
		External: map[pass.ID]passes.Impl{pass.ComplexType: {Whole: fake{id: pass.ComplexType, failOn: "bad"}}},
		Jobs:     2,
		Progress: pipeline.SinkFunc(func(e pipeline.Event) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	bad := &ir.Module{Name: "B"}
	inputs := []pipeline.Input{
		{Unit: ir.NewUnit("good"), Root: lintModule()},
		{Unit: ir.NewUnit("bad"), Root: bad},
		{Unit: ir.NewUnit("also-good"), Root: &ir.Module{Name: "C"}},
	}
	results, err := p.RunAll(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("good units failed: %v, %v", results[0].Err, results[2].Err)
	}
	var ie *ir.InternalError
	if !errors.As(results[1].Err, &ie) || ie.Pass != pass.ComplexType {
		t.Fatalf("bad unit err = %v", results[1].Err)
	}
	if results[1].Root != ir.Node(bad) || results[1].Completed != 0 {
		t.Fatal("failed step replaced the tree")
	}
	if !pipeline.Failed(results) {
		t.Fatal("Failed = false")
	}

	mu.Lock()
	defer mu.Unlock()
	count := map[pipeline.Status]int{}
	for _, e := range events {
		if e.Step == "" {
			count[e.Status]++
		}
	}
	if count[pipeline.StatusQueued] != 3 || count[pipeline.StatusDone] != 2 || count[pipeline.StatusError] != 1 {
		t.Fatalf("unit events = %v", count)
	}
}

func TestDumperIsBestEffort(t *testing.T) {
	var stages []string
	d := dump.Func(func(_ *ir.Unit, _ ir.Node, s dump.Stage) error {
		stages = append(stages, s.String())
		if s.Phase == dump.PhaseAfter {
			panic("dumper crashed")
		}
		return nil
	})
	p, err := pipeline.New(pipeline.Options{
		Passes: []pass.ID{pass.DocumentationComments, pass.TailCall},
		Dumper: d,
	})
	if err != nil {
		t.Fatal(err)
	}
	res := p.Run(context.Background(), pipeline.Input{Unit: ir.NewUnit("d"), Root: lintModule()})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	want := []string{
		"01-before-DocumentationComments",
		"01-after-DocumentationComments",
		"02-before-TailCall",
		"02-after-TailCall",
	}
	if !slices.Equal(stages, want) {
		t.Fatalf("stages = %v", stages)
	}
}

func TestCancelledRun(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{Passes: []pass.ID{pass.DocumentationComments}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := p.RunAll(ctx, []pipeline.Input{{Unit: ir.NewUnit("x"), Root: lintModule()}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("unit err = %v", results[0].Err)
	}
}
