package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"lumen/internal/diag"
	"lumen/internal/dump"
	"lumen/internal/ir"
	"lumen/internal/mini"
	"lumen/internal/observ"
	"lumen/internal/trace"
)

// Input is one compilation unit: its arena and the tree to compile. Root is
// a *ir.Module or an expression compiled on its own.
type Input struct {
	Unit *ir.Unit
	Root ir.Node
}

// Result of running the pipeline on one unit.
type Result struct {
	Unit *ir.Unit
	// Root is the tree after the last step that completed.
	Root ir.Node
	// Diagnostics attached anywhere in Root, sorted.
	Diagnostics *diag.Bag
	Timing      observ.Report
	// Completed counts the steps that finished.
	Completed int
	// Err is an internal error, an invariant violation or a cancellation.
	// The unit stopped at the failing step.
	Err error
}

// Run executes all steps on one unit.
func (p *Pipeline) Run(ctx context.Context, in Input) Result {
	res := Result{Unit: in.Unit, Root: in.Root}
	name := in.Unit.Name
	sink := p.sink()
	timer := observ.NewTimer()

	span, ctx := trace.Start(ctx, trace.ScopeUnit, name)
	started := time.Now()
	sink.OnEvent(Event{Unit: name, Status: StatusWorking, Total: len(p.steps)})

	if err := checkRoot(in.Root); err != nil {
		res.Err = err
	}
	dumper := dump.Safe(p.opts.Dumper, func(err error) {
		trace.PointCtx(ctx, trace.ScopeUnit, "dump", err.Error())
	})

	for i, step := range p.steps {
		if res.Err != nil {
			break
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		stage := dump.Stage{Step: i + 1, Pass: step.Name()}

		stage.Phase = dump.PhaseBefore
		_ = dumper.Dump(in.Unit, res.Root, stage)

		idx := timer.Begin(step.Name())
		stepSpan, _ := trace.Start(ctx, trace.ScopePass, step.Name())
		if step.Rerun {
			stepSpan.WithExtra("rerun", "true")
		}
		stepStart := time.Now()
		next, err := p.runStep(in.Unit, res.Root, step)
		elapsed := time.Since(stepStart)
		note := ""
		if step.Rerun {
			note = "rerun"
		}
		timer.End(idx, note)

		if err != nil {
			stepSpan.WithExtra("error", err.Error())
			stepSpan.End("failed")
			res.Err = fmt.Errorf("%s: %s: %w", name, step.Name(), err)
			sink.OnEvent(Event{Unit: name, Step: step.Name(), Index: i + 1, Total: len(p.steps), Status: StatusError, Err: err, Elapsed: elapsed})
			break
		}
		if stepSpan.ID() != 0 {
			stepSpan.WithExtra("nodes", strconv.Itoa(ir.Count(next)))
		}
		stepSpan.End("")
		res.Root = next
		res.Completed++
		sink.OnEvent(Event{Unit: name, Step: step.Name(), Index: i + 1, Total: len(p.steps), Status: StatusDone, Elapsed: elapsed})

		stage.Phase = dump.PhaseAfter
		_ = dumper.Dump(in.Unit, res.Root, stage)
	}

	if res.Err == nil && p.opts.CheckInvariants {
		if err := ir.CheckInvariants(res.Root); err != nil {
			res.Err = fmt.Errorf("%s: %w", name, err)
		}
	}

	res.Diagnostics = diag.NewBag(p.opts.MaxDiagnostics)
	if res.Root != nil {
		// общие поддеревья обходятся по разу на каждого родителя
		ir.CollectDiagnostics(in.Unit, res.Root, diag.NewDedupReporter(diag.BagReporter{Bag: res.Diagnostics}))
	}
	res.Diagnostics.Sort()
	res.Timing = timer.Report()

	status := StatusDone
	if res.Err != nil {
		status = StatusError
		span.WithExtra("error", res.Err.Error())
	}
	span.WithExtra("diagnostics", strconv.Itoa(res.Diagnostics.Len()))
	span.End(string(status))
	sink.OnEvent(Event{Unit: name, Status: status, Err: res.Err, Total: len(p.steps), Index: res.Completed, Elapsed: time.Since(started)})
	return res
}

// runStep applies one step. Internal errors raised by the passes come back
// as err; the tree is only replaced when the whole step succeeded.
func (p *Pipeline) runStep(u *ir.Unit, root ir.Node, step Step) (out ir.Node, err error) {
	defer ir.Recover(&err)

	if step.mini {
		ps := make([]mini.Pass, len(step.Passes))
		for i, id := range step.Passes {
			f := p.impls[id].Mini
			if m, ok := root.(*ir.Module); ok {
				ps[i] = f.ForModule(m)
			} else {
				ps[i] = f.ForInline(root.(ir.Expr))
			}
		}
		var fused mini.Pass = ps[0]
		if len(ps) > 1 {
			fused = mini.Fuse(ps...)
		}
		return mini.Run(u, root, fused), nil
	}

	id := step.Passes[0]
	whole := p.impls[id].Whole
	switch r := root.(type) {
	case *ir.Module:
		return whole.RunModule(u, r), nil
	case ir.Expr:
		return whole.RunExpression(u, r), nil
	}
	return nil, fmt.Errorf("cannot run %s on %s", id, root.Kind())
}

func checkRoot(root ir.Node) error {
	switch root.(type) {
	case *ir.Module, ir.Expr:
		return nil
	case nil:
		return fmt.Errorf("unit has no tree")
	}
	return fmt.Errorf("unit root must be a module or an expression, got %s", root.Kind())
}

// RunAll runs every input, at most Jobs at a time. Results are in input
// order. Unit failures are reported in their Result; the returned error is
// only set when ctx was cancelled.
func (p *Pipeline) RunAll(ctx context.Context, inputs []Input) ([]Result, error) {
	results := make([]Result, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	jobs := p.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")
	span.WithExtra("units", strconv.Itoa(len(inputs)))

	sink := p.sink()
	for _, in := range inputs {
		sink.OnEvent(Event{Unit: in.Unit.Name, Status: StatusQueued, Total: len(p.steps)})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, in := range inputs {
		g.Go(func() error {
			// индекс i уникален для горутины, мьютекс не нужен
			if err := gctx.Err(); err != nil {
				results[i] = Result{Unit: in.Unit, Root: in.Root, Diagnostics: diag.NewBag(p.opts.MaxDiagnostics), Err: err}
				sink.OnEvent(Event{Unit: in.Unit.Name, Status: StatusError, Err: err})
				return nil
			}
			results[i] = p.Run(gctx, in)
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

func (p *Pipeline) sink() ProgressSink {
	if p.opts.Progress == nil {
		return nopSink{}
	}
	return p.opts.Progress
}

// Timing merges the timing reports of several results.
func Timing(results []Result) observ.Report {
	reports := make([]observ.Report, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.Timing)
	}
	return observ.Aggregate(reports...)
}

// Failed reports whether any result carries an error or error diagnostics.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil || (r.Diagnostics != nil && r.Diagnostics.HasErrors()) {
			return true
		}
	}
	return false
}
