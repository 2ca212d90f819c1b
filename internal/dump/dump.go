// Package dump lets a caller look at trees between passes. Dumpers are a
// debugging aid: the pipeline wraps every dumper in Safe, so a failing
// dumper never fails a compilation.
package dump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lumen/internal/ir"
	"lumen/internal/irfile"
)

// Phase says whether a dump is taken before or after a step.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Stage names the point of the pipeline a dump was taken at.
type Stage struct {
	// Step is the position of the step in the plan, starting at 1.
	Step int
	// Pass is the step name: a pass name, or fused(A+B) for a batch.
	Pass  string
	Phase Phase
}

func (s Stage) String() string {
	return fmt.Sprintf("%02d-%s-%s", s.Step, s.Phase, s.Pass)
}

// Dumper receives the tree of a unit at a stage.
type Dumper interface {
	Dump(u *ir.Unit, root ir.Node, stage Stage) error
}

// Func adapts a function to Dumper.
type Func func(u *ir.Unit, root ir.Node, stage Stage) error

func (f Func) Dump(u *ir.Unit, root ir.Node, stage Stage) error { return f(u, root, stage) }

type nop struct{}

func (nop) Dump(*ir.Unit, ir.Node, Stage) error { return nil }

// Nop discards everything.
var Nop Dumper = nop{}

// Safe wraps d so that its errors and panics are dropped. onErr, when not
// nil, is told about them.
func Safe(d Dumper, onErr func(error)) Dumper {
	if d == nil {
		return Nop
	}
	return safe{d: d, onErr: onErr}
}

type safe struct {
	d     Dumper
	onErr func(error)
}

func (s safe) Dump(u *ir.Unit, root ir.Node, stage Stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dump %s: panic: %v", stage, r)
		}
		if err != nil && s.onErr != nil {
			s.onErr(err)
		}
		err = nil
	}()
	return s.d.Dump(u, root, stage)
}

// Filter dumps only the stages whose pass names are listed. An empty list
// passes everything. A fused batch matches when any of its members does.
func Filter(d Dumper, passes []string) Dumper {
	if len(passes) == 0 {
		return d
	}
	want := make(map[string]struct{}, len(passes))
	for _, p := range passes {
		want[p] = struct{}{}
	}
	return Func(func(u *ir.Unit, root ir.Node, stage Stage) error {
		for _, name := range members(stage.Pass) {
			if _, ok := want[name]; ok {
				return d.Dump(u, root, stage)
			}
		}
		return nil
	})
}

func members(step string) []string {
	if inner, ok := strings.CutPrefix(step, "fused("); ok {
		return strings.Split(strings.TrimSuffix(inner, ")"), "+")
	}
	return []string{step}
}

// Text prints trees to a shared writer. Units running in parallel are
// serialised by a mutex so dumps do not interleave.
type Text struct {
	mu   sync.Mutex
	w    io.Writer
	opts ir.PrintOptions
}

func NewText(w io.Writer, opts ir.PrintOptions) *Text {
	return &Text{w: w, opts: opts}
}

func (t *Text) Dump(u *ir.Unit, root ir.Node, stage Stage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintf(t.w, "== %s %s\n", u.Name, stage); err != nil {
		return err
	}
	return ir.Print(t.w, u, root, t.opts)
}

// Dir writes one file per unit and stage under Root/<unit>/. Format is
// "text" or "msgpack"; snapshots in msgpack form can be read back with
// irfile and fed to a later run.
type Dir struct {
	Root   string
	Format string
	Opts   ir.PrintOptions
}

func (d Dir) Dump(u *ir.Unit, root ir.Node, stage Stage) error {
	base := filepath.Join(d.Root, sanitize(u.Name))
	switch d.Format {
	case "", "text":
		if err := os.MkdirAll(base, 0o755); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(base, stage.String()+".txt"))
		if err != nil {
			return err
		}
		if err := ir.Print(f, u, root, d.Opts); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case "msgpack":
		return irfile.WriteFile(filepath.Join(base, stage.String()+".lir"), u, root)
	}
	return fmt.Errorf("unknown dump format %q", d.Format)
}

func sanitize(name string) string {
	if name == "" {
		return "unit"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '(', ')', '+':
			return '_'
		}
		return r
	}, name)
}
