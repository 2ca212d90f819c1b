package dump_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lumen/internal/dump"
	"lumen/internal/ir"
	"lumen/internal/irfile"
)

func tree() (*ir.Unit, ir.Node) {
	u := ir.NewUnit("a/b")
	return u, &ir.Application{Fn: &ir.Name{Text: "f"}, Args: []ir.Expr{&ir.Literal{Value: "1"}}}
}

func TestSafeSwallowsPanicsAndErrors(t *testing.T) {
	u, root := tree()
	var seen []error
	onErr := func(err error) { seen = append(seen, err) }

	boom := dump.Func(func(*ir.Unit, ir.Node, dump.Stage) error { panic("boom") })
	failing := dump.Func(func(*ir.Unit, ir.Node, dump.Stage) error { return errors.New("disk full") })

	stage := dump.Stage{Step: 1, Pass: "TailCall", Phase: dump.PhaseAfter}
	if err := dump.Safe(boom, onErr).Dump(u, root, stage); err != nil {
		t.Fatalf("panic leaked as %v", err)
	}
	if err := dump.Safe(failing, onErr).Dump(u, root, stage); err != nil {
		t.Fatalf("error leaked as %v", err)
	}
	if len(seen) != 2 || !strings.Contains(seen[0].Error(), "boom") {
		t.Fatalf("reported = %v", seen)
	}
	if err := dump.Safe(nil, nil).Dump(u, root, stage); err != nil {
		t.Fatal(err)
	}
}

func TestFilterMatchesFusedMembers(t *testing.T) {
	u, root := tree()
	var got []string
	rec := dump.Func(func(_ *ir.Unit, _ ir.Node, s dump.Stage) error {
		got = append(got, s.Pass)
		return nil
	})
	d := dump.Filter(rec, []string{"ShadowedPatternFields"})
	for _, p := range []string{"TailCall", "fused(DocumentationComments+ShadowedPatternFields)", "ShadowedPatternFields"} {
		_ = d.Dump(u, root, dump.Stage{Pass: p})
	}
	if len(got) != 2 || got[1] != "ShadowedPatternFields" {
		t.Fatalf("dumped %v", got)
	}
}

func TestText(t *testing.T) {
	u, root := tree()
	var buf bytes.Buffer
	d := dump.NewText(&buf, ir.PrintOptions{})
	if err := d.Dump(u, root, dump.Stage{Step: 2, Pass: "TailCall", Phase: dump.PhaseBefore}); err != nil {
		t.Fatal(err)
	}
	want := "== a/b 02-before-TailCall\nApplication\n  Name f\n  Literal 1\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDirFormats(t *testing.T) {
	u, root := tree()
	dir := t.TempDir()
	stage := dump.Stage{Step: 1, Pass: "fused(A+B)", Phase: dump.PhaseAfter}

	if err := (dump.Dir{Root: dir}).Dump(u, root, stage); err != nil {
		t.Fatal(err)
	}
	text, err := os.ReadFile(filepath.Join(dir, "a_b", "01-after-fused(A+B).txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(text), "Application\n") {
		t.Fatalf("text dump = %q", text)
	}

	if err := (dump.Dir{Root: dir, Format: "msgpack"}).Dump(u, root, stage); err != nil {
		t.Fatal(err)
	}
	_, back, err := irfile.Codec{}.ReadFile(filepath.Join(dir, "a_b", "01-after-fused(A+B).lir"))
	if err != nil {
		t.Fatal(err)
	}
	if ir.Sprint(back) != ir.Sprint(root) {
		t.Fatalf("snapshot differs:\n%s", ir.Sprint(back))
	}

	if err := (dump.Dir{Root: dir, Format: "xml"}).Dump(u, root, stage); err == nil {
		t.Fatal("unknown format accepted")
	}
}
