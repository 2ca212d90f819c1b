package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func sample() *diag.Bag {
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.LintShadowedPatternBinding, "x").At(source.Span{File: 1, Start: 4, End: 5}).Referencing(3))
	bag.Add(diag.NewWarning(diag.OptUnreachableBranches))
	return bag
}

func TestMessage(t *testing.T) {
	tests := []struct {
		d    diag.Diagnostic
		want string
	}{
		{diag.NewWarning(diag.LintShadowedPatternBinding, "y"), "pattern binding y shadows an earlier binding of the same name"},
		{diag.NewWarning(diag.LintShadowedPatternBinding), "pattern binding {0} shadows an earlier binding of the same name"},
		{diag.NewWarning(diag.OptUnreachableBranches, "ignored"), "unreachable case branches"},
	}
	for _, tt := range tests {
		if got := Message(tt.d); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.d.Args, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, "main", sample(), TextOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "main:1:4-5: WARNING LNT3001: pattern binding x shadows an earlier binding of the same name\n" +
		"main: WARNING OPT4001: unreachable case branches\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	d := diag.NewWarning(diag.OptUnreachableBranches)
	d.Node = 7
	d.Ref = 2
	if got := Line("u", d, TextOpts{ShowNodes: true}); !strings.HasSuffix(got, "[node #7, see #2]") {
		t.Fatalf("line = %q", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, "main", sample(), JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Diagnostics[0].Location == nil || out.Diagnostics[1].Location != nil {
		t.Fatalf("output = %+v", out)
	}
	if out.Diagnostics[0].Ref != 3 || out.Diagnostics[0].Code != "LNT3001" {
		t.Fatalf("first = %+v", out.Diagnostics[0])
	}

	buf.Reset()
	if err := JSON(&buf, "main", sample(), JSONOpts{Lines: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Fatalf("got %d lines:\n%s", lines, buf.String())
	}
}
