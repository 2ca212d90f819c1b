package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"lumen/internal/ir"
	"lumen/internal/irfile"
	"lumen/internal/pass"
	"lumen/internal/pipeline"
	"lumen/internal/source"
)

func writeTree(t *testing.T, dir, name string) string {
	t.Helper()
	u := ir.NewUnit(name)
	at := func(s, e uint32) ir.Header { return ir.At(source.Span{Start: s, End: e}) }
	c := &ir.Case{
		Header:    at(0, 50),
		Scrutinee: &ir.Name{Text: "v"},
		Branches: []*ir.Branch{
			{Header: at(1, 10), Pattern: &ir.PName{Name: &ir.Name{Text: "a"}}, Body: &ir.Name{Text: "a"}, Terminal: true},
			{Header: at(11, 20), Pattern: &ir.PLiteral{Literal: &ir.Literal{Value: "1"}}, Body: &ir.Literal{Value: "1"}, Terminal: true},
		},
	}
	root := &ir.Module{Name: name, Decls: []ir.Decl{&ir.Method{TypeName: "T", Name: "f", Body: c}}}
	path := filepath.Join(dir, name+".lir")
	if err := irfile.WriteFile(path, u, root); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFilesAndJSONOutput(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeTree(t, dir, "one"), writeTree(t, dir, "two")}
	inputs, err := readInputs(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	p, err := pipeline.New(pipeline.Options{Passes: []pass.ID{pass.DocumentationComments, pass.UnreachableMatchBranches}})
	if err != nil {
		t.Fatal(err)
	}
	results, err := p.RunAll(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, results); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output:\n%s", buf.String())
	}
	var rec struct {
		Unit string `json:"unit"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Unit != "two" || rec.Code != "OPT4001" {
		t.Fatalf("record = %+v", rec)
	}

	if _, err := readInputs([]string{paths[0], paths[0]}, false); err == nil {
		t.Fatal("duplicate unit accepted")
	}
}

func TestPrintSchedule(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{Passes: []pass.ID{pass.ShadowedPatternFields, pass.TailCall, pass.UnreachableMatchBranches}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printSchedule(&buf, p)
	out := buf.String()
	for _, want := range []string{
		"order:    TailCall -> ShadowedPatternFields -> UnreachableMatchBranches",
		"external: ComplexType, FunctionBinding, GenerateMethodBodies, LambdaShorthandToLambda, DocumentationComments",
		"mini  fused(ShadowedPatternFields+UnreachableMatchBranches)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("invalid mode accepted")
	}
}

func TestReadInputsRejectsPathLikeUnitNames(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"../x", "a/b", `a\b`, ".."} {
		u := ir.NewUnit(name)
		root := &ir.Module{Name: "m", Decls: []ir.Decl{&ir.Method{Name: "f", Body: &ir.Name{Text: "x"}}}}
		path := filepath.Join(dir, "unit"+string(rune('0'+i))+".lir")
		if err := irfile.WriteFile(path, u, root); err != nil {
			t.Fatal(err)
		}
		if _, err := readInputs([]string{path}, false); err == nil {
			t.Errorf("unit name %q accepted", name)
		}
	}
	for _, ok := range []string{"main", "lib.core", "x-1"} {
		if err := checkUnitName(ok); err != nil {
			t.Errorf("checkUnitName(%q) = %v", ok, err)
		}
	}
}
