package irfile_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/irfile"
	"lumen/internal/pass"
	"lumen/internal/passes"
	"lumen/internal/source"
)

func at(start, end uint32) ir.Header {
	return ir.At(source.Span{File: 1, Start: start, End: end})
}

func sample(u *ir.Unit) *ir.Module {
	shadow := &ir.PName{Header: at(12, 13), Name: &ir.Name{Text: "x"}}
	br := &ir.Branch{
		Header:   at(5, 30),
		Pattern:  &ir.PConstructor{Constructor: &ir.Name{Text: "P"}, Fields: []ir.Pattern{shadow, &ir.PLiteral{Literal: &ir.Literal{Form: ir.LitText, Value: "s"}}}},
		Body:     &ir.Application{Fn: &ir.Name{Text: "f"}, Args: []ir.Expr{&ir.Name{Text: "x"}}},
		Terminal: true,
	}
	c := &ir.Case{Header: at(0, 40), Scrutinee: &ir.Name{Text: "v"}, Branches: []*ir.Branch{br}, Nested: true}
	body := &ir.Lambda{
		Params: []*ir.Name{{Text: "v"}},
		Body:   &ir.Block{Exprs: []ir.Expr{&ir.Binding{Name: &ir.Name{Text: "y"}, Value: &ir.Literal{Value: "1"}}}, Result: c},
	}
	m := &ir.Module{Name: "M", Decls: []ir.Decl{&ir.Method{TypeName: "T", Name: "m", Body: body}}}

	u.ID(m)
	u.ID(br)
	u.AddDiagnostic(shadow, ir.Warning(diag.LintShadowedPatternBinding, ir.Loc(shadow).Clone(), "x"))
	ir.UpdateMetadata(u, br, pass.DocumentationComments, &passes.Doc{Text: "the only one"})
	ir.UpdateMetadata(u, body.Body, pass.TailCall, &passes.TailPosition{Tail: true})
	return m
}

func dump(t *testing.T, u *ir.Unit, n ir.Node) string {
	t.Helper()
	var buf bytes.Buffer
	opts := ir.PrintOptions{Locations: true, IDs: true, Metadata: true, Diagnostics: true}
	if err := ir.Print(&buf, u, n, opts); err != nil {
		t.Fatalf("print: %v", err)
	}
	return buf.String()
}

func TestRoundTrip(t *testing.T) {
	u := ir.NewUnit("sample")
	root := sample(u)
	want := dump(t, u, root)

	var buf bytes.Buffer
	if err := irfile.Encode(&buf, u, root); err != nil {
		t.Fatalf("encode: %v", err)
	}
	codec := irfile.Codec{Facts: passes.FactTypes(), Strict: true}
	u2, root2, err := codec.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u2.Name != "sample" {
		t.Fatalf("unit name = %q", u2.Name)
	}
	if got := dump(t, u2, root2); got != want {
		t.Fatalf("round trip mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestDecodedFactsAreTyped(t *testing.T) {
	u := ir.NewUnit("facts")
	root := sample(u)
	var buf bytes.Buffer
	if err := irfile.Encode(&buf, u, root); err != nil {
		t.Fatal(err)
	}
	u2, root2, err := irfile.Codec{Facts: passes.FactTypes()}.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var br *ir.Branch
	ir.Walk(root2, func(n ir.Node) bool {
		if b, ok := n.(*ir.Branch); ok {
			br = b
		}
		return true
	})
	if br == nil {
		t.Fatal("branch lost")
	}
	doc := ir.GetMetadata[*passes.Doc](u2, br, pass.DocumentationComments)
	if doc.Text != "the only one" {
		t.Fatalf("doc = %q", doc.Text)
	}
}

func TestFreshIDsDoNotCollide(t *testing.T) {
	u := ir.NewUnit("ids")
	root := sample(u)
	var buf bytes.Buffer
	if err := irfile.Encode(&buf, u, root); err != nil {
		t.Fatal(err)
	}
	u2, root2, err := irfile.Codec{}.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[ir.NodeID]bool{}
	ir.Walk(root2, func(n ir.Node) bool {
		id := u2.ID(n)
		if seen[id] {
			t.Fatalf("identity %s minted twice", id)
		}
		seen[id] = true
		return true
	})
}

func TestUnknownFactsSkippedUnlessStrict(t *testing.T) {
	u := ir.NewUnit("facts")
	root := sample(u)
	var buf bytes.Buffer
	if err := irfile.Encode(&buf, u, root); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	u2, root2, err := irfile.Codec{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	facts := 0
	ir.Walk(root2, func(n ir.Node) bool {
		facts += len(u2.MetadataPasses(n))
		return true
	})
	if facts != 0 {
		t.Fatalf("lenient decode kept %d facts", facts)
	}

	_, _, err = irfile.Codec{Strict: true}.Decode(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "no fact type") {
		t.Fatalf("strict decode error = %v", err)
	}
}

func TestSchemaCheck(t *testing.T) {
	for _, tc := range []struct {
		schema string
		ok     bool
	}{
		{"1.0.0", true},
		{"1.4.2", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"nonsense", false},
	} {
		raw, err := msgpack.Marshal(&irfile.File{Schema: tc.schema, Unit: "u"})
		if err != nil {
			t.Fatal(err)
		}
		_, _, err = irfile.Codec{}.Decode(bytes.NewReader(raw))
		var se *irfile.SchemaError
		if got := !errors.As(err, &se); got != tc.ok {
			t.Errorf("schema %q: err = %v", tc.schema, err)
		}
	}
}

func TestDecodeRejectsNilListChildren(t *testing.T) {
	for name, body := range map[string]ir.Expr{
		"args":   &ir.Application{Fn: &ir.Name{Text: "f"}, Args: []ir.Expr{nil}},
		"exprs":  &ir.Block{Exprs: []ir.Expr{&ir.Name{Text: "a"}, nil}, Result: &ir.Name{Text: "b"}},
		"fields": &ir.Case{Scrutinee: &ir.Name{Text: "v"}, Branches: []*ir.Branch{{Pattern: &ir.PConstructor{Constructor: &ir.Name{Text: "P"}, Fields: []ir.Pattern{nil}}, Body: &ir.Name{Text: "b"}}}},
	} {
		u := ir.NewUnit(name)
		root := &ir.Module{Name: "M", Decls: []ir.Decl{&ir.Method{Name: "m", Body: body}}}
		var buf bytes.Buffer
		if err := irfile.Encode(&buf, u, root); err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		_, _, err := irfile.Codec{}.Decode(&buf)
		if err == nil || !strings.Contains(err.Error(), "is not a") {
			t.Errorf("%s: decode err = %v", name, err)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	u := ir.NewUnit("disk")
	root := sample(u)
	path := filepath.Join(t.TempDir(), "out", "disk.lir")
	if err := irfile.WriteFile(path, u, root); err != nil {
		t.Fatalf("write: %v", err)
	}
	u2, root2, err := irfile.Codec{Facts: passes.FactTypes()}.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if dump(t, u, root) != dump(t, u2, root2) {
		t.Fatal("file round trip mismatch")
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".tmp-*"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left: %v", matches)
	}
}

func TestDecodeNormalisesIdentifiers(t *testing.T) {
	u := ir.NewUnit("nfc")
	root := &ir.Application{Fn: &ir.Name{Text: "cafe\u0301"}, Args: []ir.Expr{&ir.Literal{Form: ir.LitText, Value: "e\u0301"}}}
	var buf bytes.Buffer
	if err := irfile.Encode(&buf, u, root); err != nil {
		t.Fatal(err)
	}
	_, back, err := irfile.Codec{}.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	app := back.(*ir.Application)
	if got := app.Fn.(*ir.Name).Text; got != "caf\u00e9" {
		t.Fatalf("name = %q, want NFC", got)
	}
	if got := app.Args[0].(*ir.Literal).Value; got != "e\u0301" {
		t.Fatalf("text literal changed to %q", got)
	}
}
