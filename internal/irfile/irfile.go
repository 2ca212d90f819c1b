// Package irfile is the on-disk form of a unit: the tree, node identities
// and locations, attached diagnostics and metadata facts, encoded with
// msgpack.
//
// The front-end hands trees to the middle-end in this format and the
// back-end reads the result back. Every file carries a semver schema
// version; readers accept any version compatible with SchemaVersion.
package irfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"

	"lumen/internal/ir"
	"lumen/internal/pass"
	"lumen/internal/source"
)

// SchemaVersion is the version written by this package.
const SchemaVersion = "1.1.0"

// compatible is the range of schema versions this package reads.
var compatible = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// File is the top-level record.
type File struct {
	Schema string    `msgpack:"schema"`
	Unit   string    `msgpack:"unit"`
	Root   *wireNode `msgpack:"root"`
}

// SchemaError reports a file written with an incompatible schema.
type SchemaError struct {
	Found string
	Want  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("irfile schema %q is not compatible with %s", e.Found, e.Want)
}

// Codec decodes metadata facts into typed values. Facts of passes missing
// from Facts are skipped, or rejected when Strict is set.
type Codec struct {
	Facts  map[pass.ID]func() any
	Strict bool
}

// Encode writes the tree rooted at root.
func Encode(w io.Writer, u *ir.Unit, root ir.Node) error {
	wn, err := encodeNode(u, root)
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&File{Schema: SchemaVersion, Unit: u.Name, Root: wn})
}

// Decode reads a file into a fresh unit.
func (c Codec) Decode(r io.Reader) (*ir.Unit, ir.Node, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("irfile: %w", err)
	}
	v, err := semver.NewVersion(f.Schema)
	if err != nil || !compatible.Check(v) {
		return nil, nil, &SchemaError{Found: f.Schema, Want: compatible.String()}
	}
	if f.Root == nil {
		return nil, nil, errors.New("irfile: empty tree")
	}
	u := ir.NewUnit(f.Unit)
	d := decoder{codec: c, u: u, names: source.NewInterner()}
	root, err := d.node(f.Root)
	if err != nil {
		return nil, nil, err
	}
	return u, root, nil
}

// WriteFile encodes the tree into path, replacing it atomically.
func WriteFile(path string, u *ir.Unit, root ir.Node) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*.lir")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, u, root); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the file at path.
func (c Codec) ReadFile(path string) (*ir.Unit, ir.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	u, root, err := c.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, root, nil
}
