// Package diagfmt renders structured diagnostics for people and tools. The
// passes only produce records; this is the renderer the CLI plugs in.
package diagfmt

// TextOpts configures the line-per-diagnostic text output.
type TextOpts struct {
	Color bool
	// ShowNodes appends the attached and referenced node identities.
	ShowNodes bool
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Max int // обрезка вывода, не Bag
	// Lines writes one object per diagnostic instead of a single document.
	Lines bool
}
