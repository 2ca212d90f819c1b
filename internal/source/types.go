package source

// FileID identifies the source file a span points into.
// The front-end assigns ids; this core only carries them through.
type FileID uint32
