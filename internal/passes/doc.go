// Package passes holds the concrete passes of the middle-end.
//
// Local rewrites are mini-passes (see package mini) and are created through
// a mini.Factory. Passes that need the whole unit implement Whole. Builtin
// maps every pass ID implemented here to its implementation.
package passes
