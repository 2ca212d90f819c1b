package ir

import (
	"errors"
	"fmt"

	"lumen/internal/pass"
)

// InternalError reports a defect in a pass or in the pass order: a node
// shape that a precursor should have eliminated, or a misuse of the tree
// API. It is raised with panic and turned into an error by Recover at the
// unit boundary. It is never a problem of the user's program.
type InternalError struct {
	Pass pass.ID
	Node Kind
	Msg  string
}

func (e *InternalError) Error() string {
	if e.Pass.IsValid() {
		return fmt.Sprintf("internal error in %s at %s: %s", e.Pass, e.Node, e.Msg)
	}
	return fmt.Sprintf("internal error at %s: %s", e.Node, e.Msg)
}

// Fatalf aborts the current unit with an InternalError.
func Fatalf(p pass.ID, n Node, format string, args ...any) {
	var k Kind
	if n != nil {
		k = n.Kind()
	}
	panic(&InternalError{Pass: p, Node: k, Msg: fmt.Sprintf(format, args...)})
}

type MetadataErrorKind uint8

const (
	// MetadataMissing: the pass never stored a fact on the node.
	MetadataMissing MetadataErrorKind = iota + 1
	// MetadataWrongType: the stored fact has another type, usually two
	// passes writing under one identity.
	MetadataWrongType
)

func (k MetadataErrorKind) String() string {
	switch k {
	case MetadataMissing:
		return "missing"
	case MetadataWrongType:
		return "wrong type"
	default:
		return "unknown"
	}
}

// MetadataError is raised by GetMetadata.
type MetadataError struct {
	Kind MetadataErrorKind
	Pass pass.ID
	Node Kind
	ID   NodeID
	Want string
	Got  string
}

func (e *MetadataError) Error() string {
	switch e.Kind {
	case MetadataWrongType:
		return fmt.Sprintf("metadata of %s on %s %s has type %s, want %s", e.Pass, e.Node, e.ID, e.Got, e.Want)
	default:
		return fmt.Sprintf("no metadata of %s on %s %s", e.Pass, e.Node, e.ID)
	}
}

// IsMissing reports whether err is (or wraps) a missing-metadata error.
func IsMissing(err error) bool {
	var me *MetadataError
	return errors.As(err, &me) && me.Kind == MetadataMissing
}

// Recover turns InternalError and MetadataError panics into *errp.
// Other panics propagate. Use as `defer ir.Recover(&err)`.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case *InternalError:
		*errp = e
	case *MetadataError:
		*errp = e
	default:
		panic(r)
	}
}
