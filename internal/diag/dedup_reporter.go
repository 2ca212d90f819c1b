package diag

import "lumen/internal/source"

type dedupKey struct {
	code    Code
	sev     Severity
	node    uint32
	ref     uint32
	located bool
	span    source.Span
}

// DedupReporter wraps another Reporter and suppresses duplicates. A node
// instance shared by several parents is visited once per parent, so the
// collector sees its diagnostics more than once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:    d.Code,
		sev:     d.Severity,
		node:    d.Node,
		ref:     d.Ref,
		located: d.Located,
		span:    d.Primary,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
