package observ

import (
	"strings"
	"testing"
)

func TestAggregate(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "x", DurationMS: 1, Count: 1}, {Name: "y", DurationMS: 2, Count: 1}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "y", DurationMS: 4, Count: 1}}}
	got := Aggregate(a, b)
	if got.TotalMS != 7 || len(got.Phases) != 2 {
		t.Fatalf("aggregate = %+v", got)
	}
	if got.Phases[1].Name != "y" || got.Phases[1].DurationMS != 6 || got.Phases[1].Count != 2 {
		t.Fatalf("phase y = %+v", got.Phases[1])
	}
	if !strings.Contains(got.Summary(), "x2") {
		t.Fatalf("summary lacks count:\n%s", got.Summary())
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("pass")
	tm.End(i+1, "ignored")
	tm.End(i, "done")
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Note != "done" {
		t.Fatalf("report = %+v", r)
	}
}
