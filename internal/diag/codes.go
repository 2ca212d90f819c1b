package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Линты
	LintInfo                   Code = 3000
	LintShadowedPatternBinding Code = 3001

	// Оптимизации
	OptInfo                Code = 4000
	OptUnreachableBranches Code = 4001
)

var (
	// codeTemplate holds message templates keyed by code. {N} refers to Args[N].
	codeTemplate = map[Code]string{
		UnknownCode:                "unknown error",
		LintInfo:                   "lint information",
		LintShadowedPatternBinding: "pattern binding {0} shadows an earlier binding of the same name",
		OptInfo:                    "optimisation information",
		OptUnreachableBranches:     "unreachable case branches",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OPT%04d", ic)
	}
	return "E0000"
}

// Template returns the message template registered for c.
func (c Code) Template() string {
	tpl, ok := codeTemplate[c]
	if !ok {
		return codeTemplate[UnknownCode]
	}
	return tpl
}

func (c Code) String() string {
	return c.ID()
}
