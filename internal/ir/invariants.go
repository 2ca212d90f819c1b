package ir

import (
	"errors"
	"fmt"

	"lumen/internal/source"
)

// CheckInvariants validates the structural guarantees later stages rely on:
// no documentation patterns survive, no branch follows a catch-all branch and
// no pattern binds the same name twice (names compared after NFC
// normalisation). It returns all violations joined.
func CheckInvariants(root Node) error {
	var errs []error
	Walk(root, func(n Node) bool {
		switch n := n.(type) {
		case *PDocumentation:
			errs = append(errs, fmt.Errorf("%s: documentation pattern was not desugared", Loc(n)))
		case *Case:
			for i, b := range n.Branches {
				if IsCatchAll(b) && i < len(n.Branches)-1 {
					errs = append(errs, fmt.Errorf("%s: %d branch(es) after catch-all", Loc(n), len(n.Branches)-1-i))
					break
				}
			}
		case *Branch:
			if dup := duplicateBinding(n.Pattern); dup != "" {
				errs = append(errs, fmt.Errorf("%s: pattern binds %q more than once", Loc(n), dup))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

// IsCatchAll reports whether b matches unconditionally: its pattern is a
// bare name, blank included.
func IsCatchAll(b *Branch) bool {
	_, ok := b.Pattern.(*PName)
	return ok
}

func duplicateBinding(p Pattern) string {
	seen := make(map[string]struct{})
	dup := ""
	Walk(p, func(n Node) bool {
		if dup != "" {
			return false
		}
		pat, ok := n.(Pattern)
		if !ok {
			return true
		}
		name, ok := BindingName(pat)
		if !ok || name.Blank {
			return true
		}
		key := source.Normalize(name.Text)
		if _, ok := seen[key]; ok {
			dup = name.Text
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return dup
}
