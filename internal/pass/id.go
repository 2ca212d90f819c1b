// Package pass declares the closed set of compiler passes and the static
// relationships between them.
//
// Every pass has exactly one ID. IDs key the per-node metadata tables and the
// dependency graph, so they are compared by value and never allocated at run
// time. A Descriptor lists the passes that must already have produced valid
// metadata before a pass runs (precursors) and the passes whose metadata it
// leaves stale (invalidated).
package pass

import "fmt"

// ID identifies one pass. The declaration order is the deterministic
// tie-break used by Schedule.
type ID uint8

const (
	NoID ID = iota
	ComplexType
	FunctionBinding
	GenerateMethodBodies
	LambdaShorthandToLambda
	DocumentationComments
	IgnoredBindings
	NestedPatternMatch
	AliasAnalysis
	DataflowAnalysis
	DemandAnalysis
	TailCall
	ShadowedPatternFields
	UnreachableMatchBranches

	numIDs
)

var idNames = [numIDs]string{
	NoID:                     "<none>",
	ComplexType:              "ComplexType",
	FunctionBinding:          "FunctionBinding",
	GenerateMethodBodies:     "GenerateMethodBodies",
	LambdaShorthandToLambda:  "LambdaShorthandToLambda",
	DocumentationComments:    "DocumentationComments",
	IgnoredBindings:          "IgnoredBindings",
	NestedPatternMatch:       "NestedPatternMatch",
	AliasAnalysis:            "AliasAnalysis",
	DataflowAnalysis:         "DataflowAnalysis",
	DemandAnalysis:           "DemandAnalysis",
	TailCall:                 "TailCall",
	ShadowedPatternFields:    "ShadowedPatternFields",
	UnreachableMatchBranches: "UnreachableMatchBranches",
}

func (id ID) String() string {
	if id < numIDs {
		return idNames[id]
	}
	return fmt.Sprintf("pass(%d)", uint8(id))
}

func (id ID) IsValid() bool { return id != NoID && id < numIDs }

// All returns every valid pass ID in declaration order.
func All() []ID {
	out := make([]ID, 0, numIDs-1)
	for id := NoID + 1; id < numIDs; id++ {
		out = append(out, id)
	}
	return out
}

// Parse resolves a pass name as printed by String.
func Parse(name string) (ID, error) {
	for id := NoID + 1; id < numIDs; id++ {
		if idNames[id] == name {
			return id, nil
		}
	}
	return NoID, fmt.Errorf("unknown pass %q", name)
}
