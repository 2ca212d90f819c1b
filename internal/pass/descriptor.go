package pass

// Descriptor is the static declaration of one pass.
type Descriptor struct {
	ID ID
	// Precursors must have run, with valid metadata, before this pass.
	Precursors []ID
	// Invalidates lists passes whose metadata is stale once this pass ran.
	Invalidates []ID
}

// Graph maps pass IDs to their descriptors.
type Graph map[ID]Descriptor

// changesPatterns is invalidated by every pass that rewrites case
// expressions or pattern bindings.
var changesPatterns = []ID{
	AliasAnalysis,
	DataflowAnalysis,
	DemandAnalysis,
	IgnoredBindings,
	NestedPatternMatch,
	TailCall,
}

var builtin = Graph{
	ComplexType: {ID: ComplexType},
	FunctionBinding: {
		ID:         FunctionBinding,
		Precursors: []ID{ComplexType},
	},
	GenerateMethodBodies: {
		ID:         GenerateMethodBodies,
		Precursors: []ID{ComplexType, FunctionBinding},
	},
	LambdaShorthandToLambda: {
		ID:         LambdaShorthandToLambda,
		Precursors: []ID{ComplexType, FunctionBinding, GenerateMethodBodies},
	},
	DocumentationComments: {ID: DocumentationComments},
	IgnoredBindings: {
		ID:         IgnoredBindings,
		Precursors: []ID{GenerateMethodBodies},
	},
	NestedPatternMatch: {
		ID:          NestedPatternMatch,
		Precursors:  []ID{DocumentationComments, ShadowedPatternFields, UnreachableMatchBranches},
		Invalidates: []ID{AliasAnalysis, DataflowAnalysis, DemandAnalysis, IgnoredBindings, TailCall},
	},
	AliasAnalysis: {
		ID:         AliasAnalysis,
		Precursors: []ID{GenerateMethodBodies, IgnoredBindings, NestedPatternMatch},
	},
	DataflowAnalysis: {
		ID:         DataflowAnalysis,
		Precursors: []ID{AliasAnalysis},
	},
	DemandAnalysis: {
		ID:         DemandAnalysis,
		Precursors: []ID{AliasAnalysis},
	},
	TailCall: {
		ID:         TailCall,
		Precursors: []ID{GenerateMethodBodies},
	},
	ShadowedPatternFields: {
		ID:          ShadowedPatternFields,
		Precursors:  []ID{GenerateMethodBodies},
		Invalidates: changesPatterns,
	},
	UnreachableMatchBranches: {
		ID: UnreachableMatchBranches,
		Precursors: []ID{
			ComplexType,
			DocumentationComments,
			FunctionBinding,
			GenerateMethodBodies,
			LambdaShorthandToLambda,
		},
		Invalidates: changesPatterns,
	},
}

// Builtin returns the descriptor table of the closed pass set.
// The returned graph is a copy; callers may modify it freely.
func Builtin() Graph {
	g := make(Graph, len(builtin))
	for id, d := range builtin {
		g[id] = Descriptor{
			ID:          d.ID,
			Precursors:  append([]ID(nil), d.Precursors...),
			Invalidates: append([]ID(nil), d.Invalidates...),
		}
	}
	return g
}

// Describe returns the built-in descriptor for id. Its slices are shared
// and must not be modified.
func Describe(id ID) (Descriptor, bool) {
	d, ok := builtin[id]
	return d, ok
}
