package intent

// KeywordSet is the vocabulary the classifier matches against. It is plain
// data so a revised list can be shipped and tested without code changes.
type KeywordSet struct {
	Version string `json:"version" yaml:"version"`

	// Base types, checked in priority order proof > solve > graph.
	Proof []string `json:"proof" yaml:"proof"`
	Solve []string `json:"solve" yaml:"solve"`
	Graph []string `json:"graph" yaml:"graph"`

	// Refinements of a solve question.
	ExactValue  []string `json:"exact_value" yaml:"exact_value"`
	Properties  []string `json:"properties" yaml:"properties"`
	Application []string `json:"application" yaml:"application"`

	// Visualization words raise NeedsGraph regardless of type.
	Visualization []string `json:"visualization" yaml:"visualization"`
	Functions     []string `json:"functions" yaml:"functions"`

	// Approach preferences for dataset solutions.
	LHS         []string `json:"lhs" yaml:"lhs"`
	RHS         []string `json:"rhs" yaml:"rhs"`
	Alternative []string `json:"alternative" yaml:"alternative"`
}

// DefaultKeywords is the shipped vocabulary.
var DefaultKeywords = KeywordSet{
	Version: "1.2.0",

	Proof: []string{"prove", "verify", "show that", "identity"},
	Solve: []string{"solve", "find", "value of"},
	Graph: []string{"sketch", "graph", "plot"},

	ExactValue:  []string{"exact value", "without calculator", "without a calculator", "special angle"},
	Properties:  []string{"amplitude", "period", "range", "domain"},
	Application: []string{"ladder", "angle of elevation", "elevation", "triangle", "height"},

	Visualization: []string{"sketch", "graph", "plot", "draw", "curve", "wave"},
	Functions:     []string{"sin", "cos", "tan", "sec", "csc", "cot"},

	LHS:         []string{"from lhs", "left hand side", "left-hand side", "start with lhs", "lhs method"},
	RHS:         []string{"from rhs", "right hand side", "right-hand side", "start with rhs", "rhs method"},
	Alternative: []string{"alternative", "different method", "other way", "another approach", "another method"},
}
