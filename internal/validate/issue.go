// Package validate implements the multi-pass workflow validator: given
// an arbitrary-shape decoded document (not necessarily a well-formed
// workflow.Workflow), it produces a structured, source-located,
// profile-filterable list of issues. It never panics on malformed
// input: malformation becomes an issue, not a thrown error.
package validate

// Severity classifies how serious an issue is. Only "error" flips
// Result.Valid to false.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Location pinpoints where in the workflow document an issue occurred.
type Location struct {
	Path      string
	NodeIndex *int
	NodeName  string
	NodeID    string
	NodeType  string
}

// SourceLocation is a line/column position in the original raw text.
type SourceLocation struct {
	Line   int
	Column int
}

// Suggestion proposes a concrete corrective value.
type Suggestion struct {
	Value       string
	Confidence  float64
	Reason      string
	AutoFixable bool
}

// Issue is one structured validation finding.
type Issue struct {
	Code              string
	Severity          Severity
	Message           string
	Location          Location
	SourceLocation    *SourceLocation
	SourceSnippet     string
	Context           map[string]any
	Suggestions       []Suggestion
	Hint              string
	ValidAlternatives []string

	// Expression-validation fields (pass 5).
	IssueType      string
	CurrentValue   any
	CorrectedValue any
	Confidence     float64
}
