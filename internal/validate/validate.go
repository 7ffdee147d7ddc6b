package validate

import (
	"context"
	"strconv"
	"strings"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/names"
	"github.com/flowctl/flowctl/internal/sourcemap"
)

// Mode selects which property subset enhanced validation inspects.
type Mode string

const (
	ModeMinimal   Mode = "minimal"
	ModeOperation Mode = "operation"
	ModeFull      Mode = "full"
)

// Profile names a post-pass issue filter tuned to an audience.
type Profile string

const (
	ProfileMinimal    Profile = "minimal"
	ProfileRuntime    Profile = "runtime"
	ProfileAIFriendly Profile = "ai-friendly"
	ProfileStrict     Profile = "strict"
)

// Options configures one Validate call.
type Options struct {
	RawSource           []byte
	CheckVersions       bool
	VersionSeverity     Severity
	SkipCommunityNodes  bool
	ValidateExpressions bool // default true; set via NewOptions
	NodeSuggestions     map[string][]Suggestion
	Enhanced            bool
	Mode                Mode
	Profile             Profile
}

// NewOptions returns Options with spec-mandated defaults applied.
func NewOptions() Options {
	return Options{
		ValidateExpressions: true,
		VersionSeverity:     SeverityWarning,
		Mode:                ModeOperation,
		Profile:             ProfileRuntime,
	}
}

// Result is the complete output of a Validate call.
type Result struct {
	Valid          bool
	Errors         []string
	Warnings       []string
	Issues         []Issue
	NodeTypeIssues []Issue
	VersionIssues  []Issue
}

// Validate runs all ten passes over data, an arbitrary-shape decoded
// document (typically the result of json.Unmarshal into `any`). It
// never panics: malformed input becomes issues, never a thrown error.
// Validate depends only on data, opts, cat, and reg, and never mutates
// data.
func Validate(ctx context.Context, data any, opts Options, cat catalog.Catalog, reg breaking.Registry) Result {
	var issues []Issue

	doc, ok := data.(map[string]any)
	if !ok {
		issues = append(issues, Issue{
			Code:     "INVALID_ROOT_SHAPE",
			Severity: SeverityError,
			Message:  "workflow document must be a JSON object",
			Location: Location{Path: ""},
		})
		return finalize(issues, opts)
	}

	// Pass 1: top-level shape.
	issues = append(issues, checkTopLevelShape(doc)...)

	rawNodes, hasNodes := doc["nodes"].([]any)
	if !hasNodes {
		return finalize(issues, opts)
	}

	// Known node names, keyed by normalized form: name lookups always
	// normalize both sides.
	known := make(map[string]bool, len(rawNodes))
	nodeTypes := make([]string, len(rawNodes))
	for i, rn := range rawNodes {
		node, ok := rn.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := node["name"].(string); ok {
			known[names.Normalize(name)] = true
		}
		if t, ok := node["type"].(string); ok {
			nodeTypes[i] = t
		}
	}

	var nodeTypeIssues []Issue
	var versionIssues []Issue

	for i, rn := range rawNodes {
		node, ok := rn.(map[string]any)
		if !ok {
			issues = append(issues, Issue{
				Code:     "INVALID_NODE_SHAPE",
				Severity: SeverityError,
				Message:  "node entry must be an object",
				Location: Location{Path: nodePath(i), NodeIndex: intPtr(i)},
			})
			continue
		}

		// Pass 2: per-node structural checks.
		structIssues := checkNodeStructure(i, node, opts.NodeSuggestions)
		issues = append(issues, structIssues...)
		nodeTypeIssues = append(nodeTypeIssues, filterNodeTypeIssues(structIssues)...)

		// Pass 3: filter-root check.
		issues = append(issues, checkFilterRoot(i, node)...)

		issues = append(issues, checkErrorHandling(i, node)...)

		nodeType, _ := node["type"].(string)
		if opts.SkipCommunityNodes && isCommunityType(nodeType) {
			continue
		}
		def, found, _ := cat.Get(ctx, nodeType)

		// Pass 4: native parameter validation against the catalog.
		if found {
			issues = append(issues, checkNativeParameters(i, node, def)...)
		}

		// Pass 5: expression-format validation.
		if opts.ValidateExpressions {
			issues = append(issues, checkExpressions(i, node, def)...)
		}

		// Pass 6: enhanced validation (node-specific validators).
		if opts.Enhanced && found {
			issues = append(issues, runEnhancedValidation(i, node, def, opts.Mode)...)
		}

		// Pass 8: version check.
		if opts.CheckVersions {
			vi := checkVersion(i, node, reg, opts.VersionSeverity)
			issues = append(issues, vi...)
			versionIssues = append(versionIssues, vi...)
		}
	}

	// Pass 7: connection-reference check.
	if conns, ok := doc["connections"].(map[string]any); ok {
		issues = append(issues, checkConnectionReferences(conns, known)...)
	} else if _, present := doc["connections"]; present {
		issues = append(issues, Issue{
			Code:     "INVALID_CONNECTIONS_SHAPE",
			Severity: SeverityError,
			Message:  "connections must be an object, not an array",
			Location: Location{Path: "connections"},
		})
	}

	// Pass 9: AI-node topology validation.
	issues = append(issues, checkAITopology(rawNodes)...)

	// Deduplicate enhanced vs. native issues (Open Question 1).
	issues = dedupeIssues(issues)

	// Source-location enrichment.
	if len(opts.RawSource) > 0 {
		if sm, err := sourcemap.Build(opts.RawSource); err == nil {
			enrichWithSourceLocations(issues, sm)
		}
	}

	result := finalize(issues, opts)
	result.NodeTypeIssues = nodeTypeIssues
	result.VersionIssues = versionIssues
	return result
}

func finalize(issues []Issue, opts Options) Result {
	filtered := FilterByProfile(issues, opts.Profile)

	res := Result{Issues: filtered, Valid: true}
	for _, is := range filtered {
		switch is.Severity {
		case SeverityError:
			res.Valid = false
			res.Errors = append(res.Errors, is.Message)
		case SeverityWarning:
			res.Warnings = append(res.Warnings, is.Message)
		}
	}
	return res
}

func nodePath(i int) string {
	return "nodes[" + strconv.Itoa(i) + "]"
}

func intPtr(i int) *int { return &i }

// isCommunityType reports whether nodeType belongs to neither of the two
// first-party packages.
func isCommunityType(nodeType string) bool {
	return !strings.HasPrefix(nodeType, "n8n-nodes-base.") &&
		!strings.HasPrefix(nodeType, "@n8n/n8n-nodes-langchain.")
}

func filterNodeTypeIssues(issues []Issue) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Code == "INVALID_NODE_TYPE" || is.Code == "DEPRECATED_NODE_TYPE_PREFIX" || is.Code == "UNKNOWN_NODE_TYPE" {
			out = append(out, is)
		}
	}
	return out
}

func enrichWithSourceLocations(issues []Issue, sm *sourcemap.SourceMap) {
	for i := range issues {
		path := issues[i].Location.Path
		if path == "" {
			continue
		}
		loc, snippet, ok := sm.Lookup(path)
		if !ok {
			continue
		}
		issues[i].SourceLocation = &SourceLocation{Line: loc.Line, Column: loc.Column}
		issues[i].SourceSnippet = snippet
	}
}
