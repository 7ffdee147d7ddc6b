package validate

import "strings"

var securityCodes = map[string]bool{
	"HARDCODED_CREDENTIAL": true,
	"BEST_PRACTICE":        true,
}

var deprecatedCodes = map[string]bool{
	"DEPRECATED_NODE_TYPE_PREFIX": true,
	"DEPRECATED_PROPERTY":         true,
	"OUTDATED_NODE_VERSION":       true,
}

var missingRequiredCodes = map[string]bool{
	"MISSING_REQUIRED": true,
	"MISSING_FIELD":    true,
}

// structuralCodes are workflow-integrity errors every profile keeps.
// Dropping one of these would let a structurally broken workflow
// validate clean under a narrow profile.
var structuralCodes = map[string]bool{
	"INVALID_ROOT_SHAPE":        true,
	"INVALID_NODE_SHAPE":        true,
	"INVALID_CONNECTIONS_SHAPE": true,
	"MISSING_NODE_TYPE":         true,
	"UNKNOWN_NODE_TYPE":         true,
	"UNKNOWN_CONNECTION_SOURCE": true,
	"UNKNOWN_CONNECTION_TARGET": true,
	"EMPTY_ROOT_OPTIONS":        true,
}

func isSuggestionNoise(is Issue) bool {
	return is.Code == "INVALID_OPTION_VALUE" || strings.HasPrefix(is.Code, "RESOURCE_LOCATOR")
}

func isInternalPropertyWarning(is Issue) bool {
	return strings.HasPrefix(is.Location.Path, "_") || strings.Contains(is.Location.Path, "._")
}

// FilterByProfile is the single unified profile filter: one pure pass
// over the issue list, shared by every caller regardless of which
// validation passes produced the issues.
func FilterByProfile(issues []Issue, profile Profile) []Issue {
	if profile == "" {
		profile = ProfileRuntime
	}

	var out []Issue
	for _, is := range issues {
		if keepForProfile(is, profile) {
			out = append(out, is)
		}
	}
	return out
}

func keepForProfile(is Issue, profile Profile) bool {
	switch profile {
	case ProfileMinimal:
		if is.Severity == SeverityError {
			return missingRequiredCodes[is.Code] || structuralCodes[is.Code]
		}
		if is.Severity == SeverityWarning {
			if is.Code == "HARDCODED_CREDENTIAL" {
				return false
			}
			return securityCodes[is.Code] || deprecatedCodes[is.Code]
		}
		return false

	case ProfileRuntime:
		if is.Severity == SeverityError {
			if missingRequiredCodes[is.Code] || structuralCodes[is.Code] {
				return true
			}
			if is.Code == "INVALID_VALUE_TYPE" || is.Code == "INVALID_FIELD_TYPE" || is.Code == "EXPRESSION_MISSING_PREFIX" {
				return true
			}
			return strings.Contains(strings.ToLower(is.Message), "undefined")
		}
		if is.Severity == SeverityWarning {
			if is.Code == "HARDCODED_CREDENTIAL" {
				return false
			}
			if isSuggestionNoise(is) {
				return false
			}
			return securityCodes[is.Code] || deprecatedCodes[is.Code]
		}
		return false

	case ProfileAIFriendly:
		if is.Severity == SeverityError {
			return true
		}
		if is.Severity == SeverityWarning {
			if is.Code == "HARDCODED_CREDENTIAL" {
				return false
			}
			if isSuggestionNoise(is) || isInternalPropertyWarning(is) {
				return false
			}
			return true
		}
		return false

	case ProfileStrict:
		return true

	default:
		return true
	}
}
