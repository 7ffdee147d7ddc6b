// Package autofix composes the sanitizer and a set of rule rewriters to
// propose (and optionally apply) structural repairs to a workflow, each
// carrying its own confidence score. It does not run the validator:
// every rule scans the typed workflow directly.
package autofix

import (
	"context"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

// Confidence buckets a Fix's reliability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// rank orders confidences so a threshold filter can compare them.
var rank = map[Confidence]int{
	ConfidenceLow:    0,
	ConfidenceMedium: 1,
	ConfidenceHigh:   2,
}

// Fix is one proposed repair, independent of how it gets applied.
type Fix struct {
	Path        string
	NodeName    string
	Description string
	Before      any
	After       any
	Confidence  Confidence
	Kind        string
}

// Rule is one independently-scanning fix producer.
type Rule interface {
	Name() string
	Scan(ctx context.Context, wf *workflow.Workflow, cat catalog.Catalog, reg breaking.Registry) []Fix
}

// Threshold filters a Fix list to confidence >= the named level.
type Threshold string

const (
	ThresholdHigh   Threshold = "high"
	ThresholdMedium Threshold = "medium"
	ThresholdLow    Threshold = "low"
)

func (t Threshold) min() Confidence {
	switch t {
	case ThresholdHigh:
		return ConfidenceHigh
	case ThresholdMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// FilterByThreshold keeps fixes at or above the given confidence level.
func FilterByThreshold(fixes []Fix, threshold Threshold) []Fix {
	min := rank[threshold.min()]
	var out []Fix
	for _, f := range fixes {
		if rank[f.Confidence] >= min {
			out = append(out, f)
		}
	}
	return out
}
