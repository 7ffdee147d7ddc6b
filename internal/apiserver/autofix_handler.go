package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/flowctl/flowctl/internal/autofix"
	"github.com/flowctl/flowctl/internal/workflow"
)

// autofixRequest is the JSON body for POST /v1/autofix. Apply defaults
// to false (dry-run): the endpoint proposes fixes without mutating the
// workflow unless the caller opts in.
type autofixRequest struct {
	Workflow  *workflow.Workflow `json:"workflow"`
	Threshold autofix.Threshold  `json:"threshold,omitempty"`
	Apply     bool               `json:"apply,omitempty"`
}

type autofixResponse struct {
	Fixes    []autofix.Fix      `json:"fixes"`
	Applied  bool               `json:"applied"`
	Workflow *workflow.Workflow `json:"workflow,omitempty"`
}

func (s *Server) handleAutofix(w http.ResponseWriter, r *http.Request) {
	var req autofixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request body: "+err.Error())
		return
	}
	if req.Workflow == nil {
		writeError(w, http.StatusBadRequest, "workflow is required")
		return
	}
	threshold := req.Threshold
	if threshold == "" {
		threshold = autofix.ThresholdMedium
	}

	fixer := autofix.NewAutofixer(s.Catalog, s.Registry)

	if !req.Apply {
		fixes, err := fixer.Propose(r.Context(), req.Workflow, threshold)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "propose fixes: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, autofixResponse{Fixes: fixes, Applied: false})
		return
	}

	result, fixes, err := fixer.Apply(r.Context(), req.Workflow, threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "apply fixes: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, autofixResponse{Fixes: fixes, Applied: true, Workflow: result.Workflow})
}
