package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/flowctl/flowctl/internal/diff"
	"github.com/flowctl/flowctl/internal/workflow"
)

// diffRequest is the JSON body for POST /v1/diff.
type diffRequest struct {
	Workflow        *workflow.Workflow `json:"workflow"`
	Operations      []diff.Operation   `json:"operations"`
	ValidateOnly    bool               `json:"validateOnly,omitempty"`
	ContinueOnError bool               `json:"continueOnError,omitempty"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request body: "+err.Error())
		return
	}
	if req.Workflow == nil {
		writeError(w, http.StatusBadRequest, "workflow is required")
		return
	}

	result := diff.New().Apply(req.Workflow, diff.Request{
		Operations:      req.Operations,
		ValidateOnly:    req.ValidateOnly,
		ContinueOnError: req.ContinueOnError,
	})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
