package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/flowctl/flowctl/internal/validate"
)

// validateRequest is the JSON body for POST /v1/validate.
type validateRequest struct {
	Workflow any             `json:"workflow"`
	Mode     validate.Mode   `json:"mode,omitempty"`
	Profile  validate.Profile `json:"profile,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request body: "+err.Error())
		return
	}

	opts := validate.NewOptions()
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	if req.Profile != "" {
		opts.Profile = req.Profile
	}

	result := validate.Validate(r.Context(), req.Workflow, opts, s.Catalog, s.Registry)
	writeJSON(w, http.StatusOK, result)
}
