package apiserver

import (
	"fmt"
	"net/http"

	"github.com/a2aproject/a2a-go/a2a"
)

// handleAgentCard describes this server's three HTTP tools as A2A
// skills so an AI-agent caller can discover validate/diff/autofix
// without out-of-band documentation.
func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = requestBaseURL(r)
	}

	card := a2a.AgentCard{
		Name:               "flowctl",
		Description:        "Workflow diff, validation, and autofix control plane.",
		URL:                baseURL + "/a2a",
		Version:            "1.0.0",
		ProtocolVersion:    "0.2",
		DefaultInputModes:  []string{"application/json"},
		DefaultOutputModes: []string{"application/json"},
		Capabilities:       a2a.AgentCapabilities{Streaming: false},
		Skills: []a2a.AgentSkill{
			{
				ID:          "validate",
				Name:        "validate",
				Description: "Run the multi-pass validator over a workflow document and return its issues.",
				Tags:        []string{"workflow", "validation"},
				Examples:    []string{`POST /v1/validate {"workflow": {...}, "profile": "runtime"}`},
			},
			{
				ID:          "diff",
				Name:        "diff",
				Description: "Apply a list of typed operations to a workflow graph.",
				Tags:        []string{"workflow", "diff"},
				Examples:    []string{`POST /v1/diff {"workflow": {...}, "operations": [...]}`},
			},
			{
				ID:          "autofix",
				Name:        "autofix",
				Description: "Propose or apply confidence-scored structural repairs to a workflow.",
				Tags:        []string{"workflow", "autofix"},
				Examples:    []string{`POST /v1/autofix {"workflow": {...}, "threshold": "medium", "apply": false}`},
			},
		},
	}

	writeJSON(w, http.StatusOK, card)
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
