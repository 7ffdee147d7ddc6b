package serverclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/flowctl/flowctl/internal/sanitize"
	"github.com/flowctl/flowctl/internal/workflow"
)

// HTTPClient is the net/http-backed Client implementation.
type HTTPClient struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource TokenSource
}

// NewHTTPClient builds an HTTPClient against baseURL, authenticating
// every request with tokens from source.
func NewHTTPClient(baseURL string, source TokenSource) *HTTPClient {
	return &HTTPClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTPClient:  &http.Client{},
		TokenSource: source,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Code: ErrValidation, Message: "encode request body: " + err.Error()}
		}
		reader = bytes.NewReader(raw)
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &Error{Code: ErrConnection, Message: "build request: " + err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.TokenSource != nil {
		token, err := c.TokenSource.Token()
		if err != nil {
			return nil, &Error{Code: ErrAuth, Message: "mint bearer token: " + err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Code: ErrConnection, Message: "send request: " + err.Error()}
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errorForStatus(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Code: ErrServer, Message: "decode response: " + err.Error()}
	}
	return nil
}

// errorForStatus maps an HTTP status code to the taxonomy the core expects.
func errorForStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}

	code := ErrServer
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		code = ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		code = ErrValidation
	case resp.StatusCode == http.StatusTooManyRequests:
		code = ErrRateLimit
	case resp.StatusCode >= 500:
		code = ErrServer
	}
	return &Error{Code: code, Message: msg}
}

// stripReadOnlyForSubmission sanitizes wf's generic JSON representation
// before it is sent to the server, per the ingest rule's "separate step
// strips read-only keys" requirement.
func stripReadOnlyForSubmission(wf *workflow.Workflow) (map[string]any, error) {
	raw, err := json.Marshal(wf)
	if err != nil {
		return nil, &Error{Code: ErrValidation, Message: "encode workflow: " + err.Error()}
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Code: ErrValidation, Message: "decode workflow: " + err.Error()}
	}
	return sanitize.StripReadOnly(doc), nil
}

func (c *HTTPClient) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	resp, err := c.do(ctx, http.MethodGet, "/workflows/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var wf workflow.Workflow
	if err := decodeJSON(resp, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (c *HTTPClient) UpdateWorkflow(ctx context.Context, id string, wf *workflow.Workflow) (*workflow.Workflow, error) {
	doc, err := stripReadOnlyForSubmission(wf)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPut, "/workflows/"+url.PathEscape(id), nil, doc)
	if err != nil {
		return nil, err
	}
	var out workflow.Workflow
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateWorkflow(ctx context.Context, wf *workflow.Workflow) (*workflow.Workflow, error) {
	doc, err := stripReadOnlyForSubmission(wf)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/workflows", nil, doc)
	if err != nil {
		return nil, err
	}
	var out workflow.Workflow
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (Page[*workflow.Workflow], error) {
	q := url.Values{}
	if opts.Active != nil {
		q.Set("active", strconv.FormatBool(*opts.Active))
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}

	resp, err := c.do(ctx, http.MethodGet, "/workflows", q, nil)
	if err != nil {
		return Page[*workflow.Workflow]{}, err
	}
	var page Page[*workflow.Workflow]
	if err := decodeJSON(resp, &page); err != nil {
		return Page[*workflow.Workflow]{}, err
	}
	return page, nil
}

func (c *HTTPClient) ListExecutions(ctx context.Context, opts ListExecutionsOptions) (Page[*Execution], error) {
	q := url.Values{}
	if opts.WorkflowID != "" {
		q.Set("workflowId", opts.WorkflowID)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}

	resp, err := c.do(ctx, http.MethodGet, "/executions", q, nil)
	if err != nil {
		return Page[*Execution]{}, err
	}
	var page Page[*Execution]
	if err := decodeJSON(resp, &page); err != nil {
		return Page[*Execution]{}, err
	}
	return page, nil
}

func (c *HTTPClient) GetExecution(ctx context.Context, id string) (*Execution, error) {
	resp, err := c.do(ctx, http.MethodGet, "/executions/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var e Execution
	if err := decodeJSON(resp, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) RetryExecution(ctx context.Context, id string) (*Execution, error) {
	resp, err := c.do(ctx, http.MethodPost, "/executions/"+url.PathEscape(id)+"/retry", nil, nil)
	if err != nil {
		return nil, err
	}
	var e Execution
	if err := decodeJSON(resp, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) DeleteExecution(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/executions/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

func (c *HTTPClient) ListCredentialTypes(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/credentials/types", nil, nil)
	if err != nil {
		return nil, err
	}
	var types []string
	if err := decodeJSON(resp, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *HTTPClient) ListTags(ctx context.Context) ([]Tag, error) {
	resp, err := c.do(ctx, http.MethodGet, "/tags", nil, nil)
	if err != nil {
		return nil, err
	}
	var tags []Tag
	if err := decodeJSON(resp, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *HTTPClient) CreateTag(ctx context.Context, name string) (Tag, error) {
	resp, err := c.do(ctx, http.MethodPost, "/tags", nil, map[string]string{"name": name})
	if err != nil {
		return Tag{}, err
	}
	var tag Tag
	if err := decodeJSON(resp, &tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

func (c *HTTPClient) DeleteTag(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

func (c *HTTPClient) SearchTemplates(ctx context.Context, query string) ([]Template, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	resp, err := c.do(ctx, http.MethodGet, "/templates/search", q, nil)
	if err != nil {
		return nil, err
	}
	var templates []Template
	if err := decodeJSON(resp, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *HTTPClient) GetTemplate(ctx context.Context, id string) (*Template, error) {
	resp, err := c.do(ctx, http.MethodGet, "/templates/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var t Template
	if err := decodeJSON(resp, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

var _ Client = (*HTTPClient)(nil)
