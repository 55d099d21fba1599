package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// HTTPClient talks to the REST persistence server.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *HTTPClient) { c.token = token }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) { c.http = hc }
}

// NewHTTPClient creates a client for the server at baseURL, e.g. "http://localhost:8080".
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time verification that *HTTPClient implements the contract
var (
	_ Backend   = (*HTTPClient)(nil)
	_ Directory = (*HTTPClient)(nil)
)

type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &eb) != nil || eb.Error == "" {
			eb.Error = strings.TrimSpace(string(data))
		}
		return &Error{Op: op, Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func escape[T ~string](id T) string {
	return url.PathEscape(string(id))
}

// ============================================================================
// PROJECTS
// ============================================================================

func (c *HTTPClient) ListProjects(ctx context.Context) ([]*models.ProjectSummary, error) {
	var out []*models.ProjectSummary
	if err := c.do(ctx, "list projects", http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.ProjectSummary, error) {
	var out models.ProjectSummary
	if err := c.do(ctx, "create project", http.MethodPost, "/api/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetBoard(ctx context.Context, id types.ProjectID) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, "load board", http.MethodGet, "/api/projects/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProject(ctx context.Context, id types.ProjectID, patch models.ProjectPatch) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, "update project", http.MethodPatch, "/api/projects/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteProject(ctx context.Context, id types.ProjectID) error {
	return c.do(ctx, "delete project", http.MethodDelete, "/api/projects/"+escape(id), nil, nil)
}

// ============================================================================
// LISTS
// ============================================================================

func (c *HTTPClient) CreateList(ctx context.Context, req CreateListRequest) (*models.List, error) {
	var out models.List
	if err := c.do(ctx, "create list", http.MethodPost, "/api/lists", req, &out); err != nil {
		return nil, err
	}
	if out.Cards == nil {
		out.Cards = []*models.Card{}
	}
	return &out, nil
}

func (c *HTTPClient) UpdateList(ctx context.Context, id types.ListID, patch models.ListPatch) (*models.List, error) {
	var out models.List
	if err := c.do(ctx, "update list", http.MethodPatch, "/api/lists/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteList(ctx context.Context, id types.ListID) error {
	return c.do(ctx, "delete list", http.MethodDelete, "/api/lists/"+escape(id), nil, nil)
}

// ============================================================================
// CARDS
// ============================================================================

func (c *HTTPClient) CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error) {
	var out models.Card
	if err := c.do(ctx, "create card", http.MethodPost, "/api/cards", req, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *HTTPClient) UpdateCard(ctx context.Context, id types.CardID, patch models.CardPatch) (*models.Card, error) {
	var out models.Card
	if err := c.do(ctx, "update card", http.MethodPatch, "/api/cards/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteCard(ctx context.Context, id types.CardID) error {
	return c.do(ctx, "delete card", http.MethodDelete, "/api/cards/"+escape(id), nil, nil)
}

// ============================================================================
// CHECKLISTS
// ============================================================================

func (c *HTTPClient) CreateChecklist(ctx context.Context, req CreateChecklistRequest) (*models.Checklist, error) {
	var out models.Checklist
	if err := c.do(ctx, "create checklist", http.MethodPost, "/api/checklists", req, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []*models.ChecklistItem{}
	}
	return &out, nil
}

func (c *HTTPClient) UpdateChecklist(ctx context.Context, id types.ChecklistID, patch models.ChecklistPatch) (*models.Checklist, error) {
	var out models.Checklist
	if err := c.do(ctx, "update checklist", http.MethodPatch, "/api/checklists/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteChecklist(ctx context.Context, id types.ChecklistID) error {
	return c.do(ctx, "delete checklist", http.MethodDelete, "/api/checklists/"+escape(id), nil, nil)
}

func (c *HTTPClient) CreateChecklistItem(ctx context.Context, req CreateChecklistItemRequest) (*models.ChecklistItem, error) {
	var out models.ChecklistItem
	if err := c.do(ctx, "create checklist item", http.MethodPost, "/api/checklist-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateChecklistItem(ctx context.Context, id types.ItemID, patch models.ChecklistItemPatch) (*models.ChecklistItem, error) {
	var out models.ChecklistItem
	if err := c.do(ctx, "update checklist item", http.MethodPatch, "/api/checklist-items/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteChecklistItem(ctx context.Context, id types.ItemID) error {
	return c.do(ctx, "delete checklist item", http.MethodDelete, "/api/checklist-items/"+escape(id), nil, nil)
}

// ============================================================================
// COMMENTS
// ============================================================================

func (c *HTTPClient) CreateComment(ctx context.Context, req CreateCommentRequest) (*models.Activity, error) {
	var out models.Activity
	if err := c.do(ctx, "post comment", http.MethodPost, "/api/comments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
