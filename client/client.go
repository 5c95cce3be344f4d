// Package client is a small Go SDK over the memo service REST API, used by
// memoctl and by anything else that talks to a running memovault-service.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/memovault/memovault/internal/model"
)

// Client talks to a memovault-service instance.
type Client struct {
	http *resty.Client
}

// New returns a client for the service at baseURL.
func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: rc}
}

type errorBody struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// apiError maps service error responses back onto the domain error types.
// memoID is the id the request addressed, empty for collection endpoints.
func apiError(resp *resty.Response, memoID string) error {
	body, _ := resp.Error().(*errorBody)
	msg := resp.Status()
	if body != nil && body.Message != "" {
		msg = body.Message
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return model.NewNotFoundError(memoID)
	case http.StatusBadRequest:
		field := "request"
		if body != nil && body.Field != "" {
			field = body.Field
		}
		return model.NewValidationError(field, msg)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode(), msg)
	}
}

// CreateMemo creates a new memo.
func (c *Client) CreateMemo(ctx context.Context, req model.CreateMemoRequest) (*model.Memo, error) {
	var out model.Memo
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/v0/memos")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "")
	}
	return &out, nil
}

// GetMemo fetches a single memo by id.
func (c *Client) GetMemo(ctx context.Context, id string) (*model.Memo, error) {
	var out model.Memo
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get("/v0/memos/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, id)
	}
	return &out, nil
}

type listResponse struct {
	Memos []*model.Memo `json:"memos"`
	Count int           `json:"count"`
}

// ListMemos lists memos matching the filter.
func (c *Client) ListMemos(ctx context.Context, f model.MemoFilter) ([]*model.Memo, error) {
	var out listResponse
	r := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{})
	applyFilterParams(r, f)
	resp, err := r.Get("/v0/memos")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "")
	}
	return out.Memos, nil
}

// UpdateMemo applies a partial update to a memo.
func (c *Client) UpdateMemo(ctx context.Context, id string, req model.UpdateMemoRequest) (*model.Memo, error) {
	var out model.Memo
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&errorBody{}).
		Patch("/v0/memos/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, id)
	}
	return &out, nil
}

// DeleteMemo deletes a memo permanently.
func (c *Client) DeleteMemo(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{}).
		Delete("/v0/memos/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp, id)
	}
	return nil
}

// SearchMemos runs a keyword search with optional filters.
func (c *Client) SearchMemos(ctx context.Context, query string, f model.MemoFilter) ([]*model.Memo, error) {
	body := map[string]interface{}{"query": query}
	if len(f.Tags) > 0 {
		body["tags"] = f.Tags
	}
	if f.MinImportance != nil {
		body["min_importance"] = *f.MinImportance
	}
	if f.Emotion != nil {
		body["emotion"] = *f.Emotion
	}
	if f.CreatedAfter != nil {
		body["created_after"] = f.CreatedAfter.Format(time.RFC3339)
	}
	if f.CreatedBefore != nil {
		body["created_before"] = f.CreatedBefore.Format(time.RFC3339)
	}
	if f.OrderBy != "" {
		body["order_by"] = f.OrderBy
	}
	if f.Limit > 0 {
		body["limit"] = f.Limit
	}

	var out listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/v0/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "")
	}
	return out.Memos, nil
}

// Stats fetches collection statistics.
func (c *Client) Stats(ctx context.Context) (*model.MemoStats, error) {
	var out model.MemoStats
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get("/v0/memos/stats")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "")
	}
	return &out, nil
}

func applyFilterParams(r *resty.Request, f model.MemoFilter) {
	if len(f.Tags) > 0 {
		r.SetQueryParam("tags", strings.Join(f.Tags, ","))
	}
	if f.MinImportance != nil {
		r.SetQueryParam("min_importance", strconv.Itoa(*f.MinImportance))
	}
	if f.Emotion != nil {
		r.SetQueryParam("emotion", *f.Emotion)
	}
	if f.CreatedAfter != nil {
		r.SetQueryParam("created_after", f.CreatedAfter.Format(time.RFC3339))
	}
	if f.CreatedBefore != nil {
		r.SetQueryParam("created_before", f.CreatedBefore.Format(time.RFC3339))
	}
	if f.OrderBy != "" {
		r.SetQueryParam("order_by", f.OrderBy)
	}
	if f.Limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(f.Limit))
	}
}
