package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound indicates the remote file does not exist yet.
var ErrNotFound = errors.New("remote file not found")

// ErrConflict indicates the supplied revision is stale; someone else updated
// the file since it was read.
var ErrConflict = errors.New("remote revision conflict")

// Client exposes the GitHub repository contents operations used by the feed
// publisher.
type Client interface {
	GetContent(ctx context.Context, path string) ([]byte, string, error)
	PutContent(ctx context.Context, path string, data []byte, message, revision string) error
}

// APIClient is a resty-backed implementation of Client against the GitHub
// contents API.
type APIClient struct {
	httpClient *resty.Client
	repo       string
}

// NewClient builds a GitHub API client for the given "owner/repo" and token.
func NewClient(repo, token string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL("https://api.github.com").
		SetHeader("Authorization", fmt.Sprintf("token %s", token)).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetTimeout(30 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		repo:       repo,
	}
}

// contentResponse mirrors the contents API GET payload.
type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// apiError represents a GitHub API error payload.
type apiError struct {
	Message string `json:"message"`
}

// GetContent fetches the file at path together with its revision marker (the
// blob SHA the contents API requires for updates).
func (c *APIClient) GetContent(ctx context.Context, path string) ([]byte, string, error) {
	result := new(contentResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/repos/%s/contents/%s", c.repo, path))
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", path, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("github api error: code=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}

	// The API wraps base64 payloads across lines.
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(result.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("decode content of %s: %w", path, err)
	}

	return data, result.SHA, nil
}

// PutContent creates or updates the file at path. revision must be the SHA
// returned by GetContent when updating; the empty string creates the file.
func (c *APIClient) PutContent(ctx context.Context, path string, data []byte, message, revision string) error {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if revision != "" {
		payload["sha"] = revision
	}

	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Put(fmt.Sprintf("/repos/%s/contents/%s", c.repo, path))
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK || resp.StatusCode() == http.StatusCreated:
		return nil
	case resp.StatusCode() == http.StatusConflict,
		resp.StatusCode() == http.StatusUnprocessableEntity && strings.Contains(apiErr.Message, "sha"):
		return fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
	default:
		return fmt.Errorf("github api error: code=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}
}
