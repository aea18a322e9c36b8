// Package api is the HTTP client for the compliance-analysis backend.
//
// Information Hiding:
// - Endpoint paths and request encoding
// - SSE transport handling (see Stream)
// - Response decoding and error shaping
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response body is kept for the
// error message.
const maxErrorBody = 4096

// Client talks to the backend's /embed, /chat, and /health endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	// streamHTTP has no timeout: a chat stream stays open as long as the
	// agents keep producing events. Cancellation comes from the context.
	streamHTTP *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the backend at baseURL. The timeout applies
// to non-streaming requests only.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		streamHTTP: &http.Client{},
		log:        log,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EmbedFile is one document in an upload batch.
type EmbedFile struct {
	Name   string
	Reader io.Reader
}

// EmbedResult is the backend's response to a document upload batch.
type EmbedResult struct {
	Status         string   `json:"status"`
	Message        string   `json:"message"`
	FilesProcessed []string `json:"files_processed"`
	TotalChunks    int      `json:"total_chunks"`
	Errors         []string `json:"errors"`
}

// Embed statuses reported by the backend.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// Embed posts all files as one multipart batch to /embed. The batch is
// atomic from the client's perspective: either a result comes back or an
// error does, with no per-file retry.
func (c *Client) Embed(ctx context.Context, files []EmbedFile) (EmbedResult, error) {
	if len(files) == 0 {
		return EmbedResult{}, fmt.Errorf("no files to embed")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return EmbedResult{}, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return EmbedResult{}, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return EmbedResult{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", &body)
	if err != nil {
		return EmbedResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug().Int("files", len(files)).Msg("uploading document batch")

	resp, err := c.http.Do(req)
	if err != nil {
		return EmbedResult{}, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return EmbedResult{}, err
	}

	var result EmbedResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return EmbedResult{}, fmt.Errorf("failed to decode embed response: %w", err)
	}

	c.log.Info().
		Str("status", result.Status).
		Int("files_processed", len(result.FilesProcessed)).
		Int("total_chunks", result.TotalChunks).
		Msg("embed complete")

	return result, nil
}

// chatRequest is the /chat request body.
type chatRequest struct {
	Query string `json:"query"`
}

// Chat submits a query and returns the server-sent-event stream of agent
// events. The caller must Close the stream; cancelling ctx tears down the
// transport.
func (c *Client) Chat(ctx context.Context, query string) (*Stream, error) {
	payload, err := json.Marshal(chatRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	c.log.Debug().Str("query", query).Msg("opening chat stream")

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return newStream(resp.Body, c.log), nil
}

// Health is the backend's /health response.
type Health struct {
	Status string   `json:"status"`
	Agents []string `json:"agents"`
}

// Health reports backend liveness and the configured agent roster.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var health Health
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// ServiceInfo is the backend's root endpoint response.
type ServiceInfo struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Framework string `json:"framework"`
}

// Info fetches service identification from the backend root endpoint.
func (c *Client) Info(ctx context.Context) (ServiceInfo, error) {
	var info ServiceInfo
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return ServiceInfo{}, err
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, detail)
}
