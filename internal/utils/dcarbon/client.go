package dcarbon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://services.dcarbon.solutions"
	defaultTimeout = 30 * time.Second
	statusSuccess  = "success"
)

type tokenKey struct{}

// ContextWithToken attaches the caller's bearer token to ctx. Every request
// made with that ctx carries it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Envelope is the response wrapper used by every endpoint.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// File is one part of a multipart upload.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client talks to the DCarbon REST API. It never retries.
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// NewClient parses baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: parsed, HTTPClient: httpClient}, nil
}

func (c *Client) endpoint(reqPath string, query url.Values) string {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, reqPath)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON sends body as JSON and decodes the envelope's data into out.
func (c *Client) doJSON(ctx context.Context, method, reqPath string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(reqPath, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// doMultipart uploads a single file under field and decodes the envelope's data into out.
func (c *Client) doMultipart(ctx context.Context, method, reqPath, field string, f File, extra map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Filename))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(reqPath, nil), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if tok := tokenFrom(req.Context()); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	op := req.Method + " " + req.URL.Path
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(op, err)
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, decodeErr)
	}
	if env.Status != "" && !strings.EqualFold(env.Status, statusSuccess) {
		return &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", op, err)
	}
	return nil
}
