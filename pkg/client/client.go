// Package client talks to the SchedulifyX HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is a thin JSON client. Token, when set, is sent as a bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	Token      string
}

// New creates a client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"-"`
}

func (e *envelope) UnmarshalJSON(raw []byte) error {
	var body struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	e.Message, e.Data = body.Message, body.Data
	var text string
	if json.Unmarshal(body.Error, &text) == nil {
		e.Error = text
	}
	return nil
}

// Login authenticates and stores the access token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var res models.LoginResponse
	if _, err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &res); err != nil {
		return nil, err
	}
	c.Token = res.AccessToken
	return &res, nil
}

// Logout revokes the current access token and, if given, the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) (string, error) {
	var payload interface{}
	if refreshToken != "" {
		payload = map[string]string{"refresh_token": refreshToken}
	}
	return c.do(ctx, http.MethodPost, "/logout", payload, nil)
}

// AddSubject creates a subject.
func (c *Client) AddSubject(ctx context.Context, req service.CreateSubjectRequest) (*models.Subject, error) {
	var subject models.Subject
	if _, err := c.do(ctx, http.MethodPost, "/add-subject", req, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// AddRoom creates a room or venue.
func (c *Client) AddRoom(ctx context.Context, req service.CreateRoomRequest) (*models.Room, error) {
	var room models.Room
	if _, err := c.do(ctx, http.MethodPost, "/add-room-venue", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Generate asks the server for a new timetable.
func (c *Client) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableResponse, error) {
	var timetable dto.TimetableResponse
	if _, err := c.do(ctx, http.MethodPost, "/generate-time-table", req, &timetable); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Result fetches the latest timetable as JSON.
func (c *Client) Result(ctx context.Context, section string) (*dto.TimetableResponse, error) {
	var timetable dto.TimetableResponse
	if _, err := c.do(ctx, http.MethodGet, resultPath(section, ""), nil, &timetable); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Export downloads the latest timetable in format (csv, pdf or ics).
func (c *Client) Export(ctx context.Context, section, format string) ([]byte, string, error) {
	resp, err := c.send(ctx, http.MethodGet, resultPath(section, format), nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", apiError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func resultPath(section, format string) string {
	query := url.Values{}
	if section != "" {
		query.Set("section", section)
	}
	if format != "" {
		query.Set("format", format)
	}
	if len(query) == 0 {
		return "/result-time-table"
	}
	return "/result-time-table?" + query.Encode()
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "schedulifyx-cli/1.0")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach %s: %w", c.baseURL, err)
	}
	return resp, nil
}

// do sends a JSON request and decodes the envelope's data into out.
// It returns the envelope message.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) (string, error) {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Message, nil
}

func apiError(status int, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return &APIError{Status: status, Message: env.Message}
		}
		if env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
}
