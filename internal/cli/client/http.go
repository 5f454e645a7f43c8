package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIToken = "LEADBOT_API_TOKEN"
	envAPIURL   = "LEADBOT_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env → default.
// A missing token is allowed for servers running without authentication.
func NewAPIClientWithCmd(cmd *cobra.Command) *APIClient {
	_ = godotenv.Load()

	var token, baseURL string
	if cmd != nil {
		if v, err := cmd.Flags().GetString("api-token"); err == nil {
			token = v
		}
		if v, err := cmd.Flags().GetString("api-url"); err == nil {
			baseURL = v
		}
	}
	if token == "" {
		token = os.Getenv(envAPIToken)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return NewAPIClientWithConfig(token, baseURL)
}

// NewAPIClientWithConfig creates an APIClient with explicit config.
func NewAPIClientWithConfig(token, baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			// Replies may wait on a primary and a fallback completion.
			Timeout: 3 * time.Minute,
		},
	}
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request and decodes the response into out.
func (c *APIClient) Get(path string, out any) error {
	return c.doJSON(http.MethodGet, path, nil, out)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(path string, body, out any) error {
	return c.doJSON(http.MethodPost, path, body, out)
}

// Put performs a PUT request with JSON body.
func (c *APIClient) Put(path string, body, out any) error {
	return c.doJSON(http.MethodPut, path, body, out)
}

// Patch performs a PATCH request with JSON body.
func (c *APIClient) Patch(path string, body, out any) error {
	return c.doJSON(http.MethodPatch, path, body, out)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(path string, out any) error {
	return c.doJSON(http.MethodDelete, path, nil, out)
}

// Upload posts a multipart form with the given fields and a "file" part.
func (c *APIClient) Upload(path string, fields map[string]string, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close form: %w", err)
	}

	return c.do(http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *APIClient) doJSON(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}
	return c.do(method, path, reqBody, "application/json", out)
}

func (c *APIClient) do(method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
		}
		return &APIError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// printJSON writes v indented, for --output.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}

func channelPath(channelID int64) string {
	return fmt.Sprintf("%d", channelID)
}
