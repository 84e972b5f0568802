package stability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/roma2023/SketchAI/internal/models"
)

// APIError is returned when the provider answers with a non-2xx status.
// Body holds the provider's response for server-side logging only.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Stability AI sketch control endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client. If httpClient is nil, http.DefaultClient is used,
// so no request timeout is applied beyond the caller's context.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, httpClient: httpClient}
}

// Convert uploads the payload as multipart form data and returns the image
// bytes and content type exactly as the provider sent them.
func (c *Client) Convert(ctx context.Context, payload models.ProxyPayload) (*models.GenerationResult, error) {
	body, contentType, err := encodeForm(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	return &models.GenerationResult{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// encodeForm writes the image part and the text fields. Optional fields
// that were not supplied are left out entirely.
func encodeForm(payload models.ProxyPayload) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("image", payload.Filename())
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload.Image); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("prompt", payload.Prompt); err != nil {
		return nil, "", err
	}
	if payload.ControlStrength != nil {
		value := strconv.FormatFloat(*payload.ControlStrength, 'f', -1, 64)
		if err := w.WriteField("control_strength", value); err != nil {
			return nil, "", err
		}
	}
	if payload.OutputFormat != "" {
		if err := w.WriteField("output_format", payload.OutputFormat); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
