package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/roma2023/SketchAI/internal/models"
)

// convertRequest mirrors the JSON body accepted by POST /api/convert.
type convertRequest struct {
	Sketch          string  `json:"sketch"`
	Prompt          string  `json:"prompt"`
	ControlStrength float64 `json:"control_strength"`
	OutputFormat    string  `json:"output_format,omitempty"`
}

// Client calls the conversion proxy over HTTP.
type Client struct {
	endpoint     string
	outputFormat string
	httpClient   *http.Client
}

// NewClient returns a Client for the convert endpoint at endpoint. If
// httpClient is nil, http.DefaultClient is used.
func NewClient(endpoint, outputFormat string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, outputFormat: outputFormat, httpClient: httpClient}
}

func (c *Client) Convert(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	body, err := json.Marshal(convertRequest{
		Sketch:          req.ImageData,
		Prompt:          req.Prompt,
		ControlStrength: req.ControlStrength,
		OutputFormat:    c.outputFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy returned status %d: %s", resp.StatusCode, data)
	}

	return &models.GenerationResult{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
