package api

import "encoding/json"

// ConvertRequest is the JSON body of POST /api/convert.
// Sketch is kept raw so a value of the wrong type is reported as bad image
// data rather than a malformed body.
type ConvertRequest struct {
	Sketch          json.RawMessage `json:"sketch"`
	Prompt          *string         `json:"prompt,omitempty"`
	ControlStrength *float64        `json:"control_strength,omitempty"`
	OutputFormat    *string         `json:"output_format,omitempty"`
}

// ErrorResponse is the body of every JSON error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionMessage is sent from the server to a connected drawing page.
type SessionMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}
