package models

// GenerationRequest is what the draw surface hands off on submit.
type GenerationRequest struct {
	ImageData       string  `json:"imageData"`
	Prompt          string  `json:"prompt"`
	ControlStrength float64 `json:"controlStrength"`
}

// ProxyPayload is the decoded form of a convert request, ready to be sent upstream.
// ControlStrength is nil and OutputFormat is empty when the caller left them unset or zero.
type ProxyPayload struct {
	Image           []byte
	MimeType        string
	Extension       string
	Prompt          string
	ControlStrength *float64
	OutputFormat    string
}

// Filename is the name the image part is uploaded under.
func (p ProxyPayload) Filename() string {
	return "sketch." + p.Extension
}

// GenerationResult holds the raw image returned by the upstream provider.
type GenerationResult struct {
	Data        []byte
	ContentType string
}
