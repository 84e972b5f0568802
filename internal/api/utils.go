package api

import (
	"encoding/json"
	"fmt"

	"github.com/roma2023/SketchAI/internal/config"
	"github.com/roma2023/SketchAI/internal/datauri"
	"github.com/roma2023/SketchAI/internal/models"
)

// convertRequest validates the sketch and fills in defaults, producing the
// payload sent upstream. Optional fields holding their zero value are left
// out of the payload.
func convertRequest(req ConvertRequest, defaults config.Defaults) (models.ProxyPayload, error) {
	sketch, err := sketchString(req.Sketch)
	if err != nil {
		return models.ProxyPayload{}, err
	}
	img, err := datauri.Parse(sketch)
	if err != nil {
		return models.ProxyPayload{}, err
	}

	payload := models.ProxyPayload{
		Image:     img.Data,
		MimeType:  img.MimeType,
		Extension: img.Extension,
		Prompt:    defaults.Prompt,
	}
	if req.Prompt != nil && *req.Prompt != "" {
		payload.Prompt = *req.Prompt
	}
	if req.ControlStrength != nil && *req.ControlStrength != 0 {
		strength := *req.ControlStrength
		payload.ControlStrength = &strength
	}
	if req.OutputFormat != nil {
		payload.OutputFormat = *req.OutputFormat
	}

	return payload, nil
}

// sketchString extracts the sketch field. A missing, null or empty sketch
// yields "" and is rejected by the data URI check; any non-string value is
// invalid image data.
func sketchString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: sketch is not a string", datauri.ErrInvalidImageData)
	}
	return s, nil
}
