package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var ErrEmptyAPIKey = errors.New("api key file is empty")

// Defaults are the values applied when a caller leaves a field out.
type Defaults struct {
	// Prompt is sent upstream when a convert request has no prompt.
	Prompt string
	// SurfacePrompt pre-fills the prompt of a new draw surface.
	SurfacePrompt string
	// OutputFormat is requested by the result viewer.
	OutputFormat string
	// ControlStrength pre-fills the control strength of a new draw surface.
	ControlStrength float64
	// SurfaceWidth and SurfaceHeight size a draw surface until the page reports its container size.
	SurfaceWidth  int
	SurfaceHeight int
}

type Config struct {
	ListenAddr      string
	APIKeyPath      string
	APIKey          string
	UpstreamURL     string
	ProxyURL        string
	MaxBodyBytes    int64
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Defaults        Defaults
}

// Default returns the fixed process configuration. There are no flags or
// environment overrides; the API key is filled in by Load.
func Default() Config {
	return Config{
		ListenAddr:      ":5000",
		APIKeyPath:      "API-KEY.txt",
		UpstreamURL:     "https://api.stability.ai/v2beta/stable-image/control/sketch",
		ProxyURL:        "http://localhost:5000/api/convert",
		MaxBodyBytes:    10 << 20,
		ResultTTL:       30 * time.Minute,
		CleanupInterval: time.Minute,
		Defaults: Defaults{
			Prompt:          "A cute cat sketch",
			SurfacePrompt:   "Transform this sketch into a photorealistic image, maintaining exact proportions and details",
			OutputFormat:    "webp",
			ControlStrength: 0.95,
			SurfaceWidth:    800,
			SurfaceHeight:   600,
		},
	}
}

// Load returns the default configuration with the API key read from disk.
func Load() (Config, error) {
	cfg := Default()
	key, err := LoadAPIKey(cfg.APIKeyPath)
	if err != nil {
		return Config{}, err
	}
	cfg.APIKey = key
	return cfg, nil
}

// LoadAPIKey reads a plaintext credential file and trims surrounding whitespace.
func LoadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyAPIKey)
	}
	return key, nil
}
