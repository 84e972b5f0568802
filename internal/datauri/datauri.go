// Package datauri parses and builds base64 image data URIs of the form
// data:image/<subtype>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidImageData = errors.New("invalid image data")

var pattern = regexp.MustCompile(`^data:(image/\w+);base64,(.+)$`)

type Image struct {
	MimeType  string
	Extension string
	Data      []byte
}

// Parse extracts the MIME type, file extension and decoded bytes from an image data URI.
func Parse(uri string) (Image, error) {
	match := pattern.FindStringSubmatch(uri)
	if match == nil {
		return Image{}, ErrInvalidImageData
	}

	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}

	mimeType := match[1]
	return Image{
		MimeType:  mimeType,
		Extension: strings.TrimPrefix(mimeType, "image/"),
		Data:      data,
	}, nil
}

func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
