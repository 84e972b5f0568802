// Package viewer displays the image most recently returned by the
// conversion proxy.
//
// Each call to Show is tagged with a sequence number and its result is only
// displayed if no later call has been issued in the meantime, so a slow
// response can never replace a newer one.
package viewer

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/models"
)

// Converter turns a generation request into an image.
type Converter interface {
	Convert(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)

func (f ConverterFunc) Convert(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	return f(ctx, req)
}

// Store keeps displayed images addressable by id.
type Store interface {
	StoreImage(result models.GenerationResult) string
	DeleteImage(id string)
}

type Viewer struct {
	converter Converter
	store     Store
	urlPrefix string

	mu      sync.Mutex
	issued  uint64
	current string
	display func(url string)
}

// New returns a Viewer whose handles are urlPrefix followed by the store id.
func New(converter Converter, store Store, urlPrefix string) *Viewer {
	return &Viewer{converter: converter, store: store, urlPrefix: urlPrefix}
}

// OnDisplay registers fn to be called with the handle of each image that
// becomes current. fn runs while the viewer is locked, so handles reach it in
// display order and a newer image cannot be announced before an older one.
// fn must not call back into the Viewer.
func (v *Viewer) OnDisplay(fn func(url string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.display = fn
}

// Show issues exactly one conversion for req. It returns the handle of the
// displayed image and true when this call's result became current. A failed
// or superseded call leaves the current image in place.
func (v *Viewer) Show(ctx context.Context, req models.GenerationRequest) (string, bool, error) {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.mu.Unlock()

	result, err := v.converter.Convert(ctx, req)
	if err != nil {
		log.Error().Err(err).Uint64("seq", seq).Msg("Error generating image")
		return "", false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.issued {
		log.Debug().Uint64("seq", seq).Uint64("latest", v.issued).Msg("Discarding superseded result")
		return "", false, nil
	}

	id := v.store.StoreImage(*result)
	if v.current != "" {
		v.store.DeleteImage(v.current)
	}
	v.current = id

	url := v.urlPrefix + id
	log.Info().Str("id", id).Str("content_type", result.ContentType).Int("bytes", len(result.Data)).Msg("Displaying generated image")
	if v.display != nil {
		v.display(url)
	}
	return url, true, nil
}

// Current returns the handle of the displayed image, or "" if none yet.
func (v *Viewer) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == "" {
		return ""
	}
	return v.urlPrefix + v.current
}

// Close releases the displayed image.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != "" {
		v.store.DeleteImage(v.current)
		v.current = ""
	}
}
