package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/cache"
	"github.com/roma2023/SketchAI/internal/config"
	"github.com/roma2023/SketchAI/internal/models"
	"github.com/roma2023/SketchAI/internal/stability"
	"github.com/roma2023/SketchAI/internal/viewer"
	"github.com/roma2023/SketchAI/web"
)

const imagesPrefix = "/images/"

// Upstream sends a decoded sketch to the image-generation provider.
type Upstream interface {
	Convert(ctx context.Context, payload models.ProxyPayload) (*models.GenerationResult, error)
}

type Router struct {
	router     *mux.Router
	cfg        config.Config
	upstream   Upstream
	imageCache *cache.ImageCache
	// sessionConverter is what draw sessions use to reach the convert endpoint.
	sessionConverter viewer.Converter
}

func NewRouter(cfg config.Config, upstream Upstream, imageCache *cache.ImageCache, sessionConverter viewer.Converter) *Router {
	r := mux.NewRouter()
	router := &Router{
		router:           r,
		cfg:              cfg,
		upstream:         upstream,
		imageCache:       imageCache,
		sessionConverter: sessionConverter,
	}

	r.Use(requestLogger, mux.CORSMethodMiddleware(r), corsMiddleware)

	r.HandleFunc("/api/convert", router.convertHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/sketch/ws", router.sketchHandler).Methods(http.MethodGet)
	r.HandleFunc(imagesPrefix+"{id}", router.imageHandler).Methods(http.MethodGet)
	r.HandleFunc("/", indexHandler).Methods(http.MethodGet)

	return router
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.router.ServeHTTP(w, r)
}

func (router *Router) convertHandler(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest

	body := http.MaxBytesReader(w, r.Body, router.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			log.Warn().Int64("limit", maxErr.Limit).Msg("Request body too large")
			respondWithError(w, errBodyTooLarge)
			return
		}
		log.Warn().Err(err).Msg("Failed to decode convert request")
		respondWithError(w, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	payload, err := convertRequest(req, router.cfg.Defaults)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected sketch")
		respondWithError(w, err)
		return
	}

	result, err := router.upstream.Convert(r.Context(), payload)
	if err != nil {
		event := log.Error().Err(err)
		var apiErr *stability.APIError
		if errors.As(err, &apiErr) {
			event = event.Int("upstream_status", apiErr.StatusCode)
		}
		event.Msg("API Error")
		respondWithError(w, err)
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.Index)
}
