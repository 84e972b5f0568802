package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/cache"
)

func (router *Router) imageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	result, err := router.imageCache.GetImage(id)
	if errors.Is(err, cache.ErrImageNotFound) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	} else if errors.Is(err, cache.ErrImageExpired) {
		http.Error(w, "Image expired", http.StatusGone)
		return
	} else if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to retrieve image")
		http.Error(w, "Failed to retrieve image", http.StatusInternalServerError)
		return
	}

	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Write(result.Data)
}
