package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/models"
	"github.com/roma2023/SketchAI/internal/sketch"
	"github.com/roma2023/SketchAI/internal/viewer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sketchSession ties one drawing page to its surface and result viewer.
type sketchSession struct {
	id      string
	conn    *websocket.Conn
	surface *sketch.Surface
	viewer  *viewer.Viewer
	logger  zerolog.Logger

	writeMu sync.Mutex
	pending sync.WaitGroup
}

func (router *Router) sketchHandler(w http.ResponseWriter, r *http.Request) {
	d := router.cfg.Defaults
	surface, err := sketch.NewSurface(d.SurfaceWidth, d.SurfaceHeight)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create draw surface")
		http.Error(w, "Failed to create draw surface", http.StatusInternalServerError)
		return
	}
	surface.SetControlStrength(d.ControlStrength)
	surface.SetPrompt(d.SurfacePrompt)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(router.cfg.MaxBodyBytes)

	id := uuid.NewString()
	s := &sketchSession{
		id:      id,
		conn:    conn,
		surface: surface,
		viewer:  viewer.New(router.sessionConverter, router.imageCache, imagesPrefix),
		logger:  log.With().Str("session", id).Logger(),
	}
	s.viewer.OnDisplay(func(url string) {
		s.send(SessionMessage{Type: "result", URL: url})
	})
	// Requests already sent upstream are not cancelled when the page goes away.
	s.run(context.WithoutCancel(r.Context()))
}

func (s *sketchSession) run(ctx context.Context) {
	defer s.close()

	s.logger.Info().Msg("Draw session started")
	w, h := s.surface.Size()
	s.send(SessionMessage{Type: "ready", Session: s.id, Width: w, Height: h})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn().Err(err).Msg("Draw session closed unexpectedly")
			}
			return
		}

		var ev sketch.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.send(SessionMessage{Type: "error", Error: "invalid event"})
			continue
		}

		req, err := s.surface.Apply(ev)
		if err != nil {
			s.logger.Debug().Err(err).Str("event", ev.Type).Msg("Rejected event")
			s.send(SessionMessage{Type: "error", Error: err.Error()})
			continue
		}
		if req != nil {
			s.pending.Add(1)
			go s.show(ctx, *req)
		}
	}
}

// show hands req to the viewer. The result message is sent from the viewer's
// display callback.
func (s *sketchSession) show(ctx context.Context, req models.GenerationRequest) {
	defer s.pending.Done()
	s.viewer.Show(ctx, req)
}

func (s *sketchSession) send(msg SessionMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type).Msg("Failed to send message")
	}
}

func (s *sketchSession) close() {
	s.conn.Close()
	s.pending.Wait()
	s.viewer.Close()
	s.logger.Info().Msg("Draw session ended")
}
