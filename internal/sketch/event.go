package sketch

import (
	"errors"
	"fmt"

	"github.com/roma2023/SketchAI/internal/models"
)

var ErrUnknownEvent = errors.New("unknown event type")

const (
	EventResize       = "resize"
	EventPointerDown  = "pointerdown"
	EventPointerMove  = "pointermove"
	EventPointerUp    = "pointerup"
	EventPointerLeave = "pointerleave"
	EventTool         = "tool"
	EventColor        = "color"
	EventWidth        = "width"
	EventStrength     = "strength"
	EventPrompt       = "prompt"
	EventClear        = "clear"
	EventSubmit       = "submit"
)

// Event is a single input sent by the drawing page.
type Event struct {
	Type            string   `json:"type"`
	X               float64  `json:"x,omitempty"`
	Y               float64  `json:"y,omitempty"`
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
	Tool            Tool     `json:"tool,omitempty"`
	Color           string   `json:"color,omitempty"`
	BrushWidth      int      `json:"brush_width,omitempty"`
	ControlStrength *float64 `json:"control_strength,omitempty"`
	Prompt          *string  `json:"prompt,omitempty"`
}

// Apply dispatches ev to the surface. A submit event returns the request to
// hand off; every other event returns nil. Invalid events leave the surface
// unchanged.
func (s *Surface) Apply(ev Event) (*models.GenerationRequest, error) {
	switch ev.Type {
	case EventResize:
		return nil, s.Resize(ev.Width, ev.Height)
	case EventPointerDown:
		s.PointerDown(ev.X, ev.Y)
	case EventPointerMove:
		s.PointerMove(ev.X, ev.Y)
	case EventPointerUp:
		s.PointerUp()
	case EventPointerLeave:
		s.PointerLeave()
	case EventTool:
		return nil, s.SetTool(ev.Tool)
	case EventColor:
		return nil, s.SetColor(ev.Color)
	case EventWidth:
		s.SetBrushWidth(ev.BrushWidth)
	case EventStrength:
		if ev.ControlStrength == nil {
			return nil, errors.New("strength event without control_strength")
		}
		s.SetControlStrength(*ev.ControlStrength)
	case EventPrompt:
		if ev.Prompt == nil {
			return nil, errors.New("prompt event without prompt")
		}
		s.SetPrompt(*ev.Prompt)
	case EventClear:
		s.Clear()
	case EventSubmit:
		if ev.Prompt != nil {
			s.SetPrompt(*ev.Prompt)
		}
		if ev.ControlStrength != nil {
			s.SetControlStrength(*ev.ControlStrength)
		}
		req, err := s.Submit()
		if err != nil {
			return nil, err
		}
		return &req, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil, nil
}
