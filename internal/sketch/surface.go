// Package sketch implements the draw surface: a raster canvas that turns
// pointer input into freehand strokes and exports itself as a PNG data URI.
//
// A Surface is owned by a single session and is not safe for concurrent use.
package sketch

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/roma2023/SketchAI/internal/datauri"
	"github.com/roma2023/SketchAI/internal/models"
)

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

const (
	MinBrushWidth = 1
	MaxBrushWidth = 20

	DefaultBrushWidth      = 5
	DefaultControlStrength = 0.95
	DefaultPrompt          = "Transform this sketch into a photorealistic image, maintaining exact proportions and details"

	// capSegments is the number of edges used to approximate each round cap.
	capSegments = 16
)

var ErrInvalidSize = errors.New("surface size must be positive")

var Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type point struct{ x, y float64 }

type Surface struct {
	img    *image.RGBA
	raster *vector.Rasterizer

	tool            Tool
	color           color.RGBA
	brushWidth      int
	controlStrength float64
	prompt          string

	drawing bool
	last    point
}

func NewSurface(width, height int) (*Surface, error) {
	s := &Surface{
		tool:            ToolPen,
		color:           color.RGBA{A: 0xff},
		brushWidth:      DefaultBrushWidth,
		controlStrength: DefaultControlStrength,
		prompt:          DefaultPrompt,
	}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize replaces the buffer with a blank one matching the new container
// size. Whatever was drawn is lost and an active stroke ends.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.raster = vector.NewRasterizer(width, height)
	s.drawing = false
	s.Clear()
	return nil
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear paints the whole surface with the background. Tool settings are kept.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

func (s *Surface) SetTool(t Tool) error {
	switch t {
	case ToolPen, ToolEraser:
		s.tool = t
		return nil
	}
	return fmt.Errorf("unknown tool %q", t)
}

func (s *Surface) SetColor(value string) error {
	c, err := ParseColor(value)
	if err != nil {
		return err
	}
	s.color = c
	return nil
}

// SetBrushWidth clamps w into [MinBrushWidth, MaxBrushWidth].
func (s *Surface) SetBrushWidth(w int) {
	s.brushWidth = min(max(w, MinBrushWidth), MaxBrushWidth)
}

// SetControlStrength clamps v into [0, 1].
func (s *Surface) SetControlStrength(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.controlStrength = math.Min(math.Max(v, 0), 1)
}

func (s *Surface) SetPrompt(p string) { s.prompt = p }

func (s *Surface) Tool() Tool               { return s.tool }
func (s *Surface) Color() string            { return formatColor(s.color) }
func (s *Surface) BrushWidth() int          { return s.brushWidth }
func (s *Surface) ControlStrength() float64 { return s.controlStrength }
func (s *Surface) Prompt() string           { return s.prompt }
func (s *Surface) Drawing() bool            { return s.drawing }

// PointerDown starts a stroke at (x, y).
func (s *Surface) PointerDown(x, y float64) {
	w, h := s.Size()
	s.last = point{clamp(x, float64(w)), clamp(y, float64(h))}
	s.drawing = true
}

// PointerMove extends the active stroke. Points outside the surface are
// ignored and the stroke resumes from the last point inside it.
func (s *Surface) PointerMove(x, y float64) {
	if !s.drawing {
		return
	}
	w, h := s.Size()
	if x < 0 || y < 0 || x > float64(w) || y > float64(h) {
		return
	}
	next := point{x, y}
	s.strokeSegment(s.last, next)
	s.last = next
}

func (s *Surface) PointerUp()    { s.drawing = false }
func (s *Surface) PointerLeave() { s.drawing = false }

func (s *Surface) inkColor() color.RGBA {
	if s.tool == ToolEraser {
		return Background
	}
	return s.color
}

// strokeSegment fills a capsule of the brush width around a-b, which is
// what a round-capped line looks like.
func (s *Surface) strokeSegment(a, b point) {
	r := float64(s.brushWidth) / 2
	dx, dy := b.x-a.x, b.y-a.y
	angle := math.Atan2(dy, dx)
	if dx == 0 && dy == 0 {
		angle = 0
	}

	w, h := s.Size()
	s.raster.Reset(w, h)

	// Half circle around b from angle-90° to angle+90°, then around a back.
	start := angle - math.Pi/2
	for i := 0; i <= capSegments; i++ {
		t := start + math.Pi*float64(i)/capSegments
		px, py := float32(b.x+r*math.Cos(t)), float32(b.y+r*math.Sin(t))
		if i == 0 {
			s.raster.MoveTo(px, py)
		} else {
			s.raster.LineTo(px, py)
		}
	}
	for i := 0; i <= capSegments; i++ {
		t := start + math.Pi + math.Pi*float64(i)/capSegments
		s.raster.LineTo(float32(a.x+r*math.Cos(t)), float32(a.y+r*math.Sin(t)))
	}
	s.raster.ClosePath()
	s.raster.Draw(s.img, s.img.Bounds(), image.NewUniform(s.inkColor()), image.Point{})
}

// Image returns the live buffer.
func (s *Surface) Image() *image.RGBA { return s.img }

// Export encodes the surface as a PNG data URI.
func (s *Surface) Export() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return datauri.Encode("image/png", buf.Bytes()), nil
}

// Submit exports the surface together with the current prompt and control
// strength. A blank surface is submitted as is.
func (s *Surface) Submit() (models.GenerationRequest, error) {
	imageData, err := s.Export()
	if err != nil {
		return models.GenerationRequest{}, err
	}
	return models.GenerationRequest{
		ImageData:       imageData,
		Prompt:          s.prompt,
		ControlStrength: s.controlStrength,
	}, nil
}

func clamp(v, limit float64) float64 {
	return math.Min(math.Max(v, 0), limit)
}
