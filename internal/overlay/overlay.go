// Package overlay projects balloons onto the page image and renders previews.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"time"

	"ballooner/internal/session"
	"ballooner/internal/types"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const markerRadius = 11

var (
	markerFill     = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	markerText     = color.White
	highlightColor = color.RGBA{R: 37, G: 99, B: 235, A: 255}
)

// Projector keeps session markers in sync with the balloon list.
type Projector struct{}

func NewProjector() *Projector { return &Projector{} }

// Reposition recomputes marker pixel positions from normalized balloon
// positions and the current page size. Without a page there are no markers.
func (p *Projector) Reposition(s *session.Session) {
	page, err := s.Page()
	if err != nil {
		s.SetMarkers(nil)
		return
	}
	w, h := page.Size()
	s.SetMarkers(Project(s.Entries(), w, h))
}

// Project maps entries onto a w x h page.
func Project(entries []types.BalloonEntry, w, h int) []types.Marker {
	out := make([]types.Marker, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.Marker{
			Number: e.Number,
			X:      int(math.Round(e.Position.X * float64(w))),
			Y:      int(math.Round(e.Position.Y * float64(h))),
		})
	}
	return out
}

// RenderPreview draws the page with numbered markers and live highlight boxes.
func RenderPreview(s *session.Session, now time.Time) ([]byte, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	b := page.Image.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), page.Image, b.Min, draw.Src)

	for _, h := range s.Highlights(now) {
		strokeRect(canvas, h.Rect, highlightColor, 2)
	}
	for _, m := range s.Markers() {
		drawMarker(canvas, m)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func strokeRect(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
	}
}

func drawMarker(dst *image.RGBA, m types.Marker) {
	bounds := dst.Bounds()
	r2 := markerRadius * markerRadius
	for dy := -markerRadius; dy <= markerRadius; dy++ {
		for dx := -markerRadius; dx <= markerRadius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			pt := image.Pt(m.X+dx, m.Y+dy)
			if pt.In(bounds) {
				dst.SetRGBA(pt.X, pt.Y, markerFill)
			}
		}
	}
	label := strconv.Itoa(m.Number)
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(markerText), Face: face}
	width := d.MeasureString(label).Round()
	d.Dot = fixed.P(m.X-width/2, m.Y+face.Ascent/2)
	d.DrawString(label)
}
