// Package gdt analyzes GD&T feature control frames around a click point by
// cropping the rendered page and sending the crop to the backend.
package gdt

import (
	"context"
	"fmt"
	"image"
	"time"

	"ballooner/internal/logger"
	"ballooner/internal/session"
	"ballooner/internal/types"

	"github.com/google/uuid"
)

const DefaultHighlightTTL = 2 * time.Second

// CropAnalyzer is the backend capability the analyzer needs.
type CropAnalyzer interface {
	AnalyzeGdtCrop(ctx context.Context, png []byte) ([]byte, error)
}

type Analyzer struct {
	backend      CropAnalyzer
	cropper      Cropper
	highlightTTL time.Duration
	now          func() time.Time
	after        func(time.Duration, func()) *time.Timer
}

func NewAnalyzer(backend CropAnalyzer, cropper Cropper, highlightTTL time.Duration) *Analyzer {
	return &Analyzer{
		backend:      backend,
		cropper:      cropper,
		highlightTTL: highlightTTL,
		now:          time.Now,
		after:        time.AfterFunc,
	}
}

// AnalyzeClick crops the page around pixel (x, y), highlights the crop
// region, sends the crop for analysis and renders the result rows.
func (a *Analyzer) AnalyzeClick(ctx context.Context, s *session.Session, x, y int) (types.GdtResult, error) {
	page, err := s.Page()
	if err != nil {
		return types.GdtResult{}, err
	}
	crop, win, err := a.cropper.CropPNG(page.Image, x, y)
	if err != nil {
		return types.GdtResult{}, err
	}
	if err := s.Acquire(ctx); err != nil {
		return types.GdtResult{}, err
	}
	defer s.Release()
	a.highlight(s, win)

	s.ShowLoader("Analyzing GD&T region...")
	defer s.HideLoader()

	raw, err := a.backend.AnalyzeGdtCrop(ctx, crop)
	if err != nil {
		s.ShowError(fmt.Sprintf("GD&T analysis failed: %v", err))
		logger.Session(s.ID).Warn("gdt analysis failed", "x", x, "y", y, "err", err)
		return types.GdtResult{}, err
	}
	result, err := Normalize(raw)
	if err != nil {
		s.ShowError(fmt.Sprintf("GD&T analysis failed: %v", err))
		return types.GdtResult{}, err
	}
	s.ClearError()
	Display(s, result)
	return result, nil
}

// Display renders result into the session's GD&T table. A feature list
// replaces the table (or shows the no-features row when empty); a single
// symbol is appended below existing rows.
func Display(s *session.Session, result types.GdtResult) {
	rows := make([]types.GdtRow, 0, len(result.Features))
	for _, f := range result.Features {
		rows = append(rows, f.Row())
	}
	switch {
	case result.Single:
		s.AppendGdtRows(rows)
	case len(rows) == 0:
		s.ReplaceGdtRows([]types.GdtRow{types.NoFeaturesRow()})
	default:
		s.ReplaceGdtRows(rows)
	}
}

func (a *Analyzer) highlight(s *session.Session, win image.Rectangle) {
	if a.highlightTTL <= 0 {
		return
	}
	h := types.NewHighlight(uuid.NewString(), win, a.now().Add(a.highlightTTL))
	s.AddHighlight(h)
	a.after(a.highlightTTL, func() { s.RemoveHighlight(h.ID) })
}
