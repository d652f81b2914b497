// Package click routes a canvas click to balloon placement or GD&T analysis
// depending on the session's mode.
package click

import (
	"context"
	"errors"
	"math"

	"ballooner/internal/session"
	"ballooner/internal/types"
)

// ErrOutsidePage is returned for clicks that miss the page image.
var ErrOutsidePage = errors.New("click is outside the page")

// BalloonPlacer places a balloon at a page-normalized point.
type BalloonPlacer interface {
	AddBalloon(ctx context.Context, s *session.Session, xNorm, yNorm float64, in types.BalloonInput) (types.BalloonEntry, error)
}

// GdtAnalyzer analyzes the page region around a pixel.
type GdtAnalyzer interface {
	AnalyzeClick(ctx context.Context, s *session.Session, x, y int) (types.GdtResult, error)
}

// Input is one click in page pixel coordinates plus what the user typed for
// a balloon. Balloon is ignored in GD&T mode.
type Input struct {
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Balloon types.BalloonInput `json:"balloon"`
}

// Outcome reports which path handled the click.
type Outcome struct {
	Mode    string              `json:"mode"`
	Balloon *types.BalloonEntry `json:"balloon,omitempty"`
	Gdt     *types.GdtResult    `json:"gdt,omitempty"`
}

type Router struct {
	placer   BalloonPlacer
	analyzer GdtAnalyzer
}

func NewRouter(placer BalloonPlacer, analyzer GdtAnalyzer) *Router {
	return &Router{placer: placer, analyzer: analyzer}
}

// Route reads the mode once and dispatches the click.
func (r *Router) Route(ctx context.Context, s *session.Session, in Input) (Outcome, error) {
	page, err := s.Page()
	if err != nil {
		return Outcome{}, err
	}
	w, h := page.Size()
	if in.X < 0 || in.Y < 0 || in.X > float64(w) || in.Y > float64(h) || w == 0 || h == 0 {
		return Outcome{}, ErrOutsidePage
	}

	mode := s.Mode()
	out := Outcome{Mode: mode.String()}
	if mode == types.ModeGDT {
		res, err := r.analyzer.AnalyzeClick(ctx, s, int(math.Round(in.X)), int(math.Round(in.Y)))
		if err != nil {
			return out, err
		}
		out.Gdt = &res
		return out, nil
	}
	entry, err := r.placer.AddBalloon(ctx, s, in.X/float64(w), in.Y/float64(h), in.Balloon)
	if err != nil {
		return out, err
	}
	out.Balloon = &entry
	return out, nil
}
