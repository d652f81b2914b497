// Package balloon records numbered annotations on a drawing, either with a
// value typed by the user or with one resolved by the backend from a label.
package balloon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ballooner/internal/logger"
	"ballooner/internal/session"
	"ballooner/internal/types"
)

var (
	ErrEmptyInput      = errors.New("balloon needs a value or a label")
	ErrInvalidPosition = errors.New("balloon position must be within 0..1 on both axes")
	ErrNotFound        = errors.New("balloon not found")
)

// LabelResolver resolves a label against the session's source document.
type LabelResolver interface {
	GetValueForLabel(ctx context.Context, src types.SourceFile, label string) (types.LabelValue, error)
}

// Repositioner recomputes overlay geometry after the balloon list changes.
type Repositioner interface {
	Reposition(s *session.Session)
}

type Recorder struct {
	resolver     LabelResolver
	repositioner Repositioner
}

func NewRecorder(resolver LabelResolver, repositioner Repositioner) *Recorder {
	return &Recorder{resolver: resolver, repositioner: repositioner}
}

// AddDirect appends an entry with a known value. It cannot fail.
func (r *Recorder) AddDirect(s *session.Session, parameter, value string, number int, pos types.Position) types.BalloonEntry {
	entry := types.BalloonEntry{
		Parameter: parameter,
		Value:     value,
		Number:    number,
		Position:  pos,
	}
	s.AppendBalloon(entry)
	r.reposition(s)
	return entry
}

// FetchFromAI resolves label through the backend and appends the result under
// number. On any failure no row is added, the reserved number is handed back
// and the error banner names the label. The loader is cleared either way.
//
// Callers hold the session slot so the counter compensation cannot race a
// later reservation.
func (r *Recorder) FetchFromAI(ctx context.Context, s *session.Session, label string, number int, pos types.Position) (types.BalloonEntry, error) {
	s.ShowLoader(fmt.Sprintf("Fetching value for %q...", label))
	defer s.HideLoader()

	entry, err := r.lookup(ctx, s, label, number, pos)
	if err != nil {
		s.ReleaseNumber()
		s.ShowError(fmt.Sprintf("Could not get value for %q: %v", label, err))
		logger.Session(s.ID).Warn("label lookup failed", "label", label, "number", number, "err", err)
		return types.BalloonEntry{}, err
	}
	s.ClearError()
	s.AppendBalloon(entry)
	r.reposition(s)
	return entry, nil
}

func (r *Recorder) lookup(ctx context.Context, s *session.Session, label string, number int, pos types.Position) (types.BalloonEntry, error) {
	src, err := s.Source()
	if err != nil {
		return types.BalloonEntry{}, err
	}
	if r.resolver == nil {
		return types.BalloonEntry{}, fmt.Errorf("no label resolver configured")
	}
	res, err := r.resolver.GetValueForLabel(ctx, src, label)
	if err != nil {
		return types.BalloonEntry{}, err
	}
	return types.BalloonEntry{
		Parameter: res.Parameter,
		Value:     res.Value,
		Number:    number,
		Position:  pos,
	}, nil
}

// AddBalloon places a balloon at a page-normalized point: it reserves the
// next number, then records the typed value or resolves the label. The whole
// sequence runs inside the session slot.
func (r *Recorder) AddBalloon(ctx context.Context, s *session.Session, xNorm, yNorm float64, in types.BalloonInput) (types.BalloonEntry, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Parameter = strings.TrimSpace(in.Parameter)
	if !in.Direct() && in.Label == "" {
		return types.BalloonEntry{}, ErrEmptyInput
	}
	if xNorm < 0 || xNorm > 1 || yNorm < 0 || yNorm > 1 {
		return types.BalloonEntry{}, ErrInvalidPosition
	}
	if err := s.Acquire(ctx); err != nil {
		return types.BalloonEntry{}, err
	}
	defer s.Release()

	pos := types.Position{X: xNorm, Y: yNorm}
	number := s.ReserveNumber()
	if in.Direct() {
		parameter := in.Parameter
		if parameter == "" {
			parameter = in.Label
		}
		return r.AddDirect(s, parameter, in.Value, number, pos), nil
	}
	return r.FetchFromAI(ctx, s, in.Label, number, pos)
}

// Remove deletes the balloon tagged with number. It waits for any lookup in
// flight on the session.
func (r *Recorder) Remove(ctx context.Context, s *session.Session, number int) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	if !s.RemoveBalloon(number) {
		return ErrNotFound
	}
	r.reposition(s)
	return nil
}

// Reset clears every balloon and restarts numbering at 1. A lookup in flight
// finishes first, so its reservation never survives the reset.
func (r *Recorder) Reset(ctx context.Context, s *session.Session) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	s.ResetBalloons()
	r.reposition(s)
	return nil
}

func (r *Recorder) reposition(s *session.Session) {
	if r.repositioner != nil {
		r.repositioner.Reposition(s)
	}
}
