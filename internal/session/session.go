package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"ballooner/internal/types"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrNoSource is returned when a label lookup runs before a source file was uploaded.
	ErrNoSource = errors.New("no source file uploaded")
	// ErrNoPage is returned when a click arrives before a page image was uploaded.
	ErrNoPage = errors.New("no page image uploaded")
)

// Page is the rendered drawing page the user clicks on.
type Page struct {
	Number int
	Image  image.Image
}

// Size returns the page pixel dimensions.
func (p *Page) Size() (int, int) {
	if p == nil || p.Image == nil {
		return 0, 0
	}
	b := p.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Session owns all per-user state: the balloon list and counter, the click
// mode, and the indicator fields the client renders.
//
// Fields are guarded by mu, which is never held across a backend call.
// Backend-bound work is serialized through slot so that overlapping clicks
// on one session complete in arrival order.
type Session struct {
	ID        string
	CreatedAt time.Time

	slot *semaphore.Weighted

	mu                 sync.Mutex
	lastSeen           time.Time
	source             *types.SourceFile
	page               *Page
	entries            []types.BalloonEntry
	rows               []types.BalloonRow
	counter            int
	mode               types.Mode
	loader             types.Loader
	errMsg             string
	resultsVisible     bool
	placeholderVisible bool
	gdtRows            []types.GdtRow
	highlights         []types.Highlight
	markers            []types.Marker
}

// New creates an empty session in ballooning mode.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:                 id,
		CreatedAt:          now,
		lastSeen:           now,
		slot:               semaphore.NewWeighted(1),
		placeholderVisible: true,
	}
}

// Acquire blocks until the session's backend slot is free or ctx is done.
func (s *Session) Acquire(ctx context.Context) error {
	return s.slot.Acquire(ctx, 1)
}

// Release frees the backend slot taken by Acquire.
func (s *Session) Release() {
	s.slot.Release(1)
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) SetSource(src types.SourceFile) {
	s.mu.Lock()
	s.source = &src
	s.mu.Unlock()
}

// Source returns the uploaded source document or ErrNoSource.
func (s *Session) Source() (types.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return types.SourceFile{}, ErrNoSource
	}
	return *s.source, nil
}

func (s *Session) SetPage(p Page) {
	s.mu.Lock()
	s.page = &p
	s.mu.Unlock()
}

// Page returns the current page image or ErrNoPage.
func (s *Session) Page() (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil || s.page.Image == nil {
		return nil, ErrNoPage
	}
	return s.page, nil
}

// ReserveNumber increments the balloon counter and returns the new number.
func (s *Session) ReserveNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

// ReleaseNumber undoes one reservation after a failed lookup.
func (s *Session) ReleaseNumber() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counter > 0 {
		s.counter--
	}
}

func (s *Session) Counter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// AppendBalloon records e and its table row, reveals the results section and
// hides the placeholder.
func (s *Session) AppendBalloon(e types.BalloonEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	s.rows = append(s.rows, e.Row())
	s.resultsVisible = true
	s.placeholderVisible = false
}

// RemoveBalloon drops the entry and row tagged with number.
func (s *Session) RemoveBalloon(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, e := range s.entries {
		if e.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	for i, r := range s.rows {
		if r.Number == number {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			break
		}
	}
	if len(s.entries) == 0 {
		s.resultsVisible = false
		s.placeholderVisible = true
	}
	return true
}

// ResetBalloons clears entries, rows, markers and the counter.
func (s *Session) ResetBalloons() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.rows = nil
	s.markers = nil
	s.counter = 0
	s.resultsVisible = false
	s.placeholderVisible = true
}

// Entries returns a copy of the balloon list in insertion order.
func (s *Session) Entries() []types.BalloonEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.BalloonEntry{}, s.entries...)
}

func (s *Session) Mode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleMode flips between ballooning and GD&T analysis and returns the new mode.
func (s *Session) ToggleMode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == types.ModeGDT {
		s.mode = types.ModeBallooning
	} else {
		s.mode = types.ModeGDT
	}
	return s.mode
}

func (s *Session) ShowLoader(text string) {
	s.mu.Lock()
	s.loader = types.Loader{Visible: true, Text: text}
	s.mu.Unlock()
}

func (s *Session) HideLoader() {
	s.mu.Lock()
	s.loader = types.Loader{}
	s.mu.Unlock()
}

func (s *Session) Loader() types.Loader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loader
}

// ShowError sets the user-visible error banner.
func (s *Session) ShowError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

func (s *Session) ClearError() {
	s.ShowError("")
}

func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ReplaceGdtRows clears the GD&T table and renders rows.
func (s *Session) ReplaceGdtRows(rows []types.GdtRow) {
	s.mu.Lock()
	s.gdtRows = append([]types.GdtRow(nil), rows...)
	s.mu.Unlock()
}

// AppendGdtRows adds rows below the existing ones.
func (s *Session) AppendGdtRows(rows []types.GdtRow) {
	s.mu.Lock()
	s.gdtRows = append(s.gdtRows, rows...)
	s.mu.Unlock()
}

func (s *Session) GdtRows() []types.GdtRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.GdtRow(nil), s.gdtRows...)
}

func (s *Session) AddHighlight(h types.Highlight) {
	s.mu.Lock()
	s.highlights = append(s.highlights, h)
	s.mu.Unlock()
}

func (s *Session) RemoveHighlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.highlights {
		if h.ID == id {
			s.highlights = append(s.highlights[:i], s.highlights[i+1:]...)
			return
		}
	}
}

// Highlights returns the boxes that have not expired at now.
func (s *Session) Highlights(now time.Time) []types.Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Highlight, 0, len(s.highlights))
	for _, h := range s.highlights {
		if now.Before(h.ExpiresAt) {
			out = append(out, h)
		}
	}
	return out
}

func (s *Session) SetMarkers(m []types.Marker) {
	s.mu.Lock()
	s.markers = m
	s.mu.Unlock()
}

func (s *Session) Markers() []types.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Marker(nil), s.markers...)
}

// View snapshots the session for the client.
func (s *Session) View() types.SessionView {
	now := time.Now()
	highlights := s.Highlights(now)
	entries := s.Entries()
	s.mu.Lock()
	defer s.mu.Unlock()
	v := types.SessionView{
		ID:                 s.ID,
		Mode:               s.mode.String(),
		ModeButtonLabel:    s.mode.ButtonLabel(),
		GdtResultsVisible:  s.mode == types.ModeGDT,
		ResultsVisible:     s.resultsVisible,
		PlaceholderVisible: s.placeholderVisible,
		Loader:             s.loader,
		Error:              s.errMsg,
		BalloonCounter:     s.counter,
		Balloons:           entries,
		BalloonRows:        append([]types.BalloonRow{}, s.rows...),
		GdtRows:            append([]types.GdtRow{}, s.gdtRows...),
		Markers:            append([]types.Marker{}, s.markers...),
		Highlights:         highlights,
		CreatedAt:          s.CreatedAt,
	}
	if s.source != nil {
		v.SourceFile = s.source.Name
	}
	if s.page != nil {
		v.PageWidth, v.PageHeight = s.page.Size()
	}
	return v
}
