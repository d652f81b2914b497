package types

import (
	"image"
	"time"
)

// Mode selects what a canvas click does.
type Mode int

const (
	ModeBallooning Mode = iota
	ModeGDT
)

func (m Mode) String() string {
	if m == ModeGDT {
		return "gdt"
	}
	return "ballooning"
}

// ButtonLabel is the toggle button text for the mode.
func (m Mode) ButtonLabel() string {
	if m == ModeGDT {
		return "GD&T Analysis Mode"
	}
	return "Ballooning Mode"
}

// Loader is the busy indicator shown while a backend call is in flight.
type Loader struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text,omitempty"`
}

// Highlight is a transient box drawn over an analyzed crop region.
type Highlight struct {
	ID        string          `json:"id"`
	Rect      image.Rectangle `json:"-"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewHighlight builds a highlight for rect.
func NewHighlight(id string, rect image.Rectangle, expires time.Time) Highlight {
	return Highlight{
		ID:        id,
		Rect:      rect,
		X:         rect.Min.X,
		Y:         rect.Min.Y,
		Width:     rect.Dx(),
		Height:    rect.Dy(),
		ExpiresAt: expires,
	}
}

// SessionView is the full UI state of one session as the client renders it.
type SessionView struct {
	ID                 string         `json:"id"`
	Mode               string         `json:"mode"`
	ModeButtonLabel    string         `json:"mode_button_label"`
	GdtResultsVisible  bool           `json:"gdt_results_visible"`
	ResultsVisible     bool           `json:"results_visible"`
	PlaceholderVisible bool           `json:"placeholder_visible"`
	Loader             Loader         `json:"loader"`
	Error              string         `json:"error,omitempty"`
	BalloonCounter     int            `json:"balloon_counter"`
	Balloons           []BalloonEntry `json:"balloons"`
	BalloonRows        []BalloonRow   `json:"balloon_rows"`
	GdtRows            []GdtRow       `json:"gdt_rows"`
	Markers            []Marker       `json:"markers"`
	Highlights         []Highlight    `json:"highlights"`
	SourceFile         string         `json:"source_file,omitempty"`
	PageWidth          int            `json:"page_width,omitempty"`
	PageHeight         int            `json:"page_height,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}
