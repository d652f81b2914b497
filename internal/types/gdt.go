package types

import "strings"

// GdtFeature is the single normalized shape for everything the crop analysis returns.
type GdtFeature struct {
	Characteristic string   `json:"characteristic"`
	Value          string   `json:"value"`
	Diameter       bool     `json:"diameter,omitempty"`
	Datums         []string `json:"datums"`
	Modifiers      []string `json:"modifiers"`
}

// GdtResult is a normalized analysis response. Single marks the one-symbol
// form, which appends to the table instead of replacing it.
type GdtResult struct {
	Features []GdtFeature `json:"features"`
	Single   bool         `json:"single"`
}

const (
	diameterSign   = "Ø"
	NoFeaturesText = "No GD&T features detected."
	emptyListText  = "None"
)

// GdtRow is one rendered line of the GD&T results table.
type GdtRow struct {
	Characteristic string `json:"characteristic"`
	Value          string `json:"value"`
	Datums         string `json:"datums"`
	Modifiers      string `json:"modifiers"`
	Placeholder    bool   `json:"placeholder,omitempty"`
}

// Row renders f for display.
func (f GdtFeature) Row() GdtRow {
	value := f.Value
	if f.Diameter && !strings.HasPrefix(value, diameterSign) {
		value = diameterSign + value
	}
	return GdtRow{
		Characteristic: f.Characteristic,
		Value:          value,
		Datums:         joinOrNone(f.Datums),
		Modifiers:      joinOrNone(f.Modifiers),
	}
}

// NoFeaturesRow is the placeholder shown when an analysis finds nothing.
func NoFeaturesRow() GdtRow {
	return GdtRow{Characteristic: NoFeaturesText, Placeholder: true}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return emptyListText
	}
	return strings.Join(items, ", ")
}
