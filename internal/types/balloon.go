package types

// Position is a balloon anchor in page-normalized coordinates (0..1 on both axes).
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// BalloonEntry is one numbered annotation on a drawing.
type BalloonEntry struct {
	Parameter string   `json:"parameter" yaml:"parameter"`
	Value     string   `json:"value" yaml:"value"`
	Number    int      `json:"number" yaml:"number"`
	Position  Position `json:"position" yaml:"position"`
}

// BalloonRow is the rendered table row for an entry, keyed by Number for removal.
type BalloonRow struct {
	Number    int    `json:"number"`
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// Row renders the entry the way the report table shows it.
func (e BalloonEntry) Row() BalloonRow {
	return BalloonRow{Number: e.Number, Parameter: e.Parameter, Value: e.Value}
}

// BalloonInput describes what the user supplied when placing a balloon:
// either a Value (direct) or a Label for the backend to resolve.
type BalloonInput struct {
	Label     string `json:"label,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Value     string `json:"value,omitempty"`
}

// Direct reports whether the input carries its own value.
func (in BalloonInput) Direct() bool {
	return in.Value != ""
}

// LabelValue is the backend's answer for a label lookup.
type LabelValue struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// SourceFile is the document the backend reads label values from.
type SourceFile struct {
	Name string
	Data []byte
}

// Marker is a balloon projected into page pixel space.
type Marker struct {
	Number int `json:"number"`
	X      int `json:"x"`
	Y      int `json:"y"`
}
