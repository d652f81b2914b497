// Package report exports a session's balloon table as an inspection report.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"ballooner/internal/session"
	"ballooner/internal/types"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

const Title = "Inspection Report"

var Columns = []string{"No.", "Parameter", "Value", "X", "Y"}

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts the format names plus a few common aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", raw)
	}
}

// ContentType is the HTTP content type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Extension is the file extension for downloads.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Header holds the key/value lines printed above the table.
type Header struct {
	Session     string    `json:"session" yaml:"session"`
	SourceFile  string    `json:"source_file" yaml:"source_file"`
	Balloons    int       `json:"balloons" yaml:"balloons"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

type Report struct {
	Title   string               `json:"title" yaml:"title"`
	Header  Header               `json:"header" yaml:"header"`
	Entries []types.BalloonEntry `json:"entries" yaml:"entries"`
}

// Build snapshots the session into a report with entries ordered by number.
func Build(s *session.Session, now time.Time) Report {
	entries := s.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	h := Header{Session: s.ID, Balloons: len(entries), GeneratedAt: now.UTC()}
	if src, err := s.Source(); err == nil {
		h.SourceFile = src.Name
	}
	return Report{Title: Title, Header: h, Entries: entries}
}

// Rows renders the table body as strings in column order.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Number),
			e.Parameter,
			e.Value,
			strconv.FormatFloat(e.Position.X, 'f', 4, 64),
			strconv.FormatFloat(e.Position.Y, 'f', 4, 64),
		})
	}
	return rows
}

// Write encodes r to w in format f.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return writeHTML(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(r.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// Markdown renders the header lines followed by a pipe table.
func Markdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- Session: %s\n", r.Header.Session)
	if r.Header.SourceFile != "" {
		fmt.Fprintf(&b, "- Source file: %s\n", escapeCell(r.Header.SourceFile))
	}
	fmt.Fprintf(&b, "- Balloons: %d\n", r.Header.Balloons)
	fmt.Fprintf(&b, "- Generated: %s\n\n", r.Header.GeneratedAt.Format(time.RFC3339))
	if len(r.Entries) == 0 {
		b.WriteString("_No balloons recorded._\n")
		return b.String()
	}
	b.WriteString("| " + strings.Join(Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(Columns)) + "\n")
	for _, row := range r.Rows() {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func writeHTML(w io.Writer, r Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n%s</body></html>\n", r.Title, body.String())
	return err
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
