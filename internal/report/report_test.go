package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ballooner/internal/session"
	"ballooner/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var generated = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func sampleReport() Report {
	s := session.New("sess-1")
	s.SetSource(types.SourceFile{Name: "bracket.pdf"})
	s.AppendBalloon(types.BalloonEntry{Number: 2, Parameter: "Height", Value: "4", Position: types.Position{X: 0.2, Y: 0.3}})
	s.AppendBalloon(types.BalloonEntry{Number: 1, Parameter: "Width | outer", Value: "12.5", Position: types.Position{X: 0.5, Y: 0.25}})
	return Build(s, generated)
}

func TestBuild_OrdersByNumber(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, Title, r.Title)
	assert.Equal(t, "bracket.pdf", r.Header.SourceFile)
	assert.Equal(t, 2, r.Header.Balloons)
	require.Len(t, r.Entries, 2)
	assert.Equal(t, 1, r.Entries[0].Number)
	assert.Equal(t, []string{"1", "Width | outer", "12.5", "0.5000", "0.2500"}, r.Rows()[0])
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{
		"":         FormatJSON,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"csv":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"htm":      FormatHTML,
	} {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatJSON))
	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sess-1", decoded.Header.Session)
	assert.Len(t, decoded.Entries, 2)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatYAML))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, Title, decoded["title"])
	assert.Len(t, decoded["entries"], 2)
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatCSV))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "2", records[2][0])
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())
	assert.True(t, strings.HasPrefix(md, "# Inspection Report\n"))
	assert.Contains(t, md, "- Source file: bracket.pdf")
	assert.Contains(t, md, "| No. | Parameter | Value | X | Y |")
	assert.Contains(t, md, `Width \| outer`)

	empty := Markdown(Build(session.New("empty"), generated))
	assert.Contains(t, empty, "_No balloons recorded._")
	assert.NotContains(t, empty, "| No. |")
}

func TestWrite_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatHTML))
	out := buf.String()
	assert.Contains(t, out, "<title>Inspection Report</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<th>Parameter</th>")
	assert.Contains(t, out, "<td>Height</td>")
}
