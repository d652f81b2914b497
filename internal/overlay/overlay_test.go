package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"ballooner/internal/session"
	"ballooner/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	entries := []types.BalloonEntry{
		{Number: 1, Position: types.Position{X: 0.5, Y: 0.25}},
		{Number: 2, Position: types.Position{X: 1, Y: 1}},
	}
	markers := Project(entries, 800, 600)
	assert.Equal(t, []types.Marker{{Number: 1, X: 400, Y: 150}, {Number: 2, X: 800, Y: 600}}, markers)
}

func TestProjector_Reposition(t *testing.T) {
	s := session.New("o")
	s.AppendBalloon(types.BalloonEntry{Number: 1, Position: types.Position{X: 0.1, Y: 0.1}})

	p := NewProjector()
	p.Reposition(s)
	assert.Empty(t, s.Markers(), "no page yet")

	s.SetPage(session.Page{Number: 1, Image: image.NewRGBA(image.Rect(0, 0, 1000, 500))})
	p.Reposition(s)
	assert.Equal(t, []types.Marker{{Number: 1, X: 100, Y: 50}}, s.Markers())
}

func TestRenderPreview(t *testing.T) {
	s := session.New("o")
	_, err := RenderPreview(s, time.Now())
	assert.ErrorIs(t, err, session.ErrNoPage)

	page := image.NewRGBA(image.Rect(0, 0, 320, 200))
	for i := range page.Pix {
		page.Pix[i] = 0xff
	}
	s.SetPage(session.Page{Number: 1, Image: page})
	s.AppendBalloon(types.BalloonEntry{Number: 7, Position: types.Position{X: 0.5, Y: 0.5}})
	NewProjector().Reposition(s)
	now := time.Now()
	s.AddHighlight(types.NewHighlight("h", image.Rect(10, 10, 210, 60), now.Add(time.Second)))

	data, err := RenderPreview(s, now)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())

	assert.Equal(t, color.RGBAModel.Convert(highlightColor), color.RGBAModel.Convert(img.At(10, 10)))
	assert.Equal(t, color.RGBAModel.Convert(markerFill), color.RGBAModel.Convert(img.At(160-markerRadius+1, 100)))
	assert.Equal(t, color.RGBAModel.Convert(color.White), color.RGBAModel.Convert(img.At(300, 190)))
}
