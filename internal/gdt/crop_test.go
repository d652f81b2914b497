package gdt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledPage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCropper_Window(t *testing.T) {
	c := NewCropper(0, 0)
	assert.Equal(t, image.Rect(400, 275, 600, 325), c.Window(500, 300))
	assert.Equal(t, image.Rect(0, 0, 200, 50), c.Window(10, 5))
	assert.Equal(t, image.Rect(0, 275, 200, 325), c.Window(90, 300))
}

func TestCropper_CropAlwaysFullSize(t *testing.T) {
	page := filledPage(300, 120, color.RGBA{R: 255, A: 255})
	c := NewCropper(200, 50)

	cases := []struct {
		name string
		x, y int
	}{
		{"centre", 150, 60},
		{"top left corner", 0, 0},
		{"bottom right corner", 299, 119},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img, win := c.Crop(page, tc.x, tc.y)
			assert.Equal(t, 200, img.Bounds().Dx())
			assert.Equal(t, 50, img.Bounds().Dy())
			assert.GreaterOrEqual(t, win.Min.X, 0)
			assert.GreaterOrEqual(t, win.Min.Y, 0)
		})
	}
}

func TestCropper_OutsidePixelsTransparent(t *testing.T) {
	page := filledPage(300, 120, color.RGBA{R: 255, A: 255})
	c := NewCropper(200, 50)

	img, win := c.Crop(page, 299, 119)
	assert.Equal(t, image.Rect(199, 94, 399, 144), win)

	_, _, _, a := img.At(0, 0).RGBA()
	assert.NotZero(t, a, "inside pixel copied")
	_, _, _, a = img.At(199, 49).RGBA()
	assert.Zero(t, a, "outside pixel transparent")
}

func TestCropper_CropPNG(t *testing.T) {
	page := filledPage(640, 480, color.White)
	data, win, err := NewCropper(200, 50).CropPNG(page, 320, 240)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(220, 215, 420, 265), win)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 50), decoded.Bounds())
}

func TestDecodePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, filledPage(10, 20, color.Black)))

	img, format, err := DecodePage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 10, img.Bounds().Dx())

	_, _, err = DecodePage(nil)
	assert.Error(t, err)
	_, _, err = DecodePage([]byte("not an image"))
	assert.Error(t, err)
}
