package gdt

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	DefaultCropWidth  = 200
	DefaultCropHeight = 50
)

// Cropper cuts a fixed-size window around a click point.
type Cropper struct {
	Width  int
	Height int
}

func NewCropper(width, height int) Cropper {
	if width <= 0 {
		width = DefaultCropWidth
	}
	if height <= 0 {
		height = DefaultCropHeight
	}
	return Cropper{Width: width, Height: height}
}

// Window returns the source rectangle for a click at (x, y), centred on the
// click with its origin clamped to be non-negative.
func (c Cropper) Window(x, y int) image.Rectangle {
	x0 := max(0, x-c.Width/2)
	y0 := max(0, y-c.Height/2)
	return image.Rect(x0, y0, x0+c.Width, y0+c.Height)
}

// Crop copies the window for (x, y) out of src. The result is always exactly
// Width x Height; parts of the window beyond src stay transparent.
func (c Cropper) Crop(src image.Image, x, y int) (*image.RGBA, image.Rectangle) {
	win := c.Window(x, y)
	bounds := src.Bounds()
	win = win.Add(bounds.Min)
	dst := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(dst, dst.Bounds(), src, win.Min, draw.Src)
	return dst, win.Sub(bounds.Min)
}

// CropPNG crops and encodes the result as PNG.
func (c Cropper) CropPNG(src image.Image, x, y int) ([]byte, image.Rectangle, error) {
	img, win := c.Crop(src, x, y)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, win, fmt.Errorf("encode crop: %w", err)
	}
	return buf.Bytes(), win, nil
}
