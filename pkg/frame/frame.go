// Package frame defines the pixel-buffer frame type shared by all
// perception components, and the interface frame sources implement.
package frame

import (
	"errors"
	"fmt"
	"image"
)

// ErrNotReady is returned by a Source when the underlying camera has
// insufficient buffered data to produce a frame. Callers should skip
// the tick and try again later.
var ErrNotReady = errors.New("frame: source not ready")

// Source provides the current video frame on demand.
type Source interface {
	// Capture returns the most recent frame as an RGBA pixel buffer.
	// Returns ErrNotReady if no frame is available yet.
	Capture() (*Frame, error)

	// Close releases the underlying camera resources.
	Close() error
}

// Frame is an immutable RGBA pixel grid. Pix holds 4 bytes per pixel
// (R, G, B, A) in row-major order.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// New creates a frame from a raw RGBA buffer.
// The buffer must contain exactly width*height*4 bytes.
func New(pix []byte, width, height int) (*Frame, error) {
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("frame: buffer size %d does not match %dx%d RGBA", len(pix), width, height)
	}
	return &Frame{Pix: pix, Width: width, Height: height}, nil
}

// FromImage converts any image.Image into a Frame.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 {
		pix := make([]byte, len(rgba.Pix))
		copy(pix, rgba.Pix)
		return &Frame{Pix: pix, Width: w, Height: h}
	}

	pix := make([]byte, w*h*4)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pix[i] = byte(r >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(b >> 8)
			pix[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return &Frame{Pix: pix, Width: w, Height: h}
}

// RGB returns the red, green and blue channel values at (x, y).
func (f *Frame) RGB(x, y int) (r, g, b byte) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Brightness returns the mean channel value at (x, y) as a float in [0, 255].
func (f *Frame) Brightness(x, y int) float64 {
	r, g, b := f.RGB(x, y)
	return (float64(r) + float64(g) + float64(b)) / 3.0
}

// Pixels returns the number of pixels in the frame.
func (f *Frame) Pixels() int {
	return f.Width * f.Height
}

// Valid reports whether the frame has a usable buffer and dimensions.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*4
}

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X, Y, W, H int
}

// Center returns the center point of the box.
func (b Box) Center() (x, y float64) {
	return float64(b.X) + float64(b.W)/2, float64(b.Y) + float64(b.H)/2
}

// Area returns the area of the box in pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// Overlaps reports whether two boxes intersect.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Union returns the smallest box enclosing both boxes.
func (b Box) Union(o Box) Box {
	x1 := min(b.X, o.X)
	y1 := min(b.Y, o.Y)
	x2 := max(b.X+b.W, o.X+o.W)
	y2 := max(b.Y+b.H, o.Y+o.H)
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
