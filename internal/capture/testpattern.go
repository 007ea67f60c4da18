package capture

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// TestPattern is a synthetic capture device producing a deterministic moving
// color-bar pattern. It stands in for a real camera in the CLI's synthetic
// mode and in tests.
//
// The first warmupFrames calls return a zero-size image, mimicking a real
// device that has been acquired but is not yet delivering frames.
type TestPattern struct {
	mu           sync.Mutex
	width        int
	height       int
	warmupFrames int
	tick         int
	closed       bool
}

// NewTestPattern creates a synthetic device with the given native
// resolution. warmupFrames controls how many initial frames are zero-size.
func NewTestPattern(width, height, warmupFrames int) *TestPattern {
	return &TestPattern{
		width:        width,
		height:       height,
		warmupFrames: warmupFrames,
	}
}

var bars = []color.RGBA{
	{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	{R: 0xff, G: 0xff, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	{R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	{R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
}

// Frame returns the next pattern frame, shifted one bar-width per call so
// successive frames differ.
func (d *TestPattern) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDeviceClosed
	}
	if d.tick < d.warmupFrames {
		d.tick++
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	d.tick++

	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	barWidth := d.width / len(bars)
	if barWidth == 0 {
		barWidth = 1
	}
	shift := (d.tick * barWidth) % d.width
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			bar := ((x + shift) / barWidth) % len(bars)
			img.SetRGBA(x, y, bars[bar])
		}
	}
	return img, nil
}

// Close marks the device released. Subsequent Frame calls fail.
func (d *TestPattern) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
