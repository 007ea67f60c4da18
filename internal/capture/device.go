// Package capture defines the boundary to the frame source and the JPEG
// encoding step of the outbound pipeline. The capture device itself is owned
// by the host platform; this package only consumes frames on demand.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// ErrDeviceClosed is returned by Frame after the device has been released.
var ErrDeviceClosed = errors.New("capture: device closed")

// Device supplies raw video frames on demand. Frame may return a nil image
// or an image with zero-size bounds while the device is still warming up;
// that is expected and means "skip this tick", not an error. Any other
// failure is a DeviceError and fatal to the streaming attempt.
type Device interface {
	// Frame returns the current frame. The returned image must not be
	// mutated by the device after return.
	Frame(ctx context.Context) (image.Image, error)

	// Close releases the underlying hardware. Idempotent.
	Close() error
}

// DefaultJPEGQuality matches the reduced quality the streamer uses to keep
// encrypted payloads below typical WebSocket message-size limits.
const DefaultJPEGQuality = 50

// EncodeJPEG encodes a frame at the given quality, downscaling first when
// the frame is wider than maxWidth (0 disables scaling). Aspect ratio is
// preserved.
func EncodeJPEG(frame image.Image, quality, maxWidth int) ([]byte, error) {
	if frame == nil {
		return nil, errors.New("capture: nil frame")
	}
	bounds := frame.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("capture: zero-size frame")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	if maxWidth > 0 && bounds.Dx() > maxWidth {
		frame = downscale(frame, maxWidth)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("capture: jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

func downscale(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height == 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
