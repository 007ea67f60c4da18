package capture

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestPattern_WarmupThenFrames(t *testing.T) {
	dev := NewTestPattern(640, 480, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		frame, err := dev.Frame(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, frame.Bounds().Dx(), "warmup frame %d should be zero-size", i)
	}

	frame, err := dev.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 640, frame.Bounds().Dx())
	assert.Equal(t, 480, frame.Bounds().Dy())
}

func TestTestPattern_FramesDiffer(t *testing.T) {
	dev := NewTestPattern(140, 20, 0)
	ctx := context.Background()

	first, err := dev.Frame(ctx)
	require.NoError(t, err)
	second, err := dev.Frame(ctx)
	require.NoError(t, err)

	a, err := EncodeJPEG(first, 90, 0)
	require.NoError(t, err)
	b, err := EncodeJPEG(second, 90, 0)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b), "pattern should move between frames")
}

func TestTestPattern_ClosedDeviceFails(t *testing.T) {
	dev := NewTestPattern(64, 48, 0)
	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close()) // idempotent

	_, err := dev.Frame(context.Background())
	assert.ErrorIs(t, err, ErrDeviceClosed)
}

func TestEncodeJPEG_ProducesDecodableImage(t *testing.T) {
	dev := NewTestPattern(320, 240, 0)
	frame, err := dev.Frame(context.Background())
	require.NoError(t, err)

	data, err := EncodeJPEG(frame, 50, 0)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
}

func TestEncodeJPEG_Downscales(t *testing.T) {
	dev := NewTestPattern(1280, 720, 0)
	frame, err := dev.Frame(context.Background())
	require.NoError(t, err)

	data, err := EncodeJPEG(frame, 50, 640)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, decoded.Bounds().Dx())
	assert.Equal(t, 360, decoded.Bounds().Dy())
}

func TestEncodeJPEG_RejectsEmptyFrames(t *testing.T) {
	_, err := EncodeJPEG(nil, 50, 0)
	assert.Error(t, err)

	_, err = EncodeJPEG(image.NewRGBA(image.Rect(0, 0, 0, 0)), 50, 0)
	assert.Error(t, err)
}
