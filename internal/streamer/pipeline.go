package streamer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/capture"
	"github.com/TheGoumble/secure-streaming/pkg/framecrypt"
)

// framePipeline drives capture -> JPEG encode -> encrypt -> send at a fixed
// cadence while the owning session is live. Delivery is latest-effort: no
// queueing, no acks, and a tick that cannot transmit drops its frame.
//
// The loop is a single goroutine, so frames reach the wire in capture order
// and ticks never overlap; a tick that runs long simply collapses the timer
// values it missed.
type framePipeline struct {
	device    capture.Device
	transport *videoTransport
	key       []byte
	interval  time.Duration
	quality   int
	maxWidth  int

	sized  bool
	width  int
	height int

	framesSent    uint64
	framesDropped uint64
}

// run blocks until ctx is canceled (normal stop) or the socket dies
// mid-stream. A dead socket is reported as a nil error: a live session
// ending is an expected end-of-life event, handled by the session as a
// transition to Stopped.
func (p *framePipeline) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may have fired between the tick and now; never start
			// cipher work for a session that is shutting down.
			if ctx.Err() != nil {
				return
			}
			if alive := p.tick(ctx); !alive {
				return
			}
		}
	}
}

// tick processes one timer fire. Returns false only when the socket is dead
// and the session should end.
func (p *framePipeline) tick(ctx context.Context) bool {
	frame, err := p.device.Frame(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, capture.ErrDeviceClosed) {
			return false
		}
		log.Warn().Err(err).Msg("Frame capture failed, dropping tick")
		p.framesDropped++
		return true
	}

	// A device that is not yet producing frames yields zero dimensions.
	// Expected during warmup, not an error.
	if frame == nil || frame.Bounds().Dx() == 0 || frame.Bounds().Dy() == 0 {
		return true
	}

	// The output canvas is sized once, from the first frame the device
	// delivers at its native resolution; that frame is still transmitted.
	if !p.sized {
		p.sized = true
		p.width = frame.Bounds().Dx()
		p.height = frame.Bounds().Dy()
		log.Debug().
			Int("width", p.width).
			Int("height", p.height).
			Msg("Output canvas sized from first device frame")
	}

	encoded, err := capture.EncodeJPEG(frame, p.quality, p.maxWidth)
	if err != nil {
		log.Warn().Err(err).Msg("Frame encode failed, dropping frame")
		p.framesDropped++
		return true
	}

	payload, err := framecrypt.Encrypt(encoded, p.key)
	if err != nil {
		// A single bad frame must not abort the session.
		log.Warn().Err(err).Msg("Frame encryption failed, dropping frame")
		p.framesDropped++
		return true
	}

	sent, err := p.transport.Send(payload)
	if err != nil {
		log.Debug().Err(err).Msg("Video socket send failed, ending stream")
		return false
	}
	if sent {
		p.framesSent++
	} else {
		p.framesDropped++
	}
	return true
}
