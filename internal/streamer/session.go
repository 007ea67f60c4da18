// Package streamer implements the encrypted streaming client: the session
// key handshake with the relay, the capture-to-wire frame pipeline, and the
// session state machine that gates when frames may be transmitted.
package streamer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/capture"
)

// ErrAlreadyStarted is returned by Start on any session that has left Idle.
// The call is a no-op: it never opens a second socket or reuses a key. A
// stopped or failed session cannot be resurrected; construct a new one.
var ErrAlreadyStarted = errors.New("streamer: session already started")

// Config holds the tunables of one streaming session.
type Config struct {
	// RelayURL is the relay's base HTTP URL, e.g. http://localhost:8080.
	RelayURL string

	// FrameInterval is the capture cadence. Default 200ms (5 fps).
	FrameInterval time.Duration

	// JPEGQuality trades size for fidelity; kept low so encrypted payloads
	// stay under relay message-size limits. Default 50.
	JPEGQuality int

	// MaxFrameWidth downscales wider frames before encoding. 0 disables.
	MaxFrameWidth int

	// HandshakeTimeout bounds the video socket dial. Default 30s.
	HandshakeTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.FrameInterval <= 0 {
		c.FrameInterval = 200 * time.Millisecond
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = capture.DefaultJPEGQuality
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 30 * time.Second
	}
}

// DeviceFactory acquires the capture device once the session needs it.
// Acquisition failures are surfaced as DeviceError and fail the attempt.
type DeviceFactory func(ctx context.Context) (capture.Device, error)

// Session is one streamer's broadcast attempt, identified by username. It
// exclusively owns its key, socket, device and timer; nothing is shared
// across sessions. The zero value is not usable; call NewSession.
type Session struct {
	username   string
	cfg        Config
	newDevice  DeviceFactory
	httpClient *http.Client

	mu        sync.Mutex
	state     SessionState
	reason    string
	key       []byte
	transport *videoTransport
	device    capture.Device
	cancel    context.CancelFunc
	torn      bool
}

// NewSession creates an idle session for the given identity.
func NewSession(username string, cfg Config, newDevice DeviceFactory) (*Session, error) {
	if username == "" {
		return nil, errors.New("streamer: username must not be empty")
	}
	if newDevice == nil {
		return nil, errors.New("streamer: device factory is required")
	}
	cfg.applyDefaults()
	return &Session{
		username:   username,
		cfg:        cfg,
		newDevice:  newDevice,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		state:      StateIdle,
	}, nil
}

// State returns the current state and, for failed sessions, the reason.
// Queryable at all times so a caller can render status.
func (s *Session) State() (SessionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.reason
}

// Start runs the session to completion: key handshake, device acquisition,
// socket connect, then the frame pipeline until Stop is called or the relay
// closes the connection. It returns nil when the session ended as Stopped
// and the failure error when it ended as Failed. Calling Start on a session
// that has already left Idle is a no-op returning ErrAlreadyStarted.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateAcquiringKey
	s.mu.Unlock()

	log.Info().Str("session_id", s.username).Msg("Starting streaming session")

	key, err := registerSessionKey(runCtx, s.httpClient, s.cfg.RelayURL, s.username)
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.key = key
	s.state = StateAcquiringDevice
	s.mu.Unlock()

	device, err := s.newDevice(runCtx)
	if err != nil {
		return s.fail(&DeviceError{Err: err})
	}
	s.mu.Lock()
	s.device = device
	s.state = StateConnecting
	s.mu.Unlock()

	transport, err := dialVideo(runCtx, s.cfg.RelayURL, s.username, s.cfg.HandshakeTimeout)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	if s.torn {
		// Stop raced the dial; never go live on a torn-down session.
		s.mu.Unlock()
		transport.Close()
		return nil
	}
	s.transport = transport
	s.state = StateLive
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.username).
		Dur("frame_interval", s.cfg.FrameInterval).
		Msg("Session live, streaming frames")

	// The relay sends nothing on the video channel; a completed read means
	// it closed the connection. No automatic reconnect: restart decisions
	// belong to the caller.
	go func() {
		transport.watchClose()
		cancel()
	}()

	pipeline := &framePipeline{
		device:    device,
		transport: transport,
		key:       key,
		interval:  s.cfg.FrameInterval,
		quality:   s.cfg.JPEGQuality,
		maxWidth:  s.cfg.MaxFrameWidth,
	}
	pipeline.run(runCtx)

	log.Info().
		Str("session_id", s.username).
		Uint64("frames_sent", pipeline.framesSent).
		Uint64("frames_dropped", pipeline.framesDropped).
		Msg("Streaming session ended")

	s.finish(StateStopped, "")
	return nil
}

// Stop ends the session. Idempotent. Teardown order is fixed: cancel the
// frame timer, close the socket, release the device, clear the key — so no
// frame send can race a closing socket.
func (s *Session) Stop() {
	s.finish(StateStopped, "")
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	stopped := s.torn && s.state == StateStopped
	s.mu.Unlock()
	if stopped {
		// Stop preempted the attempt; the canceled step is not a failure.
		return nil
	}

	s.finish(StateFailed, err.Error())
	log.Error().
		Str("session_id", s.username).
		Str("reason", err.Error()).
		Msg("Streaming session failed")
	return err
}

// finish performs teardown exactly once and records the terminal state.
// A session that already reached a terminal state keeps it.
func (s *Session) finish(state SessionState, reason string) {
	s.mu.Lock()
	if !s.state.terminal() {
		s.state = state
		s.reason = reason
	}
	if s.torn {
		s.mu.Unlock()
		return
	}
	s.torn = true
	cancel := s.cancel
	transport := s.transport
	device := s.device
	s.transport = nil
	s.device = nil
	s.key = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if transport != nil {
		if err := transport.Close(); err != nil {
			log.Debug().Err(err).Msg("Video socket close error")
		}
	}
	if device != nil {
		if err := device.Close(); err != nil {
			log.Warn().Err(err).Msg("Capture device release error")
		}
	}
}

// Username returns the session identity, which is also the chat room id
// shared with this streamer's viewers.
func (s *Session) Username() string { return s.username }

// Describe renders a one-line status for CLI display.
func (s *Session) Describe() string {
	state, reason := s.State()
	if state == StateFailed {
		return fmt.Sprintf("%s (%s)", state, reason)
	}
	return state.String()
}
