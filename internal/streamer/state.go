package streamer

// SessionState is the lifecycle state of one streaming session. A session
// occupies exactly one state at a time and Stopped/Failed are terminal for
// that session value; restarting means constructing a new session.
type SessionState int

const (
	// StateIdle is the initial state before Start.
	StateIdle SessionState = iota

	// StateAcquiringKey covers key generation and relay registration.
	StateAcquiringKey

	// StateAcquiringDevice covers capture device acquisition.
	StateAcquiringDevice

	// StateConnecting covers the video socket dial.
	StateConnecting

	// StateLive means frames are being transmitted.
	StateLive

	// StateStopped is the terminal state after an explicit stop or a
	// relay-initiated close of a live session.
	StateStopped

	// StateFailed is the terminal state after an unrecoverable error; the
	// failure reason is retained for the caller.
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringKey:
		return "acquiring-key"
	case StateAcquiringDevice:
		return "acquiring-device"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// terminal reports whether the session can never transmit again.
func (s SessionState) terminal() bool {
	return s == StateStopped || s == StateFailed
}
