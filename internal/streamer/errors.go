package streamer

import "fmt"

// KeyRegistrationError reports a failed key handshake with the relay. The
// detail carries the relay's response body verbatim so the caller can render
// it without interpretation.
type KeyRegistrationError struct {
	Detail string
}

func (e *KeyRegistrationError) Error() string {
	return fmt.Sprintf("key registration failed: %s", e.Detail)
}

// DeviceError reports that the capture device was denied or unavailable.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device error: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// SocketError reports a video socket failure before the session reached
// Live. Post-Live socket failures end the session as Stopped, not Failed.
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("video socket %s failed: %v", e.Op, e.Err)
}

func (e *SocketError) Unwrap() error { return e.Err }
