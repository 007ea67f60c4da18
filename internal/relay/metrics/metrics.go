// Package metrics defines the relay's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics collectors
var (
	// Video ingest

	FramesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_received_total",
			Help: "Total number of video frames received from streamers",
		},
		[]string{"status"},
	)

	FrameBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frame_bytes_total",
			Help: "Total decrypted frame bytes accepted",
		},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_streams",
			Help: "Number of streams currently publishing frames",
		},
	)

	// Key registration

	KeyRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_key_registrations_total",
			Help: "Total number of session key registration attempts",
		},
		[]string{"status"},
	)

	// Viewers

	ViewerConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_viewer_connections",
			Help: "Number of open MJPEG viewer connections",
		},
	)

	// Chat

	ChatConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_chat_connections",
			Help: "Number of open chat WebSocket connections",
		},
	)

	ChatMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_chat_messages_total",
			Help: "Total number of chat messages broadcast to rooms",
		},
	)
)
