// Package relay implements the relay server: it accepts session key
// registrations, terminates streamer video WebSockets and decrypts their
// frames, redistributes video to viewers as motion-JPEG, and hosts the chat
// rooms. Streamer username, chat room id and viewer stream name are the same
// string namespace.
package relay

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheGoumble/secure-streaming/pkg/config"
)

// Config is the relay service configuration.
type Config struct {
	Log   config.LogConfig `yaml:"log"`
	Relay ServerConfig     `yaml:"relay"`
}

// ServerConfig holds the relay's HTTP settings.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address" env:"RELAY_LISTEN_ADDRESS" default:":8080"`

	// ReadLimit caps a single inbound WebSocket message. Encrypted JPEG
	// frames at the streamer's default quality stay well under this.
	ReadLimit int64 `yaml:"read_limit" env:"RELAY_READ_LIMIT" default:"8388608"`

	// ViewerFrameInterval paces the MJPEG fan-out loop.
	ViewerFrameInterval time.Duration `yaml:"viewer_frame_interval" default:"50ms"`
}

// Server wires the relay's registries and HTTP surface together.
type Server struct {
	cfg      ServerConfig
	keys     *KeyRegistry
	streams  *StreamRegistry
	chat     *chatHub
	upgrader websocket.Upgrader
}

// NewServer creates a relay server with empty registries.
func NewServer(cfg ServerConfig) *Server {
	if cfg.ViewerFrameInterval <= 0 {
		cfg.ViewerFrameInterval = 50 * time.Millisecond
	}
	return &Server{
		cfg:     cfg,
		keys:    NewKeyRegistry(),
		streams: NewStreamRegistry(),
		chat:    newChatHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Streamers and viewers connect from arbitrary origins; there
			// is no cookie-based auth to protect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the relay's HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/session", s.handleRegisterSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/{sessionId}/key", s.handleGetSessionKey).Methods(http.MethodGet)

	r.HandleFunc("/stream", s.handleStream)
	r.HandleFunc("/chat", s.handleChat)
	r.HandleFunc("/view/{username}", s.handleView).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
