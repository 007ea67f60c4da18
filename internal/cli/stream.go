package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheGoumble/secure-streaming/internal/capture"
	"github.com/TheGoumble/secure-streaming/internal/chat"
	"github.com/TheGoumble/secure-streaming/internal/streamer"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Start an encrypted streaming session",
	Long: `Registers a fresh session key with the relay, acquires the capture
device and streams encrypted frames until interrupted. The session's chat
room (named after the username) is joined alongside the video stream.`,
	RunE: runStream,
}

func init() {
	streamCmd.Flags().Duration("interval", 200*time.Millisecond, "frame capture interval")
	streamCmd.Flags().Int("quality", capture.DefaultJPEGQuality, "JPEG quality (1-100)")
	streamCmd.Flags().Int("max-width", 0, "downscale frames wider than this (0 disables)")
	streamCmd.Flags().Int("pattern-width", 640, "synthetic device native width")
	streamCmd.Flags().Int("pattern-height", 480, "synthetic device native height")
	streamCmd.Flags().Bool("no-chat", false, "do not join the session chat room")

	viper.BindPFlag("stream.interval", streamCmd.Flags().Lookup("interval"))
	viper.BindPFlag("stream.quality", streamCmd.Flags().Lookup("quality"))
	viper.BindPFlag("stream.max_width", streamCmd.Flags().Lookup("max-width"))

	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	username, err := requireUsername()
	if err != nil {
		return err
	}
	relayURL := viper.GetString("relay.url")

	patternWidth, _ := cmd.Flags().GetInt("pattern-width")
	patternHeight, _ := cmd.Flags().GetInt("pattern-height")
	noChat, _ := cmd.Flags().GetBool("no-chat")

	// The capture device is owned by the host platform; this CLI ships the
	// synthetic pattern source. A camera integration plugs in here by
	// implementing capture.Device.
	newDevice := func(ctx context.Context) (capture.Device, error) {
		return capture.NewTestPattern(patternWidth, patternHeight, 1), nil
	}

	session, err := streamer.NewSession(username, streamer.Config{
		RelayURL:      relayURL,
		FrameInterval: viper.GetDuration("stream.interval"),
		JPEGQuality:   viper.GetInt("stream.quality"),
		MaxFrameWidth: viper.GetInt("stream.max_width"),
	}, newDevice)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Chat runs beside the video path with no ordering dependency on it.
	if !noChat {
		go runSessionChat(ctx, relayURL, username)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Stopping stream")
		session.Stop()
		cancel()
	}()

	if err := session.Start(ctx); err != nil {
		return err
	}

	state, _ := session.State()
	log.Info().Str("state", state.String()).Msg("Session finished")
	return nil
}

// runSessionChat joins the streamer's own room and logs inbound messages.
func runSessionChat(ctx context.Context, relayURL, username string) {
	channel, err := chat.Open(ctx, relayURL, username, username)
	if err != nil {
		log.Warn().Err(err).Msg("Chat unavailable, streaming continues without it")
		return
	}
	defer channel.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel.Messages():
			if !ok {
				return
			}
			log.Info().
				Str("sender", msg.Sender).
				Time("at", msg.Timestamp).
				Msg(msg.Text)
		}
	}
}
