package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheGoumble/secure-streaming/internal/chat"
	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

var chatCmd = &cobra.Command{
	Use:   "chat <room>",
	Short: "Join a stream's chat room",
	Long: `Connects to the chat room of the named streamer. Inbound messages
are printed to stdout; lines read from stdin are sent to the room.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	username, err := requireUsername()
	if err != nil {
		return err
	}
	roomID := args[0]

	channel, err := chat.Open(cmd.Context(), viper.GetString("relay.url"), roomID, username)
	if err != nil {
		return err
	}
	defer channel.Close()

	go func() {
		for msg := range channel.Messages() {
			prefix := msg.Sender
			if msg.Sender == wire.SystemSender {
				prefix = "*"
			}
			fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), prefix, msg.Text)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := channel.Send(text); err != nil {
			log.Warn().Err(err).Msg("Message not sent")
		}
	}
	return scanner.Err()
}
