// Package cli implements the streamer command-line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "streamer",
	Short: "Encrypted webcam streaming client",
	Long: `Streams live video to a relay server over an encrypted WebSocket
channel. Each session registers a fresh AES-256 key with the relay before
the first frame is transmitted; viewers watch the decrypted stream through
the relay and share a chat room named after the streamer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		if viper.GetBool("debug") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.streamer/config.yaml)")
	rootCmd.PersistentFlags().String("relay-url", "http://localhost:8080", "relay server base URL")
	rootCmd.PersistentFlags().String("username", "", "session identity (required)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	viper.BindPFlag("relay.url", rootCmd.PersistentFlags().Lookup("relay-url"))
	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.streamer")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("STREAMER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("Configuration loaded")
	}
}

func requireUsername() (string, error) {
	username := viper.GetString("username")
	if username == "" {
		return "", fmt.Errorf("--username is required")
	}
	return username, nil
}
