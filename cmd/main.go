package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farellandr/eventpass/config"
	"github.com/farellandr/eventpass/internal/logging"
	"github.com/farellandr/eventpass/internal/server"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventpass",
		Short:         "Conference registration and ticketing server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().String("env-file", ".env", "Path to a dotenv file loaded before reading the environment")
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			envErr := godotenv.Load(envFile)

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			log := logging.New(cfg.LogLevel)
			if envErr != nil {
				event := log.Warn().Str("env_file", envFile)
				if errors.Is(envErr, fs.ErrNotExist) {
					event.Msg("env file not found, using process environment")
				} else {
					event.Err(envErr).Msg("failed to load env file")
				}
			}

			return server.Start(cfg, log)
		},
	}
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	_ = viper.BindPFlag("PORT", cmd.Flags().Lookup("port"))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("server failed to start")
	}
}
