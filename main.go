package main

import (
	"fmt"

	"shindensen_client/config"
	"shindensen_client/errors"
	"shindensen_client/global"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debug      bool

	cfg    config.JSONConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shindensen",
	Short: "ShinDensen chat session client",
	Long: `ShinDensen talks to a chat backend over HTTP and a persistent WebSocket.

Run "shindensen run" for a terminal session, or "shindensen devserver" to
start a local backend to talk to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Debug = true
		}
		logger, err = global.NewLogger(cfg.LogDir, cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	rootCmd.AddCommand(runCmd, devserverCmd, uploadCmd)
}

func main() {
	errors.HandleFatalError(logger, rootCmd.Execute())
}
