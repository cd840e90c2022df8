package main

import (
	"os"
	"os/signal"
	"syscall"

	"shindensen_client/devserver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Start an in-memory development backend",
	Long: `Serves the chat API (login, chats, history, users, initiate) and the
message WebSocket from memory. Everything is lost when it stops.`,
	Args: cobra.NoArgs,
	RunE: runDevServer,
}

func runDevServer(cmd *cobra.Command, args []string) error {
	srv := devserver.New([]byte(cfg.DevServer.JWTSecret), cfg.DevServer.TokenTTL(), logger.Named("devserver"))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		shutdownOnSignal(sig, done, srv.Shutdown)
	}()

	err := srv.Listen(cfg.DevServer.Port)
	close(done)
	<-stopped
	return err
}

// shutdownOnSignal calls shutdown on the first signal. It returns without
// calling it once done is closed.
func shutdownOnSignal(sig <-chan os.Signal, done <-chan struct{}, shutdown func() error) {
	select {
	case <-sig:
		logger.Info("shutting down dev backend")
		if err := shutdown(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	case <-done:
	}
}
