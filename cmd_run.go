package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shindensen_client/client"
	"shindensen_client/errors"
	"shindensen_client/helpers"
	"shindensen_client/schemas"
	"shindensen_client/socket"
	"shindensen_client/state"
	"shindensen_client/transport"

	"github.com/cenkalti/backoff/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runUser string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a terminal chat session",
	Long: `Logs in, loads chats and keeps the message socket open.

Commands:
  /chat <username>   start or reopen a direct chat
  /open <chat id>    switch to a chat and show its history
  /chats             list chats
  /file <path>       upload and send an attachment to the open chat
  /quit              leave
Any other line is sent to the open chat.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVarP(&runUser, "user", "u", "", "username (overrides config)")
}

func runSession(cmd *cobra.Command, args []string) error {
	username := cfg.Username
	if runUser != "" {
		username = runUser
	}
	if username == "" {
		return pkgerrors.New("no username: set it in the config or pass --user")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	http := transport.NewHTTP(cfg.APIURL, cfg.RequestTimeout(), cfg.ChunkSize, logger.Named("http"))
	defer http.Close()
	ws := transport.NewWebSocket(cfg.WSURL, cfg.RequestTimeout(), logger.Named("ws"))

	c := client.New(http, ws, logger.Named("client"), clientOptions()...)
	defer c.Close()

	store := state.New(logger.Named("state"), state.WithEagerHistory(cfg.EagerHistory))
	store.SetUsername(username)

	if cfg.Redis.Addr != "" {
		dir := helpers.NewUserDirectory(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		defer dir.Close()
		restoreUsers(ctx, dir, store, c)
		defer saveUsers(dir, store)
	}

	term := newTerminal(cmd.OutOrStdout(), c, store)
	if cfg.MinIO.Endpoint != "" {
		uploader, err := newUploader(ctx)
		if errors.HandleBasicError(logger, "attachments disabled", err) {
			term.println("attachments disabled: %v", err)
		} else {
			term.uploader = uploader
		}
	}

	if err := c.Authorize(username); err != nil {
		return err
	}

	lines := readLines(ctx, cmd.InOrStdin())
	ticker := time.NewTicker(cfg.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || !term.handleLine(ctx, line) {
				return nil
			}
		case res := <-term.uploads:
			term.attach(res)
		case <-ticker.C:
			list := c.Tick()
			errors.HandleBasicError(logger, "fold", store.ApplyAll(list, c))
			term.render(list)
		}
	}
}

func clientOptions() []client.Option {
	opts := []client.Option{
		client.WithEventBudget(cfg.EventBudget),
		client.WithSocketOptions(socket.WithBudget(cfg.DrainBudget)),
	}
	if cfg.Reconnect.Backoff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = cfg.Reconnect.Initial()
		b.MaxInterval = cfg.Reconnect.Max()
		opts = append(opts, client.WithSocketOptions(socket.WithBackoff(b)))
	}
	return opts
}

// userSnapshot is the persisted user directory.
type userSnapshot interface {
	Load(ctx context.Context) ([]schemas.UserInfo, int, error)
	Save(ctx context.Context, users []schemas.UserInfo) error
}

func restoreUsers(ctx context.Context, dir userSnapshot, store *state.Store, c *client.Client) {
	users, skipped, err := dir.Load(ctx)
	if errors.HandleBasicError(logger, "load user directory", err) {
		return
	}
	if skipped > 0 {
		logger.Warn("user directory entries skipped", zap.Int("skipped", skipped))
	}
	store.Seed(users)
	for _, u := range users {
		c.MarkKnown(u.ID)
	}
	logger.Info("user directory restored", zap.Int("users", len(users)))
}

func saveUsers(dir userSnapshot, store *state.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errors.HandleBasicError(logger, "save user directory", dir.Save(ctx, store.Users()))
}

// readLines feeds r line by line until it ends or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
