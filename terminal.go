package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shindensen_client/actions"
	"shindensen_client/client"
	"shindensen_client/errors"
	"shindensen_client/helpers"
	"shindensen_client/schemas"
	"shindensen_client/state"

	pkgerrors "github.com/pkg/errors"
)

type command struct {
	name string
	arg  string
}

// parseCommand splits a terminal line. Lines not starting with a slash are messages.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}
	}
	if !strings.HasPrefix(line, "/") {
		return command{name: "say", arg: line}
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}
}

type uploadResult struct {
	chatID int64
	file   schemas.FilePayload
	err    error
}

type terminal struct {
	out      io.Writer
	client   *client.Client
	store    *state.Store
	uploader *helpers.Uploader
	uploads  chan uploadResult
}

func newTerminal(out io.Writer, c *client.Client, store *state.Store) *terminal {
	return &terminal{
		out:     out,
		client:  c,
		store:   store,
		uploads: make(chan uploadResult, 4),
	}
}

func (t *terminal) println(format string, args ...interface{}) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

// handleLine runs one command. It returns false when the session should end.
func (t *terminal) handleLine(ctx context.Context, line string) bool {
	cmd := parseCommand(line)
	var err error

	switch cmd.name {
	case "":
		return true
	case "quit", "exit":
		return false
	case "chat":
		if cmd.arg == "" {
			t.println("usage: /chat <username>")
			return true
		}
		err = t.store.StartChatWith(cmd.arg, t.client)
	case "open":
		id, perr := strconv.ParseInt(cmd.arg, 10, 64)
		if perr != nil {
			t.println("usage: /open <chat id>")
			return true
		}
		if !t.store.SelectChat(id) {
			t.println("chat %d is not loaded yet", id)
		}
		t.printHistory(id)
		err = t.client.GetHistory(id)
	case "chats":
		t.printChats()
	case "file":
		err = t.upload(ctx, cmd.arg)
	case "say":
		id, ok := t.store.OpenChat()
		if !ok {
			t.println("no open chat: use /chat or /open first")
			return true
		}
		err = t.client.SendMessage(id, cmd.arg, nil)
	default:
		t.println("unknown command /%s", cmd.name)
	}

	if err != nil {
		t.println("error: %v", err)
	}
	return true
}

func (t *terminal) upload(ctx context.Context, path string) error {
	if t.uploader == nil {
		return pkgerrors.New("attachments are not configured")
	}
	chatID, ok := t.store.OpenChat()
	if !ok {
		return pkgerrors.New("no open chat")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	go func() {
		defer f.Close()
		file, err := t.uploader.Upload(ctx, path, f, "")
		select {
		case t.uploads <- uploadResult{chatID: chatID, file: file, err: err}:
		case <-ctx.Done():
		}
	}()
	t.println("uploading %s ...", path)
	return nil
}

func (t *terminal) attach(res uploadResult) {
	if res.err != nil {
		t.println("upload failed: %v", res.err)
		return
	}
	if err := t.client.SendMessage(res.chatID, "", []schemas.FilePayload{res.file}); err != nil {
		t.println("error: %v", err)
	}
}

func (t *terminal) render(list []actions.Action) {
	for _, a := range list {
		if line := t.describe(a); line != "" {
			t.println("%s", line)
		}
	}
}

// describe turns an action into a terminal line, or nothing for actions
// the user does not need to see.
func (t *terminal) describe(a actions.Action) string {
	switch v := a.(type) {
	case actions.Authenticated:
		return "logged in as " + v.Username
	case actions.Chats:
		return fmt.Sprintf("%d chats loaded", len(v.Chats))
	case actions.NewMessage:
		return t.formatMessage(v.Message)
	case actions.InitiateChat:
		return fmt.Sprintf("opened chat %d (%s) with %s", v.Result.ChatID, v.Result.Status, t.store.ChatName(v.Result.ChatID))
	case actions.History:
		if id, ok := t.store.OpenChat(); ok && id == v.ChatID {
			return fmt.Sprintf("%d messages in %s", len(v.Messages), t.store.ChatName(v.ChatID))
		}
	case actions.UserNotFound:
		if v.Username != "" {
			return "no user named " + v.Username
		}
	case *errors.Failure:
		return "error: " + v.Error()
	}
	return ""
}

func (t *terminal) formatMessage(msg schemas.ChatMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:", t.store.ChatName(msg.ChatID), t.store.UserName(msg.SenderID))
	if msg.Content != nil {
		b.WriteString(" " + *msg.Content)
	}
	for _, f := range msg.Files {
		fmt.Fprintf(&b, " <%s %s>", f.Type, f.Filename)
	}
	return b.String()
}

func (t *terminal) printHistory(chatID int64) {
	for _, msg := range t.store.Messages(chatID) {
		t.println("%s", t.formatMessage(msg))
	}
}

func (t *terminal) printChats() {
	chats := t.store.Chats()
	if len(chats) == 0 {
		t.println("no chats")
		return
	}
	for _, chat := range chats {
		t.println("%4d  %-24s %d messages", chat.ID, t.store.ChatName(chat.ID), t.store.MessageCount(chat.ID))
	}
}
