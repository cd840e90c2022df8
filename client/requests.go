package client

import (
	"net/url"
	"strconv"

	"shindensen_client/global"
	"shindensen_client/helpers"
	"shindensen_client/schemas"
	"shindensen_client/tags"
	"shindensen_client/transport"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Authorize logs in as username. On success the credential is stored, the
// socket starts opening and Authenticated is published.
func (c *Client) Authorize(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	body := schemas.LoginSchema{Username: username}
	if err := global.Validator.Struct(body); err != nil {
		return errors.Wrap(err, "login")
	}
	return c.issue(tags.Authenticate, tags.Payload{Username: username}, fasthttp.MethodPost, "login", body)
}

// GetChats fetches the chat list.
func (c *Client) GetChats() error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	return c.issue(tags.ListChats, tags.Payload{}, fasthttp.MethodGet, "chats", nil)
}

// GetHistory fetches the full message history of chatID.
func (c *Client) GetHistory(chatID int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	if chatID <= 0 {
		return ErrInvalidID
	}
	path := "chats/" + strconv.FormatInt(chatID, 10) + "/messages"
	return c.issue(tags.GetHistory, tags.Payload{ChatID: chatID}, fasthttp.MethodGet, path, nil)
}

// SearchUser looks a user up by username. The answer is UserSearchResponse or UserNotFound.
func (c *Client) SearchUser(username string) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	if username == "" {
		return ErrEmptyUsername
	}
	return c.issue(tags.SearchUser, tags.Payload{Username: username}, fasthttp.MethodGet, "users/"+url.PathEscape(username), nil)
}

// RequestUser fetches user id unless it is already known or already being fetched.
func (c *Client) RequestUser(id int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	if id <= 0 {
		return ErrInvalidID
	}
	if !c.dedup.Begin(id) {
		return nil
	}
	if err := c.fetchUser(id); err != nil {
		c.dedup.Abandon(id)
		return err
	}
	return nil
}

// RefreshUser drops id from the known set and fetches it again.
func (c *Client) RefreshUser(id int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	c.dedup.Forget(id)
	return c.RequestUser(id)
}

// UserPending reports whether a lookup for id is in flight.
func (c *Client) UserPending(id int64) bool {
	return c.dedup.Pending(id)
}

func (c *Client) fetchUser(id int64) error {
	return c.issue(tags.GetUserByID, tags.Payload{UserID: id}, fasthttp.MethodGet, "users/"+strconv.FormatInt(id, 10), nil)
}

// InitiateChat opens (or finds) the direct chat with username.
func (c *Client) InitiateChat(username string) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	if username == "" {
		return ErrEmptyUsername
	}
	body := schemas.InitiateChatSchema{TargetUsername: username}
	return c.issue(tags.InitiateChat, tags.Payload{Username: username}, fasthttp.MethodPost, "chats/initiate", body)
}

// InitiateChatWithID opens (or finds) the direct chat with user id.
func (c *Client) InitiateChatWithID(id int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	if id <= 0 {
		return ErrInvalidID
	}
	body := schemas.InitiateChatSchema{TargetID: id}
	return c.issue(tags.InitiateChat, tags.Payload{UserID: id}, fasthttp.MethodPost, "chats/initiate", body)
}

// SendMessage writes a message to chatID over the socket. Sending while the
// socket is not open puts a failure on the bus instead of queueing.
func (c *Client) SendMessage(chatID int64, text string, files []schemas.FilePayload) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	c.socket.Send(chatID, text, files)
	return nil
}

func (c *Client) issue(op tags.Operation, payload tags.Payload, method, path string, body interface{}) error {
	req := transport.Request{Method: method, Path: path}
	if c.cred != nil {
		req.Headers = helpers.BearerHeaders(c.cred.Token)
	}
	if body != nil {
		raw, err := global.JSON.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s", op)
		}
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers[fasthttp.HeaderContentType] = "application/json"
		req.Body = raw
	}

	tag, err := c.tags.Issue(op, payload)
	if err != nil {
		return errors.Wrapf(err, "issue %s", op)
	}
	c.log.Debug("request issued", zap.String("tag", tag.ID), zap.Stringer("op", op), zap.String("path", path))
	c.http.Issue(tag.ID, req)
	return nil
}

// MarkKnown records ids as already resolved, e.g. users restored from a snapshot.
func (c *Client) MarkKnown(ids ...int64) {
	for _, id := range ids {
		c.dedup.MarkResolved(id)
	}
}
