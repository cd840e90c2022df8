package client

import (
	"fmt"

	"shindensen_client/actions"
	"shindensen_client/decoder"
	"shindensen_client/errors"
	"shindensen_client/helpers"
	"shindensen_client/tags"
	"shindensen_client/transport"

	"go.uber.org/zap"
)

// HandleEvent classifies one transport event. Each tag is resolved at most
// once; anything arriving for an unknown or already-consumed tag is logged
// and dropped. Buffers are released on every path.
func (c *Client) HandleEvent(ev transport.Event) {
	id := ev.RequestID

	switch ev.Kind {
	case transport.EventChunk:
		if !c.tags.Has(id) {
			c.log.Warn("chunk for unknown request", zap.String("tag", id), zap.Int("size", len(ev.Body)))
			return
		}
		c.stream.Append(id, ev.Body)

	case transport.EventComplete:
		tag, ok := c.consume(id)
		if !ok {
			return
		}
		c.resolve(tag, decoder.Decode(tag, ev.Status, c.stream.Complete(id)))

	case transport.EventResponse:
		tag, ok := c.consume(id)
		if !ok {
			return
		}
		c.stream.Release(id)
		body := ev.Body
		if body == nil {
			body = []byte{}
		}
		c.resolve(tag, decoder.Decode(tag, ev.Status, body))

	case transport.EventFailed:
		tag, ok := c.consume(id)
		if !ok {
			return
		}
		c.stream.Release(id)
		c.settle(tag, nil)
		detail := fmt.Sprintf("%s request failed", tag.Op)
		if ev.Err != nil {
			detail += ": " + ev.Err.Error()
		}
		c.log.Warn("request failed", zap.String("tag", id), zap.Stringer("op", tag.Op), zap.Error(ev.Err))
		c.bus.Emit(errors.NewNetworkError(detail))

	default:
		c.log.Warn("unknown transport event", zap.String("tag", id), zap.Int("kind", int(ev.Kind)))
	}
}

func (c *Client) consume(id string) (tags.Tag, bool) {
	tag, ok := c.tags.Consume(id)
	if !ok {
		c.stream.Release(id)
		c.log.Warn("response for unknown or already resolved request", zap.String("tag", id))
	}
	return tag, ok
}

func (c *Client) resolve(tag tags.Tag, a actions.Action) {
	c.settle(tag, a)

	if auth, ok := a.(actions.Authorized); ok {
		c.authorized(auth)
		return
	}
	if f, ok := a.(*errors.Failure); ok {
		c.log.Warn("request resolved with failure", zap.Stringer("op", tag.Op), zap.Error(f))
	}
	c.bus.Emit(a)
}

// settle keeps the deduplicator in step with the outcome. A lookup by id
// always leaves the pending set, whatever the outcome.
func (c *Client) settle(tag tags.Tag, a actions.Action) {
	if tag.Op == tags.GetUserByID {
		info, ok := a.(actions.UserInfo)
		c.dedup.Resolve(tag.UserID, ok && info.User.ID == tag.UserID)
	}
	switch v := a.(type) {
	case actions.UserInfo:
		c.dedup.MarkResolved(v.User.ID)
	case actions.UserSearchResponse:
		c.dedup.MarkResolved(v.User.ID)
	}
}

func (c *Client) authorized(auth actions.Authorized) {
	cred := &Credential{Token: auth.Token, Username: auth.Username}
	if claims, err := helpers.InspectJWT(auth.Token); err == nil {
		cred.Claims = claims
	} else {
		c.log.Debug("credential is not a readable jwt", zap.Error(err))
	}
	c.cred = cred
	c.socket.Open(auth.Token)
	c.log.Info("authenticated", zap.String("username", auth.Username))
	c.bus.Emit(actions.Authenticated{Username: auth.Username})
}
