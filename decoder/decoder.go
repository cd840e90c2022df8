// Package decoder turns raw responses into actions. It is pure: the same tag,
// status and body always give the same result, and nothing here panics on
// malformed input.
package decoder

import (
	"unicode/utf8"

	"shindensen_client/actions"
	"shindensen_client/errors"
	"shindensen_client/global"
	"shindensen_client/schemas"
	"shindensen_client/tags"

	pkgerrors "github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

var errInvalidUTF8 = pkgerrors.New("body is not valid UTF-8")

// Success reports whether status is in the 2xx range.
func Success(status int) bool {
	return status >= fasthttp.StatusOK && status < fasthttp.StatusMultipleChoices
}

// Decode parses body into the event for tag's operation, or into a failure.
func Decode(tag tags.Tag, status int, body []byte) actions.Action {
	op := tag.Op

	if op.MayBeAbsent() && status == fasthttp.StatusNotFound {
		return actions.UserNotFound{Op: op, UserID: tag.UserID, Username: tag.Username}
	}
	if !Success(status) {
		return errors.NewServerError(op, status, body)
	}
	if !utf8.Valid(body) {
		return errors.NewEncodingError(op, body, errInvalidUTF8)
	}

	switch op {
	case tags.Authenticate:
		var res schemas.AuthResponse
		if f := decodeInto(op, body, &res); f != nil {
			return f
		}
		return actions.Authorized{Token: res.Token, Username: tag.Username}

	case tags.ListChats:
		var chats []schemas.ChatInfo
		if f := decodeInto(op, body, &chats); f != nil {
			return f
		}
		return actions.Chats{Chats: chats}

	case tags.GetHistory:
		var res schemas.GetHistoryResponse
		if f := decodeInto(op, body, &res); f != nil {
			return f
		}
		return actions.History{ChatID: res.ChatID, Messages: res.Messages}

	case tags.SearchUser:
		var user schemas.UserInfo
		if f := decodeInto(op, body, &user); f != nil {
			return f
		}
		return actions.UserSearchResponse{User: user}

	case tags.GetUserByID:
		var user schemas.UserInfo
		if f := decodeInto(op, body, &user); f != nil {
			return f
		}
		return actions.UserInfo{User: user}

	case tags.InitiateChat:
		var res schemas.InitiateChatResponse
		if f := decodeInto(op, body, &res); f != nil {
			return f
		}
		return actions.InitiateChat{Result: res}
	}

	return errors.NewMisuse("no decoder for operation " + op.String())
}

// DecodeMessage parses a message pushed over the socket.
func DecodeMessage(text string) actions.Action {
	body := []byte(text)
	if !utf8.Valid(body) {
		return errors.NewEncodingError(tags.SocketMessage, body, errInvalidUTF8)
	}
	var msg schemas.ChatMessage
	if f := decodeInto(tags.SocketMessage, body, &msg); f != nil {
		return f
	}
	return actions.NewMessage{Message: msg}
}

func decodeInto(op tags.Operation, body []byte, v interface{}) *errors.Failure {
	if err := global.JSON.Unmarshal(body, v); err != nil {
		return errors.NewDecodeError(op, body, pkgerrors.Wrap(err, "unmarshal"))
	}
	if err := validate(v); err != nil {
		return errors.NewDecodeError(op, body, pkgerrors.Wrap(err, "validate"))
	}
	return nil
}

func validate(v interface{}) error {
	switch payload := v.(type) {
	case *[]schemas.ChatInfo:
		for i := range *payload {
			if err := global.Validator.Struct((*payload)[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return global.Validator.Struct(v)
}
