package errors

import (
	stderrors "errors"
	"testing"

	"shindensen_client/tags"

	"github.com/stretchr/testify/assert"
)

func TestFailureMessages(t *testing.T) {
	f := NewServerError(tags.ListChats, 500, []byte("boom"))
	assert.Equal(t, "list-chats: server returned 500", f.Error())
	assert.Equal(t, "failure/server_error", f.ActionName())
	assert.Equal(t, "boom", f.RawBody)

	cause := stderrors.New("unexpected end of JSON input")
	d := NewDecodeError(tags.GetHistory, []byte("{"), cause)
	assert.ErrorIs(t, d, cause)
	assert.Contains(t, d.Error(), "get-history")

	e := NewEncodingError(tags.SearchUser, []byte{0xff}, cause)
	assert.Equal(t, `"\xff"`, e.RawBody)

	assert.Equal(t, "socket not open", NewMisuse("socket not open").Error())
	assert.Equal(t, "failure/network_error", NewNetworkError("reset").ActionName())
}
