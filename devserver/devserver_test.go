package devserver

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shindensen_client/global"
	"shindensen_client/helpers"
	"shindensen_client/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-key")

func newServer() *Server {
	return New(secret, time.Hour, nil)
}

func do(t *testing.T, s *Server, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := global.JSON.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func loginAs(t *testing.T, s *Server, username string) string {
	t.Helper()
	status, body := do(t, s, http.MethodPost, "/login", "", schemas.LoginSchema{Username: username})
	require.Equal(t, http.StatusOK, status, string(body))
	var res schemas.AuthResponse
	require.NoError(t, global.JSON.Unmarshal(body, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	s := newServer()
	token := loginAs(t, s, "ash")

	claims, err := helpers.ParseJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "ash", claims.Username)
	assert.Equal(t, int64(1), claims.UserID)

	again := loginAs(t, s, "ash")
	claims, err = helpers.ParseJWT(secret, again)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestLoginRejectsBadBodies(t *testing.T) {
	s := newServer()
	status, _ := do(t, s, http.MethodPost, "/login", "", schemas.LoginSchema{})
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutesRequireToken(t *testing.T) {
	s := newServer()
	for _, path := range []string{"/chats", "/chats/1/messages", "/users/1"} {
		status, _ := do(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)

		status, _ = do(t, s, http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	expired, err := helpers.GenerateJWT(secret, 1, "ash", -time.Minute)
	require.NoError(t, err)
	s.SeedUser("ash")
	status, body := do(t, s, http.MethodGet, "/chats", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "expired")
}

func TestUserLookup(t *testing.T) {
	s := newServer()
	token := loginAs(t, s, "ash")
	kai := s.SeedUser("kai")

	status, body := do(t, s, http.MethodGet, "/users/kai", token, nil)
	require.Equal(t, http.StatusOK, status)
	var byName schemas.UserInfo
	require.NoError(t, global.JSON.Unmarshal(body, &byName))
	assert.Equal(t, kai, byName)

	status, body = do(t, s, http.MethodGet, "/users/2", token, nil)
	require.Equal(t, http.StatusOK, status)
	var byID schemas.UserInfo
	require.NoError(t, global.JSON.Unmarshal(body, &byID))
	assert.Equal(t, "kai", byID.Username)

	status, _ = do(t, s, http.MethodGet, "/users/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, s, http.MethodGet, "/users/99", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInitiateChatAndHistory(t *testing.T) {
	s := newServer()
	token := loginAs(t, s, "ash")
	s.SeedUser("kai")

	status, body := do(t, s, http.MethodPost, "/chats/initiate", token, schemas.InitiateChatSchema{TargetUsername: "kai"})
	require.Equal(t, http.StatusOK, status, string(body))
	var created schemas.InitiateChatResponse
	require.NoError(t, global.JSON.Unmarshal(body, &created))
	assert.Equal(t, "created", created.Status)

	status, body = do(t, s, http.MethodPost, "/chats/initiate", token, schemas.InitiateChatSchema{TargetID: 2})
	require.Equal(t, http.StatusOK, status)
	var existing schemas.InitiateChatResponse
	require.NoError(t, global.JSON.Unmarshal(body, &existing))
	assert.Equal(t, created.ChatID, existing.ChatID)
	assert.Equal(t, "existing", existing.Status)

	status, body = do(t, s, http.MethodGet, "/chats", token, nil)
	require.Equal(t, http.StatusOK, status)
	var chats []schemas.ChatInfo
	require.NoError(t, global.JSON.Unmarshal(body, &chats))
	require.Len(t, chats, 1)
	assert.Equal(t, []int64{1, 2}, chats[0].Participants)
	assert.Equal(t, schemas.ChatDirect, chats[0].ChatType)

	status, body = do(t, s, http.MethodGet, "/chats/1/messages", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"chat_id":1,"messages":[]}`, string(body))

	status, _ = do(t, s, http.MethodGet, "/chats/7/messages", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, s, http.MethodGet, "/chats/x/messages", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, s, http.MethodPost, "/chats/initiate", token, schemas.InitiateChatSchema{TargetUsername: "ghost"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, s, http.MethodPost, "/chats/initiate", token, schemas.InitiateChatSchema{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSelfChat(t *testing.T) {
	s := newServer()
	token := loginAs(t, s, "ash")
	status, body := do(t, s, http.MethodPost, "/chats/initiate", token, schemas.InitiateChatSchema{TargetUsername: "ash"})
	require.Equal(t, http.StatusOK, status, string(body))

	chats := s.store.chatsFor(1)
	require.Len(t, chats, 1)
	assert.Equal(t, []int64{1}, chats[0].Participants)
}

func TestStoreMessagesStayInChat(t *testing.T) {
	store := newMemoryStore()
	ash := store.login("ash")
	kai := store.login("kai")
	rin := store.login("rin")
	res, err := store.initiate(ash.ID, kai.ID)
	require.NoError(t, err)

	msg, recipients, err := store.addMessage(kai.ID, schemas.ChatMessagePayload{
		ChatID:  res.ChatID,
		Content: schemas.StringPtr("hi"),
		Files: []schemas.FilePayload{{
			Type: "image", URL: "http://files.local/a.png", Filename: "a.png", SizeBytes: 3,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, kai.ID, msg.SenderID)
	assert.ElementsMatch(t, []int64{ash.ID, kai.ID}, recipients)
	require.Len(t, msg.Files, 1)
	assert.Equal(t, "a.png", msg.Files[0].Filename)

	_, _, err = store.addMessage(rin.ID, schemas.ChatMessagePayload{ChatID: res.ChatID})
	assert.ErrorIs(t, err, errNotMember)

	history, err := store.history(res.ChatID, ash.ID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 1)
	_, err = store.history(res.ChatID, rin.ID)
	assert.ErrorIs(t, err, errNotMember)
}

func TestStreamRequiresUpgrade(t *testing.T) {
	s := newServer()
	token := loginAs(t, s, "ash")
	status, _ := do(t, s, http.MethodGet, "/ws", token, nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
