package state

import (
	stderrors "errors"
	"testing"

	"shindensen_client/actions"
	"shindensen_client/errors"
	"shindensen_client/schemas"
	"shindensen_client/tags"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	chats     int
	histories []int64
	searches  []string
	users     []int64
	initiated []string
	err       error
}

func (f *fakeFetcher) GetChats() error {
	f.chats++
	return f.err
}

func (f *fakeFetcher) GetHistory(chatID int64) error {
	f.histories = append(f.histories, chatID)
	return f.err
}

func (f *fakeFetcher) SearchUser(username string) error {
	f.searches = append(f.searches, username)
	return f.err
}

func (f *fakeFetcher) RequestUser(id int64) error {
	f.users = append(f.users, id)
	return f.err
}

func (f *fakeFetcher) InitiateChat(username string) error {
	f.initiated = append(f.initiated, username)
	return f.err
}

func user(id int64, username string) schemas.UserInfo {
	return schemas.UserInfo{ID: id, Username: username}
}

func message(id, chatID, sender int64, text string) schemas.ChatMessage {
	return schemas.ChatMessage{ID: id, ChatID: chatID, SenderID: sender, Content: schemas.StringPtr(text)}
}

func TestLoginScenario(t *testing.T) {
	s := New(nil, WithEagerHistory(false))
	f := &fakeFetcher{}

	require.NoError(t, s.Apply(actions.Authenticated{Username: "ash"}, f))
	assert.Equal(t, 1, f.chats)
	assert.Equal(t, []string{"ash"}, f.searches)

	require.NoError(t, s.Apply(actions.Chats{Chats: []schemas.ChatInfo{{ID: 1, Participants: []int64{1, 2}}}}, f))
	assert.Equal(t, []int64{1, 2}, f.users)
	assert.Empty(t, f.histories)

	require.NoError(t, s.Apply(actions.UserInfo{User: user(1, "ash")}, f))
	assert.Equal(t, int64(1), s.CurrentUserID())
	assert.Equal(t, "U2", s.ChatName(1))

	require.NoError(t, s.Apply(actions.UserInfo{User: user(2, "kai")}, f))
	assert.Equal(t, "kai", s.ChatName(1))
}

func TestChatsFoldIsIdempotent(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}
	list := []schemas.ChatInfo{
		{ID: 2, ChatType: schemas.ChatDirect, Participants: []int64{1, 3}},
		{ID: 1, Name: schemas.StringPtr("crew"), ChatType: schemas.ChatGroup, Participants: []int64{1, 2, 3}},
	}

	require.NoError(t, s.Apply(actions.Chats{Chats: list}, f))
	first := s.Chats()
	require.NoError(t, s.Apply(actions.Chats{Chats: list}, f))

	if diff := cmp.Diff(first, s.Chats()); diff != "" {
		t.Fatalf("chats changed on second fold (-first +second):\n%s", diff)
	}
	assert.Equal(t, []int64{1, 2}, []int64{first[0].ID, first[1].ID})
	assert.Equal(t, []int64{2, 1}, f.histories[:2])
}

func TestChatsReplaceWholesale(t *testing.T) {
	s := New(nil, WithEagerHistory(false))
	f := &fakeFetcher{}

	require.NoError(t, s.Apply(actions.Chats{Chats: []schemas.ChatInfo{{ID: 1, Name: schemas.StringPtr("old"), Participants: []int64{1, 2}}}}, f))
	require.NoError(t, s.Apply(actions.Chats{Chats: []schemas.ChatInfo{{ID: 1, Participants: []int64{1, 2}}}}, f))

	chat, ok := s.Chat(1)
	require.True(t, ok)
	assert.Nil(t, chat.Name)
}

func TestHistoryReplaces(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}
	a, b, c := message(1, 1, 2, "a"), message(2, 1, 3, "b"), message(3, 1, 2, "c")

	require.NoError(t, s.Apply(actions.History{ChatID: 1, Messages: []schemas.ChatMessage{a, b}}, f))
	assert.Equal(t, []int64{2, 3}, f.users)
	require.NoError(t, s.Apply(actions.History{ChatID: 1, Messages: []schemas.ChatMessage{c}}, f))

	if diff := cmp.Diff([]schemas.ChatMessage{c}, s.Messages(1)); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, s.MessageCount(1))
}

func TestNewMessageAppendsInArrivalOrder(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}
	require.NoError(t, s.Apply(actions.History{ChatID: 1, Messages: []schemas.ChatMessage{message(5, 1, 2, "x")}}, f))
	require.NoError(t, s.Apply(actions.NewMessage{Message: message(3, 1, 4, "y")}, f))
	require.NoError(t, s.Apply(actions.NewMessage{Message: message(4, 7, 2, "z")}, f))

	got := s.Messages(1)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, 1, s.MessageCount(7))
	assert.Equal(t, []int64{2, 4, 2}, f.users)
}

func TestKnownUsersAreNotRequested(t *testing.T) {
	s := New(nil, WithEagerHistory(false))
	f := &fakeFetcher{}
	s.Seed([]schemas.UserInfo{user(2, "kai")})

	require.NoError(t, s.Apply(actions.Chats{Chats: []schemas.ChatInfo{{ID: 1, Participants: []int64{1, 2}}}}, f))
	assert.Equal(t, []int64{1}, f.users)
}

func TestSearchResponseIdentifiesSelf(t *testing.T) {
	s := New(nil)
	s.SetUsername("ash")
	require.NoError(t, s.Apply(actions.UserSearchResponse{User: user(9, "ash")}, &fakeFetcher{}))
	assert.Equal(t, int64(9), s.CurrentUserID())
	assert.Equal(t, "ash", s.Username())
}

func TestChatNames(t *testing.T) {
	s := New(nil, WithEagerHistory(false))
	f := &fakeFetcher{}
	s.SetUsername("ash")
	s.Seed([]schemas.UserInfo{
		user(1, "ash"),
		{ID: 2, Username: "kai", DisplayName: schemas.StringPtr("Kai")},
		user(3, "rin"),
		user(4, "tom"),
	})
	require.NoError(t, s.Apply(actions.Chats{Chats: []schemas.ChatInfo{
		{ID: 10, Name: schemas.StringPtr("Named"), Participants: []int64{1, 2}},
		{ID: 11, ChatType: schemas.ChatDirect, Participants: []int64{1, 2}},
		{ID: 12, ChatType: schemas.ChatGroup, Participants: []int64{1, 2, 3}},
		{ID: 13, ChatType: schemas.ChatGroup, Participants: []int64{1, 2, 3, 4, 5}},
		{ID: 14, ChatType: schemas.ChatDirect, Participants: []int64{1}},
		{ID: 15, Name: schemas.StringPtr(""), ChatType: schemas.ChatDirect, Participants: []int64{1, 6}},
		{ID: 16},
	}}, f))

	cases := map[int64]string{
		10: "Named",
		11: "Kai",
		12: "Kai, rin",
		13: "Kai, rin, tom...",
		14: SELF_CHAT_LABEL,
		15: "U6",
		16: "Chat 16",
		99: "Chat 99",
	}
	for id, want := range cases {
		assert.Equal(t, want, s.ChatName(id), "chat %d", id)
	}
}

func TestInitiateChatOpensAndFetchesHistory(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}
	_, open := s.OpenChat()
	assert.False(t, open)

	require.NoError(t, s.Apply(actions.InitiateChat{Result: schemas.InitiateChatResponse{ChatID: 4, Status: "created"}}, f))
	id, open := s.OpenChat()
	assert.True(t, open)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, []int64{4}, f.histories)
}

func TestStartChatWithFlow(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}

	require.NoError(t, s.StartChatWith("kai", f))
	assert.Equal(t, []string{"kai"}, f.searches)
	assert.Equal(t, "kai", s.PendingChatWith())

	require.NoError(t, s.Apply(actions.UserSearchResponse{User: user(2, "rin")}, f))
	assert.Empty(t, f.initiated)

	require.NoError(t, s.Apply(actions.UserSearchResponse{User: user(3, "kai")}, f))
	assert.Equal(t, []string{"kai"}, f.initiated)
	assert.Empty(t, s.PendingChatWith())
}

func TestStartChatWithUnknownUser(t *testing.T) {
	s := New(nil)
	f := &fakeFetcher{}
	require.NoError(t, s.StartChatWith("ghost", f))

	require.NoError(t, s.Apply(actions.UserNotFound{Op: tags.SearchUser, Username: "ghost"}, f))
	assert.Empty(t, s.PendingChatWith())
	assert.Empty(t, f.initiated)
	require.NotNil(t, s.LastFailure())
	assert.Contains(t, s.LastFailure().Error(), "ghost")
}

func TestFailureRecorded(t *testing.T) {
	s := New(nil)
	fail := errors.NewNetworkError("websocket error: reset")
	require.NoError(t, s.Apply(fail, &fakeFetcher{}))
	assert.Same(t, fail, s.LastFailure())
}

func TestFetchErrorsAreCollected(t *testing.T) {
	s := New(nil, WithEagerHistory(false))
	f := &fakeFetcher{err: stderrors.New("not authenticated")}

	err := s.ApplyAll([]actions.Action{
		actions.Chats{Chats: []schemas.ChatInfo{{ID: 1, Participants: []int64{2, 3}}}},
		actions.UserInfo{User: user(4, "tom")},
	}, f)
	require.Error(t, err)
	assert.Len(t, s.Chats(), 1)
	assert.Equal(t, []int64{2, 3}, f.users)
}

func TestUsersSnapshot(t *testing.T) {
	s := New(nil)
	s.Seed([]schemas.UserInfo{user(3, "rin"), user(1, "ash")})
	want := []schemas.UserInfo{user(1, "ash"), user(3, "rin")}
	if diff := cmp.Diff(want, s.Users()); diff != "" {
		t.Fatalf("users (-want +got):\n%s", diff)
	}
	assert.Equal(t, "rin", s.UserName(3))
	assert.Equal(t, "U8", s.UserName(8))
}
