package state

import (
	"sort"
	"strconv"
	"strings"

	"shindensen_client/errors"
	"shindensen_client/schemas"
)

// ChatName resolves the title of chat id. An explicit name wins; a direct
// chat shows the other participant; a group joins up to three names; a chat
// whose only member is the current user is the self chat.
func (s *Store) ChatName(id int64) string {
	chat, ok := s.chats[id]
	if !ok {
		return "Chat " + strconv.FormatInt(id, 10)
	}
	if chat.Name != nil && *chat.Name != "" {
		return *chat.Name
	}

	others := make([]int64, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		if s.currentUserID != 0 && p == s.currentUserID {
			continue
		}
		others = append(others, p)
	}

	switch {
	case len(chat.Participants) == 0:
		return "Chat " + strconv.FormatInt(id, 10)
	case len(others) == 0:
		return SELF_CHAT_LABEL
	case len(others) == 1 && chat.ChatType != schemas.ChatGroup:
		return s.userName(others[0])
	}

	n := len(others)
	if n > MAX_GROUP_NAMES {
		n = MAX_GROUP_NAMES
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = s.userName(others[i])
	}
	name := strings.Join(names, ", ")
	if len(others) > MAX_GROUP_NAMES {
		name += "..."
	}
	return name
}

func (s *Store) userName(id int64) string {
	if u, ok := s.users[id]; ok {
		return u.Name()
	}
	return schemas.Placeholder(id)
}

// UserName is the display name for id, or its placeholder while unknown.
func (s *Store) UserName(id int64) string {
	return s.userName(id)
}

func (s *Store) MessageCount(chatID int64) int {
	return len(s.messages[chatID])
}

// Messages returns chat's messages in arrival order.
func (s *Store) Messages(chatID int64) []schemas.ChatMessage {
	list := s.messages[chatID]
	out := make([]schemas.ChatMessage, len(list))
	copy(out, list)
	return out
}

// Chats returns every known chat ordered by id.
func (s *Store) Chats() []schemas.ChatInfo {
	out := make([]schemas.ChatInfo, 0, len(s.chats))
	for _, chat := range s.chats {
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Chat(id int64) (schemas.ChatInfo, bool) {
	chat, ok := s.chats[id]
	return chat, ok
}

func (s *Store) User(id int64) (schemas.UserInfo, bool) {
	u, ok := s.users[id]
	return u, ok
}

// Users returns every cached user ordered by id.
func (s *Store) Users() []schemas.UserInfo {
	out := make([]schemas.UserInfo, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CurrentUserID is zero until the local user's own info has arrived.
func (s *Store) CurrentUserID() int64 {
	return s.currentUserID
}

func (s *Store) Username() string {
	return s.username
}

// OpenChat returns the chat the user is looking at, if any.
func (s *Store) OpenChat() (int64, bool) {
	return s.openChatID, s.openChatID != 0
}

// LastFailure returns the most recent failure folded, or nil.
func (s *Store) LastFailure() *errors.Failure {
	return s.lastFailure
}
