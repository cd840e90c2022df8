package devserver

import (
	"sort"
	"sync"
	"time"

	"shindensen_client/schemas"

	"github.com/pkg/errors"
)

var (
	errUserNotFound = errors.New("user not found")
	errNotMember    = errors.New("not a chat member")
)

type chatRecord struct {
	info     schemas.ChatInfo
	messages []schemas.ChatMessage
}

// memoryStore is the dev backend's whole database.
type memoryStore struct {
	mu sync.RWMutex

	users  map[int64]schemas.UserInfo
	byName map[string]int64
	chats  map[int64]*chatRecord

	nextUser    int64
	nextChat    int64
	nextMessage int64
	nextFile    int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[int64]schemas.UserInfo),
		byName: make(map[string]int64),
		chats:  make(map[int64]*chatRecord),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// login returns the user called username, registering it on first sight.
func (s *memoryStore) login(username string) schemas.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[username]; ok {
		return s.users[id]
	}
	s.nextUser++
	user := schemas.UserInfo{ID: s.nextUser, Username: username}
	s.users[user.ID] = user
	s.byName[username] = user.ID
	return user
}

func (s *memoryStore) userByID(id int64) (schemas.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *memoryStore) userByName(username string) (schemas.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return schemas.UserInfo{}, false
	}
	return s.users[id], true
}

func (s *memoryStore) chatsFor(userID int64) []schemas.ChatInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []schemas.ChatInfo{}
	for _, chat := range s.chats {
		if isMember(chat.info, userID) {
			out = append(out, chat.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) history(chatID, userID int64) (schemas.GetHistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[chatID]
	if !ok || !isMember(chat.info, userID) {
		return schemas.GetHistoryResponse{}, errNotMember
	}
	messages := make([]schemas.ChatMessage, len(chat.messages))
	copy(messages, chat.messages)
	return schemas.GetHistoryResponse{ChatID: chatID, Messages: messages}, nil
}

// initiate finds the direct chat between userID and targetID or creates it.
// A user talking to themself gets a one-member chat.
func (s *memoryStore) initiate(userID, targetID int64) (schemas.InitiateChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[targetID]; !ok {
		return schemas.InitiateChatResponse{}, errUserNotFound
	}
	participants := []int64{userID, targetID}
	if userID == targetID {
		participants = []int64{userID}
	}

	for id, chat := range s.chats {
		if chat.info.ChatType == schemas.ChatDirect && sameMembers(chat.info.Participants, participants) {
			return schemas.InitiateChatResponse{ChatID: id, Status: "existing"}, nil
		}
	}

	s.nextChat++
	s.chats[s.nextChat] = &chatRecord{
		info: schemas.ChatInfo{
			ID:           s.nextChat,
			ChatType:     schemas.ChatDirect,
			Participants: participants,
			CreatedAt:    now(),
		},
		messages: []schemas.ChatMessage{},
	}
	return schemas.InitiateChatResponse{ChatID: s.nextChat, Status: "created"}, nil
}

// addMessage stores an outbound payload and returns the message together with
// the users it must be delivered to.
func (s *memoryStore) addMessage(userID int64, payload schemas.ChatMessagePayload) (schemas.ChatMessage, []int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[payload.ChatID]
	if !ok || !isMember(chat.info, userID) {
		return schemas.ChatMessage{}, nil, errNotMember
	}

	s.nextMessage++
	msg := schemas.ChatMessage{
		ID:        s.nextMessage,
		ChatID:    payload.ChatID,
		SenderID:  userID,
		Content:   payload.Content,
		Timestamp: now(),
		Files:     make([]schemas.FileMetadata, 0, len(payload.Files)),
	}
	for _, f := range payload.Files {
		s.nextFile++
		msg.Files = append(msg.Files, schemas.FileMetadata{
			ID:        s.nextFile,
			Type:      f.Type,
			URL:       f.URL,
			Filename:  f.Filename,
			MimeType:  f.MimeType,
			SizeBytes: f.SizeBytes,
			CreatedAt: msg.Timestamp,
		})
	}
	chat.messages = append(chat.messages, msg)

	recipients := make([]int64, len(chat.info.Participants))
	copy(recipients, chat.info.Participants)
	return msg, recipients, nil
}

func isMember(chat schemas.ChatInfo, userID int64) bool {
	for _, p := range chat.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func sameMembers(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range b {
		if !isMember(schemas.ChatInfo{Participants: a}, id) {
			return false
		}
	}
	return true
}
