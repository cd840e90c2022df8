// Package state folds session actions into the application's canonical
// collections and answers the derived queries the UI reads.
package state

import (
	"shindensen_client/actions"
	"shindensen_client/errors"
	"shindensen_client/schemas"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const SELF_CHAT_LABEL = "Saved Messages"
const MAX_GROUP_NAMES = 3

// Fetcher is the part of the session core the fold calls back into.
type Fetcher interface {
	GetChats() error
	GetHistory(chatID int64) error
	SearchUser(username string) error
	RequestUser(id int64) error
	InitiateChat(username string) error
}

// Store is owned by the same tick that drains the session core.
type Store struct {
	log          *zap.Logger
	eagerHistory bool

	username      string
	currentUserID int64
	openChatID    int64
	startWith     string
	lastFailure   *errors.Failure

	chats    map[int64]schemas.ChatInfo
	messages map[int64][]schemas.ChatMessage
	users    map[int64]schemas.UserInfo
}

type Option func(*Store)

// WithEagerHistory controls whether a chat-list load also fetches every chat's history.
func WithEagerHistory(on bool) Option {
	return func(s *Store) { s.eagerHistory = on }
}

func New(log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		log:          log,
		eagerHistory: true,
		chats:        make(map[int64]schemas.ChatInfo),
		messages:     make(map[int64][]schemas.ChatMessage),
		users:        make(map[int64]schemas.UserInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyAll folds actions in order.
func (s *Store) ApplyAll(list []actions.Action, f Fetcher) error {
	var err error
	for _, a := range list {
		err = multierr.Append(err, s.Apply(a, f))
	}
	return err
}

// Apply folds one action. Follow-up fetches go through f; their errors are
// collected and returned after the fold is complete.
func (s *Store) Apply(a actions.Action, f Fetcher) error {
	switch v := a.(type) {
	case actions.Authenticated:
		s.username = v.Username
		s.log.Debug("fold authenticated", zap.String("username", v.Username))
		return multierr.Combine(f.GetChats(), f.SearchUser(v.Username))

	case actions.Chats:
		var err error
		for _, chat := range v.Chats {
			s.chats[chat.ID] = chat
			for _, id := range chat.Participants {
				err = multierr.Append(err, s.requestUser(id, f))
			}
			if s.eagerHistory {
				err = multierr.Append(err, f.GetHistory(chat.ID))
			}
		}
		s.log.Debug("fold chats", zap.Int("received", len(v.Chats)), zap.Int("total", len(s.chats)))
		return err

	case actions.History:
		list := make([]schemas.ChatMessage, len(v.Messages))
		copy(list, v.Messages)
		s.messages[v.ChatID] = list
		s.log.Debug("fold history", zap.Int64("chat", v.ChatID), zap.Int("messages", len(list)))
		var err error
		seen := make(map[int64]struct{})
		for _, msg := range list {
			if _, ok := seen[msg.SenderID]; ok {
				continue
			}
			seen[msg.SenderID] = struct{}{}
			err = multierr.Append(err, s.requestUser(msg.SenderID, f))
		}
		return err

	case actions.NewMessage:
		msg := v.Message
		s.messages[msg.ChatID] = append(s.messages[msg.ChatID], msg)
		s.log.Debug("fold new message", zap.Int64("chat", msg.ChatID), zap.Int64("message", msg.ID))
		return s.requestUser(msg.SenderID, f)

	case actions.UserInfo:
		s.putUser(v.User)
		return nil

	case actions.UserSearchResponse:
		s.putUser(v.User)
		if s.startWith != "" && s.startWith == v.User.Username {
			s.startWith = ""
			return f.InitiateChat(v.User.Username)
		}
		return nil

	case actions.UserNotFound:
		if v.Username != "" && v.Username == s.startWith {
			s.startWith = ""
			s.lastFailure = errors.NewMisuse("user " + v.Username + " not found")
		}
		s.log.Debug("fold user not found", zap.Int64("id", v.UserID), zap.String("username", v.Username))
		return nil

	case actions.InitiateChat:
		s.openChatID = v.Result.ChatID
		s.log.Debug("fold initiate chat", zap.Int64("chat", v.Result.ChatID), zap.String("status", v.Result.Status))
		return f.GetHistory(v.Result.ChatID)

	case *errors.Failure:
		s.lastFailure = v
		s.log.Debug("fold failure", zap.Error(v))
		return nil
	}
	return nil
}

func (s *Store) requestUser(id int64, f Fetcher) error {
	if _, ok := s.users[id]; ok {
		return nil
	}
	return f.RequestUser(id)
}

func (s *Store) putUser(u schemas.UserInfo) {
	s.users[u.ID] = u
	if s.username != "" && u.Username == s.username {
		s.currentUserID = u.ID
	}
}

// Seed restores users known from an earlier session.
func (s *Store) Seed(users []schemas.UserInfo) {
	for _, u := range users {
		s.putUser(u)
	}
}

// SetUsername records the local identity before login completes.
func (s *Store) SetUsername(username string) {
	s.username = username
	for _, u := range s.users {
		if u.Username == username {
			s.currentUserID = u.ID
		}
	}
}

// StartChatWith looks username up and, once found, opens a chat with them.
func (s *Store) StartChatWith(username string, f Fetcher) error {
	if err := f.SearchUser(username); err != nil {
		return err
	}
	s.startWith = username
	return nil
}

// PendingChatWith returns the username a new chat is waiting on, if any.
func (s *Store) PendingChatWith() string {
	return s.startWith
}

// SelectChat makes id the open chat. It reports whether the chat is known.
func (s *Store) SelectChat(id int64) bool {
	s.openChatID = id
	_, ok := s.chats[id]
	return ok
}
