// Package actions holds the events the session core reports upward and the bus
// that carries them.
package actions

import (
	"shindensen_client/schemas"
	"shindensen_client/tags"
)

// Action is one discrete, already-parsed event. *errors.Failure is an Action too.
type Action interface {
	ActionName() string
}

// Authorized carries a fresh bearer token from the decoder to the session core.
// It never reaches the bus; the core publishes Authenticated instead.
type Authorized struct {
	Token    string
	Username string
}

// Authenticated is published once the credential is stored and the socket is opening.
type Authenticated struct {
	Username string
}

// Chats is a chat-list response.
type Chats struct {
	Chats []schemas.ChatInfo
}

// History is a full message history for one chat.
type History struct {
	ChatID   int64
	Messages []schemas.ChatMessage
}

// NewMessage is a message pushed over the socket.
type NewMessage struct {
	Message schemas.ChatMessage
}

// UserInfo answers a lookup by id.
type UserInfo struct {
	User schemas.UserInfo
}

// UserSearchResponse answers a lookup by username.
type UserSearchResponse struct {
	User schemas.UserInfo
}

// UserNotFound is the expected-absent answer to either user lookup.
type UserNotFound struct {
	Op       tags.Operation
	UserID   int64
	Username string
}

// InitiateChat carries the chat opened or found for a target user.
type InitiateChat struct {
	Result schemas.InitiateChatResponse
}

func (Authorized) ActionName() string         { return "authorized" }
func (Authenticated) ActionName() string      { return "authenticated" }
func (Chats) ActionName() string              { return "chats" }
func (History) ActionName() string            { return "history" }
func (NewMessage) ActionName() string         { return "new_message" }
func (UserInfo) ActionName() string           { return "user_info" }
func (UserSearchResponse) ActionName() string { return "user_search_response" }
func (UserNotFound) ActionName() string       { return "user_not_found" }
func (InitiateChat) ActionName() string       { return "initiate_chat" }
