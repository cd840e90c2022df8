package tags

import (
	"github.com/aidarkhanov/nanoid/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

const SHARDS = 16
const VALID_NANOID_CHAR = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const ID_LENGTH = 12

// Operation is the semantic operation a request stands for.
type Operation int

const (
	Authenticate Operation = iota + 1
	ListChats
	GetHistory
	SearchUser
	GetUserByID
	InitiateChat

	// SocketMessage is never issued. It names inbound socket pushes in failures.
	SocketMessage
)

var operationNames = map[Operation]string{
	Authenticate:  "authenticate",
	ListChats:     "list-chats",
	GetHistory:    "get-history",
	SearchUser:    "search-user",
	GetUserByID:   "get-user",
	InitiateChat:  "initiate-chat",
	SocketMessage: "socket-message",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "unknown"
}

// MayBeAbsent reports whether a not-found status is an expected answer for op.
func (op Operation) MayBeAbsent() bool {
	return op == SearchUser || op == GetUserByID
}

// Issuable reports whether op goes over HTTP and can carry a tag.
func (op Operation) Issuable() bool {
	return op >= Authenticate && op <= InitiateChat
}

// Payload carries the parameters a response needs to be understood.
type Payload struct {
	ChatID   int64
	UserID   int64
	Username string
}

// Tag links an outgoing request to its operation. Immutable once issued.
type Tag struct {
	ID string
	Op Operation
	Payload
}

type tagShard map[string]Tag

// Registry maps in-flight request ids to their tags. It is owned by a single
// goroutine and does no locking.
type Registry struct {
	shards [SHARDS]tagShard
	size   int
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = make(tagShard)
	}
	return r
}

func (r *Registry) shard(id string) tagShard {
	return r.shards[fnv1a.HashString32(id)%SHARDS]
}

// Issue allocates a fresh id for op and records it.
func (r *Registry) Issue(op Operation, payload Payload) (Tag, error) {
	if !op.Issuable() {
		return Tag{}, ErrNotIssuable
	}

	var id string
	var err error
	for {
		id, err = nanoid.GenerateString(VALID_NANOID_CHAR, ID_LENGTH)
		if err != nil {
			return Tag{}, err
		}
		if _, exists := r.shard(id)[id]; !exists {
			break
		}
	}

	tag := Tag{ID: id, Op: op, Payload: payload}
	r.shard(id)[id] = tag
	r.size++
	return tag, nil
}

// Has reports whether id is still awaiting its response.
func (r *Registry) Has(id string) bool {
	_, ok := r.shard(id)[id]
	return ok
}

// Consume removes and returns the tag for id. The second result is false when
// id was never issued or was already consumed.
func (r *Registry) Consume(id string) (Tag, bool) {
	shard := r.shard(id)
	tag, ok := shard[id]
	if !ok {
		return Tag{}, false
	}
	delete(shard, id)
	r.size--
	return tag, true
}

// Len returns the number of in-flight tags.
func (r *Registry) Len() int {
	return r.size
}
