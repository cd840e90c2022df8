package schemas

const (
	ChatDirect = "direct"
	ChatGroup  = "group"
)

// ChatInfo struct
type ChatInfo struct {
	ID           int64   `json:"id" validate:"required"`
	Name         *string `json:"name"`
	ChatType     string  `json:"chat_type"`
	Participants []int64 `json:"participants"`
	CreatedAt    string  `json:"created_at"`
}

// FileMetadata struct describes an attachment already stored by the backend
type FileMetadata struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	URL       string  `json:"url"`
	Filename  string  `json:"filename"`
	MimeType  *string `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	CreatedAt string  `json:"created_at"`
}

// ChatMessage struct
type ChatMessage struct {
	ID        int64          `json:"id" validate:"required"`
	ChatID    int64          `json:"chat_id" validate:"required"`
	SenderID  int64          `json:"sender_id" validate:"required"`
	Content   *string        `json:"content"`
	Timestamp string         `json:"timestamp"`
	Files     []FileMetadata `json:"files"`
}

// GetHistoryResponse struct
type GetHistoryResponse struct {
	ChatID   int64         `json:"chat_id" validate:"required"`
	Messages []ChatMessage `json:"messages" validate:"dive"`
}

// FilePayload struct is an attachment reference sent with an outbound message
type FilePayload struct {
	Type      string  `json:"type" validate:"required"`
	URL       string  `json:"url" validate:"required,url"`
	Filename  string  `json:"filename" validate:"required"`
	MimeType  *string `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes" validate:"min=0"`
}

// ChatMessagePayload struct is the outbound socket message
type ChatMessagePayload struct {
	ChatID  int64         `json:"chat_id" validate:"required"`
	Content *string       `json:"content"`
	Files   []FilePayload `json:"files" validate:"dive"`
}

// InitiateChatSchema struct. Exactly one target is set.
type InitiateChatSchema struct {
	TargetUsername string `json:"target_username,omitempty" validate:"required_without=TargetID"`
	TargetID       int64  `json:"target_id,omitempty" validate:"required_without=TargetUsername"`
}

// InitiateChatResponse struct
type InitiateChatResponse struct {
	ChatID int64  `json:"chat_id" validate:"required"`
	Status string `json:"status"`
}
