package domain

import "github.com/google/uuid"

// Chat message senders.
const (
	ChatSenderUser = "user"
	ChatSenderBot  = "bot"
)

// ChatMessage is one entry of the conversational assistant history.
type ChatMessage struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// NewChatMessage assigns a fresh message ID.
func NewChatMessage(sender, content string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Sender: sender, Content: content}
}

// ImageUploadResponse is the backend's multipart upload acknowledgment.
type ImageUploadResponse struct {
	Filename     string `json:"filename,omitempty"`
	URL          string `json:"url,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	Size         string `json:"size,omitempty"`
	FruitID      string `json:"fruitId,omitempty"`
}
