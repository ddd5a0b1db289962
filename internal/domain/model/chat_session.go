package model

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message IDs must sort by append order even when two appends land in the
// same millisecond, so all IDs draw from one monotonic entropy source. The
// source is not safe for concurrent use and stays behind a lock.
var (
	msgIDMu      sync.Mutex
	msgIDEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newMessageID() string {
	msgIDMu.Lock()
	defer msgIDMu.Unlock()
	return ulid.MustNew(ulid.Now(), msgIDEntropy).String()
}

type ChatSessionStatus string

const (
	ChatSessionActive   ChatSessionStatus = "active"
	ChatSessionFinished ChatSessionStatus = "finished"
)

// ChatMessage is one message within a chat session. Messages are immutable
// once appended.
type ChatMessage struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"` // "user" | "assistant"
	Content       string    `json:"content"`
	RelatedTopics []string  `json:"related_topics,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatSession is the aggregate root for one conversation, optionally bound
// to a graph node. It grows by append only; UpdatedAt is the one field
// mutated in place.
type ChatSession struct {
	ID        string            `json:"id"`
	NodeID    string            `json:"node_id,omitempty"`
	Status    ChatSessionStatus `json:"status"`
	Messages  []ChatMessage     `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewChatSession(id, nodeID string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        id,
		NodeID:    nodeID,
		Status:    ChatSessionActive,
		Messages:  make([]ChatMessage, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message and returns it. Message IDs are ULIDs so
// they sort by creation time.
func (s *ChatSession) AddMessage(role, content string, topics []string) *ChatMessage {
	s.Messages = append(s.Messages, ChatMessage{
		ID:            newMessageID(),
		Role:          role,
		Content:       content,
		RelatedTopics: topics,
		CreatedAt:     time.Now(),
	})
	s.UpdatedAt = time.Now()
	return &s.Messages[len(s.Messages)-1]
}

func (s *ChatSession) GetRecentMessages(n int) []ChatMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
