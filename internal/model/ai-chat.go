package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser  = MessageRole("user")
	MessageRoleModel = MessageRole("model")
)

type Message struct {
	ID                uuid.UUID
	Role              MessageRole
	Content           string
	Timestamp         time.Time
	Attachments       []Attachment
	ThoughtProcess    string
	GroundingMetadata *GroundingMetadata
	ModelUsed         ModelIdentity
	SuggestedReplies  []string
}

type ChatMode string

const (
	ChatModeDefault  = ChatMode("default")
	ChatModeRoleplay = ChatMode("roleplay")
	ChatModeLearning = ChatMode("learning")
)

type AIChat struct {
	ChatID    uuid.UUID
	UserID    uuid.UUID
	Title     string
	Messages  []Message
	Model     ModelIdentity
	CreatedAt time.Time
	Mode      ChatMode
	Roleplay  *RoleplayConfig
	Learning  *LearningConfig
}

// History returns a copy of the chat messages, safe to hand to a provider.
func (c AIChat) History() []Message {
	history := make([]Message, len(c.Messages))
	copy(history, c.Messages)
	return history
}
