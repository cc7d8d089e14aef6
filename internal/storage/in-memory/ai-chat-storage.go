package in_memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type AIChatStorage struct {
	mu    sync.RWMutex
	chats map[uuid.UUID]*model.AIChat
}

func NewAIChatStorage() *AIChatStorage {
	return &AIChatStorage{
		chats: make(map[uuid.UUID]*model.AIChat),
	}
}

// ListUserChats returns the user's chats, newest first.
func (a *AIChatStorage) ListUserChats(_ context.Context, userID uuid.UUID) ([]model.AIChat, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	chats := make([]model.AIChat, 0)
	for _, chat := range a.chats {
		if chat.UserID == userID {
			chats = append(chats, cloneChat(*chat))
		}
	}
	slices.SortFunc(
		chats, func(x, y model.AIChat) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		},
	)
	return chats, nil
}

func (a *AIChatStorage) CreateChat(_ context.Context, chat model.AIChat) (model.AIChat, error) {
	if chat.ChatID == uuid.Nil {
		chat.ChatID = uuid.New()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	if chat.Messages == nil {
		chat.Messages = make([]model.Message, 0)
	}
	stored := cloneChat(chat)

	a.mu.Lock()
	a.chats[chat.ChatID] = &stored
	a.mu.Unlock()
	return cloneChat(chat), nil
}

func (a *AIChatStorage) GetChat(_ context.Context, chatID uuid.UUID) (model.AIChat, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	chat, ok := a.chats[chatID]
	if !ok {
		return model.AIChat{}, model.ErrChatDoesNotExist
	}
	return cloneChat(*chat), nil
}

func (a *AIChatStorage) AddMessageToChat(_ context.Context, chatID uuid.UUID, message model.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	chat, ok := a.chats[chatID]
	if !ok {
		return model.ErrChatDoesNotExist
	}
	chat.Messages = append(chat.Messages, message)
	return nil
}

func (a *AIChatStorage) SetChatTitle(_ context.Context, chatID uuid.UUID, title string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	chat, ok := a.chats[chatID]
	if !ok {
		return model.ErrChatDoesNotExist
	}
	chat.Title = title
	return nil
}

func (a *AIChatStorage) DeleteChat(_ context.Context, chatID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.chats[chatID]; !ok {
		return model.ErrChatDoesNotExist
	}
	delete(a.chats, chatID)
	return nil
}

func cloneChat(chat model.AIChat) model.AIChat {
	chat.Messages = slices.Clone(chat.Messages)
	if chat.Roleplay != nil {
		roleplay := *chat.Roleplay
		chat.Roleplay = &roleplay
	}
	if chat.Learning != nil {
		learning := *chat.Learning
		chat.Learning = &learning
	}
	return chat
}
