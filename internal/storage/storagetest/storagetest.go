// Package storagetest holds behaviour tests shared by every storage driver.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type ChatStorage interface {
	GetChat(ctx context.Context, chatID uuid.UUID) (model.AIChat, error)
	CreateChat(ctx context.Context, chat model.AIChat) (model.AIChat, error)
	AddMessageToChat(ctx context.Context, chatID uuid.UUID, message model.Message) error
	SetChatTitle(ctx context.Context, chatID uuid.UUID, title string) error
	ListUserChats(ctx context.Context, userID uuid.UUID) ([]model.AIChat, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
}

type UserStorage interface {
	GetUserIDForTelegramUser(ctx context.Context, userTelegramID int64) (uuid.UUID, error)
	CreateNewTelegramUser(ctx context.Context, userTelegramID int64, roles []model.UserRole) (uuid.UUID, error)
	GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateUserLastAIChat(ctx context.Context, userID uuid.UUID, aiChatID uuid.UUID) error
	UpdateUserSettings(ctx context.Context, userID uuid.UUID, settings model.UserSettings) error
}

type KnowledgeStorage interface {
	AddKnowledge(ctx context.Context, userID uuid.UUID, item model.KnowledgeItem) (model.KnowledgeItem, error)
	ListKnowledge(ctx context.Context, userID uuid.UUID) ([]model.KnowledgeItem, error)
	DeleteKnowledge(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
	ClearKnowledge(ctx context.Context, userID uuid.UUID) error
}

func TestChatStorage(t *testing.T, storage ChatStorage) {
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	older, err := storage.CreateChat(
		ctx, model.AIChat{UserID: userID, Title: "older", Model: model.ModelLunaX, CreatedAt: base},
	)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, older.ChatID)

	newer, err := storage.CreateChat(
		ctx, model.AIChat{
			UserID:    userID,
			Title:     "Captain",
			Model:     model.ModelLunarisMind,
			CreatedAt: base.Add(time.Hour),
			Mode:      model.ChatModeRoleplay,
			Roleplay:  &model.RoleplayConfig{CharacterName: "Captain", Scenario: "storm"},
		},
	)
	require.NoError(t, err)

	_, err = storage.CreateChat(ctx, model.AIChat{UserID: uuid.New(), Title: "someone else"})
	require.NoError(t, err)

	message := model.Message{
		ID:             uuid.New(),
		Role:           model.MessageRoleModel,
		Content:        "answer",
		Timestamp:      base.Add(2 * time.Hour),
		ThoughtProcess: "hmm",
		ModelUsed:      model.ModelLunaO,
		GroundingMetadata: &model.GroundingMetadata{
			GroundingChunks: []model.GroundingChunk{{Web: &model.WebSource{URI: "https://go.dev", Title: "Go"}}},
		},
		SuggestedReplies: []string{"more"},
		Attachments: []model.Attachment{
			{ID: "a1", Type: model.AttachmentTypeImage, MIMEType: "image/png", Data: "aGk="},
		},
	}
	require.NoError(t, storage.AddMessageToChat(ctx, newer.ChatID, message))
	require.NoError(t, storage.SetChatTitle(ctx, newer.ChatID, "Storm"))

	got, err := storage.GetChat(ctx, newer.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "Storm", got.Title)
	assert.Equal(t, model.ChatModeRoleplay, got.Mode)
	require.NotNil(t, got.Roleplay)
	assert.Equal(t, "Captain", got.Roleplay.CharacterName)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, message.ID, got.Messages[0].ID)
	assert.Equal(t, message.Content, got.Messages[0].Content)
	assert.Equal(t, message.ThoughtProcess, got.Messages[0].ThoughtProcess)
	assert.Equal(t, message.ModelUsed, got.Messages[0].ModelUsed)
	assert.Equal(t, message.GroundingMetadata, got.Messages[0].GroundingMetadata)
	assert.Equal(t, message.Attachments, got.Messages[0].Attachments)
	assert.True(t, message.Timestamp.Equal(got.Messages[0].Timestamp))

	chats, err := storage.ListUserChats(ctx, userID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, newer.ChatID, chats[0].ChatID)
	assert.Equal(t, older.ChatID, chats[1].ChatID)

	require.NoError(t, storage.DeleteChat(ctx, older.ChatID))
	_, err = storage.GetChat(ctx, older.ChatID)
	assert.ErrorIs(t, err, model.ErrChatDoesNotExist)
	chats, err = storage.ListUserChats(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, chats, 1)

	assert.ErrorIs(t, storage.AddMessageToChat(ctx, uuid.New(), message), model.ErrChatDoesNotExist)
	assert.ErrorIs(t, storage.SetChatTitle(ctx, uuid.New(), "x"), model.ErrChatDoesNotExist)

	empty, err := storage.ListUserChats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatStorageConcurrentAppends(t *testing.T, storage ChatStorage) {
	ctx := context.Background()
	chat, err := storage.CreateChat(ctx, model.AIChat{UserID: uuid.New()})
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(
				t, storage.AddMessageToChat(ctx, chat.ChatID, model.Message{ID: uuid.New(), Role: model.MessageRoleUser}),
			)
		}()
	}
	wg.Wait()

	got, err := storage.GetChat(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers)
}

func TestUserStorage(t *testing.T, storage UserStorage) {
	ctx := context.Background()

	_, err := storage.GetUserIDForTelegramUser(ctx, 42)
	assert.ErrorIs(t, err, model.ErrTelegramUserDoesNotExists)

	userID, err := storage.CreateNewTelegramUser(ctx, 42, []model.UserRole{model.UserRoleDefault, model.UserRoleAdmin})
	require.NoError(t, err)

	_, err = storage.CreateNewTelegramUser(ctx, 42, nil)
	assert.Error(t, err)

	gotID, err := storage.GetUserIDForTelegramUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)

	user, err := storage.GetUserInfo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.TelegramID)
	assert.Equal(t, []model.UserRole{model.UserRoleDefault, model.UserRoleAdmin}, user.Roles)
	assert.Equal(t, uuid.Nil, user.LastAIChat)
	assert.Equal(t, model.DefaultUserSettings(), user.Settings)

	chatID := uuid.New()
	require.NoError(t, storage.UpdateUserLastAIChat(ctx, userID, chatID))
	settings := model.UserSettings{
		DeepThink: true,
		UseSearch: true,
		Language:  model.LanguageArabic,
		Persona:   model.Persona{Name: "Nova", Tone: "Calm", Memory: "likes tea"},
		Emotion:   model.EmotionHappy,
	}
	require.NoError(t, storage.UpdateUserSettings(ctx, userID, settings))

	user, err = storage.GetUserInfo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, chatID, user.LastAIChat)
	assert.Equal(t, settings, user.Settings)

	_, err = storage.GetUserInfo(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrUserDoesNotExists)
	assert.ErrorIs(t, storage.UpdateUserSettings(ctx, uuid.New(), settings), model.ErrUserDoesNotExists)
}

func TestKnowledgeStorage(t *testing.T, storage KnowledgeStorage) {
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := storage.AddKnowledge(ctx, userID, model.KnowledgeItem{Title: "Project", Content: "Apollo", UpdatedAt: base})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	second, err := storage.AddKnowledge(
		ctx, userID, model.KnowledgeItem{Title: "Stack", Content: "Go", UpdatedAt: base.Add(time.Minute)},
	)
	require.NoError(t, err)

	items, err := storage.ListKnowledge(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, "Apollo", items[0].Content)
	assert.Equal(t, second.ID, items[1].ID)

	require.NoError(t, storage.DeleteKnowledge(ctx, userID, first.ID))
	assert.ErrorIs(t, storage.DeleteKnowledge(ctx, userID, first.ID), model.ErrKnowledgeItemDoesNotExist)
	items, err = storage.ListKnowledge(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, storage.ClearKnowledge(ctx, userID))
	items, err = storage.ListKnowledge(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
