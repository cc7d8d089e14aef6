package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
	in_memory "github.com/iamvkosarev/lunaris-ai/internal/storage/in-memory"
)

func newTestUsers(telegramCfg config.Telegram) *UserUsecase {
	return NewUserUsecase(UserUsecaseDeps{UserStorage: in_memory.NewUserStorage()}, telegramCfg)
}

func newTestAiChat(cfg config.AIChat) (*AiChatUsecase, *UserUsecase) {
	users := newTestUsers(config.Telegram{AdminTelegramIDList: []int64{1}, ProTelegramIDList: []int64{2}})
	chats := NewAiChatUsecase(AiChatUsecaseDeps{AiChatStorage: in_memory.NewAIChatStorage(), User: users}, cfg)
	return chats, users
}

var accessCfg = config.AIChat{
	DefaultModel: "Lunaris-Mind",
	AccessModelsPerRoles: []config.RoleModels{
		{Role: "default", Models: []string{"Lunaris-Mind", "Luna-V", "Luna-O"}},
		{Role: "pro", Models: []string{"Luna-Deep", "Luna-X", "bogus"}},
	},
}

func TestAiChatUsecase_AvailableModels(t *testing.T) {
	chats, users := newTestAiChat(accessCfg)
	ctx := context.Background()

	regular, err := users.GetUserInfoForTelegramUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(
		t, []model.ModelIdentity{model.ModelLunarisMind, model.ModelLunaV, model.ModelLunaO}, chats.AvailableModels(regular),
	)

	pro, err := users.GetUserInfoForTelegramUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.AllModelIdentities, chats.AvailableModels(pro))

	open, _ := newTestAiChat(config.AIChat{})
	assert.Equal(t, model.AllModelIdentities, open.AvailableModels(regular))
	assert.Equal(t, model.ModelLunarisMind, open.DefaultModel())
}

func TestAiChatUsecase_CreateChat(t *testing.T) {
	chats, users := newTestAiChat(accessCfg)
	ctx := context.Background()
	user, err := users.GetUserInfoForTelegramUser(ctx, 100)
	require.NoError(t, err)

	_, err = chats.CreateChat(ctx, user.UserID, model.ModelLunaDeep)
	assert.ErrorIs(t, err, ErrUserRoleHasNotAccessToModel)

	chat, err := chats.CreateChat(ctx, user.UserID, model.ModelLunaV)
	require.NoError(t, err)
	assert.Equal(t, DefaultChatTitle, chat.Title)
	assert.Empty(t, chat.Messages)

	user, err = users.GetUserInfo(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, chat.ChatID, user.LastAIChat)

	current, created, err := chats.CurrentChat(ctx, user)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ChatID, current.ChatID)
}

func TestAiChatUsecase_CurrentChatCreatesDefault(t *testing.T) {
	chats, users := newTestAiChat(accessCfg)
	ctx := context.Background()
	user, err := users.GetUserInfoForTelegramUser(ctx, 100)
	require.NoError(t, err)

	chat, created, err := chats.CurrentChat(ctx, user)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.ModelLunarisMind, chat.Model)

	user.LastAIChat = uuid.New()
	chat, created, err = chats.CurrentChat(ctx, user)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestAiChatUsecase_ModeChats(t *testing.T) {
	chats, users := newTestAiChat(accessCfg)
	ctx := context.Background()
	user, err := users.GetUserInfoForTelegramUser(ctx, 100)
	require.NoError(t, err)

	roleplay, err := chats.CreateRoleplayChat(
		ctx, user.UserID, model.RoleplayConfig{CharacterName: "Vale", Scenario: "Rain on the deck"},
	)
	require.NoError(t, err)
	assert.Equal(t, "Vale", roleplay.Title)
	require.Len(t, roleplay.Messages, 1)
	assert.Equal(t, "*Rain on the deck*", roleplay.Messages[0].Content)
	assert.Equal(t, model.MessageRoleModel, roleplay.Messages[0].Role)

	learning, err := chats.CreateLearningChat(
		ctx, user.UserID, model.LearningConfig{Topic: "Go", CurrentLevel: model.LearningLevelBeginner, Goal: "CLI"},
		model.LanguageEnglish,
	)
	require.NoError(t, err)
	assert.Equal(t, model.ChatModeLearning, learning.Mode)
	require.Len(t, learning.Messages, 1)
	assert.Contains(t, learning.Messages[0].Content, "**Go**")
}

func TestAiChatUsecase_MessagesTitleAndClear(t *testing.T) {
	chats, users := newTestAiChat(accessCfg)
	ctx := context.Background()
	user, err := users.GetUserInfoForTelegramUser(ctx, 100)
	require.NoError(t, err)
	chat, err := chats.CreateChat(ctx, user.UserID, model.ModelLunaO)
	require.NoError(t, err)

	require.NoError(t, chats.AddMessageToChat(ctx, chat.ChatID, model.Message{Role: model.MessageRoleUser, Content: "hi"}))
	require.NoError(t, chats.SetChatTitle(ctx, chat.ChatID, "Greetings"))

	got, err := chats.GetChat(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "Greetings", got.Title)
	require.Len(t, got.Messages, 1)
	assert.NotEqual(t, uuid.Nil, got.Messages[0].ID)
	assert.False(t, got.Messages[0].Timestamp.IsZero())

	_, err = chats.CreateChat(ctx, user.UserID, model.ModelLunaV)
	require.NoError(t, err)
	removed, err := chats.ClearUserChats(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := chats.ListUserChats(ctx, user.UserID)
	require.NoError(t, err)
	assert.Empty(t, list)
	user, err = users.GetUserInfo(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, user.LastAIChat)
}
