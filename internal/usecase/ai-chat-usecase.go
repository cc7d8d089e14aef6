package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

var (
	ErrUserRoleHasNotAnyAvailableModels = errors.New("user role has not any available models")
	ErrUserRoleHasNotAccessToModel      = errors.New("user has not access to model")
)

type AiChatStorage interface {
	GetChat(ctx context.Context, chatID uuid.UUID) (model.AIChat, error)
	CreateChat(ctx context.Context, chat model.AIChat) (model.AIChat, error)
	AddMessageToChat(ctx context.Context, chatID uuid.UUID, message model.Message) error
	SetChatTitle(ctx context.Context, chatID uuid.UUID, title string) error
	ListUserChats(ctx context.Context, userID uuid.UUID) ([]model.AIChat, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
}

type AiChatUsecaseDeps struct {
	AiChatStorage AiChatStorage
	User          *UserUsecase
}

type AiChatUsecase struct {
	AiChatUsecaseDeps
	cfg                  config.AIChat
	defaultModel         model.ModelIdentity
	userRoleToChatModels map[model.UserRole][]model.ModelIdentity
}

func NewAiChatUsecase(deps AiChatUsecaseDeps, cfg config.AIChat) *AiChatUsecase {
	userRoleToChatModels := make(map[model.UserRole][]model.ModelIdentity)
	for _, roleToModels := range cfg.AccessModelsPerRoles {
		role := model.ParseUserRole(roleToModels.Role)
		for _, name := range roleToModels.Models {
			identity, err := model.ParseModelIdentity(name)
			if err != nil {
				continue
			}
			userRoleToChatModels[role] = append(userRoleToChatModels[role], identity)
		}
	}
	defaultModel, err := model.ParseModelIdentity(cfg.DefaultModel)
	if err != nil {
		defaultModel = model.ModelLunarisMind
	}
	return &AiChatUsecase{
		AiChatUsecaseDeps:    deps,
		cfg:                  cfg,
		defaultModel:         defaultModel,
		userRoleToChatModels: userRoleToChatModels,
	}
}

func (a *AiChatUsecase) DefaultModel() model.ModelIdentity {
	return a.defaultModel
}

func (a *AiChatUsecase) GetChat(ctx context.Context, chatID uuid.UUID) (model.AIChat, error) {
	return a.AiChatStorage.GetChat(ctx, chatID)
}

// CreateChat opens a default chat with aiModel and makes it the user's current chat.
func (a *AiChatUsecase) CreateChat(ctx context.Context, userID uuid.UUID, aiModel model.ModelIdentity) (model.AIChat, error) {
	return a.createChat(
		ctx, userID, model.AIChat{
			UserID: userID,
			Title:  DefaultChatTitle,
			Model:  aiModel,
			Mode:   model.ChatModeDefault,
		}, "",
	)
}

func (a *AiChatUsecase) CreateRoleplayChat(
	ctx context.Context,
	userID uuid.UUID,
	rc model.RoleplayConfig,
) (model.AIChat, error) {
	chat := model.AIChat{
		UserID:   userID,
		Title:    rc.CharacterName,
		Model:    a.defaultModel,
		Mode:     model.ChatModeRoleplay,
		Roleplay: &rc,
	}
	return a.createChat(ctx, userID, chat, OpeningMessage(chat, model.LanguageEnglish))
}

func (a *AiChatUsecase) CreateLearningChat(
	ctx context.Context,
	userID uuid.UUID,
	lc model.LearningConfig,
	lang model.Language,
) (model.AIChat, error) {
	chat := model.AIChat{
		UserID:   userID,
		Title:    lc.Topic,
		Model:    a.defaultModel,
		Mode:     model.ChatModeLearning,
		Learning: &lc,
	}
	return a.createChat(ctx, userID, chat, OpeningMessage(chat, lang))
}

func (a *AiChatUsecase) createChat(
	ctx context.Context,
	userID uuid.UUID,
	chat model.AIChat,
	opening string,
) (model.AIChat, error) {
	user, err := a.User.GetUserInfo(ctx, userID)
	if err != nil {
		return model.AIChat{}, fmt.Errorf("failed get user info: %w", err)
	}
	availableModels := a.GetAvailableForUserModels(user)
	if len(availableModels) == 0 {
		return model.AIChat{}, ErrUserRoleHasNotAnyAvailableModels
	}
	if _, ok := availableModels[chat.Model]; !ok {
		return model.AIChat{}, fmt.Errorf("%w: %s", ErrUserRoleHasNotAccessToModel, chat.Model)
	}
	if opening != "" {
		chat.Messages = []model.Message{
			{
				ID:        uuid.New(),
				Role:      model.MessageRoleModel,
				Content:   opening,
				Timestamp: time.Now(),
			},
		}
	}
	chat, err = a.AiChatStorage.CreateChat(ctx, chat)
	if err != nil {
		return model.AIChat{}, fmt.Errorf("failed to create chat: %w", err)
	}
	if err = a.User.UpdateUserLastAIChat(ctx, userID, chat.ChatID); err != nil {
		return model.AIChat{}, fmt.Errorf("failed to update last chat: %w", err)
	}
	return chat, nil
}

// CurrentChat returns the user's last chat, opening a new one with the default model when there
// is none.
func (a *AiChatUsecase) CurrentChat(ctx context.Context, user model.User) (model.AIChat, bool, error) {
	if user.LastAIChat != uuid.Nil {
		chat, err := a.AiChatStorage.GetChat(ctx, user.LastAIChat)
		if err == nil {
			return chat, false, nil
		}
		if !errors.Is(err, model.ErrChatDoesNotExist) {
			return model.AIChat{}, false, err
		}
	}
	chat, err := a.CreateChat(ctx, user.UserID, a.defaultModel)
	if err != nil {
		return model.AIChat{}, false, err
	}
	return chat, true, nil
}

func (a *AiChatUsecase) ListUserChats(ctx context.Context, userID uuid.UUID) ([]model.AIChat, error) {
	return a.AiChatStorage.ListUserChats(ctx, userID)
}

func (a *AiChatUsecase) AddMessageToChat(ctx context.Context, chatID uuid.UUID, message model.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	return a.AiChatStorage.AddMessageToChat(ctx, chatID, message)
}

func (a *AiChatUsecase) SetChatTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	return a.AiChatStorage.SetChatTitle(ctx, chatID, title)
}

// ClearUserChats deletes every chat of the user and returns how many were removed.
func (a *AiChatUsecase) ClearUserChats(ctx context.Context, userID uuid.UUID) (int, error) {
	chats, err := a.AiChatStorage.ListUserChats(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list chats: %w", err)
	}
	for _, chat := range chats {
		if err = a.AiChatStorage.DeleteChat(ctx, chat.ChatID); err != nil {
			return 0, fmt.Errorf("failed to delete chat %s: %w", chat.ChatID, err)
		}
	}
	if err = a.User.UpdateUserLastAIChat(ctx, userID, uuid.Nil); err != nil {
		return 0, fmt.Errorf("failed to reset last chat: %w", err)
	}
	return len(chats), nil
}

// GetAvailableForUserModels merges the models of every user role. Without any access rules
// configured all identities are available.
func (a *AiChatUsecase) GetAvailableForUserModels(user model.User) map[model.ModelIdentity]struct{} {
	availableModels := make(map[model.ModelIdentity]struct{})
	if len(a.userRoleToChatModels) == 0 {
		for _, identity := range model.AllModelIdentities {
			availableModels[identity] = struct{}{}
		}
		return availableModels
	}
	for _, role := range user.Roles {
		for _, aiModel := range a.userRoleToChatModels[role] {
			availableModels[aiModel] = struct{}{}
		}
	}
	return availableModels
}

// AvailableModels lists the user's models in display order.
func (a *AiChatUsecase) AvailableModels(user model.User) []model.ModelIdentity {
	available := a.GetAvailableForUserModels(user)
	return slices.DeleteFunc(
		slices.Clone(model.AllModelIdentities), func(identity model.ModelIdentity) bool {
			_, ok := available[identity]
			return !ok
		},
	)
}
