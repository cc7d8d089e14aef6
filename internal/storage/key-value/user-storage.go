package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

var (
	ErrUserAlreadyExists = errors.New("userInternal already exists")
)

type personaInternal struct {
	Name    string `json:"name"`
	Tone    string `json:"tone"`
	Style   string `json:"style"`
	Context string `json:"context"`
	Memory  string `json:"memory,omitempty"`
}

type settingsInternal struct {
	DeepThink bool            `json:"deep_think"`
	UseSearch bool            `json:"use_search"`
	Language  model.Language  `json:"language"`
	Persona   personaInternal `json:"persona"`
	Emotion   model.Emotion   `json:"emotion"`
}

type userInternal struct {
	UserID     string            `json:"user_id"`
	TelegramID int64             `json:"telegram_id"`
	Roles      []model.UserRole  `json:"roles"`
	LastAIChat string            `json:"last_ai_chat"`
	Settings   *settingsInternal `json:"settings,omitempty"`
}

type UserStorage struct {
	rdb *redis.Client
}

func NewUserStorage(rdb *redis.Client) *UserStorage {
	return &UserStorage{
		rdb: rdb,
	}
}

func (u *UserStorage) CreateNewTelegramUser(
	ctx context.Context,
	userTelegramID int64,
	roles []model.UserRole,
) (uuid.UUID, error) {
	userTelegramIDKey := getUserTelegramIDKey(userTelegramID)
	userID := uuid.New()
	created, err := u.rdb.SetNX(ctx, userTelegramIDKey, userID.String(), 0).Result()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save userInternal %s: %w", userTelegramIDKey, err)
	}
	if !created {
		return uuid.Nil, ErrUserAlreadyExists
	}

	newUserRoles := []model.UserRole{
		model.UserRoleDefault,
	}
	for _, role := range roles {
		if !slices.Contains(newUserRoles, role) {
			newUserRoles = append(newUserRoles, role)
		}
	}
	settings := toSettingsInternal(model.DefaultUserSettings())
	user := userInternal{
		TelegramID: userTelegramID,
		UserID:     userID.String(),
		Roles:      newUserRoles,
		Settings:   &settings,
	}
	if err = u.setUser(ctx, userID, user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to set user: %w", err)
	}
	return userID, nil
}

func (u *UserStorage) UpdateUserLastAIChat(ctx context.Context, userID uuid.UUID, aiChatID uuid.UUID) error {
	user, err := u.getUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	user.LastAIChat = aiChatID.String()
	if err = u.setUser(ctx, userID, user); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}
	return nil
}

func (u *UserStorage) UpdateUserSettings(ctx context.Context, userID uuid.UUID, settings model.UserSettings) error {
	user, err := u.getUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	settingsInt := toSettingsInternal(settings)
	user.Settings = &settingsInt
	if err = u.setUser(ctx, userID, user); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}
	return nil
}

func (u *UserStorage) GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	userInt, err := u.getUser(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	lastAIChat := uuid.Nil
	if userInt.LastAIChat != "" {
		lastAIChat, err = uuid.Parse(userInt.LastAIChat)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to parse last chat of user %s: %w", userID, err)
		}
	}
	settings := model.DefaultUserSettings()
	if userInt.Settings != nil {
		settings = fromSettingsInternal(*userInt.Settings)
	}

	return model.User{
		TelegramID: userInt.TelegramID,
		UserID:     userID,
		LastAIChat: lastAIChat,
		Roles:      userInt.Roles,
		Settings:   settings,
	}, nil
}

func (u *UserStorage) GetUserIDForTelegramUser(ctx context.Context, userTelegramID int64) (uuid.UUID, error) {
	userTelegramIDKey := getUserTelegramIDKey(userTelegramID)
	userIDStr, err := u.rdb.Get(ctx, userTelegramIDKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, model.ErrTelegramUserDoesNotExists
		}
		return uuid.Nil, fmt.Errorf("failed to get telegram user id %s: %w", userTelegramIDKey, err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse userID %s: %w", userIDStr, err)
	}
	return userID, nil
}

func (u *UserStorage) getUser(ctx context.Context, userID uuid.UUID) (userInternal, error) {
	userRaw, err := u.rdb.Get(ctx, getUserIDKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return userInternal{}, model.ErrUserDoesNotExists
		}
		return userInternal{}, fmt.Errorf("failed to get userInternal %s: %w", userID, err)
	}
	var user userInternal
	if err = json.Unmarshal([]byte(userRaw), &user); err != nil {
		return userInternal{}, fmt.Errorf("failed to unmarshal userInternal %s: %w", userID, err)
	}
	return user, nil
}

func (u *UserStorage) setUser(ctx context.Context, userID uuid.UUID, userInt userInternal) error {
	newUserJSON, err := json.Marshal(userInt)
	if err != nil {
		return fmt.Errorf("failed to marshal internal user: %w", err)
	}
	if err = u.rdb.Set(ctx, getUserIDKey(userID), newUserJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save userInternal %s: %w", userID, err)
	}
	return nil
}

func toSettingsInternal(s model.UserSettings) settingsInternal {
	return settingsInternal{
		DeepThink: s.DeepThink,
		UseSearch: s.UseSearch,
		Language:  s.Language,
		Persona:   personaInternal(s.Persona),
		Emotion:   s.Emotion,
	}
}

func fromSettingsInternal(s settingsInternal) model.UserSettings {
	return model.UserSettings{
		DeepThink: s.DeepThink,
		UseSearch: s.UseSearch,
		Language:  s.Language,
		Persona:   model.Persona(s.Persona),
		Emotion:   s.Emotion,
	}
}

func getUserTelegramIDKey(id int64) string {
	return fmt.Sprintf("telegram_%d", id)
}

func getUserIDKey(id uuid.UUID) string {
	return fmt.Sprintf("user_%s", id)
}
