package in_memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserStorage struct {
	mu               sync.RWMutex
	users            map[uuid.UUID]*model.User
	telegramUsersIDs map[int64]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:            make(map[uuid.UUID]*model.User),
		telegramUsersIDs: make(map[int64]uuid.UUID),
	}
}

func (u *UserStorage) CreateNewTelegramUser(
	_ context.Context,
	userTelegramID int64,
	roles []model.UserRole,
) (uuid.UUID, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.telegramUsersIDs[userTelegramID]; ok {
		return uuid.Nil, ErrUserAlreadyExists
	}
	userID := uuid.New()
	u.telegramUsersIDs[userTelegramID] = userID

	newUserRoles := []model.UserRole{
		model.UserRoleDefault,
	}
	for _, role := range roles {
		if !slices.Contains(newUserRoles, role) {
			newUserRoles = append(newUserRoles, role)
		}
	}
	u.users[userID] = &model.User{
		TelegramID: userTelegramID,
		UserID:     userID,
		Roles:      newUserRoles,
		Settings:   model.DefaultUserSettings(),
	}
	return userID, nil
}

func (u *UserStorage) UpdateUserLastAIChat(_ context.Context, userID uuid.UUID, aiChatID uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return model.ErrUserDoesNotExists
	}
	user.LastAIChat = aiChatID
	return nil
}

func (u *UserStorage) UpdateUserSettings(_ context.Context, userID uuid.UUID, settings model.UserSettings) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return model.ErrUserDoesNotExists
	}
	user.Settings = settings
	return nil
}

func (u *UserStorage) GetUserInfo(_ context.Context, userID uuid.UUID) (model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[userID]
	if !ok {
		return model.User{}, model.ErrUserDoesNotExists
	}
	info := *user
	info.Roles = slices.Clone(user.Roles)
	return info, nil
}

func (u *UserStorage) GetUserIDForTelegramUser(_ context.Context, userTelegramID int64) (uuid.UUID, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	userID, ok := u.telegramUsersIDs[userTelegramID]
	if !ok {
		return uuid.Nil, model.ErrTelegramUserDoesNotExists
	}
	return userID, nil
}
