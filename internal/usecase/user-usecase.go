package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type UserStorage interface {
	GetUserIDForTelegramUser(ctx context.Context, userTelegramID int64) (uuid.UUID, error)
	CreateNewTelegramUser(ctx context.Context, userTelegramID int64, roles []model.UserRole) (uuid.UUID, error)
	GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateUserLastAIChat(ctx context.Context, userID uuid.UUID, aiChatID uuid.UUID) error
	UpdateUserSettings(ctx context.Context, userID uuid.UUID, settings model.UserSettings) error
}

type UserUsecaseDeps struct {
	UserStorage UserStorage
}

type UserUsecase struct {
	UserUsecaseDeps
	telegramCfg config.Telegram
}

func NewUserUsecase(deps UserUsecaseDeps, telegramCfg config.Telegram) *UserUsecase {
	return &UserUsecase{
		UserUsecaseDeps: deps,
		telegramCfg:     telegramCfg,
	}
}

// GetUserInfoForTelegramUser returns the user bound to a telegram account, registering it on
// first contact.
func (u *UserUsecase) GetUserInfoForTelegramUser(ctx context.Context, userTelegramID int64) (model.User, error) {
	userID, err := u.UserStorage.GetUserIDForTelegramUser(ctx, userTelegramID)
	if err != nil {
		if !errors.Is(err, model.ErrTelegramUserDoesNotExists) {
			return model.User{}, fmt.Errorf("failed to get telegram user: %w", err)
		}
		userID, err = u.UserStorage.CreateNewTelegramUser(ctx, userTelegramID, u.getTelegramUserRoles(userTelegramID))
		if err != nil {
			return model.User{}, fmt.Errorf("failed to create telegram user: %w", err)
		}
	}
	return u.UserStorage.GetUserInfo(ctx, userID)
}

func (u *UserUsecase) GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := u.UserStorage.GetUserInfo(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (u *UserUsecase) UpdateUserLastAIChat(ctx context.Context, userID, aiChatID uuid.UUID) error {
	return u.UserStorage.UpdateUserLastAIChat(ctx, userID, aiChatID)
}

// UpdateSettings loads the user's settings, applies update and stores the result.
func (u *UserUsecase) UpdateSettings(
	ctx context.Context,
	userID uuid.UUID,
	update func(settings *model.UserSettings),
) (model.UserSettings, error) {
	user, err := u.UserStorage.GetUserInfo(ctx, userID)
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("failed to get user: %w", err)
	}
	settings := user.Settings
	update(&settings)
	if err = u.UserStorage.UpdateUserSettings(ctx, userID, settings); err != nil {
		return model.UserSettings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}

// HasAccess reports whether the user may talk to the bot when it is not public.
func (u *UserUsecase) HasAccess(user model.User) bool {
	if !u.telegramCfg.IsNotPublic {
		return true
	}
	for _, role := range user.Roles {
		if slices.Contains(u.telegramCfg.AvailableForRoles, role.String()) {
			return true
		}
	}
	return false
}

func (u *UserUsecase) getTelegramUserRoles(userTelegramID int64) []model.UserRole {
	roles := []model.UserRole{
		model.UserRoleDefault,
	}
	if slices.Contains(u.telegramCfg.AdminTelegramIDList, userTelegramID) {
		roles = append(roles, model.UserRoleAdmin)
	}
	if slices.Contains(u.telegramCfg.ProTelegramIDList, userTelegramID) {
		roles = append(roles, model.UserRolePro)
	}
	return roles
}
