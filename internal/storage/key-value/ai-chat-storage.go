package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const maxTxRetries = 10

var (
	ErrUserChatsIDsDoNotExist = errors.New("user chat ids does not exist")
	ErrTooManyConflicts       = errors.New("too many concurrent updates")
)

type messageInternal struct {
	ID                string                   `json:"id"`
	Role              model.MessageRole        `json:"role"`
	Content           string                   `json:"content"`
	Timestamp         time.Time                `json:"timestamp"`
	Attachments       []model.Attachment       `json:"attachments,omitempty"`
	ThoughtProcess    string                   `json:"thought_process,omitempty"`
	GroundingMetadata *model.GroundingMetadata `json:"grounding_metadata,omitempty"`
	ModelUsed         model.ModelIdentity      `json:"model_used,omitempty"`
	SuggestedReplies  []string                 `json:"suggested_replies,omitempty"`
}

type chatInternal struct {
	ChatID    string                `json:"chat_id"`
	UserID    string                `json:"user_id"`
	Title     string                `json:"title"`
	Messages  []messageInternal     `json:"messages"`
	Model     model.ModelIdentity   `json:"model"`
	CreatedAt time.Time             `json:"created_at"`
	Mode      model.ChatMode        `json:"mode"`
	Roleplay  *model.RoleplayConfig `json:"roleplay,omitempty"`
	Learning  *model.LearningConfig `json:"learning,omitempty"`
}

type userChatsIDs struct {
	Chats []string `json:"chats"`
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type AIChatStorage struct {
	rdb *redis.Client
}

func NewAIChatStorage(rdb *redis.Client) *AIChatStorage {
	return &AIChatStorage{
		rdb: rdb,
	}
}

func (a *AIChatStorage) CreateChat(ctx context.Context, chat model.AIChat) (model.AIChat, error) {
	if chat.ChatID == uuid.Nil {
		chat.ChatID = uuid.New()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	if chat.Messages == nil {
		chat.Messages = make([]model.Message, 0)
	}

	if err := a.setChatInt(ctx, chat.ChatID, toChatInternal(chat)); err != nil {
		return model.AIChat{}, fmt.Errorf("failed to set chat internal %s: %w", chat.ChatID, err)
	}
	err := a.updateUserChatsIDs(
		ctx, chat.UserID, func(ids *userChatsIDs) {
			ids.Chats = append(ids.Chats, chat.ChatID.String())
		},
	)
	if err != nil {
		return model.AIChat{}, fmt.Errorf("failed to set user chats ids: %w", err)
	}
	return chat, nil
}

// ListUserChats returns the user's chats, newest first. Ids whose chat blob is gone are skipped.
func (a *AIChatStorage) ListUserChats(ctx context.Context, userID uuid.UUID) ([]model.AIChat, error) {
	userChatsIDsInt, err := getUserChatsIDs(ctx, a.rdb, userID)
	if err != nil {
		if errors.Is(err, ErrUserChatsIDsDoNotExist) {
			return []model.AIChat{}, nil
		}
		return nil, fmt.Errorf("failed to get user chats ids: %w", err)
	}
	chats := make([]model.AIChat, 0, len(userChatsIDsInt.Chats))
	for _, chatIDStr := range userChatsIDsInt.Chats {
		chatID, err := uuid.Parse(chatIDStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chatID %s: %w", chatIDStr, err)
		}
		chat, err := a.GetChat(ctx, chatID)
		if err != nil {
			if errors.Is(err, model.ErrChatDoesNotExist) {
				continue
			}
			return nil, err
		}
		chats = append(chats, chat)
	}
	slices.SortFunc(
		chats, func(x, y model.AIChat) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		},
	)
	return chats, nil
}

func (a *AIChatStorage) GetChat(ctx context.Context, chatID uuid.UUID) (model.AIChat, error) {
	chatInt, err := getChatInt(ctx, a.rdb, chatID)
	if err != nil {
		return model.AIChat{}, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}
	chat, err := fromChatInternal(chatInt)
	if err != nil {
		return model.AIChat{}, fmt.Errorf("failed to parse chat %s: %w", chatID, err)
	}
	return chat, nil
}

func (a *AIChatStorage) AddMessageToChat(ctx context.Context, chatID uuid.UUID, message model.Message) error {
	return a.updateChat(
		ctx, chatID, func(chatInt *chatInternal) {
			chatInt.Messages = append(chatInt.Messages, toMessageInternal(message))
		},
	)
}

func (a *AIChatStorage) SetChatTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	return a.updateChat(
		ctx, chatID, func(chatInt *chatInternal) {
			chatInt.Title = title
		},
	)
}

func (a *AIChatStorage) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	chatInt, err := getChatInt(ctx, a.rdb, chatID)
	if err != nil {
		return err
	}
	if err = a.rdb.Del(ctx, getChatIDKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", chatID, err)
	}
	userID, err := uuid.Parse(chatInt.UserID)
	if err != nil {
		return fmt.Errorf("failed to parse userID %s: %w", chatInt.UserID, err)
	}
	return a.updateUserChatsIDs(
		ctx, userID, func(ids *userChatsIDs) {
			ids.Chats = slices.DeleteFunc(
				ids.Chats, func(id string) bool {
					return id == chatID.String()
				},
			)
		},
	)
}

// updateChat applies update under WATCH so concurrent writers of one chat never lose messages.
func (a *AIChatStorage) updateChat(ctx context.Context, chatID uuid.UUID, update func(*chatInternal)) error {
	key := getChatIDKey(chatID)
	txf := func(tx *redis.Tx) error {
		chatInt, err := getChatInt(ctx, tx, chatID)
		if err != nil {
			return err
		}
		update(&chatInt)
		chatIntJSON, err := json.Marshal(chatInt)
		if err != nil {
			return fmt.Errorf("failed to marshal internal chat: %w", err)
		}
		_, err = tx.TxPipelined(
			ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, chatIntJSON, 0)
				return nil
			},
		)
		return err
	}
	return watchWithRetry(ctx, a.rdb, txf, key)
}

func (a *AIChatStorage) setChatInt(ctx context.Context, chatID uuid.UUID, chatInt chatInternal) error {
	chatIDKey := getChatIDKey(chatID)
	chatIntJSON, err := json.Marshal(chatInt)
	if err != nil {
		return fmt.Errorf("failed to marshal internal chat: %w", err)
	}
	if err = a.rdb.Set(ctx, chatIDKey, chatIntJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save chatInternal %s: %w", chatIDKey, err)
	}
	return nil
}

func (a *AIChatStorage) updateUserChatsIDs(ctx context.Context, userID uuid.UUID, update func(*userChatsIDs)) error {
	key := getUserChatsKey(userID)
	txf := func(tx *redis.Tx) error {
		ids, err := getUserChatsIDs(ctx, tx, userID)
		if err != nil {
			if !errors.Is(err, ErrUserChatsIDsDoNotExist) {
				return err
			}
			ids = userChatsIDs{Chats: make([]string, 0)}
		}
		update(&ids)
		idsJSON, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("failed to marshal user chats ids: %w", err)
		}
		_, err = tx.TxPipelined(
			ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, idsJSON, 0)
				return nil
			},
		)
		return err
	}
	return watchWithRetry(ctx, a.rdb, txf, key)
}

func getChatInt(ctx context.Context, rdb getter, chatID uuid.UUID) (chatInternal, error) {
	chatIntRaw, err := rdb.Get(ctx, getChatIDKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return chatInternal{}, model.ErrChatDoesNotExist
		}
		return chatInternal{}, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}
	var chatInt chatInternal
	if err = json.Unmarshal([]byte(chatIntRaw), &chatInt); err != nil {
		return chatInternal{}, fmt.Errorf("failed to unmarshal chat %s: %w", chatID, err)
	}
	return chatInt, nil
}

func getUserChatsIDs(ctx context.Context, rdb getter, userID uuid.UUID) (userChatsIDs, error) {
	userChatsRaw, err := rdb.Get(ctx, getUserChatsKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return userChatsIDs{}, ErrUserChatsIDsDoNotExist
		}
		return userChatsIDs{}, fmt.Errorf("failed to get userChatsIDs %s: %w", userID, err)
	}
	var userChats userChatsIDs
	if err = json.Unmarshal([]byte(userChatsRaw), &userChats); err != nil {
		return userChatsIDs{}, fmt.Errorf("failed to unmarshal userChatsIDs %s: %w", userID, err)
	}
	return userChats, nil
}

func watchWithRetry(ctx context.Context, rdb *redis.Client, txf func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := rdb.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooManyConflicts
}

func toChatInternal(chat model.AIChat) chatInternal {
	messages := make([]messageInternal, 0, len(chat.Messages))
	for _, message := range chat.Messages {
		messages = append(messages, toMessageInternal(message))
	}
	return chatInternal{
		ChatID:    chat.ChatID.String(),
		UserID:    chat.UserID.String(),
		Title:     chat.Title,
		Messages:  messages,
		Model:     chat.Model,
		CreatedAt: chat.CreatedAt,
		Mode:      chat.Mode,
		Roleplay:  chat.Roleplay,
		Learning:  chat.Learning,
	}
}

func fromChatInternal(chatInt chatInternal) (model.AIChat, error) {
	chatID, err := uuid.Parse(chatInt.ChatID)
	if err != nil {
		return model.AIChat{}, err
	}
	userID, err := uuid.Parse(chatInt.UserID)
	if err != nil {
		return model.AIChat{}, err
	}
	messages := make([]model.Message, 0, len(chatInt.Messages))
	for _, msg := range chatInt.Messages {
		messageID, err := uuid.Parse(msg.ID)
		if err != nil {
			return model.AIChat{}, err
		}
		messages = append(
			messages, model.Message{
				ID:                messageID,
				Role:              msg.Role,
				Content:           msg.Content,
				Timestamp:         msg.Timestamp,
				Attachments:       msg.Attachments,
				ThoughtProcess:    msg.ThoughtProcess,
				GroundingMetadata: msg.GroundingMetadata,
				ModelUsed:         msg.ModelUsed,
				SuggestedReplies:  msg.SuggestedReplies,
			},
		)
	}
	return model.AIChat{
		ChatID:    chatID,
		UserID:    userID,
		Title:     chatInt.Title,
		Messages:  messages,
		Model:     chatInt.Model,
		CreatedAt: chatInt.CreatedAt,
		Mode:      chatInt.Mode,
		Roleplay:  chatInt.Roleplay,
		Learning:  chatInt.Learning,
	}, nil
}

func toMessageInternal(message model.Message) messageInternal {
	return messageInternal{
		ID:                message.ID.String(),
		Role:              message.Role,
		Content:           message.Content,
		Timestamp:         message.Timestamp,
		Attachments:       message.Attachments,
		ThoughtProcess:    message.ThoughtProcess,
		GroundingMetadata: message.GroundingMetadata,
		ModelUsed:         message.ModelUsed,
		SuggestedReplies:  message.SuggestedReplies,
	}
}

func getChatIDKey(chatID uuid.UUID) string {
	return fmt.Sprintf("chat_%v", chatID.String())
}

func getUserChatsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_chats_%v", userID.String())
}
