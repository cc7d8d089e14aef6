package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
)

var ErrEmptyMessage = errors.New("message has no text and no attachments")

type Streamer interface {
	Stream(ctx context.Context, req StreamRequest) (StreamResult, error)
}

type ConversationUsecaseDeps struct {
	AIChat    *AiChatUsecase
	User      *UserUsecase
	Knowledge *KnowledgeUsecase
	Assist    *AssistUsecase
	Streamer  Streamer
	Logger    *slog.Logger
}

// ConversationUsecase runs one user turn against the user's current chat: it stores the user
// message, streams the answer and stores the model message with its follow-ups.
type ConversationUsecase struct {
	ConversationUsecaseDeps
}

func NewConversationUsecase(deps ConversationUsecaseDeps) *ConversationUsecase {
	return &ConversationUsecase{ConversationUsecaseDeps: deps}
}

type TurnUpdate struct {
	Raw       string
	Parsed    thinking.Result
	Thinking  bool
	Grounding *model.GroundingMetadata
}

type TurnRequest struct {
	User        model.User
	Text        string
	Attachments []model.Attachment
	OnUpdate    func(update TurnUpdate)
}

type TurnResult struct {
	Chat    model.AIChat
	Message model.Message
	Title   string
}

func (c *ConversationUsecase) SendMessage(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return TurnResult{}, ErrEmptyMessage
	}
	user := req.User
	logger := c.Logger.With("user_id", user.UserID)

	chat, _, err := c.AIChat.CurrentChat(ctx, user)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to get current chat: %w", err)
	}
	history := chat.History()
	needsTitle := chat.Title == DefaultChatTitle && !hasUserMessages(history)

	userMessage := model.Message{
		ID:          uuid.New(),
		Role:        model.MessageRoleUser,
		Content:     req.Text,
		Timestamp:   time.Now(),
		Attachments: req.Attachments,
	}
	if err = c.AIChat.AddMessageToChat(ctx, chat.ChatID, userMessage); err != nil {
		return TurnResult{}, fmt.Errorf("failed to add user message: %w", err)
	}

	emotion := c.detectEmotion(ctx, logger, user, req.Text)

	knowledge, err := c.Knowledge.List(ctx, user.UserID)
	if err != nil {
		logger.Warn("failed to load knowledge base", "error", err)
		knowledge = nil
	}

	var grounding *model.GroundingMetadata
	onChunk := func(text string, latest *model.GroundingMetadata) {
		grounding = latest
		if req.OnUpdate != nil {
			req.OnUpdate(
				TurnUpdate{
					Raw:       text,
					Parsed:    thinking.Parse(text),
					Thinking:  thinking.IsThinking(text),
					Grounding: latest,
				},
			)
		}
	}

	result, err := c.Streamer.Stream(
		ctx, StreamRequest{
			Model:             chat.Model,
			History:           history,
			NewMessage:        req.Text,
			Attachments:       req.Attachments,
			OnChunk:           onChunk,
			SystemInstruction: ContextInstruction(chat, user.Settings.Persona),
			DeepThink:         user.Settings.DeepThink,
			UseSearch:         user.Settings.UseSearch,
			Emotion:           emotion,
			KnowledgeBase:     knowledge,
		},
	)
	if err != nil {
		return TurnResult{Chat: chat}, err
	}

	parsed := thinking.Parse(result.Text)
	followUp := c.Assist.FollowUp(
		ctx, append(history[:len(history):len(history)], userMessage), parsed.Answer, user.Settings.Language, needsTitle,
	)

	modelMessage := model.Message{
		ID:                uuid.New(),
		Role:              model.MessageRoleModel,
		Content:           parsed.Answer,
		Timestamp:         time.Now(),
		ThoughtProcess:    parsed.Thought,
		GroundingMetadata: grounding,
		ModelUsed:         result.Model,
		SuggestedReplies:  followUp.Suggestions,
	}
	if err = c.AIChat.AddMessageToChat(ctx, chat.ChatID, modelMessage); err != nil {
		return TurnResult{}, fmt.Errorf("failed to add model message: %w", err)
	}
	if followUp.Title != "" {
		if err = c.AIChat.SetChatTitle(ctx, chat.ChatID, followUp.Title); err != nil {
			logger.Warn("failed to set chat title", "error", err)
		} else {
			chat.Title = followUp.Title
		}
	}
	chat.Messages = append(history, userMessage, modelMessage)

	return TurnResult{
		Chat:    chat,
		Message: modelMessage,
		Title:   followUp.Title,
	}, nil
}

func (c *ConversationUsecase) detectEmotion(
	ctx context.Context,
	logger *slog.Logger,
	user model.User,
	text string,
) model.Emotion {
	emotion := user.Settings.Emotion
	if utf8.RuneCountInString(text) < minEmotionTextLength {
		return emotion
	}
	detected := c.Assist.DetectEmotion(ctx, text)
	if detected == emotion {
		return emotion
	}
	_, err := c.User.UpdateSettings(
		ctx, user.UserID, func(settings *model.UserSettings) {
			settings.Emotion = detected
		},
	)
	if err != nil {
		logger.Warn("failed to store emotion", "error", err)
	}
	return detected
}

func hasUserMessages(history []model.Message) bool {
	for _, message := range history {
		if message.Role == model.MessageRoleUser {
			return true
		}
	}
	return false
}
