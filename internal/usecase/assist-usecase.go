package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sourcegraph/conc"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const (
	DefaultChatTitle = "New Chat"

	minEmotionTextLength = 3
	titleInputLimit      = 100
	suggestionInputLimit = 500
	maxSuggestions       = 3
)

type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateStringList(ctx context.Context, prompt string) ([]string, error)
	GenerateImage(ctx context.Context, prompt string) (model.Attachment, error)
}

type AssistUsecaseDeps struct {
	Generator Generator
	Logger    *slog.Logger
}

// AssistUsecase runs the single-shot helper prompts around a chat turn. Except for image
// generation none of them fail: errors degrade to a fallback value.
type AssistUsecase struct {
	AssistUsecaseDeps
}

func NewAssistUsecase(deps AssistUsecaseDeps) *AssistUsecase {
	return &AssistUsecase{AssistUsecaseDeps: deps}
}

func (a *AssistUsecase) DetectEmotion(ctx context.Context, text string) model.Emotion {
	if utf8.RuneCountInString(text) < minEmotionTextLength {
		return model.EmotionNeutral
	}
	prompt := fmt.Sprintf(
		"Classify sentiment: [neutral, happy, angry, sad, curious, anxious]. Text: %q. Return 1 word.", text,
	)
	answer, err := a.Generator.GenerateText(ctx, prompt)
	if err != nil {
		a.Logger.Debug("emotion detection failed", "error", err)
		return model.EmotionNeutral
	}
	return model.ParseEmotion(answer)
}

// SuggestReplies asks for up to three follow-ups to lastResponse. The latest user message in
// history, when present, is given as the question being answered.
func (a *AssistUsecase) SuggestReplies(
	ctx context.Context,
	history []model.Message,
	lastResponse string,
	lang model.Language,
) []string {
	if strings.TrimSpace(lastResponse) == "" {
		return nil
	}
	var question string
	if asked := lastUserMessage(history); asked != "" {
		question = fmt.Sprintf("The user asked: %q. ", truncateRunes(asked, suggestionInputLimit))
	}
	prompt := fmt.Sprintf(
		"%sGenerate 3 short follow-up replies for the user based on this: %q... Language: %s. JSON Array only.",
		question, truncateRunes(lastResponse, suggestionInputLimit), lang,
	)
	suggestions, err := a.Generator.GenerateStringList(ctx, prompt)
	if err != nil {
		a.Logger.Debug("suggestion generation failed", "error", err)
		return nil
	}
	result := make([]string, 0, maxSuggestions)
	for _, suggestion := range suggestions {
		suggestion = strings.TrimSpace(suggestion)
		if suggestion == "" {
			continue
		}
		result = append(result, suggestion)
		if len(result) == maxSuggestions {
			break
		}
	}
	return result
}

func (a *AssistUsecase) TitleFor(ctx context.Context, firstMessage string) string {
	prompt := fmt.Sprintf(
		"Generate a very short title (max 4 words) for this chat: %q. No quotes.",
		truncateRunes(firstMessage, titleInputLimit),
	)
	title, err := a.Generator.GenerateText(ctx, prompt)
	if err != nil {
		a.Logger.Debug("title generation failed", "error", err)
		return DefaultChatTitle
	}
	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" {
		return DefaultChatTitle
	}
	return title
}

func (a *AssistUsecase) EnhancePrompt(ctx context.Context, prompt string, lang model.Language) string {
	enhanced, err := a.Generator.GenerateText(
		ctx, fmt.Sprintf(
			"Optimize this prompt for an LLM (CO-STAR framework). Language: %s. Return ONLY the prompt: %q",
			lang, prompt,
		),
	)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		return prompt
	}
	return strings.TrimSpace(enhanced)
}

func (a *AssistUsecase) GenerateImage(ctx context.Context, prompt string) (model.Attachment, error) {
	attachment, err := a.Generator.GenerateImage(ctx, prompt)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to generate image: %w", err)
	}
	return attachment, nil
}

type FollowUp struct {
	Suggestions []string
	Title       string
}

// FollowUp runs the post-answer prompts concurrently. history ends with the message being answered.
// The title is only generated for a new chat.
func (a *AssistUsecase) FollowUp(
	ctx context.Context,
	history []model.Message,
	finalAnswer string,
	lang model.Language,
	isNewChat bool,
) FollowUp {
	var result FollowUp
	var wg conc.WaitGroup
	wg.Go(
		func() {
			result.Suggestions = a.SuggestReplies(ctx, history, finalAnswer, lang)
		},
	)
	if isNewChat {
		wg.Go(
			func() {
				result.Title = a.TitleFor(ctx, lastUserMessage(history))
			},
		)
	}
	wg.Wait()
	return result
}

func lastUserMessage(history []model.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.MessageRoleUser {
			return history[i].Content
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
