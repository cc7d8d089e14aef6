// Package provider implements the streaming chat clients for every backend family.
//
// Three transports sit behind one StreamAdapter contract: an SSE token stream
// (Groq), a fetch-then-chunk completion proxy and a multi-turn multimodal chat
// (Gemini). Every adapter reports the full accumulated text through the request
// callback and returns the final text once the stream ends.
package provider

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const defaultSystemInstruction = "You are Lunaris."

type Request struct {
	// ModelID is the provider-native model name. Adapters with a single model ignore it.
	ModelID           string
	History           []model.Message
	NewMessage        string
	Attachments       []model.Attachment
	OnChunk           model.StreamCallback
	SystemInstruction string
	UseSearch         bool
}

func (r Request) emit(text string, grounding *model.GroundingMetadata) {
	if r.OnChunk != nil {
		r.OnChunk(text, grounding)
	}
}

type StreamAdapter interface {
	Stream(ctx context.Context, req Request) (string, error)
}

// StreamFunc adapts a function to StreamAdapter.
type StreamFunc func(ctx context.Context, req Request) (string, error)

func (f StreamFunc) Stream(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// chatMessages flattens the request into system, history and new user message in the
// OpenAI chat format shared by the text-only families.
func chatMessages(req Request) []openai.ChatCompletionMessage {
	system := req.SystemInstruction
	if system == "" {
		system = defaultSystemInstruction
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		},
	)
	for _, message := range req.History {
		messages = append(
			messages, openai.ChatCompletionMessage{
				Role:    parseMessageRole(message.Role),
				Content: message.Content,
			},
		)
	}
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.NewMessage,
		},
	)
	return messages
}

func parseMessageRole(role model.MessageRole) string {
	if role == model.MessageRoleModel {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
