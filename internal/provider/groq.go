package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
	openai_tools "github.com/iamvkosarev/lunaris-ai/pkg/openai-tools"
)

// GroqClient streams OpenAI-compatible chat completions. Reasoning tokens delivered on the
// separate reasoning_content field are folded into a <thinking> block.
type GroqClient struct {
	cfg         config.Groq
	logger      *slog.Logger
	httpClient  *http.Client
	countTokens func(messages []openai.ChatCompletionMessage, model string) (int, error)
}

func NewGroqClient(cfg config.Groq, logger *slog.Logger) *GroqClient {
	return &GroqClient{
		cfg:         cfg,
		logger:      logger.With("provider", "groq"),
		httpClient:  http.DefaultClient,
		countTokens: openai_tools.CountToken,
	}
}

func (g *GroqClient) Stream(ctx context.Context, req Request) (string, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = g.cfg.Model
	}

	messages := g.trimHistory(chatMessages(req), modelID)

	clientConfig := openai.DefaultConfig(g.cfg.APIKey)
	clientConfig.BaseURL = g.cfg.BaseURL
	clientConfig.HTTPClient = g.httpClient
	c := openai.NewClientWithConfig(clientConfig)

	stream, err := c.CreateChatCompletionStream(
		ctx, openai.ChatCompletionRequest{
			Model:       modelID,
			Messages:    messages,
			Temperature: g.cfg.Temperature,
			MaxTokens:   g.cfg.MaxTokens,
			Stream:      true,
		},
	)
	if err != nil {
		return "", classifyGroqError(err)
	}
	defer stream.Close()

	var fullText strings.Builder
	reasoningOpen := false
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", classifyGroqError(err)
		}
		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta
		if delta.ReasoningContent != "" {
			if !reasoningOpen {
				fullText.WriteString(thinking.OpenTag)
				reasoningOpen = true
			}
			fullText.WriteString(delta.ReasoningContent)
			req.emit(fullText.String(), nil)
		}
		if delta.Content != "" {
			if reasoningOpen {
				fullText.WriteString(thinking.CloseTag + "\n")
				reasoningOpen = false
			}
			fullText.WriteString(delta.Content)
			req.emit(fullText.String(), nil)
		}
	}

	if reasoningOpen {
		fullText.WriteString(thinking.CloseTag + "\n")
		req.emit(fullText.String(), nil)
	}
	return fullText.String(), nil
}

func (g *GroqClient) trimHistory(messages []openai.ChatCompletionMessage, modelID string) []openai.ChatCompletionMessage {
	count := func(m []openai.ChatCompletionMessage) (int, error) {
		return g.countTokens(m, modelID)
	}
	kept, trimmed, err := openai_tools.TrimToBudget(messages, g.cfg.MaxHistoryTokens, count)
	if err != nil {
		g.logger.Warn("history left untrimmed", "error", err)
		return messages
	}
	if trimmed > 0 {
		g.logger.Info("history trimmed due to token limit", "dropped", trimmed)
	}
	return kept
}

func classifyGroqError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("groq stream failed: %w", err)
	}
	if status == http.StatusTooManyRequests {
		return &QuotaError{Provider: "Groq", Suggestion: string(model.ModelLunaV), Err: err}
	}
	return fmt.Errorf("%w: groq error (%d): %w", ErrProvider, status, err)
}
