package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/metrics"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/provider"
	"github.com/iamvkosarev/lunaris-ai/internal/router"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
)

const fallbackSeparator = "\n\n"

// FallbackError is returned when both the primary provider and the proxy fallback failed.
type FallbackError struct {
	Primary  error
	Fallback error
}

func (e *FallbackError) Error() string {
	return "⚠️ Connection failed."
}

func (e *FallbackError) Is(target error) bool {
	return target == provider.ErrConnectionFailed
}

func (e *FallbackError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

type StreamRequest struct {
	Model             model.ModelIdentity
	History           []model.Message
	NewMessage        string
	Attachments       []model.Attachment
	OnChunk           model.StreamCallback
	SystemInstruction string
	DeepThink         bool
	UseSearch         bool
	Emotion           model.Emotion
	KnowledgeBase     []model.KnowledgeItem
}

type ChatStreamUsecaseDeps struct {
	Gemini provider.StreamAdapter
	Groq   provider.StreamAdapter
	Proxy  provider.StreamAdapter
	Logger *slog.Logger
}

type ModelsConfig struct {
	GeminiFast string
	GeminiPro  string
	Groq       string
	Developer  string
}

func NewModelsConfig(cfg *config.Config) ModelsConfig {
	return ModelsConfig{
		GeminiFast: cfg.Gemini.FastModel,
		GeminiPro:  cfg.Gemini.ProModel,
		Groq:       cfg.Groq.Model,
		Developer:  cfg.AIChat.Developer,
	}
}

// ChatStreamUsecase is the multi-provider orchestrator. It keeps no per-request state, so one
// instance serves concurrent requests.
type ChatStreamUsecase struct {
	ChatStreamUsecaseDeps
	cfg ModelsConfig
}

func NewChatStreamUsecase(deps ChatStreamUsecaseDeps, cfg ModelsConfig) *ChatStreamUsecase {
	return &ChatStreamUsecase{
		ChatStreamUsecaseDeps: deps,
		cfg:                   cfg,
	}
}

type StreamResult struct {
	Text string
	// Model is the identity that produced Text, after routing and fallback.
	Model    model.ModelIdentity
	FellBack bool
}

// StreamChatResponse resolves the model, streams the answer through the matching adapter and
// retries once on the proxy provider when anything but the proxy itself fails.
func (c *ChatStreamUsecase) StreamChatResponse(ctx context.Context, req StreamRequest) (string, error) {
	result, err := c.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Stream is StreamChatResponse reporting which identity answered.
func (c *ChatStreamUsecase) Stream(ctx context.Context, req StreamRequest) (StreamResult, error) {
	instruction := BuildCompositeInstruction(
		InstructionParams{
			Developer:     c.cfg.Developer,
			Contextual:    req.SystemInstruction,
			Emotion:       req.Emotion,
			KnowledgeBase: req.KnowledgeBase,
			DeepThink:     req.DeepThink,
		},
	)

	resolved := router.ResolveIdentity(req.Model, req.NewMessage, req.Attachments)
	metrics.ObserveRequest(string(req.Model), string(resolved))
	logger := c.Logger.With("requested", req.Model, "resolved", resolved)
	logger.Debug("dispatching chat stream")

	guard := &chunkGuard{onChunk: req.OnChunk}
	text, err := c.execute(ctx, resolved, instruction, req, guard)
	if err == nil {
		return StreamResult{Text: guard.final(text), Model: resolved}, nil
	}
	metrics.ObserveFailure(string(resolved), provider.ErrorKind(err))

	if !shouldFallback(req.Model) || ctx.Err() != nil {
		logger.Error("chat stream failed", "error", err)
		return StreamResult{}, err
	}

	logger.Warn("chat stream failed, switching to fallback", "error", err, "fallback", model.ModelLunaO)
	metrics.ObserveFallback(string(resolved))
	guard.restart()
	text, fallbackErr := c.execute(ctx, model.ModelLunaO, instruction, req, guard)
	if fallbackErr != nil {
		metrics.ObserveFailure(string(model.ModelLunaO), provider.ErrorKind(fallbackErr))
		logger.Error("fallback chat stream failed", "error", fallbackErr)
		return StreamResult{}, &FallbackError{Primary: err, Fallback: fallbackErr}
	}
	return StreamResult{Text: guard.final(text), Model: model.ModelLunaO, FellBack: true}, nil
}

// shouldFallback looks at the identity the caller asked for, so an auto request that was routed
// to the proxy still gets its second attempt.
func shouldFallback(requested model.ModelIdentity) bool {
	return requested.IsAuto() || requested != model.ModelLunaO
}

func (c *ChatStreamUsecase) execute(
	ctx context.Context,
	identity model.ModelIdentity,
	instruction string,
	req StreamRequest,
	guard *chunkGuard,
) (string, error) {
	adapter, modelID, err := c.dispatch(identity)
	if err != nil {
		return "", err
	}
	started := time.Now()
	text, err := adapter.Stream(
		ctx, provider.Request{
			ModelID:           modelID,
			History:           req.History,
			NewMessage:        req.NewMessage,
			Attachments:       req.Attachments,
			OnChunk:           guard.forward,
			SystemInstruction: identityInstruction(instruction, identity),
			UseSearch:         req.UseSearch && isGemini(identity),
		},
	)
	if err != nil {
		return "", err
	}
	metrics.ObserveStream(string(identity), started)
	return text, nil
}

func (c *ChatStreamUsecase) dispatch(identity model.ModelIdentity) (provider.StreamAdapter, string, error) {
	var adapter provider.StreamAdapter
	var modelID string
	switch identity {
	case model.ModelLunaV:
		adapter, modelID = c.Gemini, c.cfg.GeminiFast
	case model.ModelLunaDeep:
		adapter, modelID = c.Gemini, c.cfg.GeminiPro
	case model.ModelLunaX:
		adapter, modelID = c.Groq, c.cfg.Groq
	case model.ModelLunaO:
		adapter = c.Proxy
	default:
		return nil, "", fmt.Errorf("%w: %q cannot be dispatched", model.ErrUnknownModel, identity)
	}
	if adapter == nil {
		return nil, "", fmt.Errorf("%w: no adapter configured for %s", provider.ErrProvider, identity)
	}
	return adapter, modelID, nil
}

func isGemini(identity model.ModelIdentity) bool {
	return identity == model.ModelLunaV || identity == model.ModelLunaDeep
}

// chunkGuard keeps the text seen by the caller prefix-growing across a fallback. Output of a
// second attempt is appended after whatever the failed attempt already delivered.
type chunkGuard struct {
	onChunk   model.StreamCallback
	base      string
	delivered string
}

func (g *chunkGuard) forward(text string, grounding *model.GroundingMetadata) {
	full := g.base + text
	if !strings.HasPrefix(full, g.delivered) {
		return
	}
	g.delivered = full
	if g.onChunk != nil {
		g.onChunk(full, grounding)
	}
}

// restart prepares the base for a second attempt. A reasoning block left open by the failed
// attempt is closed so the fallback text is parsed as the answer.
func (g *chunkGuard) restart() {
	if g.delivered == "" {
		return
	}
	base := g.delivered
	if thinking.IsThinking(base) {
		base += thinking.CloseTag
	}
	g.base = base + fallbackSeparator
}

func (g *chunkGuard) final(text string) string {
	return g.base + text
}

var _ error = (*FallbackError)(nil)

func IsFallbackExhausted(err error) bool {
	var fallbackErr *FallbackError
	return errors.As(err, &fallbackErr)
}
