// Package httptransport exposes the chat orchestrator over HTTP with server-sent events.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
	"github.com/iamvkosarev/lunaris-ai/internal/usecase"
)

const (
	eventChunk = "chunk"
	eventDone  = "done"
	eventError = "error"
)

type Streamer interface {
	Stream(ctx context.Context, req usecase.StreamRequest) (usecase.StreamResult, error)
}

type Handler struct {
	streamer Streamer
	logger   *slog.Logger
}

func NewHandler(streamer Streamer, logger *slog.Logger) *Handler {
	return &Handler{
		streamer: streamer,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat/stream", h.ChatStream)
	e.GET("/v1/models", h.ListModels)
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

type MessageDTO struct {
	Role        string             `json:"role"`
	Content     string             `json:"content"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

type KnowledgeDTO struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ChatStreamRequest struct {
	Model             string             `json:"model"`
	History           []MessageDTO       `json:"history"`
	Message           string             `json:"message"`
	Attachments       []model.Attachment `json:"attachments"`
	SystemInstruction string             `json:"system_instruction"`
	DeepThink         bool               `json:"deep_think"`
	UseSearch         bool               `json:"use_search"`
	Emotion           string             `json:"emotion"`
	KnowledgeBase     []KnowledgeDTO     `json:"knowledge_base"`
}

type ChunkEvent struct {
	Text      string                   `json:"text"`
	Thought   string                   `json:"thought,omitempty"`
	Answer    string                   `json:"answer"`
	Grounding *model.GroundingMetadata `json:"grounding,omitempty"`
}

type DoneEvent struct {
	Text     string              `json:"text"`
	Model    model.ModelIdentity `json:"model"`
	FellBack bool                `json:"fell_back"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type ModelInfo struct {
	ID          model.ModelIdentity `json:"id"`
	Description string              `json:"description"`
}

// ChatStream streams one answer.
// POST /v1/chat/stream
func (h *Handler) ChatStream(c echo.Context) error {
	var body ChatStreamRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	req, err := body.toStreamRequest()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	req.OnChunk = func(text string, grounding *model.GroundingMetadata) {
		parsed := thinking.Parse(text)
		event := ChunkEvent{
			Text:      text,
			Thought:   parsed.Thought,
			Answer:    parsed.Answer,
			Grounding: grounding,
		}
		if err := writeEvent(resp, eventChunk, event); err != nil {
			h.logger.Debug("failed to write chunk", "error", err)
		}
	}

	result, err := h.streamer.Stream(c.Request().Context(), req)
	if err != nil {
		h.logger.Warn("chat stream failed", "model", req.Model, "error", err)
		return writeEvent(resp, eventError, ErrorResponse{Message: err.Error()})
	}
	return writeEvent(resp, eventDone, DoneEvent{Text: result.Text, Model: result.Model, FellBack: result.FellBack})
}

// ListModels returns the selectable identities.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	models := make([]ModelInfo, 0, len(model.AllModelIdentities))
	for _, identity := range model.AllModelIdentities {
		models = append(models, ModelInfo{ID: identity, Description: identity.Description()})
	}
	return c.JSON(http.StatusOK, map[string]any{"models": models})
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrUnknownRole  = errors.New("unknown message role")
)

func (r ChatStreamRequest) toStreamRequest() (usecase.StreamRequest, error) {
	identity := model.ModelLunarisMind
	if r.Model != "" {
		parsed, err := model.ParseModelIdentity(r.Model)
		if err != nil {
			return usecase.StreamRequest{}, err
		}
		identity = parsed
	}
	if strings.TrimSpace(r.Message) == "" && len(r.Attachments) == 0 {
		return usecase.StreamRequest{}, ErrEmptyMessage
	}

	history := make([]model.Message, 0, len(r.History))
	for _, message := range r.History {
		role := model.MessageRole(message.Role)
		if role != model.MessageRoleUser && role != model.MessageRoleModel {
			return usecase.StreamRequest{}, fmt.Errorf("%w: %q", ErrUnknownRole, message.Role)
		}
		history = append(
			history, model.Message{
				Role:        role,
				Content:     message.Content,
				Attachments: message.Attachments,
			},
		)
	}

	knowledge := make([]model.KnowledgeItem, 0, len(r.KnowledgeBase))
	for _, item := range r.KnowledgeBase {
		knowledge = append(knowledge, model.KnowledgeItem{Title: item.Title, Content: item.Content})
	}

	return usecase.StreamRequest{
		Model:             identity,
		History:           history,
		NewMessage:        r.Message,
		Attachments:       r.Attachments,
		SystemInstruction: r.SystemInstruction,
		DeepThink:         r.DeepThink,
		UseSearch:         r.UseSearch,
		Emotion:           model.ParseEmotion(r.Emotion),
		KnowledgeBase:     knowledge,
	}, nil
}

func writeEvent(resp *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	if _, err = fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
