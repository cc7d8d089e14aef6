package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

var ErrNoImageGenerated = errors.New("no image data found")

type chatSession interface {
	SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error]
}

type chatOpener func(
	ctx context.Context,
	modelID string,
	cfg *genai.GenerateContentConfig,
	history []*genai.Content,
) (chatSession, error)

// GeminiClient is the multimodal multi-turn adapter. A fresh SDK client and chat session are
// created per request, so concurrent requests share nothing.
type GeminiClient struct {
	cfg      config.Gemini
	logger   *slog.Logger
	openChat chatOpener
}

func NewGeminiClient(cfg config.Gemini, logger *slog.Logger) *GeminiClient {
	g := &GeminiClient{
		cfg:    cfg,
		logger: logger.With("provider", "gemini"),
	}
	g.openChat = g.openSDKChat
	return g
}

func (g *GeminiClient) newClient(ctx context.Context) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

func (g *GeminiClient) openSDKChat(
	ctx context.Context,
	modelID string,
	cfg *genai.GenerateContentConfig,
	history []*genai.Content,
) (chatSession, error) {
	client, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := client.Chats.Create(ctx, modelID, cfg, history)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

func (g *GeminiClient) Stream(ctx context.Context, req Request) (string, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = g.cfg.FastModel
	}

	history, err := geminiHistory(req.History)
	if err != nil {
		return "", err
	}
	parts, err := messageParts(req.NewMessage, req.Attachments)
	if err != nil {
		return "", err
	}

	chatConfig := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		chatConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if req.UseSearch {
		chatConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	chat, err := g.openChat(ctx, modelID, chatConfig, history)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	message := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		message = append(message, *part)
	}

	var fullText strings.Builder
	var grounding *model.GroundingMetadata
	for resp, err := range chat.SendMessageStream(ctx, message...) {
		if err != nil {
			return "", classifyGeminiError(err)
		}
		text := responseText(resp)
		if latest := responseGrounding(resp); latest != nil {
			grounding = latest
		}
		if text == "" {
			continue
		}
		fullText.WriteString(text)
		req.emit(fullText.String(), grounding)
	}
	return fullText.String(), nil
}

// Generate runs a single non-streaming prompt against modelID.
func (g *GeminiClient) Generate(
	ctx context.Context,
	modelID, prompt string,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	if modelID == "" {
		modelID = g.cfg.FastModel
	}
	client, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.Models.GenerateContent(ctx, modelID, genai.Text(prompt), cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return resp, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Generate(ctx, g.cfg.FastModel, prompt, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.Generate(
		ctx, g.cfg.FastModel, prompt, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// GenerateStringList asks for a JSON array of strings and decodes it.
func (g *GeminiClient) GenerateStringList(ctx context.Context, prompt string) ([]string, error) {
	raw, err := g.GenerateJSON(
		ctx, prompt, &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	)
	if err != nil {
		return nil, err
	}
	var items []string
	if err = json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return items, nil
}

func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (model.Attachment, error) {
	resp, err := g.Generate(ctx, g.cfg.ImageModel, prompt, nil)
	if err != nil {
		return model.Attachment{}, err
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return model.Attachment{
				ID:       uuid.NewString(),
				Type:     model.AttachmentTypeGeneratedImage,
				MIMEType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
				Prompt:   prompt,
			}, nil
		}
	}
	return model.Attachment{}, ErrNoImageGenerated
}

func geminiHistory(history []model.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, message := range history {
		attachments := make([]model.Attachment, 0, len(message.Attachments))
		for _, attachment := range message.Attachments {
			if !attachment.IsGenerated() {
				attachments = append(attachments, attachment)
			}
		}
		parts, err := messageParts(message.Content, attachments)
		if err != nil {
			return nil, err
		}
		role := geminiRoleUser
		if message.Role == model.MessageRoleModel {
			role = geminiRoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents, nil
}

func messageParts(text string, attachments []model.Attachment) ([]*genai.Part, error) {
	parts := []*genai.Part{{Text: text}}
	for _, attachment := range attachments {
		data, err := base64.StdEncoding.DecodeString(attachment.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment %s: %w", attachment.ID, err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: attachment.MIMEType, Data: data}})
	}
	return parts, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}
	return text.String()
}

func responseGrounding(resp *genai.GenerateContentResponse) *model.GroundingMetadata {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	metadata := resp.Candidates[0].GroundingMetadata
	if metadata == nil {
		return nil
	}
	grounding := &model.GroundingMetadata{GroundingChunks: make([]model.GroundingChunk, 0, len(metadata.GroundingChunks))}
	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		grounding.GroundingChunks = append(
			grounding.GroundingChunks, model.GroundingChunk{
				Web: &model.WebSource{URI: chunk.Web.URI, Title: chunk.Web.Title},
			},
		)
	}
	return grounding
}

func isGeminiQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isQuotaStatus(apiErr.Code, apiErr.Status)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isQuotaStatus(apiErrPtr.Code, apiErrPtr.Status)
	}
	return isQuotaMessage(err.Error())
}

func classifyGeminiError(err error) error {
	if isGeminiQuota(err) {
		return &QuotaError{
			Provider:   "Gemini",
			Suggestion: string(model.ModelLunaX) + " (Groq)",
			Err:        err,
		}
	}
	return err
}
