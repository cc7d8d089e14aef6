package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

type fakeChat struct {
	responses []*genai.GenerateContentResponse
	err       error
	sent      []genai.Part
}

func (f *fakeChat) SendMessageStream(_ context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.sent = parts
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, resp := range f.responses {
			if !yield(resp, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

type openedChat struct {
	modelID string
	config  *genai.GenerateContentConfig
	history []*genai.Content
}

func newTestGeminiClient(chat *fakeChat, opened *openedChat) *GeminiClient {
	client := NewGeminiClient(config.Gemini{FastModel: "flash", ProModel: "pro"}, discardLogger())
	client.openChat = func(
		_ context.Context,
		modelID string,
		cfg *genai.GenerateContentConfig,
		history []*genai.Content,
	) (chatSession, error) {
		if opened != nil {
			*opened = openedChat{modelID: modelID, config: cfg, history: history}
		}
		return chat, nil
	}
	return client
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: geminiRoleModel, Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestGeminiStreamAccumulates(t *testing.T) {
	grounded := textResponse(" world")
	grounded.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://example.com", Title: "Example"}},
			{},
		},
	}
	chat := &fakeChat{responses: []*genai.GenerateContentResponse{
		textResponse("Hello"),
		textResponse(""),
		grounded,
	}}
	var opened openedChat

	recorder := &chunkRecorder{}
	text, err := newTestGeminiClient(chat, &opened).Stream(context.Background(), Request{
		ModelID:           "pro",
		NewMessage:        "search this",
		OnChunk:           recorder.callback,
		SystemInstruction: "composite",
		UseSearch:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", text)
	assert.Equal(t, []string{"Hello", "Hello world"}, recorder.texts)
	assert.Nil(t, recorder.groundings[0])
	require.NotNil(t, recorder.groundings[1])
	require.Len(t, recorder.groundings[1].GroundingChunks, 1)
	assert.Equal(t, "https://example.com", recorder.groundings[1].GroundingChunks[0].Web.URI)

	assert.Equal(t, "pro", opened.modelID)
	require.Len(t, opened.config.Tools, 1)
	assert.NotNil(t, opened.config.Tools[0].GoogleSearch)
	assert.Equal(t, "composite", opened.config.SystemInstruction.Parts[0].Text)
	require.Len(t, chat.sent, 1)
	assert.Equal(t, "search this", chat.sent[0].Text)
}

func TestGeminiStreamDefaultsToFastModelWithoutTools(t *testing.T) {
	var opened openedChat
	_, err := newTestGeminiClient(&fakeChat{}, &opened).Stream(context.Background(), Request{NewMessage: "x"})
	require.NoError(t, err)
	assert.Equal(t, "flash", opened.modelID)
	assert.Empty(t, opened.config.Tools)
}

func TestGeminiStreamHistoryAndAttachments(t *testing.T) {
	imageData := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	chat := &fakeChat{responses: []*genai.GenerateContentResponse{textResponse("seen")}}
	var opened openedChat

	_, err := newTestGeminiClient(chat, &opened).Stream(context.Background(), Request{
		History: []model.Message{
			{
				Role:    model.MessageRoleUser,
				Content: "look",
				Attachments: []model.Attachment{
					{ID: "a1", Type: model.AttachmentTypeImage, MIMEType: "image/png", Data: imageData},
				},
			},
			{
				Role:    model.MessageRoleModel,
				Content: "drawn",
				Attachments: []model.Attachment{
					{ID: "g1", Type: model.AttachmentTypeGeneratedImage, MIMEType: "image/png", Data: imageData},
				},
			},
		},
		NewMessage: "and this",
		Attachments: []model.Attachment{
			{ID: "a2", Type: model.AttachmentTypeFile, MIMEType: "application/pdf", Data: imageData},
		},
	})
	require.NoError(t, err)

	require.Len(t, opened.history, 2)
	assert.Equal(t, geminiRoleUser, opened.history[0].Role)
	require.Len(t, opened.history[0].Parts, 2)
	assert.Equal(t, "look", opened.history[0].Parts[0].Text)
	assert.Equal(t, []byte("png-bytes"), opened.history[0].Parts[1].InlineData.Data)
	assert.Equal(t, geminiRoleModel, opened.history[1].Role)
	assert.Len(t, opened.history[1].Parts, 1, "generated attachments are not sent back")

	require.Len(t, chat.sent, 2)
	assert.Equal(t, "application/pdf", chat.sent[1].InlineData.MIMEType)
}

func TestGeminiStreamInvalidAttachment(t *testing.T) {
	_, err := newTestGeminiClient(&fakeChat{}, nil).Stream(context.Background(), Request{
		NewMessage:  "x",
		Attachments: []model.Attachment{{ID: "bad", Type: model.AttachmentTypeImage, Data: "%%%"}},
	})
	assert.Error(t, err)
}

func TestGeminiStreamQuotaError(t *testing.T) {
	chat := &fakeChat{
		responses: []*genai.GenerateContentResponse{textResponse("partial")},
		err:       errors.New("Error 429, Message: Resource has been exhausted, Status: RESOURCE_EXHAUSTED"),
	}
	_, err := newTestGeminiClient(chat, nil).Stream(context.Background(), Request{NewMessage: "x"})
	require.Error(t, err)
	assert.True(t, IsQuota(err))
	assert.Contains(t, err.Error(), "Gemini Quota Exceeded")
	assert.Contains(t, err.Error(), "Luna-X")
}

func TestIsGeminiQuota(t *testing.T) {
	assert.True(t, isGeminiQuota(genai.APIError{Code: 429, Message: "too many requests"}))
	assert.True(t, isGeminiQuota(fmt.Errorf("send: %w", &genai.APIError{Status: "RESOURCE_EXHAUSTED"})))
	assert.False(t, isGeminiQuota(genai.APIError{Code: 503, Message: "request 429 queued", Status: "UNAVAILABLE"}))
	assert.False(t, isGeminiQuota(errors.New("Error 500, Message: trace 4291")))
	assert.True(t, isGeminiQuota(errors.New("Error 429, Message: too many")))
}

func TestGeminiStreamAPIErrorQuota(t *testing.T) {
	chat := &fakeChat{err: genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}}
	_, err := newTestGeminiClient(chat, nil).Stream(context.Background(), Request{NewMessage: "x"})
	require.Error(t, err)
	assert.True(t, IsQuota(err))

	var apiErr genai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
}

func TestGeminiStreamOtherErrorPropagates(t *testing.T) {
	cause := errors.New("Error 400, Message: bad request")
	_, err := newTestGeminiClient(&fakeChat{err: cause}, nil).Stream(context.Background(), Request{NewMessage: "x"})
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsQuota(err))
}

func TestResponseTextSkipsThoughtParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "hidden", Thought: true},
			{Text: "visible"},
		}}}},
	}
	assert.Equal(t, "visible", responseText(resp))
	assert.Empty(t, responseText(nil))
}
