package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/provider"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAdapter struct {
	mu       sync.Mutex
	requests []provider.Request
	chunks   []string
	err      error
}

func (f *fakeAdapter) Stream(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	var text string
	for _, chunk := range f.chunks {
		text += chunk
		req.OnChunk(text, nil)
	}
	if f.err != nil {
		return "", f.err
	}
	return text, nil
}

func (f *fakeAdapter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAdapter) lastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type adapters struct {
	gemini *fakeAdapter
	groq   *fakeAdapter
	proxy  *fakeAdapter
}

func newTestChatStream() (*ChatStreamUsecase, adapters) {
	a := adapters{
		gemini: &fakeAdapter{chunks: []string{"gem", "ini"}},
		groq:   &fakeAdapter{chunks: []string{"gr", "oq"}},
		proxy:  &fakeAdapter{chunks: []string{"pro", "xy"}},
	}
	uc := NewChatStreamUsecase(
		ChatStreamUsecaseDeps{
			Gemini: a.gemini,
			Groq:   a.groq,
			Proxy:  a.proxy,
			Logger: discardLogger(),
		},
		ModelsConfig{
			GeminiFast: "gemini-fast",
			GeminiPro:  "gemini-pro",
			Groq:       "llama",
			Developer:  "Moez",
		},
	)
	return uc, a
}

type recorder struct {
	texts []string
}

func (r *recorder) onChunk(text string, _ *model.GroundingMetadata) {
	r.texts = append(r.texts, text)
}

func (r *recorder) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

func TestStreamChatResponse_Dispatch(t *testing.T) {
	cases := []struct {
		name      string
		identity  model.ModelIdentity
		input     string
		wantText  string
		wantModel string
		pick      func(a adapters) *fakeAdapter
	}{
		{"fast gemini", model.ModelLunaV, "hi", "gemini", "gemini-fast", func(a adapters) *fakeAdapter { return a.gemini }},
		{"pro gemini", model.ModelLunaDeep, "hi", "gemini", "gemini-pro", func(a adapters) *fakeAdapter { return a.gemini }},
		{"groq", model.ModelLunaX, "hi", "groq", "llama", func(a adapters) *fakeAdapter { return a.groq }},
		{"proxy", model.ModelLunaO, "hi", "proxy", "", func(a adapters) *fakeAdapter { return a.proxy }},
		{"auto short", model.ModelLunarisMind, "hi", "gemini", "gemini-fast", func(a adapters) *fakeAdapter { return a.gemini }},
		{
			"auto analysis", model.ModelLunarisMind, "why does this algorithm fail", "gemini", "gemini-pro",
			func(a adapters) *fakeAdapter { return a.gemini },
		},
		{
			"auto coding", model.ModelLunarisMind, "please write a function that parses CSV files into records", "groq",
			"llama", func(a adapters) *fakeAdapter { return a.groq },
		},
	}
	for _, tc := range cases {
		t.Run(
			tc.name, func(t *testing.T) {
				uc, a := newTestChatStream()
				rec := &recorder{}
				text, err := uc.StreamChatResponse(
					context.Background(), StreamRequest{
						Model:      tc.identity,
						NewMessage: tc.input,
						OnChunk:    rec.onChunk,
					},
				)
				require.NoError(t, err)
				assert.Equal(t, tc.wantText, text)
				assert.Equal(t, text, rec.last())

				target := tc.pick(a)
				require.Equal(t, 1, target.calls())
				assert.Equal(t, tc.wantModel, target.lastRequest().ModelID)
				assert.Equal(t, 1, a.gemini.calls()+a.groq.calls()+a.proxy.calls())
			},
		)
	}
}

func TestStreamChatResponse_IdentitySuffix(t *testing.T) {
	uc, a := newTestChatStream()
	_, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi"})
	require.NoError(t, err)
	instruction := a.groq.lastRequest().SystemInstruction
	assert.True(t, strings.HasPrefix(instruction, BaseProtocol))
	assert.True(t, strings.HasSuffix(instruction, "[IDENTITY: LUNA-X]"))
}

func TestStreamChatResponse_SearchOnlyForGemini(t *testing.T) {
	uc, a := newTestChatStream()
	_, err := uc.StreamChatResponse(
		context.Background(), StreamRequest{Model: model.ModelLunaV, NewMessage: "hi", UseSearch: true},
	)
	require.NoError(t, err)
	assert.True(t, a.gemini.lastRequest().UseSearch)

	_, err = uc.StreamChatResponse(
		context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi", UseSearch: true},
	)
	require.NoError(t, err)
	assert.False(t, a.groq.lastRequest().UseSearch)
}

func TestStreamChatResponse_Instruction(t *testing.T) {
	uc, a := newTestChatStream()
	_, err := uc.StreamChatResponse(
		context.Background(), StreamRequest{
			Model:             model.ModelLunaO,
			NewMessage:        "hello",
			SystemInstruction: "Act as a pirate",
			Emotion:           model.EmotionSad,
			KnowledgeBase:     []model.KnowledgeItem{{Title: "Project", Content: "Apollo"}},
			DeepThink:         true,
		},
	)
	require.NoError(t, err)

	instruction := a.proxy.lastRequest().SystemInstruction
	assert.Contains(t, instruction, "[META] Developer: Moez.")
	assert.Contains(t, instruction, "[CONTEXTUAL INSTRUCTIONS]\nAct as a pirate")
	assert.Contains(t, instruction, "[USER EMOTIONAL STATE: SAD]")
	assert.Contains(t, instruction, "- Project: Apollo")
	assert.Contains(t, instruction, "[LUNA-THINK PROTOCOL ACTIVATED]")
}

func TestStreamChatResponse_FallbackToProxy(t *testing.T) {
	uc, a := newTestChatStream()
	a.gemini.chunks = nil
	a.gemini.err = &provider.QuotaError{Provider: "Gemini", Err: errors.New("429")}

	rec := &recorder{}
	text, err := uc.StreamChatResponse(
		context.Background(), StreamRequest{Model: model.ModelLunaV, NewMessage: "hi", OnChunk: rec.onChunk},
	)
	require.NoError(t, err)
	assert.Equal(t, "proxy", text)
	assert.Equal(t, text, rec.last())
	assert.Equal(t, 1, a.gemini.calls())
	assert.Equal(t, 1, a.proxy.calls())
	assert.True(t, strings.HasSuffix(a.proxy.lastRequest().SystemInstruction, "[IDENTITY: LUNA-O]"))
}

func TestStreamChatResponse_FallbackKeepsPrefixGrowing(t *testing.T) {
	uc, a := newTestChatStream()
	a.groq.chunks = []string{"par", "tial"}
	a.groq.err = errors.New("stream reset")

	rec := &recorder{}
	text, err := uc.StreamChatResponse(
		context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi", OnChunk: rec.onChunk},
	)
	require.NoError(t, err)
	assert.Equal(t, "partial\n\nproxy", text)
	assert.Equal(t, text, rec.last())
	for i := 1; i < len(rec.texts); i++ {
		assert.True(t, strings.HasPrefix(rec.texts[i], rec.texts[i-1]))
	}
}

func TestStreamChatResponse_FallbackClosesOpenReasoning(t *testing.T) {
	uc, a := newTestChatStream()
	a.groq.chunks = []string{"<thinking>", "abc"}
	a.groq.err = errors.New("stream reset")

	rec := &recorder{}
	text, err := uc.StreamChatResponse(
		context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi", OnChunk: rec.onChunk},
	)
	require.NoError(t, err)
	assert.Equal(t, text, rec.last())
	for i := 1; i < len(rec.texts); i++ {
		assert.True(t, strings.HasPrefix(rec.texts[i], rec.texts[i-1]))
	}

	parsed := thinking.Parse(text)
	assert.True(t, parsed.HasThought)
	assert.Equal(t, "abc", parsed.Thought)
	assert.Equal(t, "proxy", parsed.Answer)
	assert.False(t, thinking.IsThinking(text))
}

func TestStreamChatResponse_AutoRoutedToProxyStillRetries(t *testing.T) {
	uc, a := newTestChatStream()
	a.proxy.chunks = nil
	a.proxy.err = provider.ErrConnectionFailed

	long := strings.Repeat("tell me a story about the sea ", 3)
	_, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunarisMind, NewMessage: long})
	require.Error(t, err)
	assert.Equal(t, 2, a.proxy.calls())
	assert.True(t, IsFallbackExhausted(err))
}

func TestStreamChatResponse_ProxyFailureIsNotRetried(t *testing.T) {
	uc, a := newTestChatStream()
	proxyErr := errors.New("proxy down")
	a.proxy.chunks = nil
	a.proxy.err = proxyErr

	_, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunaO, NewMessage: "hi"})
	require.ErrorIs(t, err, proxyErr)
	assert.Equal(t, 1, a.proxy.calls())
	assert.False(t, IsFallbackExhausted(err))
}

func TestStreamChatResponse_BothFail(t *testing.T) {
	uc, a := newTestChatStream()
	primaryErr := errors.New("groq exploded")
	a.groq.chunks = nil
	a.groq.err = primaryErr
	a.proxy.chunks = nil
	a.proxy.err = errors.New("proxy exploded")

	_, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrConnectionFailed)
	assert.ErrorIs(t, err, primaryErr)
	assert.Contains(t, err.Error(), "Connection failed")
	assert.Equal(t, 1, a.groq.calls())
	assert.Equal(t, 1, a.proxy.calls())
}

func TestStreamChatResponse_CanceledIsNotRetried(t *testing.T) {
	uc, a := newTestChatStream()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.gemini.chunks = nil
	a.gemini.err = context.Canceled

	_, err := uc.StreamChatResponse(ctx, StreamRequest{Model: model.ModelLunaV, NewMessage: "hi"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.proxy.calls())
}

func TestStreamChatResponse_NilCallback(t *testing.T) {
	uc, _ := newTestChatStream()
	text, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "groq", text)
}

func TestStreamChatResponse_MissingAdapter(t *testing.T) {
	uc, a := newTestChatStream()
	uc.Groq = nil

	text, err := uc.StreamChatResponse(context.Background(), StreamRequest{Model: model.ModelLunaX, NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "proxy", text)
	assert.Equal(t, 1, a.proxy.calls())
}

func TestStream_ReportsAnsweringModel(t *testing.T) {
	uc, a := newTestChatStream()
	result, err := uc.Stream(context.Background(), StreamRequest{Model: model.ModelLunarisMind, NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, StreamResult{Text: "gemini", Model: model.ModelLunaV}, result)

	a.gemini.chunks = nil
	a.gemini.err = errors.New("down")
	result, err = uc.Stream(context.Background(), StreamRequest{Model: model.ModelLunarisMind, NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, StreamResult{Text: "proxy", Model: model.ModelLunaO, FellBack: true}, result)
}
