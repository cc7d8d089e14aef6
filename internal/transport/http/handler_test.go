package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/usecase"
)

type fakeStreamer struct {
	chunks []string
	err    error
	last   usecase.StreamRequest
}

func (f *fakeStreamer) Stream(_ context.Context, req usecase.StreamRequest) (usecase.StreamResult, error) {
	f.last = req
	var text string
	for _, chunk := range f.chunks {
		text += chunk
		req.OnChunk(text, nil)
	}
	if f.err != nil {
		return usecase.StreamResult{}, f.err
	}
	return usecase.StreamResult{Text: text, Model: model.ModelLunaX}, nil
}

func newTestServer(streamer Streamer) *echo.Echo {
	e := echo.New()
	NewHandler(streamer, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatStream(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"<thinking>plan</thinking>", "Hi"}}
	e := newTestServer(streamer)

	rec := post(
		e, `{
			"model": "Luna-X",
			"message": "hello",
			"deep_think": true,
			"emotion": "happy",
			"history": [{"role": "user", "content": "before"}, {"role": "model", "content": "reply"}],
			"knowledge_base": [{"title": "Project", "content": "Apollo"}]
		}`,
	)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.Contains(t, body, "event: chunk\ndata: {\"text\":\"\\u003cthinking\\u003eplan\\u003c/thinking\\u003e\",\"thought\":\"plan\",\"answer\":\"\"}\n\n")
	assert.Contains(t, body, `"answer":"Hi"`)
	assert.True(t, strings.HasSuffix(body, "event: done\ndata: {\"text\":\"\\u003cthinking\\u003eplan\\u003c/thinking\\u003eHi\",\"model\":\"Luna-X\",\"fell_back\":false}\n\n"))

	assert.Equal(t, model.ModelLunaX, streamer.last.Model)
	assert.True(t, streamer.last.DeepThink)
	assert.Equal(t, model.EmotionHappy, streamer.last.Emotion)
	require.Len(t, streamer.last.History, 2)
	assert.Equal(t, model.MessageRoleModel, streamer.last.History[1].Role)
	require.Len(t, streamer.last.KnowledgeBase, 1)
	assert.Equal(t, "Apollo", streamer.last.KnowledgeBase[0].Content)
}

func TestChatStreamDefaultsToAuto(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"ok"}}
	rec := post(newTestServer(streamer), `{"message": "hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ModelLunarisMind, streamer.last.Model)
}

func TestChatStreamError(t *testing.T) {
	streamer := &fakeStreamer{err: &usecase.FallbackError{}}
	rec := post(newTestServer(streamer), `{"message": "hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event: error\ndata: {\"message\":\"⚠️ Connection failed.\"}\n\n", rec.Body.String())
}

func TestChatStreamValidation(t *testing.T) {
	e := newTestServer(&fakeStreamer{})

	for name, body := range map[string]string{
		"malformed":     `{`,
		"unknown model": `{"model": "gpt", "message": "hi"}`,
		"empty message": `{"model": "Luna-V", "message": "  "}`,
		"unknown role":  `{"message": "hi", "history": [{"role": "system", "content": "x"}]}`,
	} {
		t.Run(
			name, func(t *testing.T) {
				rec := post(e, body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			},
		)
	}
}

func TestListModels(t *testing.T) {
	e := newTestServer(&fakeStreamer{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	for _, identity := range model.AllModelIdentities {
		assert.Contains(t, rec.Body.String(), `"id":"`+string(identity)+`"`)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestServer(&fakeStreamer{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
