package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

func newTestProxyClient(url string) *ProxyClient {
	client := NewProxyClient(config.Proxy{URL: url, Model: "openai"}, discardLogger())
	client.jitter = func(int) int { return 0 }
	return client
}

func newTextServer(t *testing.T, text string, captured *proxyRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		fmt.Fprint(w, text)
	}))
}

func TestProxyStreamShortText(t *testing.T) {
	var body proxyRequest
	text := "Recursion is a function calling itself."
	server := newTextServer(t, text, &body)
	defer server.Close()

	recorder := &chunkRecorder{}
	got, err := newTestProxyClient(server.URL).Stream(context.Background(), Request{
		History:           []model.Message{{Role: model.MessageRoleModel, Content: "prev"}},
		NewMessage:        "Explain recursion",
		OnChunk:           recorder.callback,
		SystemInstruction: "composite",
	})
	require.NoError(t, err)

	assert.Equal(t, text, got)
	assert.Equal(t, []string{text[:15], text[:30], text}, recorder.texts)

	assert.Equal(t, "openai", body.Model)
	assert.False(t, body.JSONMode)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, proxyMessage{Role: "system", Content: "composite"}, body.Messages[0])
	assert.Equal(t, proxyMessage{Role: "assistant", Content: "prev"}, body.Messages[1])
	assert.Equal(t, proxyMessage{Role: "user", Content: "Explain recursion"}, body.Messages[2])
}

func TestProxyStreamLongTextUsesLargeSteps(t *testing.T) {
	text := strings.Repeat("abcdefghij", 60)
	server := newTextServer(t, text, nil)
	defer server.Close()

	recorder := &chunkRecorder{}
	got, err := newTestProxyClient(server.URL).Stream(context.Background(), Request{NewMessage: "x", OnChunk: recorder.callback})
	require.NoError(t, err)

	assert.Equal(t, text, got)
	assert.Len(t, recorder.texts, 12)
	assert.Len(t, recorder.texts[0], 50)
	assertPrefixGrowing(t, recorder.texts)
	assert.Equal(t, text, recorder.last())
}

func TestProxyStreamWithJitterEndsWithFullText(t *testing.T) {
	text := strings.Repeat("lorem ipsum ", 30)
	server := newTextServer(t, text, nil)
	defer server.Close()

	client := newTestProxyClient(server.URL)
	client.jitter = func(n int) int { return n - 1 }

	recorder := &chunkRecorder{}
	_, err := client.Stream(context.Background(), Request{NewMessage: "x", OnChunk: recorder.callback})
	require.NoError(t, err)
	assertPrefixGrowing(t, recorder.texts)
	assert.Equal(t, text, recorder.last())
}

func TestProxyStreamKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("مرحبا بالعالم ", 10)
	server := newTextServer(t, text, nil)
	defer server.Close()

	recorder := &chunkRecorder{}
	_, err := newTestProxyClient(server.URL).Stream(context.Background(), Request{NewMessage: "x", OnChunk: recorder.callback})
	require.NoError(t, err)
	for _, chunk := range recorder.texts {
		assert.True(t, utf8.ValidString(chunk), chunk)
	}
	assert.Equal(t, text, recorder.last())
}

func TestProxyStreamEmptyResponse(t *testing.T) {
	server := newTextServer(t, "", nil)
	defer server.Close()

	recorder := &chunkRecorder{}
	got, err := newTestProxyClient(server.URL).Stream(context.Background(), Request{NewMessage: "x", OnChunk: recorder.callback})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{""}, recorder.texts)
}

func TestProxyStreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	recorder := &chunkRecorder{}
	_, err := newTestProxyClient(server.URL).Stream(context.Background(), Request{NewMessage: "x", OnChunk: recorder.callback})
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Empty(t, recorder.texts)
}

func TestProxyStreamNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestProxyClient(url).Stream(context.Background(), Request{NewMessage: "x"})
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestProxyStreamCanceledWhileRevealing(t *testing.T) {
	server := newTextServer(t, strings.Repeat("z", 100), nil)
	defer server.Close()

	client := newTestProxyClient(server.URL)
	client.cfg.ChunkDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	_, err := client.Stream(ctx, Request{
		NewMessage: "x",
		OnChunk: func(string, *model.GroundingMetadata) {
			calls++
			cancel()
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, 1, calls)
}
