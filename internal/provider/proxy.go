package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/iamvkosarev/lunaris-ai/config"
)

const (
	longResponseLength = 500
	longChunkSize      = 50
	shortChunkSize     = 15
	chunkJitter        = 5
)

type proxyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type proxyRequest struct {
	Messages []proxyMessage `json:"messages"`
	Model    string         `json:"model"`
	Seed     int            `json:"seed"`
	JSONMode bool           `json:"jsonMode"`
}

// ProxyClient talks to a plain text-completion endpoint that has no streaming. The complete
// answer is revealed to the callback in growing prefixes so callers see the same progressive
// output as with real streams.
type ProxyClient struct {
	cfg        config.Proxy
	logger     *slog.Logger
	httpClient *http.Client
	jitter     func(n int) int
}

func NewProxyClient(cfg config.Proxy, logger *slog.Logger) *ProxyClient {
	return &ProxyClient{
		cfg:        cfg,
		logger:     logger.With("provider", "proxy"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		jitter:     rand.IntN,
	}
}

func (p *ProxyClient) Stream(ctx context.Context, req Request) (string, error) {
	text, err := p.fetch(ctx, req)
	if err != nil {
		p.logger.Error("proxy request failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err = p.reveal(ctx, text, req); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return text, nil
}

func (p *ProxyClient) fetch(ctx context.Context, req Request) (string, error) {
	messages := chatMessages(req)
	body := proxyRequest{
		Messages: make([]proxyMessage, 0, len(messages)),
		Model:    p.cfg.Model,
		Seed:     p.jitter(1000),
	}
	for _, message := range messages {
		body.Messages = append(body.Messages, proxyMessage{Role: message.Role, Content: message.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("proxy error [%d]: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return string(respBody), nil
}

// reveal feeds growing prefixes of text to the callback, ending with text itself.
func (p *ProxyClient) reveal(ctx context.Context, text string, req Request) error {
	total := len(text)
	if total == 0 {
		req.emit(text, nil)
		return nil
	}

	chunkSize := shortChunkSize
	if total > longResponseLength {
		chunkSize = longChunkSize
	}

	lastEnd := 0
	for i := 0; i < total; i += chunkSize {
		end := min(i+chunkSize+p.jitter(chunkJitter), total)
		for end < total && !utf8.RuneStart(text[end]) {
			end++
		}
		if end <= lastEnd {
			continue
		}
		lastEnd = end
		req.emit(text[:end], nil)
		if end == total {
			break
		}
		if err := sleepContext(ctx, p.cfg.ChunkDelay); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
