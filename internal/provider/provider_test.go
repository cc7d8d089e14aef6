package provider

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type chunkRecorder struct {
	texts      []string
	groundings []*model.GroundingMetadata
}

func (r *chunkRecorder) callback(text string, grounding *model.GroundingMetadata) {
	r.texts = append(r.texts, text)
	r.groundings = append(r.groundings, grounding)
}

func (r *chunkRecorder) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

func assertPrefixGrowing(t *testing.T, texts []string) {
	t.Helper()
	for i := 1; i < len(texts); i++ {
		assert.True(t, strings.HasPrefix(texts[i], texts[i-1]), "chunk %d %q does not extend %q", i, texts[i], texts[i-1])
	}
}

func TestChatMessages(t *testing.T) {
	req := Request{
		History: []model.Message{
			{Role: model.MessageRoleUser, Content: "hi"},
			{Role: model.MessageRoleModel, Content: "hello"},
		},
		NewMessage: "how are you",
	}
	messages := chatMessages(req)
	if assert.Len(t, messages, 4) {
		assert.Equal(t, "system", messages[0].Role)
		assert.Equal(t, defaultSystemInstruction, messages[0].Content)
		assert.Equal(t, "user", messages[1].Role)
		assert.Equal(t, "assistant", messages[2].Role)
		assert.Equal(t, "how are you", messages[3].Content)
	}

	req.SystemInstruction = "custom"
	assert.Equal(t, "custom", chatMessages(req)[0].Content)
}
