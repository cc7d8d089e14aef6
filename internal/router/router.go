// Package router picks a concrete model identity for requests sent to the auto model.
//
// Rules are evaluated in order and the first match wins:
//   - any attachment goes to the fast multimodal tier
//   - short text without routing keywords goes to the fast tier
//   - analysis keywords or very long text go to the deep tier
//   - coding keywords go to the Groq tier
//   - everything else goes to the proxy tier
package router

import (
	"strings"
	"unicode/utf8"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
)

const (
	ShortInputLength = 50
	LongInputLength  = 800
)

var (
	codingKeywords   = []string{"code", "function", "html"}
	analysisKeywords = []string{"analyze", "why"}
	// writing requests are never treated as small talk
	shortBlockers = append(append([]string{"write"}, codingKeywords...), analysisKeywords...)
)

func Resolve(input string, attachments []model.Attachment) model.ModelIdentity {
	if len(attachments) > 0 {
		return model.ModelLunaV
	}

	text := strings.ToLower(input)
	length := utf8.RuneCountInString(text)

	if length < ShortInputLength && !containsAny(text, shortBlockers) {
		return model.ModelLunaV
	}
	if containsAny(text, analysisKeywords) || length > LongInputLength {
		return model.ModelLunaDeep
	}
	if containsAny(text, codingKeywords) {
		return model.ModelLunaX
	}
	return model.ModelLunaO
}

// ResolveIdentity returns identity unchanged unless it is the auto identity.
func ResolveIdentity(identity model.ModelIdentity, input string, attachments []model.Attachment) model.ModelIdentity {
	if identity.IsAuto() {
		return Resolve(input, attachments)
	}
	return identity
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
