package openai_tools

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

const fallbackEncoding = "cl100k_base"

// CountToken estimates the prompt tokens of messages. Models unknown to tiktoken, such as the
// Llama family served by Groq, are counted with the cl100k encoding.
func CountToken(messages []openai.ChatCompletionMessage, model string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	const tokensPerMessage = 3
	const tokensPerName = 1

	numTokens := 0
	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		if message.Name != "" {
			numTokens += len(tkm.Encode(message.Name, nil, nil))
			numTokens += tokensPerName
		}
	}
	// every reply is primed with <|start|>assistant<|message|>
	numTokens += 3
	return numTokens, nil
}

type CountFunc func(messages []openai.ChatCompletionMessage) (int, error)

// TrimToBudget drops the oldest conversation turns until count fits maxTokens. The leading
// system message and the trailing new message are never dropped. It returns the kept messages
// and how many were dropped.
func TrimToBudget(
	messages []openai.ChatCompletionMessage,
	maxTokens int,
	count CountFunc,
) ([]openai.ChatCompletionMessage, int, error) {
	if maxTokens <= 0 || len(messages) <= 2 {
		return messages, 0, nil
	}
	head := messages[0]
	rest := messages[1:]
	trimmed := 0
	for len(rest) > 1 {
		current := append([]openai.ChatCompletionMessage{head}, rest...)
		tokenCount, err := count(current)
		if err != nil {
			return messages, 0, fmt.Errorf("failed to count tokens: %w", err)
		}
		if tokenCount <= maxTokens {
			break
		}
		rest = rest[1:]
		trimmed++
	}
	return append([]openai.ChatCompletionMessage{head}, rest...), trimmed, nil
}
