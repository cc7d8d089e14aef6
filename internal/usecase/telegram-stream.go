package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/pkg/local"
)

const (
	maxMessageLength = 4096
	warningPrefix    = "⚠️"
)

var (
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
	ErrAttachmentTooLarge    = errors.New("attachment is too large")
)

// runTurn streams one answer into a single Telegram message. Updates from the conversation are
// throttled by a limiter so edits stay under Telegram's flood limits, and the last rendered text
// is always delivered.
func (t *TelegramUsecase) runTurn(
	ctx context.Context,
	user model.User,
	chatID int64,
	text string,
	attachments []model.Attachment,
) error {
	lang := userLanguage(user)

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !t.startTurn(chatID, cancel) {
		t.sendMessageAndHandleErr(chatID, textBusy.Text(lang))
		return nil
	}
	defer t.finishTurn(chatID)

	answerChan := make(chan string)
	throttledAnswerChan := make(chan string)
	limiter := rate.NewLimiter(rate.Every(t.cfg.EditInterval), 1)

	var (
		result  TurnResult
		turnErr error
		rest    []string
	)

	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(answerChan)
			var lastRendered string
			result, turnErr = t.Conversation.SendMessage(
				turnCtx, TurnRequest{
					User:        user,
					Text:        text,
					Attachments: attachments,
					OnUpdate: func(update TurnUpdate) {
						lastRendered = renderUpdate(update, lang)
						answerChan <- lastRendered
					},
				},
			)
			if turnErr != nil {
				answerChan <- renderError(turnErr, lastRendered, lang)
				return
			}
			parts := splitMessage(renderFinal(result, lang))
			answerChan <- parts[0]
			rest = parts[1:]
		},
	)
	wg.Go(
		func() {
			defer close(throttledAnswerChan)
			var currentAnswer string
			for answer := range answerChan {
				currentAnswer = answer
				if limiter.Allow() {
					throttledAnswerChan <- currentAnswer
				}
			}
			throttledAnswerChan <- currentAnswer
		},
	)
	wg.Go(
		func() {
			t.requestAndHandleErr(api.NewChatAction(chatID, api.ChatTyping))

			var answerMsgID int
			var sent string
			for currentAnswer := range throttledAnswerChan {
				if currentAnswer == "" || currentAnswer == sent {
					continue
				}
				if answerMsgID == 0 {
					answerMsg, err := t.sendMessage(chatID, currentAnswer)
					if err != nil {
						t.Logger.Error("failed to send answer to bot", "error", err)
						continue
					}
					answerMsgID = answerMsg.MessageID
				} else if _, err := t.sendEditMessage(chatID, answerMsgID, currentAnswer); err != nil {
					t.Logger.Warn("failed to send new edit message to bot", "error", err)
					continue
				}
				sent = currentAnswer
			}
		},
	)
	wg.Wait()

	if turnErr != nil {
		if errors.Is(turnErr, ErrEmptyMessage) || errors.Is(turnErr, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to send message: %w", turnErr)
	}
	for _, part := range rest {
		t.sendMessageAndHandleErr(chatID, part)
	}
	t.sendSuggestions(chatID, result.Message.SuggestedReplies, lang)
	return nil
}

func (t *TelegramUsecase) sendSuggestions(chatID int64, suggestions []string, lang local.Language) {
	if len(suggestions) == 0 {
		return
	}
	rows := make([][]api.KeyboardButton, 0, len(suggestions))
	for _, suggestion := range suggestions {
		rows = append(rows, api.NewKeyboardButtonRow(api.NewKeyboardButton(suggestion)))
	}
	keyboard := api.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true

	msg := api.NewMessage(chatID, textSuggestions.Text(lang))
	msg.ReplyMarkup = keyboard
	if _, err := t.sendToBot(msg); err != nil {
		t.Logger.Warn("failed to send suggestions", "error", err)
	}
}

// renderUpdate turns an in-flight turn into the text shown while the answer streams. The
// reasoning block is never shown, only a placeholder while it is being written.
func renderUpdate(update TurnUpdate, lang local.Language) string {
	answer := update.Parsed.Answer
	if update.Thinking || (update.Parsed.HasThought && answer == "") {
		return textThinking.Text(lang)
	}
	return truncateMessage(answer)
}

func renderFinal(result TurnResult, lang local.Language) string {
	var b strings.Builder
	b.WriteString(result.Message.Content)
	if sources := formatSources(result.Message.GroundingMetadata); sources != "" {
		b.WriteString("\n\n")
		b.WriteString(textSources.Text(lang))
		b.WriteString(sources)
	}
	if result.Message.ModelUsed != "" {
		fmt.Fprintf(&b, "\n\n🌙 %s", result.Message.ModelUsed)
	}
	return strings.TrimSpace(b.String())
}

func formatSources(grounding *model.GroundingMetadata) string {
	if grounding == nil {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, chunk := range grounding.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		n++
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		fmt.Fprintf(&b, "\n%d. %s: %s", n, title, chunk.Web.URI)
	}
	return b.String()
}

func renderError(err error, partial string, lang local.Language) string {
	if errors.Is(err, ErrEmptyMessage) {
		return ""
	}
	var notice string
	if errors.Is(err, context.Canceled) {
		notice = textStopped.Text(lang)
	} else {
		notice = err.Error()
		if !strings.HasPrefix(notice, warningPrefix) {
			notice = warningPrefix + " " + notice
		}
	}
	if partial == "" || partial == textThinking.Text(lang) {
		return notice
	}
	return truncateMessage(partial + "\n\n" + notice)
}

func truncateMessage(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLength {
		return text
	}
	return string([]rune(text)[:maxMessageLength])
}

// splitMessage cuts text into Telegram-sized parts, preferring to break on a newline.
func splitMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return []string{text}
	}
	var parts []string
	for len(runes) > maxMessageLength {
		cut := maxMessageLength
		for i := maxMessageLength - 1; i > maxMessageLength/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func (t *TelegramUsecase) messageAttachments(ctx context.Context, msg *api.Message) ([]model.Attachment, error) {
	switch {
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		attachment, err := t.downloadAttachment(ctx, photo.FileID)
		if err != nil {
			return nil, err
		}
		attachment.Type = model.AttachmentTypeImage
		attachment.MIMEType = "image/jpeg"
		return []model.Attachment{attachment}, nil
	case msg.Document != nil:
		mimeType := msg.Document.MimeType
		attachmentType, ok := documentAttachmentType(mimeType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, mimeType)
		}
		attachment, err := t.downloadAttachment(ctx, msg.Document.FileID)
		if err != nil {
			return nil, err
		}
		attachment.Type = attachmentType
		attachment.MIMEType = mimeType
		attachment.Name = msg.Document.FileName
		return []model.Attachment{attachment}, nil
	default:
		return nil, nil
	}
}

func documentAttachmentType(mimeType string) (model.AttachmentType, bool) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.AttachmentTypeImage, true
	case mimeType == "application/pdf", strings.HasPrefix(mimeType, "text/"):
		return model.AttachmentTypeFile, true
	default:
		return "", false
	}
}

func (t *TelegramUsecase) downloadAttachment(ctx context.Context, fileID string) (model.Attachment, error) {
	url, err := t.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to get file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.Attachment{}, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.cfg.AttachmentDownloadCap+1))
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > t.cfg.AttachmentDownloadCap {
		return model.Attachment{}, ErrAttachmentTooLarge
	}
	return model.Attachment{
		ID:   uuid.NewString(),
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}
