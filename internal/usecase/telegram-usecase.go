package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/pkg/local"
)

const (
	callbackModelPrefix = "model:"
	callbackChatPrefix  = "chat:"

	maxButtonsInRow = 3
	argsSeparator   = "|"

	defaultAttachmentDownloadCap = 10 << 20
)

type TelegramBot interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
	GetUpdatesChan(config api.UpdateConfig) api.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

type TelegramUsecaseDeps struct {
	User         *UserUsecase
	AIChat       *AiChatUsecase
	Knowledge    *KnowledgeUsecase
	Assist       *AssistUsecase
	Conversation *ConversationUsecase
	Bot          TelegramBot
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

type TelegramUsecase struct {
	TelegramUsecaseDeps
	cfg config.Telegram

	mu       sync.Mutex
	inflight map[int64]context.CancelFunc
	handlers conc.WaitGroup
}

func NewTelegramUsecase(cfg config.Telegram, deps TelegramUsecaseDeps) (*TelegramUsecase, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: time.Minute}
	}
	if cfg.AttachmentDownloadCap <= 0 {
		cfg.AttachmentDownloadCap = defaultAttachmentDownloadCap
	}
	_, err := deps.Bot.Request(
		api.NewSetMyCommands(
			[]api.BotCommand{
				{Command: CommandHelp, Description: "Get help"},
				{Command: CommandNew, Description: "Pick a model and start a new chat"},
				{Command: CommandChats, Description: "Show and switch chats"},
				{Command: CommandClear, Description: "Delete all chats"},
				{Command: CommandThink, Description: "Toggle deep reasoning"},
				{Command: CommandSearch, Description: "Toggle web search"},
				{Command: CommandLang, Description: "Switch language"},
				{Command: CommandPersona, Description: "Show or set persona"},
				{Command: CommandRoleplay, Description: "Start a roleplay story"},
				{Command: CommandLearn, Description: "Start a tutoring session"},
				{Command: CommandKB, Description: "Manage knowledge base"},
				{Command: CommandImagine, Description: "Generate an image"},
				{Command: CommandEnhance, Description: "Improve a prompt"},
				{Command: CommandExport, Description: "Export the current chat"},
				{Command: CommandStop, Description: "Stop the current answer"},
			}...,
		),
	)
	if err != nil {
		return nil, err
	}

	return &TelegramUsecase{
		TelegramUsecaseDeps: deps,
		cfg:                 cfg,
		inflight:            make(map[int64]context.CancelFunc),
	}, nil
}

// Run polls updates until ctx is done. Every update is handled on its own goroutine so /stop
// can reach a chat that is still streaming.
func (t *TelegramUsecase) Run(ctx context.Context) error {
	u := api.NewUpdate(0)
	u.Timeout = 60

	updates := t.Bot.GetUpdatesChan(u)
	defer t.handlers.Wait()

	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handlers.Go(
				func() {
					t.HandleUpdate(ctx, update)
				},
			)
		}
	}
}

func (t *TelegramUsecase) HandleUpdate(ctx context.Context, update api.Update) {
	if update.Message != nil {
		if err := t.handleMessage(ctx, update.Message); err != nil {
			t.Logger.Error("error handling message", "error", err)
		}
	}
	if update.CallbackQuery != nil {
		if err := t.handleCallbackQuery(ctx, update.CallbackQuery); err != nil {
			t.Logger.Error("error handling callback query", "error", err)
		}
	}
}

func (t *TelegramUsecase) handleCallbackQuery(ctx context.Context, query *api.CallbackQuery) error {
	chatID := query.Message.Chat.ID
	data := query.Data
	if _, err := t.Bot.Request(api.NewCallback(query.ID, "")); err != nil {
		return fmt.Errorf("failed to request callback: %w", err)
	}

	user, err := t.User.GetUserInfoForTelegramUser(ctx, chatID)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(local.Eng))
		return fmt.Errorf("failed to get user info for telegram user: %w", err)
	}
	lang := userLanguage(user)

	switch {
	case strings.HasPrefix(data, callbackModelPrefix):
		identity, err := model.ParseModelIdentity(strings.TrimPrefix(data, callbackModelPrefix))
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textUserModelNoAccess.Text(lang))
			return nil
		}
		return t.createNewAIChat(ctx, user, chatID, identity)
	case strings.HasPrefix(data, callbackChatPrefix):
		aiChatID, err := uuid.Parse(strings.TrimPrefix(data, callbackChatPrefix))
		if err != nil {
			return fmt.Errorf("failed to parse chat id: %w", err)
		}
		return t.switchChat(ctx, user, chatID, aiChatID)
	default:
		return nil
	}
}

func (t *TelegramUsecase) handleMessage(ctx context.Context, msg *api.Message) error {
	chatID := msg.Chat.ID

	user, err := t.User.GetUserInfoForTelegramUser(ctx, chatID)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(local.Eng))
		return fmt.Errorf("failed to get user info for telegram user: %w", err)
	}
	lang := userLanguage(user)

	if !t.User.HasAccess(user) {
		t.sendMessageAndHandleErr(chatID, textUserNoAccess.Text(lang))
		return nil
	}

	if msg.IsCommand() {
		return t.handleCommand(ctx, user, msg)
	}

	attachments, err := t.messageAttachments(ctx, msg)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textAttachmentFailed.Text(lang))
		return fmt.Errorf("failed to read attachment: %w", err)
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return nil
	}
	return t.runTurn(ctx, user, chatID, text, attachments)
}

func (t *TelegramUsecase) handleCommand(ctx context.Context, user model.User, msg *api.Message) error {
	chatID := msg.Chat.ID
	lang := userLanguage(user)
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case CommandStart:
		t.sendMessageAndHandleErr(chatID, textCommandStart.Text(lang))
	case CommandHelp:
		t.sendMessageAndHandleErr(chatID, textCommandHelp.Text(lang))
	case CommandNew:
		return t.sendSelectModelsKeyboard(user, chatID)
	case CommandChats:
		return t.sendChatsKeyboard(ctx, user, chatID)
	case CommandClear:
		removed, err := t.AIChat.ClearUserChats(ctx, user.UserID)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, textClearedChatsFormat.Format(lang, removed))
	case CommandThink:
		settings, err := t.User.UpdateSettings(
			ctx, user.UserID, func(s *model.UserSettings) {
				s.DeepThink = !s.DeepThink
			},
		)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, pick(settings.DeepThink, textThinkOn, textThinkOff).Text(lang))
	case CommandSearch:
		settings, err := t.User.UpdateSettings(
			ctx, user.UserID, func(s *model.UserSettings) {
				s.UseSearch = !s.UseSearch
			},
		)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, pick(settings.UseSearch, textSearchOn, textSearchOff).Text(lang))
	case CommandLang:
		return t.setLanguage(ctx, user, chatID, args)
	case CommandPersona:
		return t.setPersona(ctx, user, chatID, args)
	case CommandRoleplay:
		return t.startRoleplay(ctx, user, chatID, args)
	case CommandLearn:
		return t.startLearning(ctx, user, chatID, args)
	case CommandKB:
		return t.manageKnowledge(ctx, user, chatID, args)
	case CommandImagine:
		return t.imagine(ctx, user, chatID, args)
	case CommandEnhance:
		if args == "" {
			t.sendMessageAndHandleErr(chatID, textEnhanceUsage.Text(lang))
			return nil
		}
		t.sendMessageAndHandleErr(chatID, t.Assist.EnhancePrompt(ctx, args, user.Settings.Language))
	case CommandExport:
		return t.exportChat(ctx, user, chatID)
	case CommandStop:
		if t.cancelTurn(chatID) {
			return nil
		}
		t.sendMessageAndHandleErr(chatID, textNothingToStop.Text(lang))
	default:
		t.sendMessageAndHandleErr(chatID, textCommandUnknown.Text(lang))
	}
	return nil
}

func (t *TelegramUsecase) sendSelectModelsKeyboard(user model.User, chatID int64) error {
	lang := userLanguage(user)
	aiModels := t.AIChat.AvailableModels(user)
	if len(aiModels) == 0 {
		t.sendMessageAndHandleErr(chatID, textHaveNoAvailableModels.Text(lang))
		return fmt.Errorf("failed to get user models: %w", ErrUserRoleHasNotAnyAvailableModels)
	}

	buttons := make([]api.InlineKeyboardButton, 0, len(aiModels))
	for _, aiModel := range aiModels {
		label := fmt.Sprintf("%s (%s)", aiModel, aiModel.Description())
		buttons = append(buttons, api.NewInlineKeyboardButtonData(label, callbackModelPrefix+string(aiModel)))
	}
	msg := api.NewMessage(chatID, textSelectModel.Text(lang))
	msg.ReplyMarkup = api.NewInlineKeyboardMarkup(buttonRows(buttons)...)
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to bot: %w", err)
	}
	return nil
}

func (t *TelegramUsecase) sendChatsKeyboard(ctx context.Context, user model.User, chatID int64) error {
	lang := userLanguage(user)
	chats, err := t.AIChat.ListUserChats(ctx, user.UserID)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textFailedToGetChats.Text(lang))
		return fmt.Errorf("failed to list chats: %w", err)
	}
	msg := api.NewMessage(chatID, prepareUsersChats(chats, user.LastAIChat, lang))
	if len(chats) > 0 {
		rows := make([][]api.InlineKeyboardButton, 0, len(chats))
		for i, chat := range chats {
			label := fmt.Sprintf("%d) %s", i+1, chat.Title)
			rows = append(
				rows, api.NewInlineKeyboardRow(
					api.NewInlineKeyboardButtonData(label, callbackChatPrefix+chat.ChatID.String()),
				),
			)
		}
		msg.ReplyMarkup = api.NewInlineKeyboardMarkup(rows...)
	}
	if _, err = t.Bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to bot: %w", err)
	}
	return nil
}

func prepareUsersChats(chats []model.AIChat, current uuid.UUID, lang local.Language) string {
	result := strings.Builder{}
	result.WriteString(textChatsFormat.Format(lang, len(chats)))
	for i, chat := range chats {
		marker := ""
		if chat.ChatID == current {
			marker = pick(lang.IsRTL(), " ➡", " ⬅")
		}
		fmt.Fprintf(
			&result, "\n%d) %s. Messages: %d, Model: %s%s", i+1, chat.Title, len(chat.Messages), chat.Model, marker,
		)
	}
	return result.String()
}

func (t *TelegramUsecase) createNewAIChat(
	ctx context.Context,
	user model.User,
	chatID int64,
	aiModel model.ModelIdentity,
) error {
	lang := userLanguage(user)
	if _, err := t.AIChat.CreateChat(ctx, user.UserID, aiModel); err != nil {
		if errors.Is(err, ErrUserRoleHasNotAccessToModel) {
			t.sendMessageAndHandleErr(chatID, textUserModelNoAccess.Text(lang))
			return nil
		}
		t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
		return fmt.Errorf("failed to create user ai-chat: %w", err)
	}
	t.sendMessageAndHandleErr(chatID, textSelectedModelFormat.Format(lang, aiModel))
	return nil
}

func (t *TelegramUsecase) switchChat(ctx context.Context, user model.User, chatID int64, aiChatID uuid.UUID) error {
	lang := userLanguage(user)
	chat, err := t.AIChat.GetChat(ctx, aiChatID)
	if err != nil || chat.UserID != user.UserID {
		t.sendMessageAndHandleErr(chatID, textFailedToGetChats.Text(lang))
		return err
	}
	if err = t.User.UpdateUserLastAIChat(ctx, user.UserID, chat.ChatID); err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
		return fmt.Errorf("failed to update user last ai-chat: %w", err)
	}
	t.sendMessageAndHandleErr(chatID, textSwitchedChatFormat.Format(lang, chat.Title))
	return nil
}

func (t *TelegramUsecase) setLanguage(ctx context.Context, user model.User, chatID int64, args string) error {
	settings, err := t.User.UpdateSettings(
		ctx, user.UserID, func(s *model.UserSettings) {
			switch strings.ToLower(args) {
			case string(model.LanguageArabic):
				s.Language = model.LanguageArabic
			case string(model.LanguageEnglish):
				s.Language = model.LanguageEnglish
			default:
				s.Language = pick(s.Language == model.LanguageArabic, model.LanguageEnglish, model.LanguageArabic)
			}
		},
	)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(userLanguage(user)))
		return err
	}
	user.Settings = settings
	t.sendMessageAndHandleErr(chatID, textLanguageSet.Text(userLanguage(user)))
	return nil
}

func (t *TelegramUsecase) setPersona(ctx context.Context, user model.User, chatID int64, args string) error {
	lang := userLanguage(user)
	persona := user.Settings.Persona
	if args != "" {
		settings, err := t.User.UpdateSettings(
			ctx, user.UserID, func(s *model.UserSettings) {
				if strings.EqualFold(args, "reset") {
					s.Persona = model.DefaultPersona()
					return
				}
				fields := splitArgs(args, 4)
				s.Persona.Name = orDefault(fields[0], s.Persona.Name)
				s.Persona.Tone = orDefault(fields[1], s.Persona.Tone)
				s.Persona.Context = orDefault(fields[2], s.Persona.Context)
				s.Persona.Memory = orDefault(fields[3], s.Persona.Memory)
			},
		)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		persona = settings.Persona
	}
	t.sendMessageAndHandleErr(
		chatID, textPersonaFormat.Format(lang, persona.Name, persona.Tone, persona.Context, persona.Memory),
	)
	return nil
}

func (t *TelegramUsecase) startRoleplay(ctx context.Context, user model.User, chatID int64, args string) error {
	lang := userLanguage(user)
	fields := splitArgs(args, 4)
	if fields[0] == "" || fields[2] == "" {
		t.sendMessageAndHandleErr(chatID, textRoleplayUsage.Text(lang))
		return nil
	}
	chat, err := t.AIChat.CreateRoleplayChat(
		ctx, user.UserID, model.RoleplayConfig{
			CharacterName:        fields[0],
			CharacterDescription: fields[1],
			Scenario:             fields[2],
			WorldContext:         fields[3],
		},
	)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
		return fmt.Errorf("failed to create roleplay chat: %w", err)
	}
	t.sendOpening(chatID, chat)
	return nil
}

func (t *TelegramUsecase) startLearning(ctx context.Context, user model.User, chatID int64, args string) error {
	lang := userLanguage(user)
	fields := splitArgs(args, 4)
	if fields[0] == "" {
		t.sendMessageAndHandleErr(chatID, textLearnUsage.Text(lang))
		return nil
	}
	chat, err := t.AIChat.CreateLearningChat(
		ctx, user.UserID, model.LearningConfig{
			Topic:         fields[0],
			CurrentLevel:  parseLearningLevel(fields[1]),
			Goal:          orDefault(fields[2], "Understand the fundamentals"),
			TeachingStyle: parseTeachingStyle(fields[3]),
		}, user.Settings.Language,
	)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
		return fmt.Errorf("failed to create learning chat: %w", err)
	}
	t.sendOpening(chatID, chat)
	return nil
}

func (t *TelegramUsecase) sendOpening(chatID int64, chat model.AIChat) {
	if len(chat.Messages) == 0 {
		return
	}
	t.sendMessageAndHandleErr(chatID, chat.Messages[0].Content)
}

func (t *TelegramUsecase) manageKnowledge(ctx context.Context, user model.User, chatID int64, args string) error {
	lang := userLanguage(user)
	action, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(action) {
	case "":
		items, err := t.Knowledge.List(ctx, user.UserID)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		if len(items) == 0 {
			t.sendMessageAndHandleErr(chatID, textKBEmpty.Text(lang))
			return nil
		}
		var b strings.Builder
		for i, item := range items {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%d) %s: %s", i+1, item.Title, item.Content)
		}
		t.sendMessageAndHandleErr(chatID, b.String())
	case "add":
		title, content := ParseEntry(rest)
		item, err := t.Knowledge.Add(ctx, user.UserID, title, content)
		if err != nil {
			if errors.Is(err, ErrEmptyKnowledgeItem) {
				t.sendMessageAndHandleErr(chatID, textKBUsage.Text(lang))
				return nil
			}
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, textKBAddedFormat.Format(lang, item.Title))
	case "del":
		position, err := strconv.Atoi(rest)
		if err != nil {
			t.sendMessageAndHandleErr(chatID, textKBUsage.Text(lang))
			return nil
		}
		item, err := t.Knowledge.Remove(ctx, user.UserID, position)
		if err != nil {
			if errors.Is(err, model.ErrKnowledgeItemDoesNotExist) {
				t.sendMessageAndHandleErr(chatID, textKBUsage.Text(lang))
				return nil
			}
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, textKBRemovedFormat.Format(lang, item.Title))
	case "clear":
		if err := t.Knowledge.Clear(ctx, user.UserID); err != nil {
			t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
			return err
		}
		t.sendMessageAndHandleErr(chatID, textKBCleared.Text(lang))
	default:
		t.sendMessageAndHandleErr(chatID, textKBUsage.Text(lang))
	}
	return nil
}

func (t *TelegramUsecase) imagine(ctx context.Context, user model.User, chatID int64, prompt string) error {
	lang := userLanguage(user)
	if prompt == "" {
		t.sendMessageAndHandleErr(chatID, textImagineUsage.Text(lang))
		return nil
	}
	t.requestAndHandleErr(api.NewChatAction(chatID, api.ChatUploadPhoto))

	attachment, err := t.Assist.GenerateImage(ctx, prompt)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textImageFailed.Format(lang, err.Error()))
		return err
	}
	data, err := base64.StdEncoding.DecodeString(attachment.Data)
	if err != nil {
		return fmt.Errorf("failed to decode generated image: %w", err)
	}
	photo := api.NewPhoto(chatID, api.FileBytes{Name: "lunaris.png", Bytes: data})
	photo.Caption = prompt
	if _, err = t.Bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}

	chat, _, err := t.AIChat.CurrentChat(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to get current chat: %w", err)
	}
	return t.AIChat.AddMessageToChat(
		ctx, chat.ChatID, model.Message{
			Role:        model.MessageRoleModel,
			Content:     prompt,
			Attachments: []model.Attachment{attachment},
		},
	)
}

func (t *TelegramUsecase) exportChat(ctx context.Context, user model.User, chatID int64) error {
	lang := userLanguage(user)
	chat, _, err := t.AIChat.CurrentChat(ctx, user)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, textServerError.Text(lang))
		return err
	}
	document := api.NewDocument(
		chatID, api.FileBytes{Name: exportFileName(chat.Title), Bytes: []byte(ExportStory(chat))},
	)
	if _, err = t.Bot.Send(document); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

func exportFileName(title string) string {
	name := strings.Map(
		func(r rune) rune {
			switch r {
			case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
				return '_'
			}
			return r
		}, strings.TrimSpace(title),
	)
	if name == "" {
		name = "chat"
	}
	return name + ".txt"
}

func (t *TelegramUsecase) startTurn(chatID int64, cancel context.CancelFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[chatID]; busy {
		return false
	}
	t.inflight[chatID] = cancel
	return true
}

func (t *TelegramUsecase) finishTurn(chatID int64) {
	t.mu.Lock()
	delete(t.inflight, chatID)
	t.mu.Unlock()
}

func (t *TelegramUsecase) cancelTurn(chatID int64) bool {
	t.mu.Lock()
	cancel, ok := t.inflight[chatID]
	t.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (t *TelegramUsecase) sendMessageAndHandleErr(chatID int64, message string) api.Message {
	msg, err := t.sendMessage(chatID, message)
	if err != nil {
		t.Logger.Error("failed to send new message to bot", "error", err)
	}
	return msg
}

func (t *TelegramUsecase) requestAndHandleErr(c api.Chattable) {
	if _, err := t.Bot.Request(c); err != nil {
		t.Logger.Warn("failed to send request to bot", "error", err)
	}
}

func (t *TelegramUsecase) sendMessage(chatID int64, message string) (api.Message, error) {
	return t.sendToBot(api.NewMessage(chatID, message))
}

func (t *TelegramUsecase) sendEditMessage(chatID int64, previousMsgID int, message string) (api.Message, error) {
	return t.sendToBot(api.NewEditMessageText(chatID, previousMsgID, message))
}

func (t *TelegramUsecase) sendToBot(c api.Chattable) (api.Message, error) {
	return t.Bot.Send(c)
}

func userLanguage(user model.User) local.Language {
	return local.ParseLanguage(string(user.Settings.Language))
}

func buttonRows(buttons []api.InlineKeyboardButton) [][]api.InlineKeyboardButton {
	rows := make([][]api.InlineKeyboardButton, 0, len(buttons)/maxButtonsInRow+1)
	for start := 0; start < len(buttons); start += maxButtonsInRow {
		end := min(start+maxButtonsInRow, len(buttons))
		rows = append(rows, buttons[start:end])
	}
	return rows
}

// splitArgs splits "a | b | c" into exactly n trimmed fields.
func splitArgs(args string, n int) []string {
	fields := make([]string, n)
	for i, part := range strings.SplitN(args, argsSeparator, n) {
		fields[i] = strings.TrimSpace(part)
	}
	return fields
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func pick[T any](cond bool, yes, no T) T {
	if cond {
		return yes
	}
	return no
}

func parseLearningLevel(s string) model.LearningLevel {
	for _, level := range []model.LearningLevel{
		model.LearningLevelBeginner, model.LearningLevelIntermediate, model.LearningLevelAdvanced,
	} {
		if strings.EqualFold(s, string(level)) {
			return level
		}
	}
	return model.LearningLevelBeginner
}

func parseTeachingStyle(s string) model.TeachingStyle {
	for _, style := range []model.TeachingStyle{
		model.TeachingStyleSocratic, model.TeachingStyleDirect, model.TeachingStylePractical,
	} {
		if strings.EqualFold(s, string(style)) {
			return style
		}
	}
	return model.TeachingStyleSocratic
}
