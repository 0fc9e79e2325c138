package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"postauto/internal/entity"
	"postauto/internal/logs"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const previewLength = 1000

// Pipeline is the slice of the post lifecycle the bot drives.
type Pipeline interface {
	CreatePost(ctx context.Context, subject, telegramMessageID string) (*entity.Post, error)
	Approve(ctx context.Context, postID string) (*entity.Post, error)
	Adjust(ctx context.Context, postID, note string) (*entity.Post, error)
	Cancel(ctx context.Context, postID string) (*entity.Post, error)
	ListPosts(limit int) ([]*entity.Post, error)
	PendingApproval() ([]*entity.Post, error)
	QueueStats() (*entity.QueueStats, error)
}

type CredentialsSource interface {
	GetTelegramConfig() (*entity.TelegramConfig, error)
}

// Bot is the human control surface of the pipeline. It only talks to the
// single configured chat; messages from anywhere else get a refusal. When
// no bot token is stored the bot idles and notifications become warnings,
// so the rest of the pipeline keeps working headless.
type Bot struct {
	creds    CredentialsSource
	pipeline Pipeline
	recorder *logs.Recorder

	mu     sync.Mutex
	api    *tgbotapi.BotAPI
	chatID int64
	stop   chan struct{}
}

func NewBot(creds CredentialsSource, pipeline Pipeline, recorder *logs.Recorder) *Bot {
	return &Bot{
		creds:    creds,
		pipeline: pipeline,
		recorder: recorder,
	}
}

// Start connects with the stored credentials and begins polling. Missing
// credentials are not an error; the bot stays idle until Reinit.
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startLocked()
}

func (b *Bot) startLocked() error {
	// Already polling; a second Start must not orphan the running goroutine.
	// Reinit stops first when a reconnect is wanted.
	if b.api != nil {
		return nil
	}

	cfg, err := b.creds.GetTelegramConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		b.recorder.Warn(entity.SourceTelegram, "Bot token not configured, Telegram control surface disabled", nil)
		return nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	b.api = api
	b.chatID = cfg.ChatID
	b.stop = make(chan struct{})

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	go b.poll(updates, b.stop)

	b.recorder.Info(entity.SourceTelegram, "Bot connected as @"+api.Self.UserName, nil)
	return nil
}

// Reinit tears down the current connection and reconnects with whatever
// credentials are stored now. Called after the bot token is changed.
func (b *Bot) Reinit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	return b.startLocked()
}

func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Bot) stopLocked() {
	if b.api == nil {
		return
	}
	close(b.stop)
	b.api.StopReceivingUpdates()
	b.api = nil
	b.chatID = 0
}

func (b *Bot) poll(updates tgbotapi.UpdatesChannel, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.Chat.ID != b.authorizedChat() {
		b.reply(msg.Chat.ID, "This bot only answers its configured chat.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case msg.IsCommand():
		b.handleCommand(msg)

	case hasSubject(msg.Text):
		subject, _ := ParseSubject(msg.Text)
		post, err := b.pipeline.CreatePost(ctx, subject, fmt.Sprintf("%d", msg.MessageID))
		if err != nil {
			b.reply(msg.Chat.ID, "Failed to create the post: "+err.Error())
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Drafting an article about %q.\nPost %s is queued; I will send it here for review.", subject, post.ID))

	case hasAdjustment(msg.Text):
		postID, note, _ := ParseAdjustment(msg.Text)
		_, err := b.pipeline.Adjust(ctx, postID, note)
		if err != nil {
			b.reply(msg.Chat.ID, "Adjustment failed: "+err.Error())
			return
		}
		b.reply(msg.Chat.ID, "Got it, regenerating the draft with your note.")

	default:
		b.reply(msg.Chat.ID, "I did not understand that. Send /help for the commands I know.")
	}
}

func hasSubject(text string) bool {
	_, ok := ParseSubject(text)
	return ok
}

func hasAdjustment(text string) bool {
	_, _, ok := ParseAdjustment(text)
	return ok
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText)
	case "status":
		b.sendStatus(msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Send /help for the commands I know.")
	}
}

const helpText = `I turn subjects into published articles.

Subject: <topic> — draft an article about <topic>
Adjust:<post id>: <note> — regenerate a draft with your note
/status — pending reviews and queue depth
/help — this message`

func (b *Bot) sendStatus(chatID int64) {
	recent, err := b.pipeline.ListPosts(5)
	if err != nil {
		b.reply(chatID, "Failed to read posts: "+err.Error())
		return
	}

	var sb strings.Builder
	if len(recent) == 0 {
		sb.WriteString("No posts yet. Send Subject: <topic> to start one.\n")
	} else {
		sb.WriteString("Recent posts:\n")
		for _, post := range recent {
			sb.WriteString(fmt.Sprintf("%s %s — %s (%s)\n", statusGlyph(post.Status), post.Title(), post.ID, post.Status))
		}
	}

	if stats, err := b.pipeline.QueueStats(); err == nil {
		sb.WriteString(fmt.Sprintf("\nQueue: %d waiting, %d parked", stats.Waiting, stats.Parked))
	}

	b.reply(chatID, sb.String())
}

func statusGlyph(status entity.PostStatus) string {
	switch status {
	case entity.StatusPendingText, entity.StatusGeneratingImages:
		return "⏳"
	case entity.StatusPendingApproval:
		return "👀"
	case entity.StatusApproved, entity.StatusReady:
		return "✅"
	case entity.StatusPublished:
		return "🚀"
	case entity.StatusCancelled:
		return "❌"
	case entity.StatusError:
		return "⚠️"
	default:
		return "•"
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat.ID != b.authorizedChat() {
		b.answerCallback(cb.ID, "Not authorized")
		return
	}

	action, postID, ok := ParseCallback(cb.Data)
	if !ok {
		b.answerCallback(cb.ID, "Malformed action")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch action {
	case "approve":
		if _, err := b.pipeline.Approve(ctx, postID); err != nil {
			b.answerCallback(cb.ID, "Approve failed")
			b.reply(cb.Message.Chat.ID, "Approve failed: "+err.Error())
			return
		}
		b.answerCallback(cb.ID, "Approved")
		b.reply(cb.Message.Chat.ID, "Approved. Generating images now.")

	case "adjust":
		b.answerCallback(cb.ID, "Waiting for your note")
		b.reply(cb.Message.Chat.ID, fmt.Sprintf("Send your note as:\nAdjust:%s: <what to change>", postID))

	case "cancel":
		if _, err := b.pipeline.Cancel(ctx, postID); err != nil {
			b.answerCallback(cb.ID, "Cancel failed")
			b.reply(cb.Message.Chat.ID, "Cancel failed: "+err.Error())
			return
		}
		b.answerCallback(cb.ID, "Cancelled")
		b.reply(cb.Message.Chat.ID, "Post cancelled.")

	default:
		b.answerCallback(cb.ID, "Unknown action")
	}
}

// SendApprovalRequest posts the draft preview with the review keyboard.
func (b *Bot) SendApprovalRequest(post *entity.Post) error {
	api, chatID := b.connection()
	if api == nil {
		b.recorder.Warn(entity.SourceTelegram, "Approval request dropped, bot not configured", map[string]interface{}{"post_id": post.ID})
		return nil
	}

	preview := truncatePreview(post.GeneratedText, previewLength)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 Draft ready for review\n\n%s\n\n%s\n\n", post.Title(), preview))
	sb.WriteString("Planned images (not generated yet):\n")
	for i, prompt := range post.ImagePrompts {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, prompt))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", "approve:"+post.ID),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Adjust", "adjust:"+post.ID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel:"+post.ID),
		),
	)

	_, err := api.Send(msg)
	return err
}

// SendPublishNotification reports a successful publication.
func (b *Bot) SendPublishNotification(post *entity.Post) error {
	api, chatID := b.connection()
	if api == nil {
		b.recorder.Warn(entity.SourceTelegram, "Publish notification dropped, bot not configured", map[string]interface{}{"post_id": post.ID})
		return nil
	}

	text := fmt.Sprintf("🚀 Published: %s\n%s", post.Title(), post.WordpressURL)
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendErrorNotification reports a stage failure for a post.
func (b *Bot) SendErrorNotification(post *entity.Post, message string) error {
	api, chatID := b.connection()
	if api == nil {
		b.recorder.Warn(entity.SourceTelegram, "Error notification dropped, bot not configured", map[string]interface{}{"post_id": post.ID, "error": message})
		return nil
	}

	text := fmt.Sprintf("⚠️ Post %q failed: %s", post.Title(), message)
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// truncatePreview cuts text to at most max bytes on a rune boundary, so a
// long draft never becomes an invalid UTF-8 string mid-character.
func truncatePreview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func (b *Bot) connection() (*tgbotapi.BotAPI, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.api, b.chatID
}

func (b *Bot) authorizedChat() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatID
}

func (b *Bot) reply(chatID int64, text string) {
	api, _ := b.connection()
	if api == nil {
		return
	}
	if _, err := api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.recorder.Warn(entity.SourceTelegram, "Failed to send message: "+err.Error(), nil)
	}
}

func (b *Bot) answerCallback(id, text string) {
	api, _ := b.connection()
	if api == nil {
		return
	}
	if _, err := api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.recorder.Warn(entity.SourceTelegram, "Failed to answer callback: "+err.Error(), nil)
	}
}
