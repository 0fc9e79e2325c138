package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"postauto/internal/entity"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestTruncatePreviewShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short draft", truncatePreview("short draft", previewLength))
}

func TestTruncatePreviewCutsLongText(t *testing.T) {
	long := strings.Repeat("a", previewLength+50)

	got := truncatePreview(long, previewLength)

	assert.Equal(t, strings.Repeat("a", previewLength)+"…", got)
}

func TestTruncatePreviewKeepsRuneBoundary(t *testing.T) {
	// é is two bytes; an odd byte budget would land mid-rune.
	long := strings.Repeat("é", 20)

	got := truncatePreview(long, 7)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 3)+"…", got)
}

type countingCreds struct {
	calls int
}

func (c *countingCreds) GetTelegramConfig() (*entity.TelegramConfig, error) {
	c.calls++
	return nil, nil
}

func TestStartIsNoOpWhileRunning(t *testing.T) {
	creds := &countingCreds{}
	bot := NewBot(creds, nil, nil)

	running := &tgbotapi.BotAPI{}
	bot.api = running

	err := bot.Start()

	assert.NoError(t, err)
	assert.Same(t, running, bot.api, "a second Start must not replace the live connection")
	assert.Zero(t, creds.calls)
}
