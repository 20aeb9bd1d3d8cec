package notify

import (
	"context"
	"io"
	"testing"
	"time"

	"prokat/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotifier(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	item := &models.Item{ID: 5, Name: "Дрель"}
	booking := &models.Booking{
		ID:     10,
		Start:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Status: models.StatusApproved,
	}

	t.Run("notifies owner about new booking", func(t *testing.T) {
		sender := &fakeSender{}
		n := NewTelegramNotifierWithSender(sender, &logger)
		owner := &models.User{ID: 1, TelegramChatID: 42}

		n.NotifyBookingCreated(ctx, owner, booking, item)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, int64(42), sender.sent[0].ChatID)
		assert.Contains(t, sender.sent[0].Text, "Дрель")
	})

	t.Run("notifies booker about decision", func(t *testing.T) {
		sender := &fakeSender{}
		n := NewTelegramNotifierWithSender(sender, &logger)
		booker := &models.User{ID: 2, TelegramChatID: 43}

		n.NotifyBookingDecided(ctx, booker, booking, item)

		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].Text, "подтверждена")
	})

	t.Run("skips user without chat id", func(t *testing.T) {
		sender := &fakeSender{}
		n := NewTelegramNotifierWithSender(sender, &logger)

		n.NotifyBookingCreated(ctx, &models.User{ID: 1}, booking, item)

		assert.Empty(t, sender.sent)
	})

	t.Run("disabled without token", func(t *testing.T) {
		n, err := NewTelegramNotifier("", false, &logger)
		require.NoError(t, err)

		// Не должно паниковать с выключенным ботом.
		n.NotifyBookingCreated(ctx, &models.User{TelegramChatID: 42}, booking, item)
	})
}
