package notify

import (
	"context"
	"fmt"

	"prokat/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender покрывает методы бота, которые нужны уведомлениям.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier шлет владельцу и арендатору сообщения о событиях
// бронирования. При пустом токене бот nil и уведомления выключены.
type TelegramNotifier struct {
	bot    TelegramSender
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, debug bool, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return &TelegramNotifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = debug

	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

// NewTelegramNotifierWithSender используется в тестах.
func NewTelegramNotifierWithSender(bot TelegramSender, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, logger: logger}
}

func (n *TelegramNotifier) NotifyBookingCreated(ctx context.Context, owner *models.User, booking *models.Booking, item *models.Item) {
	text := fmt.Sprintf("Новая заявка на «%s»: %s — %s",
		item.Name,
		booking.Start.Format("02.01.2006 15:04"),
		booking.End.Format("02.01.2006 15:04"))
	n.send(owner, booking.ID, text)
}

func (n *TelegramNotifier) NotifyBookingDecided(ctx context.Context, booker *models.User, booking *models.Booking, item *models.Item) {
	var text string
	switch booking.Status {
	case models.StatusApproved:
		text = fmt.Sprintf("Заявка на «%s» подтверждена", item.Name)
	case models.StatusRejected:
		text = fmt.Sprintf("Заявка на «%s» отклонена", item.Name)
	default:
		return
	}
	n.send(booker, booking.ID, text)
}

func (n *TelegramNotifier) send(user *models.User, bookingID int64, text string) {
	if n.bot == nil || user == nil || user.TelegramChatID == 0 {
		return
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).
			Int64("chat_id", user.TelegramChatID).
			Int64("booking_id", bookingID).
			Msg("telegram send error")
	}
}
