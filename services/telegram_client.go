package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"backend_frota/models"
)

// TelegramClient отправляет уведомления о заявках в настроенный чат.
// Все отправки best-effort: сбой уведомления никогда не влияет на
// породившую его операцию.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramClient создает клиент Telegram по токену бота
func NewTelegramClient(token string, chatID int64) (*TelegramClient, error) {
	if token == "" {
		return nil, fmt.Errorf("token do Telegram não configurado")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar bot do Telegram: %w", err)
	}

	bot.Debug = false
	log.Printf("✅ Bot do Telegram autorizado: %s", bot.Self.UserName)

	return &TelegramClient{bot: bot, chatID: chatID}, nil
}

// NotifyWorkOrder отправляет уведомление об открытии заявки
func (tc *TelegramClient) NotifyWorkOrder(wo *models.WorkOrder, fleetTag, opName string) error {
	stopped := "não"
	if wo.MachineStopped {
		stopped = "sim"
	}

	text := fmt.Sprintf(
		"🔧 <b>Nova OS %d</b>\nFrota: %s\nTipo: %s\nPrioridade: %s\nMáquina parada: %s\nAbertura: %s",
		wo.ID, fleetTag, opName, wo.Priority, stopped,
		wo.OpenedAt.Format("02/01/2006 15:04"),
	)

	msg := tgbotapi.NewMessage(tc.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := tc.bot.Send(msg); err != nil {
		return fmt.Errorf("falha ao enviar mensagem: %w", err)
	}
	return nil
}
