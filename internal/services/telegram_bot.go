package services

import (
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"absensi/internal/models"
)

// LeaveNotifier tells admins about new leave applications.
type LeaveNotifier interface {
	LeaveApplied(leave *models.Leave, applicant *models.User) error
}

// tgSender is satisfied by *tgbotapi.BotAPI.
type tgSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramService struct {
	bot         tgSender
	adminChatID int64
}

// NewTelegramService returns a service that skips sending when the token or
// chat id is empty.
func NewTelegramService(botToken string, adminChatID int64) (*TelegramService, error) {
	if botToken == "" {
		return &TelegramService{adminChatID: adminChatID}, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("[tg][init] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, adminChatID: adminChatID}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		log.Printf("[tg][skip] bot or chatID empty (bot? %v chatID=%d)", t != nil && t.bot != nil, chatID)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	log.Printf("[tg][send] chatID=%d ok", chatID)
	return nil
}

func (t *TelegramService) LeaveApplied(leave *models.Leave, applicant *models.User) error {
	name := fmt.Sprintf("user #%d", leave.UserID)
	if applicant != nil {
		name = applicant.Name
	}
	text := fmt.Sprintf(
		"<b>New leave request</b>\n%s applied for %s leave\n%s → %s\nReason: %s",
		html.EscapeString(name),
		leave.Type,
		leave.StartDate.Format(dateLayout),
		leave.EndDate.Format(dateLayout),
		html.EscapeString(leave.Reason),
	)
	return t.SendMessage(t.adminChatID, text)
}
