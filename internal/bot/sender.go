package bot

import (
	"context"
	"fmt"
	"path"
	"strings"

	tele "gopkg.in/telebot.v4"

	"leadbot/core/logger"
	"leadbot/internal/leads"

	"log/slog"
)

// telegramSender delivers menu content over the bot connection.
type telegramSender struct {
	bot *tele.Bot
}

func (s *telegramSender) SendText(ctx context.Context, userID int64, text string) error {
	_, err := s.bot.Send(tele.ChatID(userID), text)
	return err
}

func (s *telegramSender) SendDocument(ctx context.Context, userID int64, ref, caption string) error {
	doc := &tele.Document{File: fileRef(ref), Caption: caption, FileName: fileBaseName(ref)}
	_, err := s.bot.Send(tele.ChatID(userID), doc)
	return err
}

func (s *telegramSender) SendPhoto(ctx context.Context, userID int64, ref, caption string) error {
	photo := &tele.Photo{File: fileRef(ref), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), photo)
	return err
}

func (s *telegramSender) SendLink(ctx context.Context, userID int64, label, url string) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL(label, url)))
	_, err := s.bot.Send(tele.ChatID(userID), label, &tele.SendOptions{ReplyMarkup: markup})
	return err
}

// fileRef treats http(s) payloads as remote files and everything else
// as a path on disk.
func fileRef(ref string) tele.File {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tele.FromURL(ref)
	}
	return tele.FromDisk(ref)
}

func fileBaseName(ref string) string {
	return path.Base(ref)
}

// operatorNotifier copies each recorded lead to the operator chat so a
// human can follow up even when the database is down.
type operatorNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func (n *operatorNotifier) Record(ctx context.Context, lead leads.Lead) error {
	if _, err := n.bot.Send(tele.ChatID(n.chatID), leads.OperatorSummary(lead)); err != nil {
		return fmt.Errorf("bot: notify operator: %w", err)
	}
	logger.Info(ctx, "service.leads", "lead.notify",
		slog.String("lead_id", lead.ID.String()),
		slog.Int64("user_id", lead.UserID),
	)
	return nil
}
