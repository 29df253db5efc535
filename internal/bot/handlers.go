package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"leadbot/core/logger"
	"leadbot/core/telegram/format"
	tghelpers "leadbot/core/telegram/helpers"
	"leadbot/core/telegram/keyboard"
	"leadbot/internal/onboarding"
	"leadbot/internal/session"

	"log/slog"
)

// handleStart resets the session and replays the consent step. This is
// the single reset path, so it also recovers users stuck mid-flow.
func (a *App) handleStart(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if _, err := flow.Start(ctx, userID); err != nil {
		return err
	}

	texts := a.cfg.Content.Texts
	if err := tghelpers.SendText(c, texts.Welcome, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()}); err != nil {
		return err
	}
	a.sendConsentDocuments(c)
	return tghelpers.SendText(c, texts.ConsentPrompt, &tele.SendOptions{ReplyMarkup: a.consentMarkup()})
}

// sendConsentDocuments delivers the policy files. A missing file must
// not strand the user before the consent button, so failures only log.
func (a *App) sendConsentDocuments(c tele.Context) {
	failed := false
	for _, ref := range a.cfg.Content.ConsentDocuments {
		doc := &tele.Document{File: fileRef(ref), FileName: fileBaseName(ref)}
		if err := c.Send(doc); err != nil {
			failed = true
			logger.Warn(tghelpers.BuildContext(c), "tg", "consent.document",
				slog.Int64("user_id", c.Sender().ID),
				slog.String("ref", ref),
				slog.String("err", err.Error()),
			)
		}
	}
	if failed {
		_ = tghelpers.SendText(c, a.cfg.Content.Texts.DocUnavailable)
	}
}

func (a *App) handleConsentAck(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	res, err := flow.AcknowledgeConsent(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return err
	}
	return a.renderResult(c, res)
}

func (a *App) handleJoinCheck(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	res, err := flow.CheckMembership(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return err
	}
	return a.renderResult(c, res)
}

// handleContact feeds a shared contact into the phone step. The number
// comes from Telegram itself and is stored verbatim.
func (a *App) handleContact(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	msg := c.Message()
	if msg == nil || msg.Contact == nil {
		return nil
	}
	res, err := flow.SubmitPhone(tghelpers.BuildContext(c), c.Sender().ID, onboarding.PhoneInput{
		Number:      msg.Contact.PhoneNumber,
		FromContact: true,
	})
	if err != nil {
		return err
	}
	return a.renderResult(c, res)
}

// ManagerHandler routes free text while onboarding is in progress. Each
// stage interprets text its own way; stages waiting on a button press
// just re-prompt.
func (a *App) ManagerHandler(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	stage, err := flow.Stage(ctx, userID)
	if err != nil {
		return err
	}

	switch stage {
	case session.StageAwaitingName:
		res, err := flow.SubmitName(ctx, userID, c.Text())
		if err != nil {
			return err
		}
		return a.renderResult(c, res)
	case session.StageAwaitingPhone:
		res, err := flow.SubmitPhone(ctx, userID, onboarding.PhoneInput{Number: c.Text()})
		if err != nil {
			return err
		}
		return a.renderResult(c, res)
	case session.StageAwaitingEmail:
		res, err := flow.SubmitEmail(ctx, userID, c.Text())
		if err != nil {
			return err
		}
		return a.renderResult(c, res)
	default:
		return a.promptStage(c, stage)
	}
}

// handleMenuCommand shows the menu to unlocked users and re-prompts the
// current stage for everyone else.
func (a *App) handleMenuCommand(c tele.Context) error {
	flow := a.getFlow()
	if flow == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	ctx := tghelpers.BuildContext(c)
	stage, err := flow.Stage(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if stage != session.StageUnlocked {
		return a.promptStage(c, stage)
	}
	return a.sendMenu(c)
}

// handleMenuToken dispatches one menu action, gated on the unlocked
// stage so stale keyboards cannot bypass onboarding.
func (a *App) handleMenuToken(c tele.Context, token string) error {
	flow := a.getFlow()
	dispatcher := a.getDispatcher()
	if flow == nil || dispatcher == nil {
		return fmt.Errorf("bot: flow not bound")
	}
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	unlocked, err := flow.Unlocked(ctx, userID)
	if err != nil {
		return err
	}
	if !unlocked {
		stage, err := flow.Stage(ctx, userID)
		if err != nil {
			return err
		}
		return a.promptStage(c, stage)
	}
	return dispatcher.Dispatch(ctx, userID, token)
}

// handleRecentLeads is the hidden admin view over collected leads.
func (a *App) handleRecentLeads(c tele.Context) error {
	if a.repo == nil {
		return tghelpers.SendText(c, a.cfg.Content.Texts.LeadsDisabled)
	}
	ctx := tghelpers.BuildContext(c)
	list, err := a.repo.Recent(ctx, 10)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, a.cfg.Content.Texts.LeadsEmpty)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Recent leads (%d)*\n", len(list))
	for _, lead := range list {
		fmt.Fprintf(&b, "%s | %s | %s | id %d | %s\n",
			escapeMD(lead.Name), escapeMD(lead.Phone), escapeMD(lead.Email),
			lead.UserID, lead.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	logger.Info(ctx, "service.leads", "leads.recent",
		slog.Int64("user_id", c.Sender().ID),
		slog.Int("leads_shown", len(list)),
	)
	return tghelpers.SendMD(c, b.String())
}

// escapeMD guards user-provided fields against Markdown injection in
// the admin view.
func escapeMD(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}

// renderResult turns a flow outcome into the matching reply.
func (a *App) renderResult(c tele.Context, res onboarding.Result) error {
	texts := a.cfg.Content.Texts

	switch res.Outcome {
	case onboarding.OutcomeAdvanced:
		return a.promptStage(c, res.Session.Stage)
	case onboarding.OutcomeRejected:
		switch res.Session.Stage {
		case session.StageAwaitingName:
			return tghelpers.SendText(c, texts.NameEmpty)
		case session.StageAwaitingPhone:
			return tghelpers.SendText(c, texts.PhoneEmpty, &tele.SendOptions{ReplyMarkup: a.phoneMarkup()})
		case session.StageAwaitingEmail:
			return tghelpers.SendText(c, texts.EmailEmpty)
		}
		return nil
	case onboarding.OutcomeNotMember:
		return tghelpers.SendText(c, texts.NotMember, &tele.SendOptions{ReplyMarkup: a.joinMarkup()})
	case onboarding.OutcomeCheckFailed:
		return tghelpers.SendText(c, texts.VerifyFailed, &tele.SendOptions{ReplyMarkup: a.joinMarkup()})
	case onboarding.OutcomeUnlocked:
		if err := tghelpers.SendText(c, texts.Unlocked); err != nil {
			return err
		}
		return a.sendMenu(c)
	case onboarding.OutcomeIgnored:
		// Stale button presses from already-unlocked users get the menu;
		// everything else stays silent.
		if res.Session != nil && res.Session.Stage == session.StageUnlocked {
			return a.sendMenu(c)
		}
		return nil
	}
	return nil
}

// promptStage re-issues the prompt for a stage, with its keyboard.
func (a *App) promptStage(c tele.Context, stage session.Stage) error {
	texts := a.cfg.Content.Texts
	switch stage {
	case session.StageAwaitingConsent:
		return tghelpers.SendText(c, texts.ConsentPrompt, &tele.SendOptions{ReplyMarkup: a.consentMarkup()})
	case session.StageAwaitingName:
		return tghelpers.SendText(c, texts.AskName)
	case session.StageAwaitingPhone:
		return tghelpers.SendText(c, texts.AskPhone, &tele.SendOptions{ReplyMarkup: a.phoneMarkup()})
	case session.StageAwaitingEmail:
		return tghelpers.SendText(c, texts.AskEmail, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
	case session.StageAwaitingChannelJoin:
		return tghelpers.SendText(c, texts.JoinPrompt, &tele.SendOptions{ReplyMarkup: a.joinMarkup()})
	case session.StageUnlocked:
		return a.sendMenu(c)
	}
	return nil
}

func (a *App) sendMenu(c tele.Context) error {
	dispatcher := a.getDispatcher()
	if dispatcher == nil {
		return fmt.Errorf("bot: dispatcher not bound")
	}
	entries := dispatcher.Entries()
	buttons := make([]keyboard.InlineBtn, 0, len(entries))
	for _, entry := range entries {
		buttons = append(buttons, keyboard.InlineBtn{Text: entry.Label, Unique: entry.Token})
	}
	markup := keyboard.InlineButtons(buttons)
	return tghelpers.SendText(c, a.cfg.Content.Texts.MenuTitle, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) consentMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: a.cfg.Content.Texts.ConsentButton, Unique: cbConsentAck},
	})
}

// phoneMarkup offers the contact share button while still accepting a
// typed number.
func (a *App) phoneMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact(a.cfg.Content.Texts.PhoneButton)))
	return markup
}

func (a *App) joinMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	join := markup.URL(a.cfg.Content.Texts.JoinButton, a.cfg.Onboarding.ChannelURL)
	check := markup.Data(a.cfg.Content.Texts.JoinedButton, cbJoinCheck)
	markup.Inline(markup.Row(join), markup.Row(check))
	return markup
}

// UnknownText answers free text from unlocked users with the menu; the
// flow router never sends onboarding users here.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := tghelpers.SendText(c, a.cfg.Content.Texts.MenuFallback); err != nil {
			return err
		}
		return a.sendMenu(c)
	}
}

// UnknownDocument covers files sent outside the flow.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, a.cfg.Content.Texts.MenuFallback)
	}
}

// UnknownCallback covers stale or foreign callback tokens.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, a.cfg.Content.Texts.MenuFallback)
	}
}
