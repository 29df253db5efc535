// Package menu maps stable callback tokens to static content actions
// served after onboarding completes.
package menu

import (
	"context"
	"fmt"

	"leadbot/core/logger"
	"leadbot/internal/content"

	"log/slog"
)

// Sender is the outbound surface the dispatcher needs. The transport
// layer implements it over the bot connection.
type Sender interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendDocument(ctx context.Context, userID int64, ref, caption string) error
	SendPhoto(ctx context.Context, userID int64, ref, caption string) error
	SendLink(ctx context.Context, userID int64, label, url string) error
}

// Dispatcher is the read-only routing table. It holds no session state;
// callers gate access on the onboarding stage before dispatching.
type Dispatcher struct {
	actions  map[string]content.MenuEntry
	order    []string
	sender   Sender
	fallback string
	docDown  string
}

// NewDispatcher builds the immutable action table from the catalog.
func NewDispatcher(catalog content.Catalog, sender Sender) *Dispatcher {
	actions := make(map[string]content.MenuEntry, len(catalog.Menu))
	order := make([]string, 0, len(catalog.Menu))
	for _, entry := range catalog.Menu {
		actions[entry.Token] = entry
		order = append(order, entry.Token)
	}
	return &Dispatcher{
		actions:  actions,
		order:    order,
		sender:   sender,
		fallback: catalog.Texts.MenuFallback,
		docDown:  catalog.Texts.DocUnavailable,
	}
}

// Entries returns the menu rows in declaration order, for keyboard
// rendering.
func (d *Dispatcher) Entries() []content.MenuEntry {
	out := make([]content.MenuEntry, 0, len(d.order))
	for _, token := range d.order {
		out = append(out, d.actions[token])
	}
	return out
}

// Known reports whether the token maps to an action.
func (d *Dispatcher) Known(token string) bool {
	_, ok := d.actions[token]
	return ok
}

// Dispatch performs the action for token, or sends the fallback notice
// for an unrecognized one. Document and photo delivery failures are
// reported to the user and are not fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, token string) error {
	entry, ok := d.actions[token]
	if !ok {
		logger.Debug(ctx, "service.menu", "dispatch.unknown",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
			slog.String("token", logger.SanitizeLimit(token, 64)),
		)
		return d.sender.SendText(ctx, userID, d.fallback)
	}

	var err error
	switch entry.Kind {
	case content.KindText:
		err = d.sender.SendText(ctx, userID, entry.Payload)
	case content.KindDocument:
		if err = d.sender.SendDocument(ctx, userID, entry.Payload, entry.Caption); err != nil {
			logger.Warn(ctx, "service.menu", "dispatch.document",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("token", entry.Token),
				slog.String("err", err.Error()),
			)
			return d.sender.SendText(ctx, userID, d.docDown)
		}
	case content.KindPhoto:
		if err = d.sender.SendPhoto(ctx, userID, entry.Payload, entry.Caption); err != nil {
			logger.Warn(ctx, "service.menu", "dispatch.photo",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("token", entry.Token),
				slog.String("err", err.Error()),
			)
			return d.sender.SendText(ctx, userID, d.docDown)
		}
	case content.KindLink:
		err = d.sender.SendLink(ctx, userID, entry.Label, entry.Payload)
	default:
		return fmt.Errorf("menu: token %q has unknown kind %q", token, entry.Kind)
	}

	if err != nil {
		return fmt.Errorf("menu: dispatch %q: %w", token, err)
	}
	logger.Debug(ctx, "service.menu", "dispatch.served",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("token", entry.Token),
	)
	return nil
}
