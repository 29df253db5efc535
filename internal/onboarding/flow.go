// Package onboarding drives a user through the consent, identity, and
// channel-membership steps that gate the menu.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadbot/core/logger"
	"leadbot/internal/leads"
	"leadbot/internal/membership"
	"leadbot/internal/session"

	"log/slog"
)

// Outcome tells the transport layer what happened so it can pick the
// right reply from the content catalog.
type Outcome string

const (
	// OutcomeAdvanced means the session moved to the next stage.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeRejected means the input was empty and the stage re-prompts.
	OutcomeRejected Outcome = "rejected"
	// OutcomeIgnored means the trigger arrived out of stage and was
	// silently dropped.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeNotMember means the membership query succeeded but the user
	// has not joined; the gate stays closed and is retryable.
	OutcomeNotMember Outcome = "not_member"
	// OutcomeCheckFailed means the membership query itself failed; the
	// gate stays closed with a distinct notice.
	OutcomeCheckFailed Outcome = "check_failed"
	// OutcomeUnlocked means the gate opened and the menu is available.
	OutcomeUnlocked Outcome = "unlocked"
)

// Result pairs the session after the operation with what happened.
type Result struct {
	Session *session.Session
	Outcome Outcome
}

// PhoneInput carries either a shared contact or free text for the phone
// step. A contact number is preferred and taken verbatim.
type PhoneInput struct {
	Number      string
	FromContact bool
}

// Flow is the onboarding state machine over an injected session store.
type Flow struct {
	store    session.Store
	checker  membership.Checker
	recorder leads.Recorder
}

// NewFlow wires the state machine. recorder may be nil when lead
// persistence is disabled.
func NewFlow(store session.Store, checker membership.Checker, recorder leads.Recorder) *Flow {
	return &Flow{store: store, checker: checker, recorder: recorder}
}

// Start resets the session to the consent stage with a cleared profile.
// Safe to call from any stage; this is the single reset path.
func (f *Flow) Start(ctx context.Context, userID int64) (*session.Session, error) {
	sess := session.New(userID)
	if err := f.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("onboarding: start: %w", err)
	}
	logger.Info(ctx, "service.onboarding", "flow.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return sess, nil
}

// Stage reports the user's current stage; a user without a session is at
// the consent stage.
func (f *Flow) Stage(ctx context.Context, userID int64) (session.Stage, error) {
	sess, err := f.load(ctx, userID)
	if err != nil {
		return "", err
	}
	return sess.Stage, nil
}

// AcknowledgeConsent moves consent → name. Out-of-stage triggers are
// silently ignored.
func (f *Flow) AcknowledgeConsent(ctx context.Context, userID int64) (Result, error) {
	return f.transition(ctx, userID, session.StageAwaitingConsent, func(sess *session.Session) Outcome {
		sess.Stage = session.StageAwaitingName
		return OutcomeAdvanced
	})
}

// SubmitName stores the trimmed name and moves name → phone. Empty text
// re-prompts without a transition.
func (f *Flow) SubmitName(ctx context.Context, userID int64, text string) (Result, error) {
	return f.transition(ctx, userID, session.StageAwaitingName, func(sess *session.Session) Outcome {
		name := strings.TrimSpace(text)
		if name == "" {
			return OutcomeRejected
		}
		sess.Profile.Name = name
		sess.Stage = session.StageAwaitingPhone
		return OutcomeAdvanced
	})
}

// SubmitPhone stores the phone and moves phone → email. The number is
// not validated beyond non-emptiness.
func (f *Flow) SubmitPhone(ctx context.Context, userID int64, input PhoneInput) (Result, error) {
	return f.transition(ctx, userID, session.StageAwaitingPhone, func(sess *session.Session) Outcome {
		number := input.Number
		if !input.FromContact {
			number = strings.TrimSpace(number)
		}
		if number == "" {
			return OutcomeRejected
		}
		sess.Profile.Phone = number
		sess.Stage = session.StageAwaitingEmail
		return OutcomeAdvanced
	})
}

// SubmitEmail stores the trimmed email unvalidated and moves
// email → channel join.
func (f *Flow) SubmitEmail(ctx context.Context, userID int64, text string) (Result, error) {
	return f.transition(ctx, userID, session.StageAwaitingEmail, func(sess *session.Session) Outcome {
		email := strings.TrimSpace(text)
		if email == "" {
			return OutcomeRejected
		}
		sess.Profile.Email = email
		sess.Stage = session.StageAwaitingChannelJoin
		return OutcomeAdvanced
	})
}

// CheckMembership queries the channel gate. Absence and query failures
// both keep the session at the gate; only a verified membership unlocks
// the menu. Retryable without limit.
func (f *Flow) CheckMembership(ctx context.Context, userID int64) (Result, error) {
	sess, err := f.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if sess.Stage != session.StageAwaitingChannelJoin {
		return Result{Session: sess, Outcome: OutcomeIgnored}, nil
	}

	status, err := f.checker.Check(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "service.onboarding", "flow.membership",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Result{Session: sess, Outcome: OutcomeCheckFailed}, nil
	}
	if status != membership.StatusPresent {
		logger.Info(ctx, "service.onboarding", "flow.membership",
			slog.String("status", "ok"),
			slog.String("result", string(OutcomeNotMember)),
			slog.Int64("user_id", userID),
			slog.String("stage", string(sess.Stage)),
		)
		return Result{Session: sess, Outcome: OutcomeNotMember}, nil
	}

	sess.Stage = session.StageUnlocked
	sess.UpdatedAt = time.Now()
	if err := f.store.Put(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("onboarding: unlock: %w", err)
	}
	logger.Info(ctx, "service.onboarding", "flow.unlocked",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)

	f.recordLead(ctx, sess)
	return Result{Session: sess, Outcome: OutcomeUnlocked}, nil
}

// Unlocked reports whether the user has passed the gate.
func (f *Flow) Unlocked(ctx context.Context, userID int64) (bool, error) {
	stage, err := f.Stage(ctx, userID)
	if err != nil {
		return false, err
	}
	return stage == session.StageUnlocked, nil
}

func (f *Flow) load(ctx context.Context, userID int64) (*session.Session, error) {
	sess, err := f.store.Get(ctx, userID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return session.New(userID), nil
	}
	return nil, fmt.Errorf("onboarding: load session: %w", err)
}

func (f *Flow) transition(ctx context.Context, userID int64, expected session.Stage, apply func(*session.Session) Outcome) (Result, error) {
	sess, err := f.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if sess.Stage != expected {
		return Result{Session: sess, Outcome: OutcomeIgnored}, nil
	}

	outcome := apply(sess)
	if outcome == OutcomeAdvanced {
		sess.UpdatedAt = time.Now()
		if err := f.store.Put(ctx, sess); err != nil {
			return Result{}, fmt.Errorf("onboarding: save session: %w", err)
		}
	}
	logger.Debug(ctx, "service.onboarding", "flow.step",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("stage", string(sess.Stage)),
		slog.String("result", string(outcome)),
	)
	return Result{Session: sess, Outcome: outcome}, nil
}

// recordLead persists the completed profile. Failures are logged and
// never block the unlock.
func (f *Flow) recordLead(ctx context.Context, sess *session.Session) {
	if f.recorder == nil {
		return
	}
	lead := leads.New(sess.UserID, sess.Profile.Name, sess.Profile.Phone, sess.Profile.Email)
	if err := f.recorder.Record(ctx, lead); err != nil {
		logger.Error(ctx, "service.onboarding", "flow.lead_record",
			slog.String("status", "fail"),
			slog.Int64("user_id", sess.UserID),
			slog.String("lead_id", lead.ID.String()),
			slog.String("err", err.Error()),
		)
	}
}
