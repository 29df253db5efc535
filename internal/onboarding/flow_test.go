package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"leadbot/internal/leads"
	"leadbot/internal/membership"
	"leadbot/internal/session"
)

// scriptedChecker returns queued results, repeating the last one.
type scriptedChecker struct {
	statuses []membership.Status
	errs     []error
	calls    int
}

func (s *scriptedChecker) Check(context.Context, int64) (membership.Status, error) {
	i := s.calls
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.calls++
	if s.errs != nil && s.errs[i] != nil {
		return membership.StatusAbsent, s.errs[i]
	}
	return s.statuses[i], nil
}

type capturingRecorder struct {
	recorded []leads.Lead
	err      error
}

func (c *capturingRecorder) Record(_ context.Context, lead leads.Lead) error {
	c.recorded = append(c.recorded, lead)
	return c.err
}

func newFlow(checker membership.Checker, recorder leads.Recorder) (*Flow, session.Store) {
	store := session.NewMemoryStore()
	return NewFlow(store, checker, recorder), store
}

func TestHappyPath(t *testing.T) {
	rec := &capturingRecorder{}
	flow, _ := newFlow(&scriptedChecker{statuses: []membership.Status{membership.StatusPresent}}, rec)
	ctx := context.Background()

	sess, err := flow.Start(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, session.StageAwaitingConsent, sess.Stage)

	res, err := flow.AcknowledgeConsent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, session.StageAwaitingName, res.Session.Stage)

	res, err = flow.SubmitName(ctx, 1, "Иван Петров")
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, session.StageAwaitingPhone, res.Session.Stage)

	res, err = flow.SubmitPhone(ctx, 1, PhoneInput{Number: "+79991234567"})
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, session.StageAwaitingEmail, res.Session.Stage)

	res, err = flow.SubmitEmail(ctx, 1, "ivan@example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, session.StageAwaitingChannelJoin, res.Session.Stage)

	res, err = flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnlocked, res.Outcome)
	require.Equal(t, session.StageUnlocked, res.Session.Stage)
	require.Equal(t, session.Profile{
		Name:  "Иван Петров",
		Phone: "+79991234567",
		Email: "ivan@example.com",
	}, res.Session.Profile)

	require.Len(t, rec.recorded, 1)
	require.Equal(t, "Иван Петров", rec.recorded[0].Name)
}

func TestNoStageSkipping(t *testing.T) {
	flow, _ := newFlow(&scriptedChecker{statuses: []membership.Status{membership.StatusPresent}}, nil)
	ctx := context.Background()

	_, err := flow.Start(ctx, 1)
	require.NoError(t, err)

	// None of these are valid at the consent stage.
	res, err := flow.SubmitName(ctx, 1, "Ivan")
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)

	res, err = flow.SubmitEmail(ctx, 1, "ivan@example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)

	res, err = flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)

	stage, err := flow.Stage(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, session.StageAwaitingConsent, stage)
}

func TestEmptyInputNeverAdvances(t *testing.T) {
	flow, _ := newFlow(nil, nil)
	ctx := context.Background()

	_, err := flow.Start(ctx, 1)
	require.NoError(t, err)
	_, err = flow.AcknowledgeConsent(ctx, 1)
	require.NoError(t, err)

	for _, input := range []string{"", "   ", "\t\n"} {
		res, err := flow.SubmitName(ctx, 1, input)
		require.NoError(t, err)
		require.Equal(t, OutcomeRejected, res.Outcome)
		require.Equal(t, session.StageAwaitingName, res.Session.Stage)
	}

	res, err := flow.SubmitName(ctx, 1, "  Anna  ")
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, "Anna", res.Session.Profile.Name)

	res, err = flow.SubmitPhone(ctx, 1, PhoneInput{Number: "   "})
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, res.Outcome)
	require.Equal(t, session.StageAwaitingPhone, res.Session.Stage)
}

func TestContactPhonePreferred(t *testing.T) {
	flow, _ := newFlow(nil, nil)
	ctx := context.Background()

	_, err := flow.Start(ctx, 1)
	require.NoError(t, err)
	_, err = flow.AcknowledgeConsent(ctx, 1)
	require.NoError(t, err)
	_, err = flow.SubmitName(ctx, 1, "Anna")
	require.NoError(t, err)

	res, err := flow.SubmitPhone(ctx, 1, PhoneInput{Number: "+7 999 123-45-67", FromContact: true})
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
	require.Equal(t, "+7 999 123-45-67", res.Session.Profile.Phone)
}

func TestMembershipGateRetries(t *testing.T) {
	checker := &scriptedChecker{statuses: []membership.Status{
		membership.StatusAbsent,
		membership.StatusAbsent,
		membership.StatusPresent,
	}}
	flow, _ := newFlow(checker, nil)
	ctx := context.Background()

	advanceToGate(t, flow, 1)

	var stages []session.Stage
	for i := 0; i < 3; i++ {
		res, err := flow.CheckMembership(ctx, 1)
		require.NoError(t, err)
		stages = append(stages, res.Session.Stage)
	}
	require.Equal(t, []session.Stage{
		session.StageAwaitingChannelJoin,
		session.StageAwaitingChannelJoin,
		session.StageUnlocked,
	}, stages)
}

func TestMembershipQueryFailureIsRecoverable(t *testing.T) {
	boom := errors.New("network down")
	checker := &scriptedChecker{
		statuses: []membership.Status{membership.StatusAbsent, membership.StatusPresent},
		errs:     []error{boom, nil},
	}
	flow, _ := newFlow(checker, nil)
	ctx := context.Background()

	advanceToGate(t, flow, 1)

	res, err := flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeCheckFailed, res.Outcome)
	require.Equal(t, session.StageAwaitingChannelJoin, res.Session.Stage)

	res, err = flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnlocked, res.Outcome)
}

func TestResetClearsProfileFromAnyStage(t *testing.T) {
	flow, _ := newFlow(&scriptedChecker{statuses: []membership.Status{membership.StatusPresent}}, nil)
	ctx := context.Background()

	advanceToGate(t, flow, 1)
	res, err := flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, session.StageUnlocked, res.Session.Stage)

	sess, err := flow.Start(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, session.StageAwaitingConsent, sess.Stage)
	require.Equal(t, session.Profile{}, sess.Profile)
}

func TestRecorderFailureDoesNotBlockUnlock(t *testing.T) {
	rec := &capturingRecorder{err: errors.New("db down")}
	flow, _ := newFlow(&scriptedChecker{statuses: []membership.Status{membership.StatusPresent}}, rec)
	ctx := context.Background()

	advanceToGate(t, flow, 1)
	res, err := flow.CheckMembership(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnlocked, res.Outcome)
	require.Len(t, rec.recorded, 1)
}

func TestFreshUserIsAtConsentStage(t *testing.T) {
	flow, _ := newFlow(nil, nil)
	ctx := context.Background()

	stage, err := flow.Stage(ctx, 99)
	require.NoError(t, err)
	require.Equal(t, session.StageAwaitingConsent, stage)

	unlocked, err := flow.Unlocked(ctx, 99)
	require.NoError(t, err)
	require.False(t, unlocked)

	// Consent can be acknowledged even before an explicit /start.
	res, err := flow.AcknowledgeConsent(ctx, 99)
	require.NoError(t, err)
	require.Equal(t, OutcomeAdvanced, res.Outcome)
}

func advanceToGate(t *testing.T, flow *Flow, userID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := flow.Start(ctx, userID)
	require.NoError(t, err)
	_, err = flow.AcknowledgeConsent(ctx, userID)
	require.NoError(t, err)
	_, err = flow.SubmitName(ctx, userID, "Ivan")
	require.NoError(t, err)
	_, err = flow.SubmitPhone(ctx, userID, PhoneInput{Number: "+79991234567"})
	require.NoError(t, err)
	_, err = flow.SubmitEmail(ctx, userID, "ivan@example.com")
	require.NoError(t, err)
}
