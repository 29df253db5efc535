package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type stubQuerier struct {
	role tele.MemberStatus
	err  error

	gotChat string
	gotUser string
}

func (s *stubQuerier) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	s.gotChat = chat.Recipient()
	s.gotUser = user.Recipient()
	if s.err != nil {
		return nil, s.err
	}
	return &tele.ChatMember{Role: s.role}, nil
}

func TestRoleStatus(t *testing.T) {
	present := []tele.MemberStatus{tele.Creator, tele.Administrator, tele.Member, tele.Restricted}
	for _, role := range present {
		require.Equal(t, StatusPresent, RoleStatus(role), string(role))
	}
	absent := []tele.MemberStatus{tele.Left, tele.Kicked}
	for _, role := range absent {
		require.Equal(t, StatusAbsent, RoleStatus(role), string(role))
	}
}

func TestCheckerUsesConfiguredChannel(t *testing.T) {
	api := &stubQuerier{role: tele.Member}
	c := NewChecker(api, "@coach_channel")

	status, err := c.Check(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, StatusPresent, status)
	require.Equal(t, "@coach_channel", api.gotChat)
	require.Equal(t, "42", api.gotUser)
}

func TestCheckerNumericChannel(t *testing.T) {
	api := &stubQuerier{role: tele.Left}
	c := NewChecker(api, "-1001234567890")

	status, err := c.Check(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, StatusAbsent, status)
	require.Equal(t, "-1001234567890", api.gotChat)
}

func TestCheckerQueryError(t *testing.T) {
	boom := errors.New("telegram: unreachable")
	c := NewChecker(&stubQuerier{err: boom}, "@coach_channel")

	_, err := c.Check(context.Background(), 42)
	require.ErrorIs(t, err, boom)
}
