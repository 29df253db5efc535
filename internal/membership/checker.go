// Package membership verifies that a user belongs to the gated channel.
package membership

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Status is the outcome of a successful membership query.
type Status string

const (
	// StatusPresent means the user is in the channel (member, admin,
	// owner, or restricted-but-present).
	StatusPresent Status = "present"
	// StatusAbsent means the user left, was kicked, or never joined.
	StatusAbsent Status = "absent"
)

// Checker answers whether a user currently belongs to the target channel.
// Errors indicate the query itself failed, not that the user is absent.
type Checker interface {
	Check(ctx context.Context, userID int64) (Status, error)
}

// MemberQuerier is the slice of the telebot API the checker needs.
type MemberQuerier interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

type channelRef string

// Recipient lets a "@username" channel reference be passed straight to
// the Telegram API as chat_id.
func (r channelRef) Recipient() string { return string(r) }

// ChannelRecipient resolves a configured channel reference, either a
// numeric id or an @username.
func ChannelRecipient(channel string) tele.Recipient {
	channel = strings.TrimSpace(channel)
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tele.ChatID(id)
	}
	return channelRef(channel)
}

type checker struct {
	api     MemberQuerier
	channel tele.Recipient
}

// NewChecker builds a Checker bound to the fixed target channel.
func NewChecker(api MemberQuerier, channel string) Checker {
	return &checker{api: api, channel: ChannelRecipient(channel)}
}

// Check performs one membership query round trip.
func (c *checker) Check(ctx context.Context, userID int64) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusAbsent, err
	}
	member, err := c.api.ChatMemberOf(c.channel, tele.ChatID(userID))
	if err != nil {
		return StatusAbsent, fmt.Errorf("membership: query: %w", err)
	}
	return RoleStatus(member.Role), nil
}

// RoleStatus maps a Telegram chat member role onto the gate decision.
func RoleStatus(role tele.MemberStatus) Status {
	switch role {
	case tele.Creator, tele.Administrator, tele.Member, tele.Restricted:
		return StatusPresent
	default:
		return StatusAbsent
	}
}
