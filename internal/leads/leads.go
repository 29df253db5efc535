// Package leads records completed onboarding profiles.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a completed onboarding profile ready for the sales pipeline.
type Lead struct {
	ID        uuid.UUID `db:"id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// New stamps a lead with an id and creation time.
func New(userID int64, name, phone, email string) Lead {
	return Lead{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Phone:     phone,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

// Recorder accepts a completed lead. Implementations must tolerate
// duplicate records for the same user (a reset-and-redo is legal).
type Recorder interface {
	Record(ctx context.Context, lead Lead) error
}

// RecorderFunc adapts a bare function to the Recorder interface.
type RecorderFunc func(ctx context.Context, lead Lead) error

// Record executes the underlying function.
func (f RecorderFunc) Record(ctx context.Context, lead Lead) error {
	return f(ctx, lead)
}

// Multi fans a lead out to every recorder and joins their errors, so a
// failing sink never starves the others.
func Multi(recorders ...Recorder) Recorder {
	return RecorderFunc(func(ctx context.Context, lead Lead) error {
		var errs []error
		for _, r := range recorders {
			if r == nil {
				continue
			}
			if err := r.Record(ctx, lead); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// OperatorSummary renders the plain-text copy of a lead routed to the
// operator chat.
func OperatorSummary(lead Lead) string {
	b := strings.Builder{}
	b.WriteString("New lead\n")
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Telegram ID: %d", lead.UserID)
	return b.String()
}
