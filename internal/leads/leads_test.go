package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiRecordsAll(t *testing.T) {
	var first, second []Lead
	rec := Multi(
		RecorderFunc(func(_ context.Context, l Lead) error {
			first = append(first, l)
			return nil
		}),
		nil,
		RecorderFunc(func(_ context.Context, l Lead) error {
			second = append(second, l)
			return nil
		}),
	)

	lead := New(42, "Ivan", "+79991234567", "ivan@example.com")
	require.NoError(t, rec.Record(context.Background(), lead))
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Equal(t, lead.ID, first[0].ID)
}

func TestMultiFailingSinkDoesNotStarveOthers(t *testing.T) {
	boom := errors.New("db down")
	var reached bool
	rec := Multi(
		RecorderFunc(func(context.Context, Lead) error { return boom }),
		RecorderFunc(func(context.Context, Lead) error {
			reached = true
			return nil
		}),
	)

	err := rec.Record(context.Background(), New(1, "a", "b", "c"))
	require.ErrorIs(t, err, boom)
	require.True(t, reached)
}

func TestOperatorSummary(t *testing.T) {
	lead := New(42, "Иван Петров", "+79991234567", "ivan@example.com")
	text := OperatorSummary(lead)
	require.Contains(t, text, "Иван Петров")
	require.Contains(t, text, "+79991234567")
	require.Contains(t, text, "ivan@example.com")
	require.Contains(t, text, "42")
}
