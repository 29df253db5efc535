package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)

	sess := New(1)
	sess.Profile.Name = "Anna"
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, StageAwaitingConsent, got.Stage)
	require.Equal(t, "Anna", got.Profile.Name)

	// Mutating the returned copy must not leak into the store.
	got.Profile.Name = "changed"
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Anna", again.Profile.Name)

	require.NoError(t, store.Delete(ctx, 1))
	_, err = store.Get(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := NewBadgerStore(BadgerOptions{})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)

	sess := New(7)
	sess.Stage = StageAwaitingEmail
	sess.Profile = Profile{Name: "Ivan", Phone: "+79991234567"}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, StageAwaitingEmail, got.Stage)
	require.Equal(t, "Ivan", got.Profile.Name)
	require.Equal(t, "+79991234567", got.Profile.Phone)

	require.NoError(t, store.Delete(ctx, 7))
	_, err = store.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStageValid(t *testing.T) {
	for _, st := range []Stage{
		StageAwaitingConsent, StageAwaitingName, StageAwaitingPhone,
		StageAwaitingEmail, StageAwaitingChannelJoin, StageUnlocked,
	} {
		require.True(t, st.Valid(), string(st))
	}
	require.False(t, Stage("whatever").Valid())
}
