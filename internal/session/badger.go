package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "session_"

// BadgerOptions configures the durable session backend.
type BadgerOptions struct {
	// Dir is the on-disk location of the badger database. Empty Dir
	// opens an in-memory database, which is only useful in tests.
	Dir string
	// TTL bounds how long an abandoned session is kept; zero disables
	// expiry.
	TTL time.Duration
}

type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens a badger-backed Store so onboarding progress
// survives restarts. Callers must Close it on shutdown.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	bo := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.Dir == "" {
		bo = bo.WithInMemory(true)
	}
	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("session: open badger: %w", err)
	}
	return &BadgerStore{db: db, ttl: opts.TTL}, nil
}

func badgerKey(userID int64) []byte {
	return []byte(badgerKeyPrefix + strconv.FormatInt(userID, 10))
}

func (b *BadgerStore) Get(_ context.Context, userID int64) (*Session, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			data = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: badger get: %w", err)
	}

	sess := &Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return sess, nil
}

func (b *BadgerStore) Put(_ context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(sess.UserID), data)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("session: badger put: %w", err)
	}
	return nil
}

func (b *BadgerStore) Delete(_ context.Context, userID int64) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(userID))
	})
	if err != nil {
		return fmt.Errorf("session: badger delete: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
