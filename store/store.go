// Package store persists formula variables in a bbolt database.
//
// A [Store] is a [lang.Accessor]: install it with [lang.WithAccessor] and
// every variable read or assignment made by an expression goes to disk.
// The evaluation scope selects the bucket, so one database can hold many
// independent variable sets.
package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// DefaultBucket holds variables evaluated without a string scope.
const DefaultBucket = "vars"

// Predefined errors (sentinel values).
var (
	ErrOpen   = lang.NewError("open store")
	ErrRead   = lang.NewError("read variable")
	ErrWrite  = lang.NewError("write variable")
	ErrDecode = lang.NewError("decode variable")
	ErrClosed = lang.NewError("store closed")
)

// Store is an on-disk variable store. It is safe for concurrent use,
// including a Close that races with reads and writes: operations that
// start after Close fail with [ErrClosed].
type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	bucket string
	logger log.Logger

	timeout  time.Duration
	readOnly bool
}

// Option configures a [Store].
type Option func(*Store)

// WithBucket names the bucket used when the scope is not a string.
func WithBucket(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.bucket = name
		}
	}
}

// WithLogger sets the logger for trace-level store events.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithTimeout bounds how long Open waits for the database file lock.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithReadOnly opens the database with a shared lock. Assignments fail with
// [ErrWrite].
func WithReadOnly() Option {
	return func(s *Store) { s.readOnly = true }
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		bucket:  DefaultBucket,
		timeout: time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout:  s.timeout,
		ReadOnly: s.readOnly,
	})
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	s.db = db

	s.logger.Trace("store opened",
		slog.String("path", path),
		slog.Bool("read_only", s.readOnly),
	)

	return s, nil
}

// Close releases the database and its file lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

// Path returns the database file name.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ""
	}

	return s.db.Path()
}

// Bucket returns the bucket name selected by scope.
func (s *Store) Bucket(scope any) string {
	if name, ok := scope.(string); ok && name != "" {
		return name
	}

	return s.bucket
}

// Get implements [lang.Accessor].
func (s *Store) Get(ctx context.Context, scope any, name string) (any, bool, error) {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	defer release()

	var data []byte

	bucket := s.Bucket(scope)

	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}

		if v := b.Get([]byte(name)); v != nil {
			data = bytes.Clone(v)
		}

		return nil
	})
	if err != nil {
		return nil, false, ErrRead.Wrap(err).With(slog.String("name", name))
	}

	s.logger.TraceContext(ctx, "store get",
		slog.String("bucket", bucket),
		slog.String("name", name),
		slog.Bool("found", data != nil),
	)

	if data == nil {
		return nil, false, nil
	}

	v, err := decode(name, data)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

// Set implements [lang.Accessor].
func (s *Store) Set(ctx context.Context, scope any, name string, value any) error {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	defer release()

	data, err := encode(value)
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("name", name))
	}

	bucket := s.Bucket(scope)

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}

		return b.Put([]byte(name), data)
	})
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("name", name))
	}

	s.logger.TraceContext(ctx, "store set",
		slog.String("bucket", bucket),
		slog.String("name", name),
		slog.Int("size", len(data)),
	)

	return nil
}

// Delete removes name from the bucket selected by scope.
func (s *Store) Delete(ctx context.Context, scope any, name string) error {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	defer release()

	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.Bucket(scope)))
		if b == nil {
			return nil
		}

		return b.Delete([]byte(name))
	})
	if err != nil {
		return ErrWrite.Wrap(err).With(slog.String("name", name))
	}

	return nil
}

// Vars returns every variable in the bucket selected by scope, ordered by
// name.
func (s *Store) Vars(ctx context.Context, scope any) (*lang.Object, error) {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer release()

	out := &lang.Object{}

	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.Bucket(scope)))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			val, err := decode(string(k), v)
			if err != nil {
				return err
			}

			out.Set(string(k), val)

			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}

		return nil, ErrRead.Wrap(err)
	}

	return out, nil
}

// Buckets returns the names of all buckets in the database.
func (s *Store) Buckets(ctx context.Context) ([]string, error) {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer release()

	var names []string

	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))

			return nil
		})
	})
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	return names, nil
}

// acquire holds the read lock until release is called, so Close waits for
// operations in flight.
func (s *Store) acquire(ctx context.Context) (*bolt.DB, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()

	if s.db == nil {
		s.mu.RUnlock()

		return nil, nil, ErrClosed
	}

	return s.db, s.mu.RUnlock, nil
}
