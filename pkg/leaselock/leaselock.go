// Package leaselock provides an expiring single-holder lock backed by
// the app_locks table. The ingest worker takes a lease per source so a
// redelivered queue message processed by two replicas cannot write the
// same chunks and mentions twice.
package leaselock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrBusy is returned by Acquire when another holder owns a live
	// lease for the key. The worker routes busy messages back through
	// the retry queue instead of waiting.
	ErrBusy = errors.New("lease lock busy")
	// ErrLost cancels the lease context when a renewal finds the lease
	// expired or taken over.
	ErrLost = errors.New("lease lock lost")
)

const (
	defaultTTL    = 5 * time.Minute
	renewTimeout  = 15 * time.Second
	renewAttempts = 3
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Locker hands out leases. An expired lease can be taken over by the
// next acquirer, so a worker that dies mid-ingest never wedges its
// source past the TTL.
type Locker struct {
	db execer
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{db: pool}
}

// Options tunes a lease. TTL bounds how long a dead holder blocks the
// key; RenewEvery defaults to half the TTL so a live holder keeps the
// lease indefinitely.
type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration
}

// Lease is a held lock. Context is derived from the acquiring context
// and is cancelled with ErrLost if renewal fails, so work running
// under the lease stops instead of double-writing.
type Lease struct {
	Key     string
	Token   string
	Context context.Context

	locker *Locker
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

// WithLease runs fn under a lease on key and releases it afterwards.
// A held key fails fast with ErrBusy.
func (l *Locker) WithLease(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := l.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	return fn(lease.Context)
}

// Acquire takes the lease for key, taking over expired rows. It does
// not wait: a live lease held by someone else returns ErrBusy.
func (l *Locker) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lease lock key is empty")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	renewEvery := opts.RenewEvery
	if renewEvery <= 0 || renewEvery >= ttl {
		renewEvery = max(ttl/2, time.Second)
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	var held string
	err = l.db.QueryRow(ctx, acquireSQL, key, token, ttl.Milliseconds()).Scan(&held)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, key)
	}
	if err != nil {
		return nil, err
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	lease := &Lease{
		Key:     key,
		Token:   token,
		Context: leaseCtx,
		locker:  l,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
	go lease.renew(renewEvery, ttl.Milliseconds())

	return lease, nil
}

// Release deletes the lease row and stops renewal. Only the holding
// token can release; a taken-over lease is a no-op delete.
func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})
	_, err := l.locker.db.Exec(ctx, releaseSQL, l.Key, l.Token)
	return err
}

func (l *Lease) renew(every time.Duration, ttlMs int64) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renewOnce(ttlMs); err != nil {
				l.cancel(err)
				return
			}
		}
	}
}

func (l *Lease) renewOnce(ttlMs int64) error {
	var lastErr error
	for attempt := 0; attempt < renewAttempts; attempt++ {
		renewCtx, cancel := context.WithTimeout(l.Context, renewTimeout)
		var held string
		err := l.locker.db.QueryRow(renewCtx, renewSQL, l.Key, l.Token, ttlMs).Scan(&held)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		lastErr = err
		select {
		case <-l.Context.Done():
			return l.Context.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return lastErr
}

const acquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE app_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
