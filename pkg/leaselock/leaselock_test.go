package leaselock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeLockTable emulates the app_locks upsert/renew/delete semantics
// in memory. Rows never expire on their own; tests drop them directly.
type fakeLockTable struct {
	mu   sync.Mutex
	rows map[string]string
}

func newFakeLockTable() *fakeLockTable {
	return &fakeLockTable{rows: map[string]string{}}
}

func (f *fakeLockTable) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, key)
}

func (f *fakeLockTable) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := args[0].(string), args[1].(string)
	if f.rows[key] == token {
		delete(f.rows, key)
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeLockTable) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := args[0].(string), args[1].(string)

	if strings.Contains(sql, "INSERT INTO app_locks") {
		holder, taken := f.rows[key]
		if taken && holder != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		f.rows[key] = token
		return fakeRow{key: key}
	}

	// renew
	if f.rows[key] != token {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{key: key}
}

type fakeRow struct {
	key string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

func TestWithLeaseSingleHolder(t *testing.T) {
	table := newFakeLockTable()
	locker := &Locker{db: table}
	ctx := context.Background()

	ran := false
	err := locker.WithLease(ctx, "ingest:document:1", Options{TTL: time.Minute}, func(ctx context.Context) error {
		ran = true
		if _, err := locker.Acquire(ctx, "ingest:document:1", Options{TTL: time.Minute}); !errors.Is(err, ErrBusy) {
			t.Errorf("Acquire() on held key error = %v, want ErrBusy", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLease() error = %v", err)
	}
	if !ran {
		t.Fatal("WithLease() never ran fn")
	}

	// Released, so the key is free again.
	lease, err := locker.Acquire(ctx, "ingest:document:1", Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	lease.Release(ctx)
}

func TestWithLeasePropagatesError(t *testing.T) {
	locker := &Locker{db: newFakeLockTable()}

	want := errors.New("ingest failed")
	err := locker.WithLease(context.Background(), "ingest:article:7", Options{TTL: time.Minute}, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("WithLease() error = %v, want %v", err, want)
	}
}

func TestAcquireEmptyKey(t *testing.T) {
	locker := &Locker{db: newFakeLockTable()}
	if _, err := locker.Acquire(context.Background(), "", Options{}); err == nil {
		t.Fatal("Acquire() with empty key did not error")
	}
}

func TestLostLeaseCancelsContext(t *testing.T) {
	table := newFakeLockTable()
	locker := &Locker{db: table}

	lease, err := locker.Acquire(context.Background(), "ingest:document:9", Options{
		TTL:        time.Minute,
		RenewEvery: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer lease.Release(context.Background())

	// Another holder takes the row over; the next renewal must fail.
	table.drop(lease.Key)

	select {
	case <-lease.Context.Done():
		if cause := context.Cause(lease.Context); !errors.Is(cause, ErrLost) {
			t.Fatalf("lease context cause = %v, want ErrLost", cause)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lease context was not cancelled after the row was taken over")
	}
}
