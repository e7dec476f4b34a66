package leaselock

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrBusy = errors.New("project lease busy")
	ErrLost = errors.New("project lease lost")
)

const (
	defaultTTL   = 10 * time.Minute
	renewTries   = 3
	renewTimeout = 15 * time.Second
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Locker hands out per-project leases backed by the run_leases table. A
// project's insight and deletion workers contend on the same lease, so only
// one of them touches the project's data at a time. Leases expire on their
// own, a crashed holder never blocks the project forever.
type Locker struct {
	db dbConn
}

// Options tunes lease acquisition. The zero value acquires without waiting
// with a 10 minute TTL renewed at half-life.
type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration

	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration

	// HolderPrefix is prepended to the generated holder token, typically
	// the worker's hostname.
	HolderPrefix string
}

// Lease is a held project lease. Context is canceled when the lease is
// lost or released; work holding the lease should run off that context.
type Lease struct {
	ProjectID int64
	Holder    string

	Context context.Context

	locker *Locker
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{db: pool}
}

// WithLease acquires the project lease, runs fn on the lease context and
// releases the lease afterwards.
func (l *Locker) WithLease(ctx context.Context, projectID int64, opts Options, fn func(ctx context.Context) error) error {
	lease, err := l.Acquire(ctx, projectID, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	return fn(lease.Context)
}

// Acquire takes the lease for a project. Without Wait it returns ErrBusy
// when another holder owns an unexpired lease; with Wait it polls until the
// lease frees up or ctx is done. The returned lease renews itself until
// released.
func (l *Locker) Acquire(ctx context.Context, projectID int64, opts Options) (*Lease, error) {
	if projectID <= 0 {
		return nil, errors.New("project id is not set")
	}

	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	ttlMs := opts.TTL.Milliseconds()
	if opts.RenewEvery <= 0 || opts.RenewEvery >= opts.TTL {
		opts.RenewEvery = max(opts.TTL/2, time.Second)
	}
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = 250 * time.Millisecond
	}
	if opts.WaitJitter < 0 {
		opts.WaitJitter = 0
	}

	tok, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	holder := opts.HolderPrefix + tok

	acquireOnce := func(ctx context.Context) (bool, error) {
		var returnedID int64
		err := l.db.QueryRow(ctx, tryAcquireSQL, projectID, holder, ttlMs).Scan(&returnedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, nil
			}
			return false, err
		}
		return returnedID != 0, nil
	}

	for {
		ok, err := acquireOnce(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, ErrBusy
		}
		if err := sleepWithJitter(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	lease := &Lease{
		ProjectID: projectID,
		Holder:    holder,
		Context:   leaseCtx,
		locker:    l,
		cancel:    cancel,
		stopCh:    make(chan struct{}),
	}

	go lease.renewLoop(opts, ttlMs)

	return lease, nil
}

func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	_, err := l.locker.db.Exec(ctx, releaseSQL, l.ProjectID, l.Holder)
	return err
}

func (l *Lease) renewLoop(opts Options, ttlMs int64) {
	t := time.NewTicker(opts.RenewEvery)
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
	for attempt := range renewTries {
		renewCtx, cancel := context.WithTimeout(l.Context, renewTimeout)
		var returnedID int64
		err := l.locker.db.QueryRow(renewCtx, renewSQL, l.ProjectID, l.Holder, ttlMs).Scan(&returnedID)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		if attempt == renewTries-1 {
			return err
		}
		if err := sleepWithJitter(l.Context, 200*time.Millisecond, 0); err != nil {
			return err
		}
	}
	return ErrLost
}

// String returns the lease key as logged, "project:<id>".
func (l *Lease) String() string {
	return "project:" + strconv.FormatInt(l.ProjectID, 10)
}

func sleepWithJitter(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const tryAcquireSQL = `
INSERT INTO run_leases (project_id, holder, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (project_id) DO UPDATE
SET holder     = EXCLUDED.holder,
    expires_at = EXCLUDED.expires_at
WHERE run_leases.expires_at < now()
   OR run_leases.holder = EXCLUDED.holder
RETURNING project_id;
`

const renewSQL = `
UPDATE run_leases
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE project_id = $1 AND holder = $2
RETURNING project_id;
`

const releaseSQL = `
DELETE FROM run_leases
WHERE project_id = $1 AND holder = $2;
`
