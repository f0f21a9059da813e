// Package repl implements the replication progress tracker of a primary
// database node: it watches how far each follower has applied the
// primary's operation log and answers "has write W reached enough
// followers yet?" for numeric, "majority", and named-tag write concerns.
package repl

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Tracker is the replication progress tracker. It owns no goroutines until
// the first call to UpdateSlaveLocation starts its background flusher, and
// every dependency is supplied at construction rather than reached through
// process-global state — unlike the MongoDB source this is modeled on, a
// Tracker is an object a database node constructs and owns, not a
// singleton.
type Tracker struct {
	mu   sync.Mutex
	cond *sync.Cond

	progress *progressMap
	dirty    bool
	flushing bool
	started  bool

	cfg Config
	lg  *zap.Logger

	membership  Membership
	fsyncLock   FsyncLockDetector
	persistence Persistence
	percolator  Percolator
	clock       clockwork.Clock

	stopc chan struct{}
	donec chan struct{}

	fsyncLogLimiter *rate.Limiter
}

// New constructs a Tracker. lg may be nil, in which case logging is
// skipped, mirroring embed.Config.GetLogger's nil-tolerant callers.
func New(lg *zap.Logger, membership Membership, fsyncLock FsyncLockDetector, persistence Persistence, percolator Percolator, cfg Config) *Tracker {
	cfg = cfg.withDefaults()
	t := &Tracker{
		progress:    newProgressMap(),
		cfg:         cfg,
		lg:          lg,
		membership:  membership,
		fsyncLock:   fsyncLock,
		persistence: persistence,
		percolator:  percolator,
		clock:       cfg.Clock,
		stopc:       make(chan struct{}),
		donec:       make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	t.fsyncLogLimiter = rate.NewLimiter(rate.Every(cfg.FsyncLogWindow), 1)
	return t
}

// ensureStarted lazily launches the flusher goroutine on first use. Caller
// must hold t.mu.
func (t *Tracker) ensureStarted() {
	if t.started {
		return
	}
	t.started = true
	go t.runFlusher()
}

// Stop requests the flusher goroutine to exit and waits for it to do so.
// Process shutdown unblocks the flusher within one sleep interval; calling
// Stop on a Tracker that was never started (no update yet) returns
// immediately.
func (t *Tracker) Stop() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return
	}
	close(t.stopc)
	<-t.donec
}

// SlaveCount returns the number of followers currently tracked. It does not
// include this node.
func (t *Tracker) SlaveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.len()
}

// Reset empties the progress map unless a flush is in progress (I4/P6); it
// never partially empties.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flushing {
		return
	}
	t.progress.clear()
	t.dirty = false
}

// HostsAtOp returns this node's config first, followed by the config of
// every follower whose OpTime is at or after op, each exactly once, in the
// progress map's current iteration order (P7).
func (t *Tracker) HostsAtOp(op OpTime) []Doc {
	t.mu.Lock()
	defer t.mu.Unlock()

	hosts := make([]Doc, 0, t.progress.len()+1)
	hosts = append(hosts, t.membership.MyConfig())
	t.progress.visit(func(identity Identity, got OpTime) {
		if got.GreaterOrEqual(op) {
			hosts = append(hosts, identity.Config)
		}
	})
	return hosts
}

// WaitForReplication blocks until op has reached w members, this node plus
// w-1 followers (numeric w only; string write-concern modes are polled via OpReplicatedEnough by
// design — see §4.4), maxWait elapses, or ctx is done, whichever comes
// first. It returns true on success. On failure it returns false, with a
// nil error for ordinary deadline expiry and ctx.Err() when the caller's
// own context was canceled — the two are always distinguishable.
//
// Per the source's documented semantics (not "fixed" here, see DESIGN.md):
// w <= 1 and a non-primary node both short-circuit to true without
// inspecting the map at all.
func (t *Tracker) WaitForReplication(ctx context.Context, op OpTime, w int, maxWait time.Duration) (bool, error) {
	start := t.clock.Now()
	defer func() { quorumWaitSeconds.Observe(t.clock.Now().Sub(start).Seconds()) }()

	if w <= 1 || !t.membership.IsPrimary() {
		return true, nil
	}

	deadlineC := t.clock.After(maxWait)

	t.mu.Lock()
	defer t.mu.Unlock()

	// sync.Cond has no timed or context-aware wait, so a watcher goroutine
	// stands in for one: it does nothing but turn t.clock's deadline or
	// ctx.Done() into a Broadcast, so the loop below always wakes up to
	// recheck. Routing the deadline through t.clock rather than
	// context.WithTimeout lets tests advance a fake clock instead of
	// sleeping on the wall clock.
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	timedOut := make(chan struct{})
	go func() {
		select {
		case <-deadlineC:
			close(timedOut)
		case <-ctx.Done():
		case <-watcherDone:
			return
		}
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	}()

	for {
		if t.satisfiesNumeric(op, w) {
			return true, nil
		}
		select {
		case <-timedOut:
			return false, nil
		default:
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		t.cond.Wait()
	}
}
