package repl

import "time"

// todoItem is one (identity, opTime) pair snapshotted for persistence.
type todoItem struct {
	identity Identity
	opTime   OpTime
}

// runFlusher is the C4 background flusher's Idle -> Snapshotting -> Writing
// -> Idle loop, grounded on lease.lessor's stopC/doneC lifecycle and
// mvcc/backend.backend.run()'s timer-reset pattern. It is started lazily by
// ensureStarted and runs until Stop closes stopc.
func (t *Tracker) runFlusher() {
	defer close(t.donec)

	timer := time.NewTimer(t.cfg.FlushInterval)
	defer timer.Stop()

	for {
		select {
		case <-t.stopc:
			return
		case <-timer.C:
		}

		t.flushOnce()

		timer.Reset(t.cfg.FlushInterval)
	}
}

// flushOnce performs a single flush pass. It is split out from runFlusher
// so tests can drive it synchronously instead of racing a timer.
func (t *Tracker) flushOnce() {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return
	}
	if t.fsyncLock != nil && t.fsyncLock.LockedForWriting() {
		t.mu.Unlock()
		flushSkippedFsyncLocked.Inc()
		if t.fsyncLogLimiter.Allow() {
			t.logf("flush skipped: host is fsync-locked for writing")
		}
		return
	}

	todo := make([]todoItem, 0, t.progress.len())
	for _, e := range t.progress.snapshot() {
		todo = append(todo, todoItem{identity: e.identity, opTime: e.opTime})
	}
	t.dirty = false
	dirtyEntries.Set(float64(len(todo)))
	t.mu.Unlock()

	t.mu.Lock()
	t.flushing = true
	t.mu.Unlock()

	for _, item := range todo {
		key := Doc{"_id": item.identity.RemoteID}
		update := Doc{
			"config":   item.identity.Config,
			"ns":       item.identity.Namespace,
			"syncedTo": item.opTime,
		}
		if err := t.persistence.Upsert("local.slaves", key, update); err != nil {
			flushUpsertFailures.Inc()
			t.logf("local.slaves upsert failed for %s: %v", item.identity, err)
			// not retried here; the next update for this identity
			// re-marks dirty, or the entry remains persisted from a
			// previous pass. The map is the source of truth.
		}
	}

	t.mu.Lock()
	t.flushing = false
	t.mu.Unlock()

	flushTotal.Inc()

	t.mu.Lock()
	t.cond.Broadcast()
	t.mu.Unlock()
}

func (t *Tracker) logf(format string, args ...interface{}) {
	if t.lg == nil {
		return
	}
	t.lg.Sugar().Infof(format, args...)
}
