package repl

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// defaults, overridable per Config field left zero. Mirrors the
// lease.LessorConfig / backend.BackendConfig fill-in-defaults idiom: a
// package-level var holds the production default, withDefaults only applies
// it when the caller left the corresponding field at its zero value.
var (
	defaultFlushInterval     = time.Second
	defaultFsyncLogWindow    = 10 * time.Second
	defaultPercolateWorkers  = 4
	defaultPercolateCapacity = 256
)

// Config configures a Tracker. All fields are optional; zero values are
// replaced with the package defaults above.
type Config struct {
	// FlushInterval bounds how long dirty progress can sit unpersisted.
	FlushInterval time.Duration

	// FsyncLogWindow is the rate-limit window for the "flush skipped,
	// fsync-locked" log line.
	FsyncLogWindow time.Duration

	// PercolateWorkers is the size of the ghost-sync worker pool.
	PercolateWorkers int

	// PercolateCapacity is the buffered channel depth for percolation
	// tasks; Update never blocks on a full queue, it drops and logs.
	PercolateCapacity int

	// Clock is the source of time WaitForReplication waits against.
	// Tests inject clockwork.NewFakeClock() so a deadline can be
	// advanced deterministically instead of sleeping on the wall clock;
	// production callers leave this nil and get clockwork.NewRealClock().
	Clock clockwork.Clock
}

func (c Config) withDefaults() Config {
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FsyncLogWindow <= 0 {
		c.FsyncLogWindow = defaultFsyncLogWindow
	}
	if c.PercolateWorkers <= 0 {
		c.PercolateWorkers = defaultPercolateWorkers
	}
	if c.PercolateCapacity <= 0 {
		c.PercolateCapacity = defaultPercolateCapacity
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return c
}
