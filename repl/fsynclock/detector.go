// Package fsynclock reports whether the host is currently locked for
// writing so on-disk files can be snapshotted, grounded on the atomic,
// lock-free status flags etcdserver/raft.go keeps under raftStatusMu-style
// discipline: a single atomic value, no blocking reads.
package fsynclock

import "sync/atomic"

// Detector implements repl.FsyncLockDetector with a single atomic flag. The
// real storage-engine lock manager that backs mongod's fsyncLock command is
// out of scope (§1); this is the collaborator interface the tracker needs.
type Detector struct {
	locked atomic.Bool
}

// New returns a Detector that starts unlocked.
func New() *Detector {
	return &Detector{}
}

// Lock marks the host as locked for writing.
func (d *Detector) Lock() {
	d.locked.Store(true)
}

// Unlock clears the locked-for-writing flag.
func (d *Detector) Unlock() {
	d.locked.Store(false)
}

// LockedForWriting implements repl.FsyncLockDetector.
func (d *Detector) LockedForWriting() bool {
	return d.locked.Load()
}
