package repl

import (
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errUpsertFailed = errors.New("fakePersistence: induced upsert failure")

// fakeMembership is a minimal, directly-mutable stand-in for the
// membership service, used across the table-driven tests in this package.
type fakeMembership struct {
	mu        sync.Mutex
	primary   bool
	majority  int
	inSet     bool
	tags      map[string]*TagRule
	myConfig  Doc
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		primary:  true,
		majority: 2,
		inSet:    true,
		tags:     make(map[string]*TagRule),
		myConfig: Doc{"host": "primary:27017"},
	}
}

func (f *fakeMembership) IsPrimary() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.primary
}

func (f *fakeMembership) setPrimary(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.primary = v
}

func (f *fakeMembership) MajorityCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.majority
}

func (f *fakeMembership) TagRules() map[string]*TagRule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags
}

func (f *fakeMembership) MyConfig() Doc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.myConfig
}

func (f *fakeMembership) InReplicaSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inSet
}

// fakePersistence records every upsert it receives, for assertions, and can
// be made to fail on demand.
type fakePersistence struct {
	mu     sync.Mutex
	rows   map[primitive.ObjectID]Doc
	failOn map[primitive.ObjectID]bool
	calls  int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		rows:   make(map[primitive.ObjectID]Doc),
		failOn: make(map[primitive.ObjectID]bool),
	}
}

func (f *fakePersistence) Upsert(namespace string, key, update Doc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	id := key["_id"].(primitive.ObjectID)
	if f.failOn[id] {
		return errUpsertFailed
	}
	f.rows[id] = update
	return nil
}

func (f *fakePersistence) row(id primitive.ObjectID) (Doc, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	return d, ok
}

type stubFsyncLock struct{ locked bool }

func (s *stubFsyncLock) LockedForWriting() bool { return s.locked }

type recordingPercolator struct {
	mu    sync.Mutex
	calls []primitive.ObjectID
}

func (p *recordingPercolator) Percolate(remoteID primitive.ObjectID, op OpTime) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, remoteID)
}

func (p *recordingPercolator) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestTracker(mem *fakeMembership, persist Persistence, fsync FsyncLockDetector, perc Percolator) *Tracker {
	return New(nil, mem, fsync, persist, perc, Config{FlushInterval: time.Hour})
}

func opAt(t int32) OpTime {
	return OpTime{Timestamp: primitive.Timestamp{T: uint32(t)}}
}
