package repl

import "go.mongodb.org/mongo-driver/bson/primitive"

// entry is one row of the progress map: a follower's full identity plus the
// OpTime most recently reported for it. Monotonicity is not enforced here;
// callers deliver advancing positions, so this is also the highest seen.
type entry struct {
	identity Identity
	opTime   OpTime
}

// progressMap is the C2 component: identity -> latest reported OpTime,
// keyed by RemoteID per Identity's equality contract. It carries no locking
// of its own; every method assumes the caller holds Tracker.mu, mirroring
// raft/tracker.ProgressTracker.Progress being a bare map manipulated only
// under the owning raft instance's lock.
type progressMap struct {
	entries map[primitive.ObjectID]*entry
}

func newProgressMap() *progressMap {
	return &progressMap{entries: make(map[primitive.ObjectID]*entry)}
}

// update sets identity's entry to op, replacing any prior entry for the
// same RemoteID (I1: never creates a sibling).
func (p *progressMap) update(identity Identity, op OpTime) {
	if e, ok := p.entries[identity.RemoteID]; ok {
		e.identity = identity
		e.opTime = op
		return
	}
	p.entries[identity.RemoteID] = &entry{identity: identity, opTime: op}
}

// snapshot returns a consistent point-in-time copy of the map. Callers take
// it while holding the lock and then release the lock before using it.
func (p *progressMap) snapshot() []entry {
	out := make([]entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	return out
}

// visit calls f once per entry, in map-iteration order (P7 relies on this
// being a single live pass, not a stable cross-call ordering).
func (p *progressMap) visit(f func(identity Identity, op OpTime)) {
	for _, e := range p.entries {
		f(e.identity, e.opTime)
	}
}

func (p *progressMap) len() int {
	return len(p.entries)
}

func (p *progressMap) clear() {
	p.entries = make(map[primitive.ObjectID]*entry)
}
