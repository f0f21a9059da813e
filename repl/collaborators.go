package repl

import "go.mongodb.org/mongo-driver/bson/primitive"

// TagRule is a named write-concern mode's currently tracked watermark. The
// membership subsystem owns and mutates Last out of band; the tracker only
// ever reads it.
type TagRule struct {
	Last OpTime
}

// Membership is the replica-set configuration service the quorum evaluator
// and ingress adapter consult. It is implemented by repl/membership and is
// treated as an external collaborator: the tracker never mutates anything
// it returns.
type Membership interface {
	// IsPrimary reports whether this node currently believes itself primary.
	IsPrimary() bool
	// MajorityCount returns the current majority threshold, counting
	// arbiters, so that a majority of the set and a majority of voters
	// never silently diverge.
	MajorityCount() int
	// TagRules returns the live map of named write-concern modes. The
	// returned map and its *TagRule values may change out from under the
	// caller; callers must not mutate it.
	TagRules() map[string]*TagRule
	// MyConfig returns this node's own replica-set config document.
	MyConfig() Doc
	// InReplicaSet reports whether this node is a member of a replica set
	// at all, gating ghost-sync percolation.
	InReplicaSet() bool
}

// FsyncLockDetector reports whether the host is currently fsync-locked for
// writing, in which case the flusher must not touch the local collection.
type FsyncLockDetector interface {
	LockedForWriting() bool
}

// Persistence is the local.slaves collection. The only caller is the
// flusher (repl/flusher.go), which always calls Upsert with key = {"_id":
// remoteID} and update carrying the full row for that identity (config, ns,
// syncedTo) — not a $set fragment. Upsert replaces whatever row was stored
// under key with update in its entirety.
type Persistence interface {
	Upsert(namespace string, key, update Doc) error
}

// Percolator forwards a follower's progress upstream when this node is not
// primary. Percolate is fire-and-forget from the caller's perspective: it
// must never block Update.
type Percolator interface {
	Percolate(remoteID primitive.ObjectID, op OpTime)
}
