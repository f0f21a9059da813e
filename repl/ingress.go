package repl

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandshakeClient carries what the ingress adapter needs from an incoming
// connection: the follower's own identity document and its handshake. The
// request/command plumbing that extracts these from a live connection is
// out of scope (§1) and implemented by the caller.
type HandshakeClient struct {
	// RemoteID is the "_id" object-id field of the follower's identity
	// document, or the zero ObjectID if the follower hasn't identified
	// itself yet.
	RemoteID primitive.ObjectID
	// Config is the handshake's "config" field, or nil when absent.
	Config Doc
	// Host is used to synthesize a placeholder config when Config is nil.
	Host string
}

// UpdateSlaveLocation is the C6 ingress adapter: it records a follower's
// reported progress and, on a non-primary member of a replica set,
// forwards it upstream via ghost-sync percolation.
func (t *Tracker) UpdateSlaveLocation(client HandshakeClient, namespace string, lastOp OpTime) {
	if lastOp.IsZero() {
		return
	}
	if !isOplogNamespace(namespace) {
		panic("UpdateSlaveLocation: namespace must start with " + oplogNamespacePrefix + ", got " + namespace)
	}
	if client.RemoteID.IsZero() {
		return
	}

	config := client.Config
	if config == nil {
		config = Doc{"host": client.Host, "upgradeNeeded": true}
	}

	identity := Identity{RemoteID: client.RemoteID, Config: config, Namespace: namespace}

	t.mu.Lock()
	t.ensureStarted()
	t.progress.update(identity, lastOp)
	t.dirty = true
	slaveCountGauge.Set(float64(t.progress.len()))
	t.cond.Broadcast()
	t.mu.Unlock()

	if t.percolator != nil && !t.membership.IsPrimary() && t.membership.InReplicaSet() {
		t.percolator.Percolate(client.RemoteID, lastOp)
	}
}
