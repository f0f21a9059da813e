package repl

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doc is a loosely-typed document, used for the follower's replica-set
// config descriptor and for the synthesized upgrade-needed placeholder.
type Doc map[string]interface{}

// Identity names a tracked follower. Total order and equality are defined
// entirely by RemoteID: two identities with the same RemoteID but different
// Config collapse into a single map entry, matching the source's "ordered
// by _id only" behavior. This is intentional for stable follower identity
// across reconnects, but a footgun if a RemoteID is ever reused by a
// different physical follower — callers must not recycle object ids.
type Identity struct {
	// RemoteID is the object id the follower's handshake document carries
	// under "_id". It is the sole key of the progress map.
	RemoteID primitive.ObjectID

	// Config is the follower's membership config document as seen at
	// handshake time, or a synthesized {host, upgradeNeeded: true}
	// placeholder when the follower hasn't supplied one yet.
	Config Doc

	// Namespace is the oplog namespace the follower is tailing. Always
	// starts with "local.oplog.".
	Namespace string
}

func (id Identity) String() string {
	return fmt.Sprintf("Identity{_id=%s ns=%s}", id.RemoteID.Hex(), id.Namespace)
}

// Equal reports whether two identities name the same follower.
func (id Identity) Equal(other Identity) bool {
	return id.RemoteID == other.RemoteID
}

// Host returns the handshake host, falling back to "" when Config carries
// none (it always should once synthesized by the ingress adapter).
func (id Identity) Host() string {
	if h, ok := id.Config["host"].(string); ok {
		return h
	}
	return ""
}

const oplogNamespacePrefix = "local.oplog."

// isOplogNamespace reports whether ns is a legal oplog namespace for a
// tailing follower.
func isOplogNamespace(ns string) bool {
	if len(ns) <= len(oplogNamespacePrefix) {
		return false
	}
	return ns[:len(oplogNamespacePrefix)] == oplogNamespacePrefix
}
