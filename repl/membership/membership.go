// Package membership implements the replica-set configuration service the
// tracker consults for primary status, majority size, and named
// write-concern tag rules. It is grounded on
// etcdserver/api/membership.RaftCluster's mutex-guarded member map and
// Clone-on-read accessors, and on raft/quorum.MajorityConfig's majority
// arithmetic.
package membership

import (
	"sort"
	"sync"

	"github.com/coreos/go-semver/semver"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/royendgel/mongo/repl"
)

// MinSupportedVersion is the oldest protocol version a member can run
// without being flagged as needing an upgrade in its reported config.
var MinSupportedVersion = semver.New("3.0.0")

// Member is one voting (or arbiter, or learner) member of the replica set.
type Member struct {
	ID      primitive.ObjectID
	Host    string
	Arbiter bool
	Learner bool
	Version *semver.Version
}

func (m *Member) needsUpgrade() bool {
	return m.Version == nil || m.Version.LessThan(*MinSupportedVersion)
}

func (m *Member) config() repl.Doc {
	return repl.Doc{
		"_id":           m.ID,
		"host":          m.Host,
		"arbiterOnly":   m.Arbiter,
		"upgradeNeeded": m.needsUpgrade(),
	}
}

// Service is a sync.Mutex-guarded in-memory replica-set configuration
// service, grounded on etcdserver/api/membership.RaftCluster's
// map[types.ID]*Member plus a per-node primary flag and a set of named tag
// rules the caller (or an external percolation path) keeps current.
type Service struct {
	mu sync.Mutex

	selfID    primitive.ObjectID
	self      Member
	isPrimary bool
	inSet     bool

	members map[primitive.ObjectID]*Member
	tags    map[string]*repl.TagRule
}

// New constructs a Service for a node whose own member document is self.
func New(self Member) *Service {
	return &Service{
		selfID:  self.ID,
		self:    self,
		members: make(map[primitive.ObjectID]*Member),
		tags:    make(map[string]*repl.TagRule),
	}
}

// AddMember registers (or replaces) a voting/arbiter member of the set.
func (s *Service) AddMember(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := m
	s.members[m.ID] = &cp
	s.inSet = true
}

// RemoveMember drops a member from the set, e.g. after it's voted out.
func (s *Service) RemoveMember(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
}

// SetPrimary flips this node's belief about its own role.
func (s *Service) SetPrimary(primary bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPrimary = primary
}

// SetTagRule installs or updates a named write-concern mode's watermark.
// Ownership of Last is external to the tracker: only this method, driven by
// whatever keeps tag-rule acknowledgment current, ever advances it.
func (s *Service) SetTagRule(name string, last repl.OpTime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.tags[name]; ok {
		r.Last = last
		return
	}
	s.tags[name] = &repl.TagRule{Last: last}
}

// IsPrimary implements repl.Membership.
func (s *Service) IsPrimary() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPrimary
}

// InReplicaSet implements repl.Membership.
func (s *Service) InReplicaSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inSet
}

// MajorityCount implements repl.Membership. It counts arbiters alongside
// voters (spec §4.4: "including arbiters, to prevent 'majority of set but
// not of voters' edge case"), using the same q = n/2 + 1 formula as
// raft/quorum.MajorityConfig.VoteResult. Learners are not counted.
func (s *Service) MajorityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 1 // self
	for _, m := range s.members {
		if !m.Learner {
			n++
		}
	}
	return n/2 + 1
}

// TagRules implements repl.Membership. The returned map is the live map;
// callers (the tracker) only ever read it.
func (s *Service) TagRules() map[string]*repl.TagRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags
}

// MyConfig implements repl.Membership.
func (s *Service) MyConfig() repl.Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.self.config()
}

// Members returns a sorted, cloned snapshot of the voting membership,
// grounded on RaftCluster.Members()'s Clone()-then-sort pattern.
func (s *Service) Members() []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}
