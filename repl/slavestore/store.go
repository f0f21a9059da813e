// Package slavestore persists the local.slaves collection into a bbolt
// bucket behind a batched commit, grounded on mvcc/backend.BatchTx's
// mutex-guarded, timer-committed write transaction (mvcc/backend/backend.go,
// mvcc/backend/batch_tx.go): Upsert writes into whichever bolt.Tx is
// currently open and returns without waiting on disk; a single background
// committer, timed by BatchInterval, commits that transaction, and the next
// Upsert opens a fresh one. Unlike the teacher's generic revisioned KV store above the
// backend (mvcc/kvstore.go, dropped per DESIGN.md), this package only needs
// one keyed bucket with upsert semantics, so it drives bbolt directly rather
// than carrying the revision/watch machinery forward unused.
package slavestore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/royendgel/mongo/repl"
	"github.com/royendgel/mongo/repl/replsetpb"
)

var errNoID = errors.New("slavestore: key document has no _id")

var (
	defaultBatchInterval = 100 * time.Millisecond

	slavesBucketName = []byte("local.slaves")
)

// Config configures a Store, mirroring mvcc/backend.BackendConfig's
// optional-field-with-package-default shape.
type Config struct {
	// Path is the bbolt database file path.
	Path string
	// BatchInterval bounds how long a batch of upserts stays buffered in an
	// open write transaction before being committed, the same role
	// mvcc/backend.BackendConfig.BatchInterval plays for etcd's backend.
	BatchInterval time.Duration
	// Logger logs store-side operations; nil disables logging.
	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.BatchInterval <= 0 {
		c.BatchInterval = defaultBatchInterval
	}
	return c
}

// Store is a bbolt-backed implementation of repl.Persistence, scoped to the
// local.slaves collection.
type Store struct {
	db  *bolt.DB
	lg  *zap.Logger
	cfg Config

	batchMu sync.Mutex
	tx      *bolt.Tx
	pending int

	stopc chan struct{}
	donec chan struct{}
}

// Open opens (creating if necessary) the bbolt file at cfg.Path, ensures the
// local.slaves bucket exists, and starts the batch committer.
func Open(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	db, err := bolt.Open(cfg.Path, 0600, nil)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("failed to open local.slaves database", zap.String("path", cfg.Path), zap.Error(err))
		}
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(slavesBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{
		db:    db,
		lg:    cfg.Logger,
		cfg:   cfg,
		stopc: make(chan struct{}),
		donec: make(chan struct{}),
	}
	go s.runCommitLoop()
	return s, nil
}

// runCommitLoop is the batch-interval committer: it owns s.tx's lifetime,
// mirroring mvcc/backend.backend.run()'s timer-reset loop.
func (s *Store) runCommitLoop() {
	defer close(s.donec)

	timer := time.NewTimer(s.cfg.BatchInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopc:
			s.commit()
			return
		case <-timer.C:
		}
		s.commit()
		timer.Reset(s.cfg.BatchInterval)
	}
}

// commit closes out the currently open write transaction, if any upserts
// are pending on it.
func (s *Store) commit() {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	if s.tx == nil || s.pending == 0 {
		return
	}
	if err := s.tx.Commit(); err != nil && s.lg != nil {
		s.lg.Warn("local.slaves batch commit failed", zap.Error(err), zap.Int("pending", s.pending))
	}
	s.tx = nil
	s.pending = 0
}

// Close stops the batch committer, flushing any pending upserts, then
// releases the underlying bbolt database.
func (s *Store) Close() error {
	close(s.stopc)
	<-s.donec
	return s.db.Close()
}

// Upsert implements repl.Persistence. namespace is accepted for interface
// symmetry but ignored: a Store instance is always scoped to local.slaves.
// The write is buffered into the currently open batch transaction and
// returns without waiting for it to commit. Commits follow the BatchInterval
// timer, not flush passes: one pass of repl/flusher.go's Upsert calls can be
// split across two transactions when a commit falls in the middle of it, and
// two passes inside one interval share a transaction.
func (s *Store) Upsert(namespace string, key, update repl.Doc) error {
	keyBytes, err := encodeKey(key)
	if err != nil {
		return err
	}

	doc := toSlaveDoc(key, update)
	val, err := doc.Marshal()
	if err != nil {
		return err
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if s.tx == nil {
		tx, err := s.db.Begin(true)
		if err != nil {
			return err
		}
		s.tx = tx
	}

	b := s.tx.Bucket(slavesBucketName)
	if err := b.Put(keyBytes, val); err != nil {
		if s.lg != nil {
			s.lg.Warn("local.slaves upsert failed", zap.Error(err), zap.Int("value_bytes", len(val)))
		}
		return err
	}
	s.pending++
	return nil
}

// Size reports the on-disk size of the store, logged in human-readable form
// the way etcdserver/quota.go logs quota sizes via go-humanize.
func (s *Store) Size() string {
	var n int64
	s.db.View(func(tx *bolt.Tx) error {
		n = tx.Size()
		return nil
	})
	return humanize.Bytes(uint64(n))
}

func encodeKey(key repl.Doc) ([]byte, error) {
	id, ok := key["_id"]
	if !ok {
		return nil, errNoID
	}
	if oid, ok := id.(primitive.ObjectID); ok {
		b := make([]byte, len(oid))
		copy(b, oid[:])
		return b, nil
	}
	return []byte(fmt.Sprintf("%v", id)), nil
}

func toSlaveDoc(key, update repl.Doc) *replsetpb.SlaveDoc {
	doc := &replsetpb.SlaveDoc{}
	if idBytes, err := encodeKey(key); err == nil {
		doc.RemoteID = idBytes
	}
	if cfg, ok := update["config"].(repl.Doc); ok {
		if cfgBytes, err := bson.Marshal(cfg); err == nil {
			doc.Config = cfgBytes
		}
	}
	if ns, ok := update["ns"].(string); ok {
		doc.Namespace = ns
	}
	if op, ok := update["syncedTo"].(repl.OpTime); ok {
		doc.SyncedTs = op.Timestamp.T
		doc.SyncedInc = op.Timestamp.I
		doc.SyncedTerm = op.Term
	}
	return doc
}
