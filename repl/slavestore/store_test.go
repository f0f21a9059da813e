package slavestore

import (
	"fmt"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/royendgel/mongo/repl"
	"github.com/royendgel/mongo/repl/replsetpb"
)

func TestUpsertPersistsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Config{Path: filepath.Join(dir, "local.slaves.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	id := primitive.NewObjectID()
	key := repl.Doc{"_id": id}
	update := repl.Doc{
		"ns":       "local.oplog.rs",
		"syncedTo": repl.OpTime{Timestamp: primitive.Timestamp{T: 10}},
	}

	if err := store.Upsert("local.slaves", key, update); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	update["syncedTo"] = repl.OpTime{Timestamp: primitive.Timestamp{T: 20}}
	if err := store.Upsert("local.slaves", key, update); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}

	store.commit()
	var got replsetpb.SlaveDoc
	if err := store.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(slavesBucketName).Get(id[:])
		if v == nil {
			return fmt.Errorf("no row stored under %s", id.Hex())
		}
		return got.Unmarshal(v)
	}); err != nil {
		t.Fatalf("reading back row: %v", err)
	}
	if got.SyncedTs != 20 {
		t.Fatalf("expected the second upsert to overwrite syncedTo, got ts %d", got.SyncedTs)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Config{Path: filepath.Join(dir, "local.slaves.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := store.Upsert("local.slaves", repl.Doc{}, repl.Doc{}); err == nil {
		t.Fatalf("expected an error when the key document has no _id")
	}
}
