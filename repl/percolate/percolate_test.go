package percolate

import (
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/royendgel/mongo/repl"
)

type recordingUpstream struct {
	mu    sync.Mutex
	seen  []primitive.ObjectID
	failN int
}

func (u *recordingUpstream) Forward(remoteID primitive.ObjectID, op repl.OpTime) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failN > 0 {
		u.failN--
		return errForward
	}
	u.seen = append(u.seen, remoteID)
	return nil
}

func (u *recordingUpstream) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.seen)
}

var errForward = fwdErr{}

type fwdErr struct{}

func (fwdErr) Error() string { return "induced forward failure" }

func TestPoolDeliversTask(t *testing.T) {
	up := &recordingUpstream{}
	pool := New(nil, up, 2, 8)
	defer pool.Stop()

	id := primitive.NewObjectID()
	pool.Percolate(id, repl.OpTime{Term: 1})

	deadline := time.After(2 * time.Second)
	for up.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for percolation delivery")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestPoolRetriesOnFailure(t *testing.T) {
	up := &recordingUpstream{failN: 1}
	pool := New(nil, up, 1, 8)
	defer pool.Stop()

	id := primitive.NewObjectID()
	pool.Percolate(id, repl.OpTime{Term: 1})

	deadline := time.After(2 * time.Second)
	for up.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for retried percolation to land")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}
