// Package percolate implements the ghost-sync forwarding path a non-primary
// node uses to push a follower's progress toward the upstream primary. It
// is grounded on lease.lessor's expiredC/stopC/doneC channel lifecycle
// (lease/lessor.go) and on the small buffered-channel-plus-fixed-workers
// shape used for background task pools across the example pack.
package percolate

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/royendgel/mongo/repl"
)

// Upstream is where a percolated progress update ultimately goes: whatever
// transport carries it to the replication chain's primary. The wire
// protocol itself is out of scope (§1); this is the seam a real deployment
// plugs a sync-source client into.
type Upstream interface {
	Forward(remoteID primitive.ObjectID, op repl.OpTime) error
}

type task struct {
	id       string
	remoteID primitive.ObjectID
	op       repl.OpTime
	attempt  int
}

// Pool is a bounded worker pool percolating progress updates upstream. It
// implements repl.Percolator.
type Pool struct {
	lg       *zap.Logger
	upstream Upstream

	tasks chan task
	stopc chan struct{}
	wg    sync.WaitGroup

	maxAttempts int
	retryDelay  time.Duration
}

// New starts workers workers draining a channel of depth capacity. Percolate
// never blocks the caller: a full queue drops the task and logs.
func New(lg *zap.Logger, upstream Upstream, workers, capacity int) *Pool {
	p := &Pool{
		lg:          lg,
		upstream:    upstream,
		tasks:       make(chan task, capacity),
		stopc:       make(chan struct{}),
		maxAttempts: 3,
		retryDelay:  200 * time.Millisecond,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Percolate implements repl.Percolator.
func (p *Pool) Percolate(remoteID primitive.ObjectID, op repl.OpTime) {
	t := task{id: uuid.New().String(), remoteID: remoteID, op: op, attempt: 1}
	select {
	case p.tasks <- t:
	default:
		if p.lg != nil {
			p.lg.Warn("percolate queue full, dropping update",
				zap.String("task", t.id), zap.String("remote_id", remoteID.Hex()))
		}
	}
}

// Stop drains no further tasks and waits for in-flight workers to exit.
func (p *Pool) Stop() {
	close(p.stopc)
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopc:
			return
		case t := <-p.tasks:
			p.deliver(t)
		}
	}
}

func (p *Pool) deliver(t task) {
	if err := p.upstream.Forward(t.remoteID, t.op); err != nil {
		if p.lg != nil {
			p.lg.Warn("percolate forward failed",
				zap.String("task", t.id), zap.Int("attempt", t.attempt), zap.Error(err))
		}
		if t.attempt < p.maxAttempts {
			t.attempt++
			time.AfterFunc(p.retryDelay, func() {
				select {
				case p.tasks <- t:
				case <-p.stopc:
				}
			})
			return
		}
		if p.lg != nil {
			p.lg.Error("percolate giving up after max attempts",
				zap.String("task", t.id), zap.String("remote_id", t.remoteID.Hex()))
		}
	}
}
