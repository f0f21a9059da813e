// Command replprimary wires a repl.Tracker into a minimal primary node:
// membership, fsync-lock detection, and local.slaves persistence, the way
// etcdmain/main.go wires EtcdServer's collaborators together before
// starting it. It exists to exercise the package, not as a deployable
// server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/royendgel/mongo/repl"
	"github.com/royendgel/mongo/repl/fsynclock"
	"github.com/royendgel/mongo/repl/membership"
	"github.com/royendgel/mongo/repl/percolate"
	"github.com/royendgel/mongo/repl/slavestore"
)

// logUpstream stands in for the sync-source client a real deployment would
// forward percolated progress through; it only logs.
type logUpstream struct{ lg *zap.Logger }

func (u logUpstream) Forward(remoteID primitive.ObjectID, op repl.OpTime) error {
	u.lg.Debug("would forward percolated progress upstream",
		zap.String("remote_id", remoteID.Hex()), zap.String("op", op.String()))
	return nil
}

// followersValue is a flag.Value over a comma-separated host list, rejecting
// empty entries at Set time rather than deferring the complaint to whatever
// first tries to dial a blank host. Mirrors the teacher's
// pkg/flags.UniqueStringsValue: a validating flag.Value the flag package
// calls into during Parse, instead of ad hoc checks scattered after it.
type followersValue []string

func (f *followersValue) String() string {
	if f == nil {
		return ""
	}
	out := ""
	for i, h := range *f {
		if i > 0 {
			out += ","
		}
		out += h
	}
	return out
}

func (f *followersValue) Set(s string) error {
	*f = nil
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			host := s[start:i]
			if host == "" {
				return fmt.Errorf("followers: empty host in %q", s)
			}
			*f = append(*f, host)
			start = i + 1
		}
	}
	return nil
}

type cliConfig struct {
	dbPath           string
	followers        followersValue
	flushInterval    time.Duration
	percolateWorkers int
}

// parseFlags defines and validates the binary's flags, fatal-exiting with a
// descriptive message on the first violation, the way etcdmain/config.go
// rejects a bad config before EtcdServer is ever constructed.
func parseFlags(args []string) cliConfig {
	fs := flag.NewFlagSet("replprimary", flag.ExitOnError)
	cfg := cliConfig{followers: followersValue{"follower-a:27017", "follower-b:27017"}}

	fs.StringVar(&cfg.dbPath, "db-path", "local.slaves.db", "bbolt file backing the local.slaves collection")
	fs.Var(&cfg.followers, "followers", "comma-separated list of follower host:port pairs")
	fs.DurationVar(&cfg.flushInterval, "flush-interval", 500*time.Millisecond, "how often dirty progress is flushed to local.slaves")
	fs.IntVar(&cfg.percolateWorkers, "percolate-workers", 4, "size of the ghost-sync percolation worker pool")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.dbPath == "" {
		fmt.Fprintln(os.Stderr, "replprimary: -db-path must not be empty")
		os.Exit(1)
	}
	if cfg.flushInterval <= 0 {
		fmt.Fprintln(os.Stderr, "replprimary: -flush-interval must be positive")
		os.Exit(1)
	}
	if cfg.percolateWorkers <= 0 {
		fmt.Fprintln(os.Stderr, "replprimary: -percolate-workers must be positive")
		os.Exit(1)
	}
	if len(cfg.followers) == 0 {
		fmt.Fprintln(os.Stderr, "replprimary: -followers must name at least one host")
		os.Exit(1)
	}
	return cfg
}

func main() {
	cli := parseFlags(os.Args[1:])

	lg, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer lg.Sync()

	store, err := slavestore.Open(slavestore.Config{
		Path:   cli.dbPath,
		Logger: lg,
	})
	if err != nil {
		lg.Fatal("failed to open local.slaves store", zap.Error(err))
	}
	defer store.Close()

	self := membership.Member{ID: primitive.NewObjectID(), Host: "localhost:27017"}
	mem := membership.New(self)
	mem.SetPrimary(true)
	for _, host := range cli.followers {
		mem.AddMember(membership.Member{ID: primitive.NewObjectID(), Host: host})
	}

	detector := fsynclock.New()

	cfg := repl.Config{
		FlushInterval:     cli.flushInterval,
		PercolateWorkers:  cli.percolateWorkers,
		PercolateCapacity: 256,
	}
	pool := percolate.New(lg, logUpstream{lg: lg}, cfg.PercolateWorkers, cfg.PercolateCapacity)
	defer pool.Stop()

	tracker := repl.New(lg, mem, detector, store, pool, cfg)
	defer tracker.Stop()

	lg.Info("replprimary started", zap.Int("majority", mem.MajorityCount()))

	select {}
}
