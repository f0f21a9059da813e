package repl

import "github.com/prometheus/client_golang/prometheus"

var (
	flushTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "flush_total",
		Help:      "Number of completed background flush passes.",
	})
	flushSkippedFsyncLocked = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "flush_skipped_fsync_locked_total",
		Help:      "Number of flush passes skipped because the host was fsync-locked.",
	})
	flushUpsertFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "flush_upsert_failures_total",
		Help:      "Number of individual local.slaves upserts that failed during a flush pass.",
	})
	dirtyEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "dirty_entries",
		Help:      "Number of progress-map entries snapshotted in the most recent flush pass.",
	})
	slaveCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "slave_count",
		Help:      "Current number of followers tracked in the progress map.",
	})
	quorumWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "replset",
		Subsystem: "tracker",
		Name:      "quorum_wait_seconds",
		Help:      "Time spent blocked in WaitForReplication.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		flushTotal,
		flushSkippedFsyncLocked,
		flushUpsertFailures,
		dirtyEntries,
		slaveCountGauge,
		quorumWaitSeconds,
	)
}
