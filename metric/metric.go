package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SecondsBuckets = prometheus.ExponentialBuckets(0.0005, 2, 16)

var (
	CipherDecodedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "cipher",
		Name:      "decoded_bytes_total",
		Help:      "Total size of successfully decoded artifacts",
	})
	CipherEncodedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "cipher",
		Name:      "encoded_bytes_total",
		Help:      "Total size of produced encrypted artifacts",
	})
	CipherKeyTrialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "cipher",
		Name:      "key_trials_total",
		Help:      "Candidate keys tried during key searches",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Artifact cache hits",
	})
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Artifact cache misses",
	})
	CacheSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardtext",
		Subsystem: "cache",
		Name:      "size_bytes",
		Help:      "Payload bytes held by the artifact cache",
	})

	SnapshotReadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "snapshot",
		Name:      "read_bytes_total",
		Help:      "Bytes read from session snapshots",
	})
	SnapshotWrittenBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardtext",
		Subsystem: "snapshot",
		Name:      "written_bytes_total",
		Help:      "Bytes written to session snapshots",
	})

	BuildStagesSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cardtext",
		Subsystem: "builder",
		Name:      "stages_seconds",
		Help:      "Wall time of build pipeline stages",
		Buckets:   SecondsBuckets,
	}, []string{"stage"})
)
