package stopwatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	meterStageLabel = "stage"
)

type Metric interface {
	Stop()
}

// Stopwatch accumulates wall time of named code fragments. It is much
// lighter than tracing, so even small fragments can be measured. Values are
// kept in runtime only until exported into a prometheus histogram.
// One instance belongs to one pipeline pass, no locking inside.
type Stopwatch struct {
	values map[string]time.Duration
	counts map[string]uint32

	nowFn   func() time.Time
	sinceFn func(time.Time) time.Duration
}

func New() *Stopwatch {
	sw := &Stopwatch{
		nowFn:   time.Now,
		sinceFn: time.Since,
	}
	sw.Reset()
	return sw
}

func (s *Stopwatch) Reset() {
	s.values = make(map[string]time.Duration)
	s.counts = make(map[string]uint32)
}

func (s *Stopwatch) Start(name string) Metric {
	return &metric{sw: s, name: name, start: s.nowFn()}
}

func (s *Stopwatch) GetValues() map[string]time.Duration {
	return s.values
}

func (s *Stopwatch) GetCounts() map[string]uint32 {
	return s.counts
}

type metric struct {
	sw      *Stopwatch
	name    string
	start   time.Time
	stopped bool
}

func (m *metric) Stop() {
	if m.stopped {
		return
	}
	m.stopped = true
	m.sw.values[m.name] += m.sw.sinceFn(m.start)
	m.sw.counts[m.name]++
}

type ExportOption func(prometheus.Labels) prometheus.Labels

func SetLabel(name, value string) ExportOption {
	return func(labels prometheus.Labels) prometheus.Labels {
		labels[name] = value
		return labels
	}
}

func (s *Stopwatch) Export(m *prometheus.HistogramVec, options ...ExportOption) {
	labels := prometheus.Labels{}
	for _, o := range options {
		labels = o(labels)
	}

	for name, val := range s.GetValues() {
		labels[meterStageLabel] = name
		m.With(labels).Observe(val.Seconds())
	}
	s.Reset()
}
