package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/motionchart/internal/ir"
)

const namespace = "motionchart"

// Sink records run progress into Prometheus collectors.
//
// Thread-safety: the runner calls the sink from one goroutine; Status may be
// called concurrently from HTTP handlers.
type Sink struct {
	ticks    prometheus.Counter
	starts   *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	running  prometheus.Gauge

	mu   sync.RWMutex
	run  ir.RunRecord
	last *ir.TickRecord
}

// NewSink creates a sink and registers its collectors with reg.
// Registering twice on the same registry returns an error.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of engine ticks.",
		}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_starts_total",
			Help:      "Total number of node starts by node kind.",
		}, []string{"kind"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Total number of finished runs by final status.",
		}, []string{"status"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running_nodes",
			Help:      "Number of RUNNING nodes after the last tick.",
		}),
	}

	for _, c := range []prometheus.Collector{s.ticks, s.starts, s.outcomes, s.running} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return s, nil
}

// BeginRun resets the running-nodes gauge.
func (s *Sink) BeginRun(_ context.Context, run ir.RunRecord, _ ir.ChartSpec) error {
	s.running.Set(0)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	s.last = nil
	return nil
}

// RecordTick counts the tick and the nodes it started.
func (s *Sink) RecordTick(_ context.Context, rec ir.TickRecord) error {
	s.ticks.Inc()

	for _, name := range rec.Started {
		kind := "unknown"
		if st, ok := rec.State(name); ok {
			kind = st.Kind
		}
		s.starts.WithLabelValues(kind).Inc()
	}

	running := 0
	for _, n := range rec.Nodes {
		if n.LifeCycle == "RUNNING" {
			running++
		}
	}
	s.running.Set(float64(running))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Ticks = rec.Tick
	s.last = &rec
	return nil
}

// EndRun counts the outcome.
func (s *Sink) EndRun(_ context.Context, run ir.RunRecord) error {
	s.outcomes.WithLabelValues(run.Status).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	return nil
}

// Status is the JSON view of the current run.
type Status struct {
	Run      ir.RunRecord   `json:"run"`
	LastTick *ir.TickRecord `json:"last_tick,omitempty"`
}

// Status returns the current run and its last tick.
// Before the first run the zero Status is returned.
func (s *Sink) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Run: s.run, LastTick: s.last}
}
