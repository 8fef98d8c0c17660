package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/motionchart/internal/ir"
)

// DefaultPrefix is the topic prefix used when none is given.
const DefaultPrefix = "motionchart"

// QoS levels used by the sink.
const (
	tickQoS    byte = 1
	outcomeQoS byte = 1
)

// Sink publishes run progress through a Publisher.
type Sink struct {
	pub    Publisher
	prefix string
}

// NewSink creates a sink publishing under prefix. Surrounding slashes are
// trimmed; an empty prefix defaults to DefaultPrefix.
func NewSink(pub Publisher, prefix string) *Sink {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sink{pub: pub, prefix: prefix}
}

// TickTopic returns the per-tick topic of a run.
func (s *Sink) TickTopic(runID string) string {
	return s.prefix + "/" + runID + "/tick"
}

// OutcomeTopic returns the retained outcome topic of a run.
func (s *Sink) OutcomeTopic(runID string) string {
	return s.prefix + "/" + runID + "/outcome"
}

// BeginRun publishes the run in "running" state on the outcome topic.
func (s *Sink) BeginRun(_ context.Context, run ir.RunRecord, _ ir.ChartSpec) error {
	return s.publishJSON(s.OutcomeTopic(run.ID), outcomeQoS, true, run)
}

// RecordTick publishes one tick.
func (s *Sink) RecordTick(_ context.Context, rec ir.TickRecord) error {
	return s.publishJSON(s.TickTopic(rec.RunID), tickQoS, false, rec)
}

// EndRun publishes the final run record on the outcome topic.
func (s *Sink) EndRun(_ context.Context, run ir.RunRecord) error {
	return s.publishJSON(s.OutcomeTopic(run.ID), outcomeQoS, true, run)
}

func (s *Sink) publishJSON(topic string, qos byte, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	return s.pub.Publish(topic, qos, retained, payload)
}
