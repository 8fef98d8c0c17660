package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainChart = "motionchart/chart/v1"
	DomainTrace = "motionchart/trace/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChartHash computes the content hash of a chart.
// Equal hashes mean the charts build identical engines.
func ChartHash(spec ChartSpec) (string, error) {
	canonical, err := MarshalCanonical(chartValue(spec))
	if err != nil {
		return "", fmt.Errorf("ChartHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainChart, canonical), nil
}

// TraceHash computes the content hash of a tick sequence.
//
// The run ID is excluded so that two executions of the same chart hash
// identically when they behave identically.
func TraceHash(ticks []TickRecord) (string, error) {
	arr := make(Array, len(ticks))
	for i, t := range ticks {
		arr[i] = TickValue(t)
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustChartHash is like ChartHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustChartHash(spec ChartSpec) string {
	h, err := ChartHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}

func chartValue(spec ChartSpec) Object {
	completion := spec.Completion
	if completion == "" {
		completion = CompletionAll
	}

	nodes := make(Array, len(spec.Nodes))
	for i, n := range spec.Nodes {
		nodes[i] = Object{
			"name":    String(n.Name),
			"kind":    String(n.Kind),
			"start":   String(n.Start),
			"end":     String(n.End),
			"message": String(n.Message),
			"error":   String(n.Error),
			"value":   String(n.Value),
		}
	}

	// Description is documentation and does not affect behaviour.
	return Object{
		"name":       String(spec.Name),
		"completion": String(completion),
		"nodes":      nodes,
	}
}

// TickValue converts a tick into its canonical form. RunID is left out so
// traces of different runs of the same chart compare equal.
func TickValue(t TickRecord) Object {
	nodes := make(Array, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = Object{
			"name":        String(n.Name),
			"kind":        String(n.Kind),
			"life_cycle":  String(n.LifeCycle),
			"observation": String(n.Observation),
		}
	}
	return Object{
		"tick":       Int(t.Tick),
		"status":     String(t.Status),
		"error":      String(t.Error),
		"aborted_by": String(t.AbortedBy),
		"started":    Strings(t.Started),
		"observed":   Strings(t.Observed),
		"nodes":      nodes,
	}
}
