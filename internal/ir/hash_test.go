package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChart() ChartSpec {
	return ChartSpec{
		Name:        "pick",
		Description: "pick an object",
		Nodes: []NodeSpec{
			{Name: "muh2", Kind: KindTrueMonitor},
			{Name: "muh", Kind: KindTrueMonitor, Start: "muh2"},
			{Name: "done", Kind: KindEndMotion, Start: "muh"},
		},
	}
}

func TestChartHashDeterminism(t *testing.T) {
	h1, err := ChartHash(sampleChart())
	require.NoError(t, err)
	h2, err := ChartHash(sampleChart())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ChartHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestChartHashIgnoresDescription(t *testing.T) {
	a := sampleChart()
	b := sampleChart()
	b.Description = "something else"

	assert.Equal(t, MustChartHash(a), MustChartHash(b))
}

func TestChartHashDefaultCompletion(t *testing.T) {
	a := sampleChart()
	b := sampleChart()
	b.Completion = CompletionAll

	assert.Equal(t, MustChartHash(a), MustChartHash(b), "empty completion means all")

	b.Completion = CompletionAny
	assert.NotEqual(t, MustChartHash(a), MustChartHash(b))
}

func TestChartHashNodeOrderMatters(t *testing.T) {
	a := sampleChart()
	b := sampleChart()
	b.Nodes[0], b.Nodes[1] = b.Nodes[1], b.Nodes[0]

	assert.NotEqual(t, MustChartHash(a), MustChartHash(b), "declaration order is evaluation order")
}

func TestChartHashNFC(t *testing.T) {
	a := ChartSpec{Name: "caf\u00e9", Nodes: []NodeSpec{{Name: "n", Kind: KindTrueMonitor}}}
	b := ChartSpec{Name: "cafe\u0301", Nodes: []NodeSpec{{Name: "n", Kind: KindTrueMonitor}}}

	assert.Equal(t, MustChartHash(a), MustChartHash(b))
}

func TestTraceHashExcludesRunID(t *testing.T) {
	ticks := func(runID string) []TickRecord {
		return []TickRecord{
			{RunID: runID, Tick: 1, Status: StatusContinuing, Started: []string{"a"}},
			{RunID: runID, Tick: 2, Status: StatusCompleted, Observed: []string{"a"},
				Nodes: []NodeState{{Name: "a", Kind: KindEndMotion, LifeCycle: "RUNNING", Observation: "true"}}},
		}
	}

	h1, err := TraceHash(ticks("run-1"))
	require.NoError(t, err)
	h2, err := TraceHash(ticks("run-2"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := ticks("run-1")
	changed[1].Nodes[0].Observation = "unknown"
	h3, err := TraceHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte("[]")
	assert.NotEqual(t, hashWithDomain(DomainChart, data), hashWithDomain(DomainTrace, data))
}
