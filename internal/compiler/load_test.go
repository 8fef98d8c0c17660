package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/ir"
)

const twoCharts = `
package charts

chart: pick: {
	description: "pick an object"
	node: {
		muh2: kind: "true_monitor"
		muh3: kind: "true_monitor"
		muh: {kind: "true_monitor", start: "muh3 or muh2"}
		done: {kind: "end_motion", start: "muh"}
	}
}

chart: place: {
	completion: "any"
	node: {
		a: kind: "true_monitor"
		done: {kind: "end_motion", start: "a"}
	}
}
`

func writeCUE(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
}

func TestLoadCharts(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "charts.cue", twoCharts)

	result, errs := LoadCharts(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, []string{"pick", "place"}, result.ChartNames())

	pick, ok := result.Chart("pick")
	require.True(t, ok)
	assert.Equal(t, "pick an object", pick.Description)
	assert.Equal(t, []string{"muh2", "muh3", "muh", "done"}, pick.NodeNames())

	place, ok := result.Chart("place")
	require.True(t, ok)
	assert.Equal(t, ir.CompletionAny, place.Completion)

	_, ok = result.Chart("missing")
	assert.False(t, ok)
}

func TestLoadChartsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "a.cue", "package charts\n\nchart: a: node: x: kind: \"end_motion\"\n")
	writeCUE(t, dir, "b.cue", "package charts\n\nchart: b: node: y: kind: \"end_motion\"\n")

	result, errs := LoadCharts(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	assert.Equal(t, 2, result.FileCount)
	assert.ElementsMatch(t, []string{"a", "b"}, result.ChartNames())
}

func TestLoadChartsErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			setup:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantCode: ErrCodeNotFound,
		},
		{
			name: "not a directory",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeCUE(t, dir, "x.cue", "package charts\n")
				return filepath.Join(dir, "x.cue")
			},
			wantCode: ErrCodeNotFound,
		},
		{
			name: "no cue files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeCUE(t, dir, "notes.txt", "not a cue file")
				return dir
			},
			wantCode: ErrCodeNoFiles,
		},
		{
			name: "syntax error",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeCUE(t, dir, "bad.cue", "package charts\n\nchart: {{{\n")
				return dir
			},
			wantCode: ErrCodeLoadFailed,
		},
		{
			name: "no chart struct",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeCUE(t, dir, "empty.cue", "package charts\n\nother: 1\n")
				return dir
			},
			wantCode: ErrCodeNoCharts,
		},
		{
			name: "chart without nodes",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeCUE(t, dir, "c.cue", "package charts\n\nchart: empty: description: \"x\"\n")
				return dir
			},
			wantCode: ErrChartNoNodes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := LoadCharts(tt.setup(t), LoadModeCollectAll)
			require.NotEmpty(t, errs)

			var loadErr *LoadError
			require.True(t, errors.As(errs[0], &loadErr), "got %T: %v", errs[0], errs[0])
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestLoadChartsModes(t *testing.T) {
	src := `
chart: bad1: node: a: {kind: "true_monitor", bogus: 1}
chart: good: node: b: kind: "end_motion"
chart: bad2: node: c: {}
`
	result, errs := LoadChartsString(src, LoadModeCollectAll)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"good"}, result.ChartNames())

	result, errs = LoadChartsString(src, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Empty(t, result.Charts)
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())

	result, errs := LoadChartsString("chart: p: node: a: {kind: \"print\", colour: \"red\"}", LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Empty(t, result.Charts)
	assert.Contains(t, errs[0].Error(), "unknown node field")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"node":              ErrChartNoNodes,
		"completion":        ErrInvalidCompletion,
		"node.pick.kind":    ErrUnknownKind,
		"node.pick.start":   ErrConditionSyntax,
		"node.pick.end":     ErrConditionSyntax,
		"node.cow.message":  ErrInvalidPayload,
		"node.sensor.value": ErrInvalidPayload,
		"node.pick.colour":  ErrCodeGeneric,
		"cue":               ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
