package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/motionchart/internal/ir"
)

// marshalNames serializes a name list as a JSON array. nil becomes [].
func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}

// marshalChart serializes chart IR for the charts table.
func marshalChart(spec ir.ChartSpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshal chart: %w", err)
	}
	return string(data), nil
}

func unmarshalChart(data string) (ir.ChartSpec, error) {
	var spec ir.ChartSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.ChartSpec{}, fmt.Errorf("unmarshal chart: %w", err)
	}
	return spec, nil
}
