package trinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var all = []Value{False, Unknown, True}

func TestAndTruthTable(t *testing.T) {
	tests := []struct {
		a, b Value
		want Value
	}{
		{True, True, True},
		{True, Unknown, Unknown},
		{True, False, False},
		{Unknown, Unknown, Unknown},
		{Unknown, False, False},
		{False, False, False},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_and_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, And(tt.a, tt.b))
			assert.Equal(t, tt.want, And(tt.b, tt.a), "conjunction must commute")
		})
	}
}

func TestOrTruthTable(t *testing.T) {
	tests := []struct {
		a, b Value
		want Value
	}{
		{True, True, True},
		{True, Unknown, True},
		{True, False, True},
		{Unknown, Unknown, Unknown},
		{Unknown, False, Unknown},
		{False, False, False},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_or_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Or(tt.a, tt.b))
			assert.Equal(t, tt.want, Or(tt.b, tt.a), "disjunction must commute")
		})
	}
}

func TestNot(t *testing.T) {
	assert.Equal(t, False, Not(True))
	assert.Equal(t, True, Not(False))
	assert.Equal(t, Unknown, Not(Unknown))

	for _, v := range all {
		assert.Equal(t, v, Not(Not(v)), "double negation of %s", v)
	}
}

func TestEmptyOperandsAreIdentities(t *testing.T) {
	assert.Equal(t, True, And())
	assert.Equal(t, False, Or())
}

func TestAlgebraLaws(t *testing.T) {
	for _, a := range all {
		assert.Equal(t, a, And(a, a), "idempotent and")
		assert.Equal(t, a, Or(a, a), "idempotent or")
		for _, b := range all {
			// De Morgan holds in Kleene logic.
			assert.Equal(t, Not(And(a, b)), Or(Not(a), Not(b)))
			assert.Equal(t, Not(Or(a, b)), And(Not(a), Not(b)))
			for _, c := range all {
				assert.Equal(t, And(And(a, b), c), And(a, And(b, c)))
				assert.Equal(t, Or(Or(a, b), c), Or(a, Or(b, c)))
				assert.Equal(t, And(a, b, c), And(c, b, a))
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"true", True},
		{"TRUE", True},
		{" false ", False},
		{"Unknown", Unknown},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Parse("maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")
}

func TestFromBool(t *testing.T) {
	assert.Equal(t, True, FromBool(true))
	assert.Equal(t, False, FromBool(false))
	assert.True(t, True.IsTrue())
	assert.False(t, Unknown.IsTrue())
}

func TestYAMLText(t *testing.T) {
	var doc struct {
		Observation Value `yaml:"observation"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("observation: unknown\n"), &doc))
	assert.Equal(t, Unknown, doc.Observation)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "observation: unknown\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("observation: sometimes\n"), &doc))
}

func TestInvalidValue(t *testing.T) {
	v := Value(7)
	assert.False(t, v.Valid())
	assert.Equal(t, "trinary(7)", v.String())
	_, err := v.MarshalText()
	assert.Error(t, err)
}
