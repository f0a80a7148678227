package clock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEveryLiteral(t *testing.T) {
	cond, err := ParseConditionLiteral([]byte(`{"type": "every", "period": 10}`))
	require.NoError(t, err)
	assert.Equal(t, Every{Period: 10}, cond)
}

func TestParsePartitionEqualsLiteral(t *testing.T) {
	cond, err := ParseConditionLiteral([]byte(`{"type": "partition_equals", "name": "hour", "value": 12}`))
	require.NoError(t, err)
	assert.Equal(t, PartitionEquals{Name: "hour", Value: 12}, cond)
}

func TestParsePartitionModuloLiteral(t *testing.T) {
	cond, err := ParseConditionLiteral([]byte(`{"type": "partition_modulo", "name": "sec", "modulus": 2, "remainder": 1}`))
	require.NoError(t, err)
	assert.Equal(t, PartitionModulo{Name: "sec", Modulus: 2, Remainder: 1}, cond)
}

func TestParseTickRangeLiteral(t *testing.T) {
	cond, err := ParseConditionLiteral([]byte(`{"type": "tick_range", "start": 5, "end": 9}`))
	require.NoError(t, err)
	assert.Equal(t, TickRange{Start: 5, End: 9}, cond)
}

func TestParseNestedLiteral(t *testing.T) {
	literal := `{
		"type": "or",
		"conditions": [
			{"type": "not", "condition": {"type": "every", "period": 2}},
			{"type": "and", "conditions": [
				{"type": "partition_equals", "name": "min", "value": 0},
				{"type": "tick_range", "start": 0, "end": 100}
			]}
		]
	}`

	cond, err := ParseConditionLiteral([]byte(literal))
	require.NoError(t, err)

	want := Or{Conditions: []Condition{
		Not{Condition: Every{Period: 2}},
		And{Conditions: []Condition{
			PartitionEquals{Name: "min", Value: 0},
			TickRange{Start: 0, End: 100},
		}},
	}}
	assert.Equal(t, want, cond)
}

// TestLiteralEvaluatesLikeNative drives a literal-built tree and its
// natively constructed twin across a tick window and requires
// identical verdicts everywhere.
func TestLiteralEvaluatesLikeNative(t *testing.T) {
	literal := `{
		"type": "and",
		"conditions": [
			{"type": "or", "conditions": [
				{"type": "every", "period": 3},
				{"type": "partition_modulo", "name": "sec", "modulus": 4, "remainder": 1}
			]},
			{"type": "not", "condition": {"type": "tick_range", "start": 10, "end": 20}}
		]
	}`

	parsed, err := ParseConditionLiteral([]byte(literal))
	require.NoError(t, err)

	native := And{Conditions: []Condition{
		Or{Conditions: []Condition{
			Every{Period: 3},
			PartitionModulo{Name: "sec", Modulus: 4, Remainder: 1},
		}},
		Not{Condition: TickRange{Start: 10, End: 20}},
	}}

	for tick := uint64(0); tick <= 60; tick++ {
		snap := testSnapshot(tick, map[string]uint64{"sec": tick % 60})
		assert.Equal(t,
			Eval(native, tick, &snap),
			Eval(parsed, tick, &snap),
			"tick %d", tick)
	}
}

func TestConditionFromValueAcceptsDecodedYAMLShapes(t *testing.T) {
	// YAML decoders produce map[string]any with int values.
	cond, err := ConditionFromValue(map[string]any{
		"type": "and",
		"conditions": []any{
			map[string]any{"type": "every", "period": 5},
			map[string]any{"type": "partition_equals", "name": "sec", "value": 0},
		},
	})
	require.NoError(t, err)

	want := And{Conditions: []Condition{
		Every{Period: 5},
		PartitionEquals{Name: "sec", Value: 0},
	}}
	assert.Equal(t, want, cond)
}

func TestLiteralRejectsUnknownType(t *testing.T) {
	_, err := ParseConditionLiteral([]byte(`{"type": "sometimes", "period": 2}`))
	require.Error(t, err)

	var le *LiteralError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "sometimes")
}

func TestLiteralRejectsMissingFields(t *testing.T) {
	cases := []string{
		`{"period": 2}`,
		`{"type": "every"}`,
		`{"type": "partition_equals", "value": 3}`,
		`{"type": "partition_modulo", "name": "sec", "modulus": 2}`,
		`{"type": "tick_range", "start": 1}`,
		`{"type": "not"}`,
		`{"type": "and"}`,
		`{"type": "or"}`,
	}
	for _, literal := range cases {
		_, err := ParseConditionLiteral([]byte(literal))
		assert.Error(t, err, "literal %s", literal)
	}
}

func TestLiteralRejectsFloats(t *testing.T) {
	_, err := ParseConditionLiteral([]byte(`{"type": "every", "period": 2.5}`))
	require.Error(t, err)

	_, err = ParseConditionLiteral([]byte(`{"type": "every", "period": 2.0}`))
	require.Error(t, err, "integral floats are still floats")
}

func TestLiteralRejectsNegatives(t *testing.T) {
	_, err := ParseConditionLiteral([]byte(`{"type": "every", "period": -1}`))
	require.Error(t, err)
}

func TestLiteralRejectsWrongShapes(t *testing.T) {
	cases := []string{
		`[1, 2]`,
		`"every"`,
		`{"type": 7}`,
		`{"type": "and", "conditions": {"type": "every", "period": 1}}`,
		`{"type": "not", "condition": [1]}`,
		`{"type": "partition_equals", "name": 3, "value": 1}`,
	}
	for _, literal := range cases {
		_, err := ParseConditionLiteral([]byte(literal))
		assert.Error(t, err, "literal %s", literal)
	}
}

func TestLiteralErrorReportsPath(t *testing.T) {
	_, err := ParseConditionLiteral([]byte(
		`{"type": "and", "conditions": [{"type": "every", "period": 1}, {"type": "every"}]}`))
	require.Error(t, err)

	var le *LiteralError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "conditions[1].period", le.Path)
}

func TestLiteralLargeUint64RoundTrips(t *testing.T) {
	// 2^64 - 1 survives json.Number decoding without precision loss.
	literal := `{"type": "tick_range", "start": 0, "end": 18446744073709551615}`
	cond, err := ParseConditionLiteral([]byte(literal))
	require.NoError(t, err)
	assert.Equal(t, TickRange{Start: 0, End: math.MaxUint64}, cond)
}
