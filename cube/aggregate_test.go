package cube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	county, field *Dimension
	measure       *Measure
}

func newFixture(t *testing.T, counties []string, fields []string) fixture {
	t.Helper()
	registry := NewRegistry()
	for _, c := range counties {
		_, err := registry.Register(County, c)
		require.NoError(t, err)
	}
	for _, f := range fields {
		code, err := registry.AssignSequentialCode(FieldOfCare, f)
		require.NoError(t, err)
		_, err = registry.Register(FieldOfCare, code, Label{Value: f, Lang: "cs"})
		require.NoError(t, err)
	}
	countyList, _ := registry.Seal(County)
	fieldList, _ := registry.Seal(FieldOfCare)

	builder := NewBuilder(countyList, fieldList)
	county, _ := builder.DeclareDimension("county", County, countyList)
	field, _ := builder.DeclareDimension("fieldOfCare", FieldOfCare, fieldList)
	measure, _ := builder.DeclareMeasure("numberOfCareProviders", Integer)
	return fixture{county: county, field: field, measure: measure}
}

func (f fixture) countAggregator() *Aggregator {
	return &Aggregator{
		GroupBy: []GroupBy{{Dimension: f.county, Column: "county"}, {Dimension: f.field, Column: "field"}},
		Rule:    Rule{Kind: Count, Measure: f.measure},
	}
}

func TestAggregate_Count(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"X", "Y"})
	rows := []Row{
		{"county": "A", "field": "X"},
		{"county": "A", "field": "X"},
		{"county": "B", "field": "Y"},
	}

	result, err := f.countAggregator().Aggregate(rows)
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Observations, 2)
	first, second := result.Observations[0], result.Observations[1]
	assert.Equal(t, "observation-0000", first.ID)
	assert.Equal(t, "A", first.Dimensions[f.county].String())
	assert.Equal(t, "X", first.Dimensions[f.field].Code.Labels.Get("cs"))
	assert.Equal(t, 2.0, first.Measures[f.measure])
	assert.Equal(t, "observation-0001", second.ID)
	assert.Equal(t, "B", second.Dimensions[f.county].String())
	assert.Equal(t, 1.0, second.Measures[f.measure])
}

func TestAggregate_UnmappedRow(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"X", "Y"})
	rows := []Row{
		{"county": "A", "field": "X"},
		{"county": "C", "field": "X"},
		{"county": "B", "field": "Y"},
	}

	result, err := f.countAggregator().Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	var unmapped *UnmappedRowError
	require.True(t, errors.As(result.Errors[0], &unmapped))
	assert.Equal(t, 1, unmapped.Row)
	assert.Equal(t, "C", unmapped.Value)
	assert.Equal(t, County, unmapped.Category)
	assert.Len(t, result.Observations, 2)
}

func TestAggregate_MissingColumn(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"X"})

	result, err := f.countAggregator().Aggregate([]Row{{"county": "A"}, {"county": " ", "field": "X"}})
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	var missing *MissingColumnError
	require.True(t, errors.As(result.Errors[0], &missing))
	assert.Equal(t, "field", missing.Column)
	require.True(t, errors.As(result.Errors[1], &missing))
	assert.Equal(t, "county", missing.Column)
	assert.Empty(t, result.Observations)
}

func TestAggregate_Passthrough(t *testing.T) {
	f := newFixture(t, []string{"CZ0100", "CZ0201"}, nil)
	aggregator := &Aggregator{
		GroupBy:  []GroupBy{{Dimension: f.county, Column: "okres_lau"}},
		Rule:     Rule{Kind: Passthrough, Measure: f.measure, Column: "hodnota"},
		IDPrefix: "obs-",
		IDWidth:  2,
	}
	rows := []Row{
		{"okres_lau": "CZ0201", "hodnota": "96 021"},
		{"okres_lau": "CZ0201", "hodnota": "96021"},
		{"okres_lau": "CZ0100", "hodnota": "1275406"},
		{"okres_lau": "CZ0201", "hodnota": "1"},
		{"okres_lau": "CZ0100"},
	}

	result, err := aggregator.Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, result.Observations, 2)
	assert.Equal(t, "obs-00", result.Observations[0].ID)
	assert.Equal(t, 1275406.0, result.Observations[0].Measures[f.measure])
	assert.Equal(t, 96021.0, result.Observations[1].Measures[f.measure])

	require.Len(t, result.Errors, 3)
	var invalid *InvalidValueError
	assert.True(t, errors.As(result.Errors[0], &invalid))
	var duplicate *DuplicateKeyError
	require.True(t, errors.As(result.Errors[1], &duplicate))
	assert.Equal(t, 3, duplicate.Row)
	assert.Equal(t, 1, duplicate.FirstRow)
	var missing *MissingColumnError
	assert.True(t, errors.As(result.Errors[2], &missing))
}

func TestAggregate_PassthroughRejectsUnrepresentableValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		err   error
	}{
		{"NaN", "NaN", ErrNotFinite},
		{"Inf", "Inf", ErrNotFinite},
		{"NegativeInf", "-Inf", ErrNotFinite},
		{"Fraction", "99000.7", ErrNotInteger},
		{"OutOfRange", "1e300", ErrNotInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []string{"CZ0201"}, nil)
			aggregator := &Aggregator{
				GroupBy: []GroupBy{{Dimension: f.county, Column: "okres_lau"}},
				Rule:    Rule{Kind: Passthrough, Measure: f.measure, Column: "hodnota"},
			}

			result, err := aggregator.Aggregate([]Row{{"okres_lau": "CZ0201", "hodnota": tt.value}})
			require.NoError(t, err)

			assert.Empty(t, result.Observations)
			require.Len(t, result.Errors, 1)
			var invalid *InvalidValueError
			require.True(t, errors.As(result.Errors[0], &invalid))
			assert.Equal(t, tt.value, invalid.Value)
			assert.ErrorIs(t, result.Errors[0], tt.err)
		})
	}
}

func TestAggregate_PassthroughDecimal(t *testing.T) {
	builder := NewBuilder()
	region, _ := builder.DeclareDimension("region", Region, nil)
	share, _ := builder.DeclareMeasure("share", Decimal)
	aggregator := &Aggregator{
		GroupBy: []GroupBy{{Dimension: region, Column: "region"}},
		Rule:    Rule{Kind: Passthrough, Measure: share, Column: "share"},
	}

	result, err := aggregator.Aggregate([]Row{
		{"region": "CZ010", "share": "99000.7"},
		{"region": "CZ020", "share": "NaN"},
	})
	require.NoError(t, err)

	require.Len(t, result.Observations, 1)
	assert.Equal(t, 99000.7, result.Observations[0].Measures[share])
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], ErrNotFinite)
}

func TestAggregate_RowIndex(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, []string{"X"})
	aggregator := f.countAggregator()
	aggregator.RowIndex = []int{0, 3, 5}
	var seen []int
	aggregator.OnRow = func(row int) { seen = append(seen, row) }

	result, err := aggregator.Aggregate([]Row{
		{"county": "A", "field": "X"},
		{"county": "C", "field": "X"},
		{"county": "B"},
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	var unmapped *UnmappedRowError
	require.True(t, errors.As(result.Errors[0], &unmapped))
	assert.Equal(t, 3, unmapped.Row)
	var missing *MissingColumnError
	require.True(t, errors.As(result.Errors[1], &missing))
	assert.Equal(t, 5, missing.Row)
	assert.Equal(t, []int{0, 3, 5}, seen)

	aggregator.RowIndex = []int{0}
	_, err = aggregator.Aggregate([]Row{{"county": "A", "field": "X"}, {"county": "B", "field": "X"}})
	assert.Error(t, err)
}

func TestAggregate_UncodedDimension(t *testing.T) {
	builder := NewBuilder()
	year, _ := builder.DeclareDimension("year", "Year", nil)
	measure, _ := builder.DeclareMeasure("count", Integer)
	aggregator := &Aggregator{
		GroupBy: []GroupBy{{Dimension: year, Column: "rok"}},
		Rule:    Rule{Kind: Count, Measure: measure},
	}

	result, err := aggregator.Aggregate([]Row{{"rok": "2021"}, {"rok": "2020"}, {"rok": "2021"}})
	require.NoError(t, err)

	require.Len(t, result.Observations, 2)
	assert.Equal(t, LiteralValue("2020"), result.Observations[0].Dimensions[year])
	assert.Equal(t, 2.0, result.Observations[1].Measures[measure])
}

func TestAggregate_OrdersSequentialCodesNumerically(t *testing.T) {
	fields := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	f := newFixture(t, []string{"A"}, fields)
	rows := make([]Row, 0, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		rows = append(rows, Row{"county": "A", "field": fields[i]})
	}

	result, err := f.countAggregator().Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, result.Observations, len(fields))
	for i, obs := range result.Observations {
		assert.Equal(t, fields[i], obs.Dimensions[f.field].Code.Labels.Get("cs"))
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	rows := []Row{
		{"county": "B", "field": "Y"},
		{"county": "A", "field": "X"},
		{"county": "A", "field": "Y"},
		{"county": "A", "field": "X"},
	}
	run := func() []string {
		f := newFixture(t, []string{"A", "B"}, []string{"X", "Y"})
		result, err := f.countAggregator().Aggregate(rows)
		require.NoError(t, err)
		var out []string
		for _, obs := range result.Observations {
			out = append(out, obs.ID+" "+obs.Dimensions[f.county].Key()+" "+obs.Dimensions[f.field].Key()+" "+
				f.measure.Type.Format(obs.Measures[f.measure]))
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestAggregate_MixedCodesDeterministic(t *testing.T) {
	codes := []string{"2", "10", "1a", "01", "1"}
	run := func(order []int) []string {
		f := newFixture(t, codes, []string{"X"})
		rows := make([]Row, 0, len(order))
		for _, i := range order {
			rows = append(rows, Row{"county": codes[i], "field": "X"})
		}
		result, err := f.countAggregator().Aggregate(rows)
		require.NoError(t, err)
		var out []string
		for _, obs := range result.Observations {
			out = append(out, obs.ID+" "+obs.Dimensions[f.county].String())
		}
		return out
	}

	want := []string{
		"observation-0000 01",
		"observation-0001 1",
		"observation-0002 2",
		"observation-0003 10",
		"observation-0004 1a",
	}
	assert.Equal(t, want, run([]int{0, 1, 2, 3, 4}))
	assert.Equal(t, want, run([]int{4, 3, 2, 1, 0}))
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, run([]int{2, 0, 4, 1, 3}))
	}
}

func TestAggregate_OnRow(t *testing.T) {
	f := newFixture(t, []string{"A"}, []string{"X"})
	aggregator := f.countAggregator()
	var seen []int
	aggregator.OnRow = func(row int) { seen = append(seen, row) }

	_, err := aggregator.Aggregate([]Row{{"county": "A", "field": "X"}, {"county": "Z", "field": "X"}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, seen)
}

func TestAggregate_InvalidAggregator(t *testing.T) {
	f := newFixture(t, []string{"A"}, nil)

	_, err := (&Aggregator{Rule: Rule{Measure: f.measure}}).Aggregate(nil)
	assert.Error(t, err)
	_, err = (&Aggregator{GroupBy: []GroupBy{{Dimension: f.county}}}).Aggregate(nil)
	assert.Error(t, err)
	_, err = (&Aggregator{
		GroupBy: []GroupBy{{Dimension: f.county}},
		Rule:    Rule{Kind: Passthrough, Measure: f.measure},
	}).Aggregate(nil)
	assert.Error(t, err)
}

func TestParseRuleKind(t *testing.T) {
	kind, err := ParseRuleKind("passthrough")
	require.NoError(t, err)
	assert.Equal(t, Passthrough, kind)
	assert.Equal(t, "passthrough", kind.String())

	_, err = ParseRuleKind("sum")
	assert.Error(t, err)
}
