package cube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	registry := NewRegistry()
	_, _ = registry.Register(County, "CZ0100")
	counties, _ := registry.Seal(County)

	builder := NewBuilder(counties)
	county, err := builder.DeclareDimension("county", County, counties, Label{Value: "County", Lang: "en"})
	require.NoError(t, err)
	year, err := builder.DeclareDimension("year", "Year", nil)
	require.NoError(t, err)
	population, err := builder.DeclareMeasure("meanPopulation", Integer)
	require.NoError(t, err)

	structure, err := builder.BuildStructure("structure", []*Dimension{county, year}, []*Measure{population})
	require.NoError(t, err)
	dataset, err := builder.CreateDataset("MeanPopulation2021", structure, Metadata{Issued: "2023-03-11"})
	require.NoError(t, err)
	obs := NewObservation("observation-0000")
	require.NoError(t, builder.AddObservations(obs))

	model, err := builder.Build()
	require.NoError(t, err)

	assert.True(t, county.Coded)
	assert.False(t, year.Coded)
	require.Len(t, structure.Components, 3)
	for _, c := range structure.Components {
		assert.True(t, c.Required)
		assert.NotEqual(t, RoleAttribute, c.Role)
	}
	assert.Equal(t, []*Dimension{county, year}, structure.Dimensions())
	assert.Equal(t, []*Measure{population}, structure.Measures())
	assert.Equal(t, []*Dataset{dataset}, obs.Datasets)
	assert.Same(t, structure, dataset.Structure())
	assert.Equal(t, []*CodeList{counties}, model.CodeLists)
	assert.Same(t, dataset, model.Dataset())
	assert.Equal(t, []*Observation{obs}, model.Observations)
}

func TestBuilder_DuplicateDimension(t *testing.T) {
	builder := NewBuilder()
	_, err := builder.DeclareDimension("county", County, nil)
	require.NoError(t, err)

	_, err = builder.DeclareDimension("county", Region, nil)

	var dupErr *DuplicateDimensionError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "county", dupErr.Name)
}

func TestBuilder_DuplicateMeasure(t *testing.T) {
	builder := NewBuilder()
	_, _ = builder.DeclareMeasure("count", Integer)

	_, err := builder.DeclareMeasure("count", Decimal)

	var dupErr *DuplicateMeasureError
	assert.True(t, errors.As(err, &dupErr))
}

func TestBuilder_DimensionCodeListCategoryMismatch(t *testing.T) {
	regions, _ := NewCodeList("region", Region)

	_, err := NewBuilder(regions).DeclareDimension("county", County, regions)

	assert.Error(t, err)
}

func TestBuilder_DuplicateStructure(t *testing.T) {
	builder := NewBuilder()
	dim, _ := builder.DeclareDimension("county", County, nil)
	measure, _ := builder.DeclareMeasure("count", Integer)
	_, err := builder.BuildStructure("structure", []*Dimension{dim}, []*Measure{measure})
	require.NoError(t, err)

	_, err = builder.BuildStructure("structure2", []*Dimension{dim}, []*Measure{measure})

	var dupErr *DuplicateStructureError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "structure", dupErr.Existing)
	assert.Equal(t, "structure2", dupErr.ID)
}

func TestBuilder_StructureWithForeignDimension(t *testing.T) {
	builder := NewBuilder()

	_, err := builder.BuildStructure("structure", []*Dimension{{Name: "county"}}, nil)

	assert.Error(t, err)
}

func TestBuilder_DatasetNeedsOwnStructure(t *testing.T) {
	builder := NewBuilder()

	_, err := builder.CreateDataset("ds", &StructureDefinition{ID: "other"}, Metadata{})
	assert.Error(t, err)
	_, err = builder.CreateDataset("ds", nil, Metadata{})
	assert.Error(t, err)
}

func TestBuilder_DuplicateDataset(t *testing.T) {
	builder := NewBuilder()
	structure, _ := builder.BuildStructure("structure", nil, nil)
	_, err := builder.CreateDataset("a", structure, Metadata{})
	require.NoError(t, err)

	_, err = builder.CreateDataset("b", structure, Metadata{})

	var dupErr *DuplicateDatasetError
	assert.True(t, errors.As(err, &dupErr))
}

func TestBuilder_ObservationsBeforeDataset(t *testing.T) {
	assert.Error(t, NewBuilder().AddObservations(NewObservation("o")))
}

func TestBuilder_SealedAfterBuild(t *testing.T) {
	builder := NewBuilder()
	structure, _ := builder.BuildStructure("structure", nil, nil)
	_, _ = builder.CreateDataset("ds", structure, Metadata{})
	_, err := builder.Build()
	require.NoError(t, err)

	_, err = builder.DeclareDimension("late", County, nil)
	assert.ErrorIs(t, err, ErrModelSealed)
	_, err = builder.DeclareMeasure("late", Integer)
	assert.ErrorIs(t, err, ErrModelSealed)
	assert.ErrorIs(t, builder.AddObservations(NewObservation("o")), ErrModelSealed)
	_, err = builder.Build()
	assert.ErrorIs(t, err, ErrModelSealed)
}

func TestBuilder_BuildWithoutDataset(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.Error(t, err)
}
