package cube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Register(County, "CZ0100", Label{Value: "Praha", Lang: "cs"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := registry.Register(County, "CZ0100", Label{Value: "Prague", Lang: "en"})
		require.NoError(t, err)
		assert.Same(t, first, again)
	}

	list, err := registry.Seal(County)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, "Praha", first.Labels.Get("cs"))
	assert.True(t, list.Contains(first))
}

func TestRegister_SameCodeDifferentCategory(t *testing.T) {
	registry := NewRegistry()

	county, err := registry.Register(County, "1")
	require.NoError(t, err)
	region, err := registry.Register(Region, "1")
	require.NoError(t, err)

	assert.NotSame(t, county, region)
	assert.NotEqual(t, county.Key(), region.Key())
}

func TestRegister_EmptyCode(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Register(County, "")
	assert.Error(t, err)
}

func TestRegister_AfterSeal(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Register(Region, "CZ010")
	require.NoError(t, err)
	_, err = registry.Seal(Region)
	require.NoError(t, err)

	_, err = registry.Register(Region, "CZ020")

	var sealedErr *RegistrySealedError
	require.True(t, errors.As(err, &sealedErr))
	assert.Equal(t, Region, sealedErr.Category)
	assert.Equal(t, "CZ020", sealedErr.Value)

	_, err = registry.AssignSequentialCode(Region, "Praha")
	assert.True(t, errors.As(err, &sealedErr))
}

func TestRegister_OtherCategoryStaysOpen(t *testing.T) {
	registry := NewRegistry()
	_, _ = registry.Register(Region, "CZ010")
	_, _ = registry.Seal(Region)

	_, err := registry.Register(County, "CZ0100")

	assert.NoError(t, err)
	assert.True(t, registry.Sealed(Region))
	assert.False(t, registry.Sealed(County))
}

func TestAssignSequentialCode(t *testing.T) {
	registry := NewRegistry()
	input := []string{"praktický lékař", "zubní lékař", "praktický lékař", "gynekologie", "zubní lékař"}

	codes := make([]string, 0, len(input))
	for _, raw := range input {
		code, err := registry.AssignSequentialCode(FieldOfCare, raw)
		require.NoError(t, err)
		codes = append(codes, code)
	}

	assert.Equal(t, []string{"0", "1", "0", "2", "1"}, codes)
}

func TestAssignSequentialCode_NoNormalization(t *testing.T) {
	registry := NewRegistry()

	a, _ := registry.AssignSequentialCode(FieldOfCare, "Chirurgie")
	b, _ := registry.AssignSequentialCode(FieldOfCare, "chirurgie")
	c, _ := registry.AssignSequentialCode(FieldOfCare, "Chirurgie ")

	assert.Equal(t, "0", a)
	assert.Equal(t, "1", b)
	assert.Equal(t, "2", c)
}

func TestSeal_ResolvesAliases(t *testing.T) {
	registry := NewRegistry()
	code, _ := registry.AssignSequentialCode(FieldOfCare, "zubní lékař")
	resource, err := registry.Register(FieldOfCare, code, Label{Value: "zubní lékař", Lang: "cs"})
	require.NoError(t, err)

	list, err := registry.Seal(FieldOfCare)
	require.NoError(t, err)

	byRaw, ok := list.Resolve("zubní lékař")
	assert.True(t, ok)
	assert.Same(t, resource, byRaw)
	byCode, ok := list.Resolve("0")
	assert.True(t, ok)
	assert.Same(t, resource, byCode)
	_, ok = list.Resolve("neznámý")
	assert.False(t, ok)
}

func TestSeal_UnknownCategory(t *testing.T) {
	_, err := NewRegistry().Seal(County)
	assert.Error(t, err)
}

func TestSealAll_FirstUseOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Name(Region, "region", Label{Value: "Region - codelist", Lang: "en"}))
	_, _ = registry.Register(County, "CZ0100")

	lists := registry.SealAll()

	require.Len(t, lists, 2)
	assert.Equal(t, "region", lists[0].Name)
	assert.Equal(t, "Region - codelist", lists[0].Labels.Get("en"))
	assert.Equal(t, County, lists[1].Category)
	assert.True(t, registry.Sealed(County))
}

func TestCodeList_ContainsForeignResource(t *testing.T) {
	registry := NewRegistry()
	_, _ = registry.Register(County, "CZ0100")
	list, _ := registry.Seal(County)

	forged := &CodedResource{Category: County, ID: "CZ0100"}

	assert.False(t, list.Contains(forged))
	assert.False(t, list.Contains(nil))
	assert.False(t, (*CodeList)(nil).Contains(forged))
}

func TestNewCodeList(t *testing.T) {
	a := &CodedResource{Category: County, ID: "A"}
	b := &CodedResource{Category: County, ID: "B"}

	list, err := NewCodeList("county", County, a, b)
	require.NoError(t, err)
	assert.Equal(t, []*CodedResource{a, b}, list.Members())

	_, err = NewCodeList("county", County, a, a)
	assert.Error(t, err)
	_, err = NewCodeList("county", Region, a)
	assert.Error(t, err)
}

func TestCompareCodes(t *testing.T) {
	assert.Equal(t, -1, compareCodes("2", "10"))
	assert.Equal(t, 1, compareCodes("CZ0200", "CZ0100"))
	assert.Equal(t, 0, compareCodes("7", "7"))
	assert.Equal(t, -1, compareCodes("10", "A"))
	assert.Equal(t, -1, compareCodes("10", "1a"))
	assert.Equal(t, 1, compareCodes("1a", "2"))
	assert.Equal(t, -1, compareCodes("01", "1"))
	assert.Equal(t, 1, compareCodes("1", "01"))
}

func TestCompareCodes_TotalOrder(t *testing.T) {
	codes := []string{"2", "10", "1a", "01", "1", "A", "CZ0100"}
	for _, a := range codes {
		for _, b := range codes {
			assert.Equal(t, -compareCodes(b, a), compareCodes(a, b), "%s vs %s", a, b)
			for _, c := range codes {
				if compareCodes(a, b) < 0 && compareCodes(b, c) < 0 {
					assert.Equal(t, -1, compareCodes(a, c), "%s < %s < %s", a, b, c)
				}
			}
		}
	}
}

func TestName_SealedCategory(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Name(Region, "region"))
	_, err := registry.Seal(Region)
	require.NoError(t, err)

	err = registry.Name(Region, "kraj", Label{Value: "Kraj", Lang: "cs"})

	var sealed *RegistrySealedError
	require.True(t, errors.As(err, &sealed))
	assert.Equal(t, Region, sealed.Category)
	list, _ := registry.Seal(Region)
	assert.Equal(t, "region", list.Name)
	assert.Empty(t, list.Labels)
}
