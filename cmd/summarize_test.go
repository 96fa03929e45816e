package cmd

import (
	"testing"

	"github.com/corovcam/cubectl/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtMeasureStatistics(t *testing.T) {
	out := fmtMeasureStatistics([]util.MeasureStatistics{
		{Measure: "numberOfCareProviders", Count: 2, Sum: 3, Min: 1, Max: 2, Mean: 1.5, Std: 0.7071, Q50: 1, Q95: 2},
	})

	assert.Equal(t, "Measure		[name]			numberOfCareProviders\n"+
		"Values		[count, sum]		2, 3\n"+
		"Values		[min, mean, max]	1, 1.50, 2\n"+
		"Values		[std, 50, 95]		0.71, 1, 2\n", out)
}

func TestSummarizeCmd(t *testing.T) {
	stdout, _, err := execute(t, "summarize", writeCube(t, careProvidersCSV))

	require.NoError(t, err)
	assert.Contains(t, stdout, "Dataset		[id]			CareProviders\n")
	assert.Contains(t, stdout, "Code List	[county]	2\n")
	assert.Contains(t, stdout, "Code List	[fieldOfCare]	2\n")
	assert.Contains(t, stdout, "Values		[count, sum]		2, 3\n")
	assert.Contains(t, stdout, "Values		[min, mean, max]	1, 1.50, 2\n")
}
