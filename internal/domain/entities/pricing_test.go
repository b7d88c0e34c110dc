package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSummaryQuartilesByTruncation(t *testing.T) {
	summary := NewPriceSummary([]float64{40, 10}, []float64{30, 20}, nil)
	require.NotNil(t, summary)

	assert.Equal(t, 10.0, summary.Min)
	assert.Equal(t, 20.0, summary.Q1)
	assert.Equal(t, 30.0, summary.Median)
	assert.Equal(t, 40.0, summary.Q3)
	assert.Equal(t, 40.0, summary.Max)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 2, summary.BrandCount)
	assert.Equal(t, 2, summary.GenericCount)
	assert.Nil(t, summary.Ceiling)
}

func TestNewPriceSummarySinglePrice(t *testing.T) {
	ceiling := 9.5
	summary := NewPriceSummary([]float64{12}, nil, &ceiling)
	require.NotNil(t, summary)

	assert.Equal(t, 12.0, summary.Min)
	assert.Equal(t, 12.0, summary.Q1)
	assert.Equal(t, 12.0, summary.Median)
	assert.Equal(t, 12.0, summary.Q3)
	assert.Equal(t, 12.0, summary.Max)
	assert.Equal(t, 1, summary.Count)
	require.NotNil(t, summary.Ceiling)
	assert.Equal(t, 9.5, *summary.Ceiling)
}

func TestNewPriceSummaryNoPrices(t *testing.T) {
	assert.Nil(t, NewPriceSummary(nil, nil, nil))
}
