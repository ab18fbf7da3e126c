package series_test

import (
	"testing"

	"github.com/amirasaad/tokenswap/pkg/series"
	"github.com/stretchr/testify/assert"
)

func TestStrategiesAgree(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{5, 15},
		{1, 1},
		{0, 0},
		{-3, 0},
		{10, 55},
		{1000, 500500},
	}
	for _, s := range series.Strategies {
		t.Run(s.Name, func(t *testing.T) {
			for _, tt := range tests {
				assert.Equal(t, tt.want, s.Sum(tt.n), "n=%d", tt.n)
			}
		})
	}
}

func TestSumFormula_Large(t *testing.T) {
	assert.Equal(t, series.SumLoop(100_001), series.SumFormula(100_001))
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, series.CheckRange(-1))
	assert.NoError(t, series.CheckRange(series.MaxN))
	assert.ErrorIs(t, series.CheckRange(series.MaxN+1), series.ErrOutOfRange)
	assert.Equal(t, series.SumFormula(series.MaxN), series.SumRecursive(series.MaxN))
}
