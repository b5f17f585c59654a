package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   TokenStats
	}{
		{name: "empty", counts: nil, want: TokenStats{}},
		{name: "single", counts: []int{7}, want: TokenStats{Min: 7, Max: 7, Mean: 7, P95: 7}},
		{name: "unsorted", counts: []int{30, 10, 20}, want: TokenStats{Min: 10, Max: 30, Mean: 20, P95: 30}},
		{name: "mean rounded", counts: []int{1, 2, 2}, want: TokenStats{Min: 1, Max: 2, Mean: 1.67, P95: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeTokenStats(tt.counts))
		})
	}

	counts := make([]int, 100)
	for i := range counts {
		counts[i] = i + 1
	}
	assert.Equal(t, 95, computeTokenStats(counts).P95)
}
