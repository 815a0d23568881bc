package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForCoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 10_000} {
		hits := make([]int32, n)
		For(n, 16, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.EqualValues(t, 1, h, "n=%d index %d", n, i)
		}
	}
}

func TestForErrReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForErr(1000, 10, func(lo, hi int) error {
		if lo <= 500 && 500 < hi {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestExclusiveScan(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  []int
		total int
	}{
		{"empty", nil, nil, 0},
		{"none", []bool{false, false, false}, []int{0, 0, 0}, 0},
		{"all", []bool{true, true, true}, []int{0, 1, 2}, 3},
		{"mixed", []bool{false, true, false, true, true, false}, []int{0, 0, 1, 1, 2, 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]int, len(tt.flags))
			total := ExclusiveScan(len(tt.flags), 1, func(i int) bool { return tt.flags[i] }, out)
			assert.Equal(t, tt.total, total)
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, out)
			}
		})
	}
}

func TestExclusiveScanMatchesSerialAcrossChunks(t *testing.T) {
	const n = 50_000
	pred := func(i int) bool { return i%3 == 0 || i%7 == 0 }
	out := make([]int, n)
	total := ExclusiveScan(n, 64, pred, out)

	count := 0
	for i := 0; i < n; i++ {
		require.Equal(t, count, out[i], "index %d", i)
		if pred(i) {
			count++
		}
	}
	assert.Equal(t, count, total)
}
