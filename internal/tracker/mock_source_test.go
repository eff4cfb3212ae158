package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSourceFramesMatchConfiguredSensors(t *testing.T) {
	src := NewMockSource([]int{1, 2, 3, 4})

	f, err := src.Next()
	require.NoError(t, err)
	require.Len(t, f.Samples, 4)

	seen := map[int]bool{}
	for _, s := range f.Samples {
		assert.False(t, seen[s.SensorID], "sensor id %d repeated within frame", s.SensorID)
		seen[s.SensorID] = true
		assert.Equal(t, 0, s.Quality)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, src.Sensors())
}

func TestMockSourceTimestampsMonotonic(t *testing.T) {
	src := NewMockSource([]int{1})

	var last int64 = -1
	for i := 0; i < 10; i++ {
		f, err := src.Next()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f.T, last)
		last = f.T
	}
}
