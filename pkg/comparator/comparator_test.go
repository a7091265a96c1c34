package comparator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSampleIndices(t *testing.T) {
	idx := SampleIndices(250, 100)
	require.Len(t, idx, 125)
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, 248, idx[len(idx)-1])

	assert.Len(t, SampleIndices(1000, 100), 100)
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, SampleIndices(5, 100)); diff != "" {
		t.Errorf("SampleIndices mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, SampleIndices(0, 100))
}

func line(n int, offsetY float64) []geo.Position {
	origin := geo.NewPosition(47.47, 19.05)
	res := make([]geo.Position, n)
	for i := range res {
		res[i] = geo.FromPlanar(origin.X+float64(i)*10, origin.Y+offsetY)
	}
	return res
}

func TestCompareConstantOffset(t *testing.T) {
	c := NewComparator(100, zap.NewNop())
	gt := line(250, 0)
	trajectory := line(50, 3)

	res, err := c.Compare(trajectory, gt)
	require.NoError(t, err)
	assert.Len(t, res.Errors, 125)
	assert.Len(t, res.Matched, 125)

	// ground truth points beyond the end of the trajectory are further away
	assert.InDelta(t, 3, res.Errors[0], 1e-6)
	assert.Greater(t, res.Errors[124], 3.0)
	assert.Greater(t, res.Mean, 3.0)
	assert.Greater(t, res.StdDev, 0.0)
}

func TestCompareGlobalNearestNeighbour(t *testing.T) {
	origin := geo.NewPosition(47.47, 19.05)
	at := func(x, y float64) geo.Position { return geo.FromPlanar(origin.X+x, origin.Y+y) }

	// trajectory runs away and comes back, the closest point is near the end
	trajectory := []geo.Position{at(0, 100), at(500, 100), at(1000, 100), at(10, 1)}
	gt := []geo.Position{at(0, 0), at(1000, 0)}

	res, err := NewComparator(100, zap.NewNop()).Compare(trajectory, gt)
	require.NoError(t, err)
	assert.InDelta(t, 10.0498756, res.Errors[0], 1e-6)
	assert.InDelta(t, 100, res.Errors[1], 1e-6)
	assert.Equal(t, trajectory[3], res.Matched[0])
	assert.Equal(t, trajectory[2], res.Matched[1])
	assert.InDelta(t, (10.0498756+100)/2, res.Mean, 1e-6)
	assert.Equal(t, []int{0, 1}, res.SampledIndices)
}

func TestCompareErrors(t *testing.T) {
	c := NewComparator(0, zap.NewNop())

	_, err := c.Compare(nil, line(10, 0))
	assert.ErrorIs(t, err, ErrEmptyTrace)
	_, err = c.Compare(line(10, 0), nil)
	assert.ErrorIs(t, err, ErrEmptyTrace)
	_, err = c.Compare(line(10, 0), line(1, 0))
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}
