package mapmatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeIndex struct {
	match        roadnetwork.EdgeMatch
	intersection float64
	err          error
}

func (f *fakeIndex) NearestEdge(ctx context.Context, pos geo.Position, heading float64) (roadnetwork.EdgeMatch, error) {
	return f.match, f.err
}

func (f *fakeIndex) DistanceToNearestIntersection(ctx context.Context, pos geo.Position) (float64, error) {
	return f.intersection, f.err
}

func TestWeights(t *testing.T) {
	c := NewCorrector(&fakeIndex{}, DefaultOptions(), zap.NewNop())

	cases := []struct {
		d       float64
		pos     float64
		heading float64
	}{
		{0, 0, 0},
		{75, 0.35, 0.35},
		{149.999, 0.7 * 149.999 / 150, 0.7 * 149.999 / 150},
		{150, 0.7, 0.7},
		{1000, 0.7, 0.7},
	}
	for _, tc := range cases {
		p, h := c.Weights(tc.d)
		assert.InDelta(t, tc.pos, p, 1e-9, "d=%v", tc.d)
		assert.InDelta(t, tc.heading, h, 1e-9, "d=%v", tc.d)
	}

	prevP, prevH := c.Weights(0)
	for d := 0.5; d < 400; d += 0.5 {
		p, h := c.Weights(d)
		assert.GreaterOrEqual(t, p, prevP)
		assert.GreaterOrEqual(t, h, prevH)
		assert.LessOrEqual(t, p, 0.7)
		assert.LessOrEqual(t, h, 0.7)
		prevP, prevH = p, h
	}
}

func TestCorrect(t *testing.T) {
	raw := geo.NewPosition(47.47, 19.05)
	snapped := geo.FromPlanar(raw.X, raw.Y-10)
	idx := &fakeIndex{
		match:        roadnetwork.EdgeMatch{Snapped: snapped, Bearing: 10, StartID: 1, EndID: 2, Distance: 10},
		intersection: 300,
	}
	c := NewCorrector(idx, DefaultOptions(), zap.NewNop())

	p, h := c.CurrentWeights()
	assert.Equal(t, 0.4, p)
	assert.Equal(t, 0.2, h)

	s, err := c.Correct(context.Background(), raw, 20, 12, 3.5)
	require.NoError(t, err)

	assert.True(t, s.Corrected())
	assert.Equal(t, 3.5, s.Time())
	assert.Equal(t, 12.0, s.Speed())
	assert.Equal(t, 0.7, s.MapWeight())
	assert.InDelta(t, raw.Y-7, s.Position().Y, 1e-6)
	assert.InDelta(t, raw.X, s.Position().X, 1e-6)
	// lat/lon re-derived from the blended planar pair
	assert.Equal(t, geo.FromPlanar(s.Position().X, s.Position().Y).Lat, s.Position().Lat)
	assert.InDelta(t, 0.3*20+0.7*10, s.Heading(), 1e-9)
	a, b := s.EdgeEndpoints()
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
}

func TestCorrectNearIntersection(t *testing.T) {
	raw := geo.NewPosition(47.47, 19.05)
	idx := &fakeIndex{
		match:        roadnetwork.EdgeMatch{Snapped: geo.FromPlanar(raw.X+10, raw.Y), Bearing: 90},
		intersection: 0,
	}
	c := NewCorrector(idx, DefaultOptions(), zap.NewNop())

	s, err := c.Correct(context.Background(), raw, 90, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.MapWeight())
	assert.InDelta(t, raw.X, s.Position().X, 1e-9)
}

func TestCorrectHeadingDivergence(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	raw := geo.NewPosition(47.47, 19.05)
	idx := &fakeIndex{
		match:        roadnetwork.EdgeMatch{Snapped: raw, Bearing: 80, StartID: 4, EndID: 5},
		intersection: 150,
	}
	c := NewCorrector(idx, DefaultOptions(), zap.New(core))

	s, err := c.Correct(context.Background(), raw, 20, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, s.Heading())
	assert.Equal(t, 1, c.Divergences())
	assert.Equal(t, 1, logs.Len())
}

func TestCorrectMapUnavailable(t *testing.T) {
	idx := &fakeIndex{err: util.WrapErrorf(errors.New("timeout"), roadnetwork.ErrMapUnavailable, "fetch")}
	c := NewCorrector(idx, DefaultOptions(), zap.NewNop())

	_, err := c.Correct(context.Background(), geo.NewPosition(47.47, 19.05), 0, 5, 1)
	assert.ErrorIs(t, err, roadnetwork.ErrMapUnavailable)
}
