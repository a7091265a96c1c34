package vehicle

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func speedFrame(t float64, raw uint16) Frame {
	return Frame{Timestamp: t, ID: DefaultSpeedID, DLC: 8, Data: []byte{0, byte(raw >> 8), byte(raw), 0, 0, 0, 0, 0}}
}

func steeringFrame(t float64, offset int) Frame {
	f := Frame{Timestamp: t, ID: DefaultSteeringID, DLC: 6, Data: make([]byte, 6)}
	if err := EncodeSteering(offset, &f); err != nil {
		panic(err)
	}
	return f
}

type fakeMatcher struct {
	calls  int
	weight float64
	err    error
}

func (m *fakeMatcher) Correct(ctx context.Context, pos geo.Position, heading, speed, t float64) (datastructure.VehicleState, error) {
	m.calls++
	if m.err != nil {
		return datastructure.VehicleState{}, m.err
	}
	snapped := geo.Translate(pos, 5, 90)
	return datastructure.NewCorrectedVehicleState(t, snapped, 3, speed, m.weight, 11, 12), nil
}

var start = geo.NewPosition(47.4700, 19.0500)

func uncorrectedOptions() Options {
	opts := DefaultOptions()
	opts.MapBasedCorrection = false
	return opts
}

func TestSteeringZeroIsStraight(t *testing.T) {
	v := NewVehicle(start, 0, uncorrectedOptions(), nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, v.ProcessFrame(ctx, steeringFrame(0, 0)))
	assert.Greater(t, v.TurnRadius(), 1e10)

	require.NoError(t, v.ProcessFrame(ctx, speedFrame(0.5, 10800)))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(1.6, 10800)))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(2.7, 10800)))

	require.Equal(t, 1, v.Trajectory().Len())
	s := v.Trajectory().At(0)
	assert.Equal(t, 0.0, s.Heading())
	assert.InDelta(t, 33.0*1.1, geo.Distance(start, s.Position()), 1e-6)
	assert.InDelta(t, start.Y, s.Position().Y, 1e-6)
}

func TestSpeedScenario(t *testing.T) {
	v := NewVehicle(start, 0, uncorrectedOptions(), nil, zap.NewNop())
	require.NoError(t, v.ProcessFrame(context.Background(), speedFrame(10, 0x2A30)))
	assert.InDelta(t, 33.0, v.Speed(), 1e-9)
}

func TestZeroSpeedIsNoop(t *testing.T) {
	v := NewVehicle(start, 45, uncorrectedOptions(), nil, zap.NewNop())
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, v.ProcessFrame(ctx, speedFrame(float64(i)*1.5, 0)))
	}
	require.NoError(t, v.Propagate(ctx, 100))

	assert.Equal(t, 0, v.Trajectory().Len())
	assert.Equal(t, start, v.Position())
	assert.Equal(t, 45.0, v.Heading())
}

func TestBootstrapOnlySetsBaseline(t *testing.T) {
	v := NewVehicle(start, 0, uncorrectedOptions(), nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, v.ProcessFrame(ctx, speedFrame(0, 3600)))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(1.5, 3600)))

	assert.Equal(t, 0, v.Trajectory().Len())
	assert.Equal(t, start, v.Position())
	require.NotNil(t, v.baseline)
	assert.Equal(t, start, *v.baseline)
	assert.Equal(t, 1.5, v.lastUpdateTime)
}

func TestUnknownFramesIgnored(t *testing.T) {
	v := NewVehicle(start, 0, uncorrectedOptions(), nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, v.ProcessFrame(ctx, Frame{Timestamp: 5, ID: 0x380, DLC: 8, Data: make([]byte, 8)}))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(5.5, 3600)))
	require.NoError(t, v.ProcessFrame(ctx, Frame{Timestamp: 20, ID: 0x280, DLC: 8, Data: make([]byte, 8)}))

	// the first frame only seeds the clock, unknown ids never propagate
	assert.Equal(t, 5.0, v.lastUpdateTime)
	assert.Nil(t, v.baseline)

	// short payload is dropped
	require.NoError(t, v.ProcessFrame(ctx, Frame{Timestamp: 21, ID: DefaultSpeedID, DLC: 1, Data: []byte{1}}))
	assert.InDelta(t, 11.0, v.Speed(), 1e-9)
}

func TestHeadingStaysInRange(t *testing.T) {
	for _, offset := range []int{5736, -5736, 300, -7824} {
		v := NewVehicle(start, 350, uncorrectedOptions(), nil, zap.NewNop())
		ctx := context.Background()
		require.NoError(t, v.ProcessFrame(ctx, steeringFrame(0, offset)))
		for i := 1; i < 200; i++ {
			require.NoError(t, v.ProcessFrame(ctx, speedFrame(float64(i)*1.01, 1500)))
			h := v.Heading()
			assert.GreaterOrEqual(t, h, 0.0)
			assert.Less(t, h, 360.0)
		}
		assert.Greater(t, v.Trajectory().Len(), 100)
	}
}

func TestMapCorrection(t *testing.T) {
	opts := DefaultOptions()
	opts.MinimumCorrectionDistance = 50
	m := &fakeMatcher{weight: 0.55}
	v := NewVehicle(start, 0, opts, m, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, v.ProcessFrame(ctx, speedFrame(0, 10800)))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(1.1, 10800))) // bootstrap
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(2.2, 10800))) // 36.3 m
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(3.3, 10800))) // 72.6 m, corrected
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(4.4, 10800)))

	states := v.Trajectory().States()
	require.Len(t, states, 3)
	assert.Equal(t, 1, m.calls)

	assert.False(t, states[0].Corrected())
	assert.Equal(t, 0.4, states[0].MapWeight())

	assert.True(t, states[1].Corrected())
	assert.Equal(t, 3.0, states[1].Heading())
	a, b := states[1].EdgeEndpoints()
	assert.Equal(t, []int64{11, 12}, []int64{a, b})
	require.NotNil(t, v.baseline)
	assert.Equal(t, states[1].Position(), *v.baseline)

	assert.False(t, states[2].Corrected())
	assert.Equal(t, 0.55, states[2].MapWeight())
	assert.InDelta(t, 36.3, geo.Distance(states[1].Position(), states[2].Position()), 1e-6)
}

func TestMapCorrectionFailure(t *testing.T) {
	errMap := errors.New("map down")
	v := NewVehicle(start, 0, DefaultOptions(), &fakeMatcher{err: errMap}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, v.ProcessFrame(ctx, speedFrame(0, 10800)))
	require.NoError(t, v.ProcessFrame(ctx, speedFrame(1.1, 10800)))
	err := v.ProcessFrame(ctx, speedFrame(2.2, 10800))
	assert.ErrorIs(t, err, errMap)
}
