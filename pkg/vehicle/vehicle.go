package vehicle

import (
	"context"
	"fmt"
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"go.uber.org/zap"
)

// Matcher corrects a dead reckoning position with the road network.
type Matcher interface {
	Correct(ctx context.Context, pos geo.Position, heading, speed, t float64) (datastructure.VehicleState, error)
}

type Options struct {
	SteeringID uint32
	SpeedID    uint32

	Wheelbase         float64 // meter
	SteeringConstant  float64 // wheel angle (rad) per steering unit
	SpeedCorrection   float64
	InitialTurnRadius float64 // meter, practically straight

	MinimumUpdateTime         float64 // seconds between two propagations
	MinimumCorrectionDistance float64 // meter driven since the last correction before a new one
	MinimumHeadingCorrection  float64 // degree, smaller heading changes are dropped

	MapBasedCorrection bool
	MapPositionWeight  float64 // weight recorded until the first correction
}

func DefaultOptions() Options {
	return Options{
		SteeringID:                DefaultSteeringID,
		SpeedID:                   DefaultSpeedID,
		Wheelbase:                 2.7,
		SteeringConstant:          2.8e-05,
		SpeedCorrection:           1.1,
		InitialTurnRadius:         1e14,
		MinimumUpdateTime:         1,
		MinimumCorrectionDistance: 20,
		MinimumHeadingCorrection:  0.0001,
		MapBasedCorrection:        true,
		MapPositionWeight:         0.4,
	}
}

// Vehicle integrates steering and speed frames into a trajectory (dead reckoning).
type Vehicle struct {
	opts    Options
	codec   Codec
	matcher Matcher
	log     *zap.Logger

	position   geo.Position
	heading    float64
	speed      float64
	turnRadius float64
	mapWeight  float64

	seeded         bool
	lastUpdateTime float64
	baseline       *geo.Position // position of the last map correction

	trajectory *datastructure.Trajectory
}

// NewVehicle. matcher may be nil when map based correction is disabled.
func NewVehicle(start geo.Position, heading float64, opts Options, matcher Matcher, log *zap.Logger) *Vehicle {
	if matcher == nil {
		opts.MapBasedCorrection = false
	}
	if opts.MapBasedCorrection {
		log.Debug("Map based correction is ON!")
	} else {
		log.Debug("Map based correction is OFF (disabled)!")
	}
	return &Vehicle{
		opts:       opts,
		codec:      NewCodec(opts.SteeringID, opts.SpeedID),
		matcher:    matcher,
		log:        log,
		position:   start,
		heading:    util.NormalizeDegree(heading),
		turnRadius: opts.InitialTurnRadius,
		mapWeight:  opts.MapPositionWeight,
		trajectory: datastructure.NewTrajectory(),
	}
}

func (v *Vehicle) Position() geo.Position {
	return v.position
}

func (v *Vehicle) Heading() float64 {
	return v.heading
}

func (v *Vehicle) Speed() float64 {
	return v.speed
}

func (v *Vehicle) TurnRadius() float64 {
	return v.turnRadius
}

func (v *Vehicle) Trajectory() *datastructure.Trajectory {
	return v.trajectory
}

// ProcessFrame applies a steering or speed frame and propagates the state once more than
// MinimumUpdateTime elapsed since the last propagation. other frame ids are ignored.
func (v *Vehicle) ProcessFrame(ctx context.Context, f Frame) error {
	if !v.seeded {
		v.seeded = true
		v.lastUpdateTime = f.Timestamp
	}

	switch f.ID {
	case v.opts.SteeringID:
		offset, err := v.codec.DecodeSteering(f)
		if err != nil {
			v.log.Debug("skipping steering frame", zap.Float64("timestamp", f.Timestamp), zap.Error(err))
			return nil
		}
		v.updateTurnRadius(offset)
	case v.opts.SpeedID:
		speed, err := v.codec.DecodeSpeed(f)
		if err != nil {
			v.log.Debug("skipping speed frame", zap.Float64("timestamp", f.Timestamp), zap.Error(err))
			return nil
		}
		v.speed = speed * v.opts.SpeedCorrection
	default:
		return nil
	}

	if f.Timestamp-v.lastUpdateTime > v.opts.MinimumUpdateTime {
		if err := v.Propagate(ctx, f.Timestamp); err != nil {
			return err
		}
		v.lastUpdateTime = f.Timestamp
	}
	return nil
}

// updateTurnRadius. right turn gives a positive radius, left turn a negative one.
func (v *Vehicle) updateTurnRadius(offset int) {
	wheel := v.opts.SteeringConstant*float64(offset) + math.Pi/2
	v.turnRadius = v.opts.Wheelbase * math.Tan(wheel)
}

// Propagate advances the vehicle from the last update time to t along the current turn circle.
func (v *Vehicle) Propagate(ctx context.Context, t float64) error {
	if v.speed == 0 {
		return nil
	}
	if v.baseline == nil {
		b := v.position
		v.baseline = &b
		return nil
	}

	dt := t - v.lastUpdateTime
	dd := v.speed * dt
	dh := dd * 360 / (2 * math.Pi * v.turnRadius)
	if math.Abs(dh) < v.opts.MinimumHeadingCorrection {
		dh = 0
	}
	v.heading = util.NormalizeDegree(v.heading + dh)
	v.position = geo.Translate(v.position, dd, v.heading)

	if v.opts.MapBasedCorrection && geo.Distance(v.position, *v.baseline) > v.opts.MinimumCorrectionDistance {
		state, err := v.matcher.Correct(ctx, v.position, v.heading, v.speed, t)
		if err != nil {
			return err
		}
		v.position = state.Position()
		v.heading = state.Heading()
		v.mapWeight = state.MapWeight()
		b := v.position
		v.baseline = &b
		if err := v.trajectory.Append(state); err != nil {
			return fmt.Errorf("append corrected state: %w", err)
		}
		v.log.Debug(fmt.Sprintf("State update to (%d): %v", v.trajectory.Len()-1, v))
		return nil
	}

	state := datastructure.NewVehicleState(t, v.position, v.heading, v.speed, v.mapWeight)
	if err := v.trajectory.Append(state); err != nil {
		return fmt.Errorf("append state: %w", err)
	}
	return nil
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle at: (%v) \tspeed: %.5f m/s \theading: %.5f", v.position, v.speed, v.heading)
}
