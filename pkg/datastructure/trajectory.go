package datastructure

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

var (
	ErrTimeOrder = errors.New("vehicle state is older than the last recorded state")
)

// Trajectory. append-only, time ordered log of vehicle states.
type Trajectory struct {
	states []VehicleState
}

func NewTrajectory() *Trajectory {
	return &Trajectory{
		states: make([]VehicleState, 0, 1024),
	}
}

func (t *Trajectory) Append(s VehicleState) error {
	if n := len(t.states); n > 0 && s.time < t.states[n-1].time {
		return fmt.Errorf("%w: %f < %f", ErrTimeOrder, s.time, t.states[n-1].time)
	}
	t.states = append(t.states, s)
	return nil
}

func (t *Trajectory) Len() int {
	return len(t.states)
}

func (t *Trajectory) At(i int) VehicleState {
	return t.states[i]
}

func (t *Trajectory) Last() (VehicleState, bool) {
	if len(t.states) == 0 {
		return VehicleState{}, false
	}
	return t.states[len(t.states)-1], true
}

// States returns a copy of the recorded states.
func (t *Trajectory) States() []VehicleState {
	res := make([]VehicleState, len(t.states))
	copy(res, t.states)
	return res
}

func (t *Trajectory) Positions() []geo.Position {
	res := make([]geo.Position, len(t.states))
	for i, s := range t.states {
		res[i] = s.position
	}
	return res
}

// TotalDistance. sum of the planar distances between consecutive states (meter).
func (t *Trajectory) TotalDistance() float64 {
	total := 0.0
	for i := 0; i+1 < len(t.states); i++ {
		total += geo.Distance(t.states[i].position, t.states[i+1].position)
	}
	return total
}

func (t *Trajectory) CorrectedCount() int {
	n := 0
	for _, s := range t.states {
		if s.corrected {
			n++
		}
	}
	return n
}
