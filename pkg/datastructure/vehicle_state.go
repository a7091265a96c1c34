package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

// VehicleState. immutable snapshot of the vehicle at a given time.
type VehicleState struct {
	time      float64
	position  geo.Position
	heading   float64 // degree [0,360)
	speed     float64 // m/s
	mapWeight float64
	startID   int64 // road node ids of the edge used for map correction, 0 if not corrected
	endID     int64
	corrected bool
}

func NewVehicleState(time float64, position geo.Position, heading, speed, mapWeight float64) VehicleState {
	return VehicleState{
		time:      time,
		position:  position,
		heading:   heading,
		speed:     speed,
		mapWeight: mapWeight,
	}
}

func NewCorrectedVehicleState(time float64, position geo.Position, heading, speed, mapWeight float64,
	startID, endID int64) VehicleState {
	return VehicleState{
		time:      time,
		position:  position,
		heading:   heading,
		speed:     speed,
		mapWeight: mapWeight,
		startID:   startID,
		endID:     endID,
		corrected: true,
	}
}

func (s VehicleState) Time() float64 {
	return s.time
}

func (s VehicleState) Position() geo.Position {
	return s.position
}

func (s VehicleState) Heading() float64 {
	return s.heading
}

func (s VehicleState) Speed() float64 {
	return s.speed
}

func (s VehicleState) MapWeight() float64 {
	return s.mapWeight
}

func (s VehicleState) EdgeEndpoints() (int64, int64) {
	return s.startID, s.endID
}

func (s VehicleState) Corrected() bool {
	return s.corrected
}

// MapString. debug representation including the planar coordinates and the used edge.
func (s VehicleState) MapString() string {
	return fmt.Sprintf("Lat:%.5f \t Long:%.5f \t x:%v \t y:%v \t Heading: %3.5f \t (start: %d end:%d) \t Speed:%2.5f \t Weight:%v",
		s.position.Lat, s.position.Lon, s.position.X, s.position.Y, s.heading, s.startID, s.endID, s.speed, s.mapWeight)
}
