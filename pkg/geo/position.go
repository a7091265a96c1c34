package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/macrotracking/pkg/util"
)

const (
	// earthRadiusWebMercator is the sphere radius of EPSG:3857 in meters.
	earthRadiusWebMercator = 6378137.0
)

// Position is a point on the map, held both as WGS84 lat/lon and as Web Mercator (EPSG:3857) x/y.
// The two pairs are always consistent: every constructor and method derives one from the other.
// Position is a value type, copying it never shares state.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func NewPosition(lat, lon float64) Position {
	x, y := Project(lat, lon)
	return Position{
		Lat: lat,
		Lon: lon,
		X:   x,
		Y:   y,
	}
}

// FromPlanar builds a position from web mercator coordinates (meter).
func FromPlanar(x, y float64) Position {
	lat, lon := Unproject(x, y)
	return Position{
		Lat: lat,
		Lon: lon,
		X:   x,
		Y:   y,
	}
}

// Project. forward spherical web mercator, lat/lon in degree, x/y in meter.
func Project(lat, lon float64) (float64, float64) {
	x := earthRadiusWebMercator * util.DegreeToRadians(lon)
	y := earthRadiusWebMercator * math.Log(math.Tan(math.Pi/4+util.DegreeToRadians(lat)/2))
	return x, y
}

// Unproject. inverse of Project.
func Unproject(x, y float64) (float64, float64) {
	lon := util.RadiansToDegree(x / earthRadiusWebMercator)
	lat := util.RadiansToDegree(2*math.Atan(math.Exp(y/earthRadiusWebMercator)) - math.Pi/2)
	return lat, lon
}

func (p Position) Vector() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func fromVector(v r2.Point) Position {
	return FromPlanar(v.X, v.Y)
}

// Distance. euclidean distance in the projected frame (meter).
func Distance(a, b Position) float64 {
	return a.Vector().Sub(b.Vector()).Norm()
}

// Bearing. direction from a to b in degree [0,360), 0 = +x (east), counter clockwise.
// same convention as Translate.
func Bearing(a, b Position) float64 {
	d := b.Vector().Sub(a.Vector())
	return util.NormalizeDegree(util.RadiansToDegree(math.Atan2(d.Y, d.X)))
}

// Translate moves p by distance (meter) along heading (degree) and returns the new position.
func Translate(p Position, distance, heading float64) Position {
	theta := util.DegreeToRadians(heading)
	return FromPlanar(p.X+distance*math.Cos(theta), p.Y+distance*math.Sin(theta))
}

// Lerp returns (1-w)*a + w*b computed on the planar pair.
func Lerp(a, b Position, w float64) Position {
	return fromVector(a.Vector().Mul(1.0 - w).Add(b.Vector().Mul(w)))
}

func (p Position) String() string {
	return fmt.Sprintf("y: %v \tx: %v", p.Y, p.X)
}
