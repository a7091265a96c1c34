package geo

import (
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/util"
)

const (
	earthRadiusKM = 6371.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in km
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// GeodesicDistance. haversine distance between two positions in meter.
// unlike Distance it is not inflated by the mercator scale factor.
func GeodesicDistance(a, b Position) float64 {
	return CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in km, bearing is a compass bearing (0 = north, clockwise)
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return util.RadiansToDegree(lat2), normalizeLongitude(util.RadiansToDegree(lon2))
}

// BoundingBoxAround returns (minLat, minLon, maxLat, maxLon) of the box enclosing a circle of radius meter.
func BoundingBoxAround(lat, lon, radius float64) (float64, float64, float64, float64) {
	radiusKm := radius / 1000
	// corner of the enclosing square is radius*sqrt(2) away
	diag := radiusKm * math.Sqrt2
	minLat, minLon := GetDestinationPoint(lat, lon, 225, diag)
	maxLat, maxLon := GetDestinationPoint(lat, lon, 45, diag)
	return minLat, minLon, maxLat, maxLon
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
