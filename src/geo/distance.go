// Package geo estimates great-circle distance between two points and turns it
// into the walking labels shown in a point's detail sheet.
package geo

import (
	"fmt"
	"math"

	"campusmap/src/types"
)

const (
	earthRadiusKm = 6371.0
	// walkingSpeedKmh is the assumed constant pace of a pedestrian.
	walkingSpeedKmh = 5.0
)

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the haversine distance between a and b in kilometers.
func DistanceKm(a, b types.GeoPoint) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := 0.5 - math.Cos(dLat)/2 +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			(1-math.Cos(dLon))/2

	// rounding can push h a hair outside [0, 1]
	h = math.Min(math.Max(h, 0), 1)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func walkingTime(km float64) float64 {
	return km / walkingSpeedKmh * 60
}

// WalkingMinutes converts a distance to whole minutes at walking pace.
func WalkingMinutes(km float64) int {
	return int(math.Round(walkingTime(km)))
}

// WalkingLabel compares the unrounded time against one minute, so a walk of
// 36 seconds still reads "less than 1 min".
func WalkingLabel(km float64) string {
	if walkingTime(km) < 1 {
		return "less than 1 min walking"
	}
	return fmt.Sprintf("approx. %d min walking", WalkingMinutes(km))
}

func DistanceLabel(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

type WalkDescription struct {
	DistanceLabel string `json:"distanceLabel"`
	WalkingLabel  string `json:"walkingLabel"`
}

func DescribeWalk(user, target types.GeoPoint) WalkDescription {
	km := DistanceKm(user, target)
	return WalkDescription{
		DistanceLabel: DistanceLabel(km),
		WalkingLabel:  WalkingLabel(km),
	}
}

func Estimate(user, target types.GeoPoint) types.WalkingEstimate {
	km := DistanceKm(user, target)
	return types.WalkingEstimate{
		DistanceMeters: km * 1000,
		Label:          WalkingLabel(km),
	}
}
