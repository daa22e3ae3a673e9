package geo

import (
	"math"
	"testing"

	"campusmap/src/types"
)

var (
	mainBuilding = types.GeoPoint{Latitude: 18.9816298, Longitude: -99.2381597}
	nearbyStop   = types.GeoPoint{Latitude: 18.9822, Longitude: -99.2380}
)

// referenceKm is the textbook atan2 haversine.
func referenceKm(a, b types.GeoPoint) float64 {
	lat1, lat2 := toRadians(a.Latitude), toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func TestDistanceKmSamePointIsZero(t *testing.T) {
	points := []types.GeoPoint{
		mainBuilding,
		{Latitude: 0, Longitude: 0},
		{Latitude: -90, Longitude: 180},
		{Latitude: 45.5, Longitude: -73.6},
	}
	for _, p := range points {
		if got := DistanceKm(p, p); got != 0 {
			t.Errorf("DistanceKm(%v, %v) = %v, want 0", p, p, got)
		}
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	pairs := [][2]types.GeoPoint{
		{mainBuilding, nearbyStop},
		{{Latitude: 51.5, Longitude: -0.12}, {Latitude: 48.85, Longitude: 2.35}},
		{{Latitude: -33.9, Longitude: 151.2}, {Latitude: 35.7, Longitude: 139.7}},
	}
	for _, pair := range pairs {
		ab := DistanceKm(pair[0], pair[1])
		ba := DistanceKm(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKmCampusFixture(t *testing.T) {
	got := DistanceKm(mainBuilding, nearbyStop)
	want := referenceKm(mainBuilding, nearbyStop)

	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("DistanceKm = %.6f, reference = %.6f", got, want)
	}
	if got < 0.05 || got > 0.08 {
		t.Fatalf("DistanceKm = %.6f, expected roughly 0.063 km", got)
	}
}

func TestDistanceKmMatchesReference(t *testing.T) {
	pairs := [][2]types.GeoPoint{
		{{Latitude: 51.5, Longitude: -0.12}, {Latitude: 48.85, Longitude: 2.35}},
		{{Latitude: 19.43, Longitude: -99.13}, {Latitude: 18.98, Longitude: -99.23}},
		{{Latitude: 0, Longitude: 179.9}, {Latitude: 0, Longitude: -179.9}},
	}
	for _, pair := range pairs {
		got := DistanceKm(pair[0], pair[1])
		want := referenceKm(pair[0], pair[1])
		if math.Abs(got-want) > 1e-3 {
			t.Errorf("DistanceKm(%v, %v) = %.6f, want %.6f", pair[0], pair[1], got, want)
		}
	}
}

func TestWalkingLabel(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0, "less than 1 min walking"},
		{0.05, "less than 1 min walking"},
		{0.08, "less than 1 min walking"},
		{0.0834, "approx. 1 min walking"},
		{0.12, "approx. 1 min walking"},
		{1.0, "approx. 12 min walking"},
		{0.5, "approx. 6 min walking"},
		{2.3, "approx. 28 min walking"},
	}
	for _, tc := range cases {
		if got := WalkingLabel(tc.km); got != tc.want {
			t.Errorf("WalkingLabel(%v) = %q, want %q", tc.km, got, tc.want)
		}
	}
}

func TestDistanceLabel(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0.0634, "63 m"},
		{0.9994, "999 m"},
		{1.0, "1.0 km"},
		{2.46, "2.5 km"},
	}
	for _, tc := range cases {
		if got := DistanceLabel(tc.km); got != tc.want {
			t.Errorf("DistanceLabel(%v) = %q, want %q", tc.km, got, tc.want)
		}
	}
}

func TestDescribeWalk(t *testing.T) {
	got := DescribeWalk(mainBuilding, nearbyStop)
	if got.WalkingLabel != "less than 1 min walking" {
		t.Fatalf("unexpected walking label %q", got.WalkingLabel)
	}
	if got.DistanceLabel[len(got.DistanceLabel)-2:] != " m" {
		t.Fatalf("expected meters for a short walk, got %q", got.DistanceLabel)
	}
}

func TestEstimate(t *testing.T) {
	est := Estimate(mainBuilding, mainBuilding)
	if est.DistanceMeters != 0 {
		t.Fatalf("expected 0 m, got %v", est.DistanceMeters)
	}
	if est.Label != "less than 1 min walking" {
		t.Fatalf("unexpected label %q", est.Label)
	}
}
