package db

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"campusmap/src/types"
)

const seed = "category\tid\tname\tlat\tlon\tdesc\tlines\n" +
	"faculty\tfcaei\tFCAeI\t18.9816298\t-99.2381597\tMain building\t\n" +
	"food\ttacos\tTacos El Patio\t18.9818\t-99.2382\tTacos\t\n" +
	"food\tnocoord\tTortas Sin Mapa\t\t\t\t\n" +
	"pickup\tp1\tParada Ruta 1\t18.9822\t-99.2380\t\tRuta 1\n" +
	"pickup\tp2\tParada Norte\t18.9900\t-99.2300\t\t\n" +
	"pickup\tp3\tParada Sur\t18.9700\t-99.2400\t\t\n"

func seedPoints(t *testing.T) []types.PointOfInterest {
	t.Helper()
	points, err := ParseCSV(strings.NewReader(seed))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return points
}

func TestParseCSV(t *testing.T) {
	points := seedPoints(t)
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0].Category != types.Faculty || points[0].Coord == nil || points[0].Coord.Latitude != 18.9816298 {
		t.Fatalf("unexpected first point %+v", points[0])
	}
	if points[2].Coord != nil {
		t.Fatalf("point without lat/lon should have no coord, got %+v", points[2].Coord)
	}
	if points[3].Lines != "Ruta 1" {
		t.Fatalf("unexpected lines %q", points[3].Lines)
	}
}

func TestParseCSVRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"category": "parking\tx\tLot\t1\t1\t\t\n",
		"latitude": "food\tx\tTacos\tnorth\t1\t\t\n",
		"range":    "food\tx\tTacos\t91\t1\t\t\n",
		"id":       "food\t\tTacos\t1\t1\t\t\n",
	}
	for name, row := range cases {
		if _, err := ParseCSV(strings.NewReader("header\n" + row)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestReadCSVMaterials(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "materials", "points.tsv")

	points, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	cols := GroupByCategory(points)
	if len(cols[types.Food]) != 2 || len(cols[types.Pickup]) != 2 || len(cols[types.Faculty]) != 1 {
		t.Fatalf("unexpected distribution: food=%d pickup=%d faculty=%d",
			len(cols[types.Food]), len(cols[types.Pickup]), len(cols[types.Faculty]))
	}
}

func TestMemoryStoreGetPoints(t *testing.T) {
	store := NewMemoryStore(seedPoints(t))
	ctx := context.Background()

	page, total, err := store.GetPoints(ctx, types.Pickup, 2, 0)
	if err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].ID != "p1" || page[1].ID != "p2" {
		t.Fatalf("unexpected first page %+v (total %d)", page, total)
	}

	page, _, _ = store.GetPoints(ctx, types.Pickup, 2, 2)
	if len(page) != 1 || page[0].ID != "p3" {
		t.Fatalf("unexpected second page %+v", page)
	}

	page, _, _ = store.GetPoints(ctx, types.Pickup, 2, 10)
	if len(page) != 0 {
		t.Fatalf("expected an empty page past the end, got %+v", page)
	}
}

func TestMemoryStoreAllPointsIsACopy(t *testing.T) {
	store := NewMemoryStore(seedPoints(t))
	all, _ := store.AllPoints(context.Background(), types.Food)
	all[0].Name = "changed"

	again, _ := store.AllPoints(context.Background(), types.Food)
	if again[0].Name != "Tacos El Patio" {
		t.Fatalf("store content was modified through a returned slice: %q", again[0].Name)
	}
}

func TestMemoryStoreNearby(t *testing.T) {
	store := NewMemoryStore(seedPoints(t))
	at := types.GeoPoint{Latitude: 18.9816298, Longitude: -99.2381597}

	got, err := store.GetNearbyPoints(context.Background(), types.Pickup, at, 2)
	if err != nil {
		t.Fatalf("GetNearbyPoints: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" {
		t.Fatalf("expected p1 first, got %+v", got)
	}

	food, _ := store.GetNearbyPoints(context.Background(), types.Food, at, 5)
	if len(food) != 1 || food[0].ID != "tacos" {
		t.Fatalf("points without coord must not be returned, got %+v", food)
	}
}
