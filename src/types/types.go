package types

import (
	"context"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"longitude"`
}

// Validate reports whether the point lies on the globe.
func (p GeoPoint) Validate() error {
	return validate.Struct(p)
}

// PointOfInterest is a read-only snapshot of a store record. Coord is nil when
// the record carries no coordinates.
type PointOfInterest struct {
	ID       string    `json:"id" bson:"_id"`
	Name     string    `json:"name" bson:"name"`
	Coord    *GeoPoint `json:"coord,omitempty" bson:"coord,omitempty"`
	Desc     string    `json:"desc,omitempty" bson:"desc,omitempty"`
	Lines    string    `json:"lines,omitempty" bson:"lines,omitempty"`
	Category Category  `json:"category" bson:"-"`
}

type Collections map[Category][]PointOfInterest

// EmptyCollections returns a value with an empty, non-nil slice per category.
func EmptyCollections() Collections {
	c := make(Collections, len(Categories))
	for _, cat := range Categories {
		c[cat] = []PointOfInterest{}
	}
	return c
}

// Count returns the number of points over all categories.
func (c Collections) Count() int {
	n := 0
	for _, points := range c {
		n += len(points)
	}
	return n
}

type WalkingEstimate struct {
	DistanceMeters float64 `json:"distanceMeters"`
	Label          string  `json:"label"`
}

type DataStore interface {
	AllPoints(ctx context.Context, category Category) ([]PointOfInterest, error)
	GetPoints(ctx context.Context, category Category, limit, offset int) ([]PointOfInterest, int, error)
	GetNearbyPoints(ctx context.Context, category Category, at GeoPoint, size int) ([]PointOfInterest, error)
}
