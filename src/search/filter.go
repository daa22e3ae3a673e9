// Package search filters point collections by name and by category toggles.
package search

import (
	"strings"

	"campusmap/src/types"
)

// FilterByName keeps the points with a non-empty name that contains query,
// ignoring case. Input order is preserved and an empty query keeps every named
// point.
func FilterByName(points []types.PointOfInterest, query string) []types.PointOfInterest {
	q := strings.ToLower(query)
	out := make([]types.PointOfInterest, 0, len(points))
	for _, p := range points {
		if p.Name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// Renderable reports whether a point can be placed on the map.
func Renderable(p types.PointOfInterest) bool {
	return p.Name != "" && p.Coord != nil
}

// Toggles gates each category independently.
type Toggles struct {
	Food    bool `json:"food"`
	Pickup  bool `json:"pickup"`
	Faculty bool `json:"faculty"`
}

func AllEnabled() Toggles {
	return Toggles{Food: true, Pickup: true, Faculty: true}
}

func (t Toggles) Enabled(c types.Category) bool {
	switch c {
	case types.Food:
		return t.Food
	case types.Pickup:
		return t.Pickup
	case types.Faculty:
		return t.Faculty
	}
	return false
}

// Toggle returns a copy with c flipped.
func (t Toggles) Toggle(c types.Category) Toggles {
	return t.Set(c, !t.Enabled(c))
}

func (t Toggles) Set(c types.Category, on bool) Toggles {
	switch c {
	case types.Food:
		t.Food = on
	case types.Pickup:
		t.Pickup = on
	case types.Faculty:
		t.Faculty = on
	}
	return t
}

type Result struct {
	Points types.Collections
	// Dropped holds named points that matched but have no coordinates.
	Dropped []types.PointOfInterest
}

// Visible returns, per category, the points that are enabled, match query and
// carry coordinates. Disabled categories map to an empty slice.
func Visible(collections types.Collections, toggles Toggles, query string) Result {
	res := Result{Points: types.EmptyCollections()}
	for _, cat := range types.Categories {
		if !toggles.Enabled(cat) {
			continue
		}
		for _, p := range FilterByName(collections[cat], query) {
			if !Renderable(p) {
				res.Dropped = append(res.Dropped, p)
				continue
			}
			res.Points[cat] = append(res.Points[cat], p)
		}
	}
	return res
}
