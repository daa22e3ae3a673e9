// Package screen models the map screen as an immutable State advanced by a
// pure Reduce function. The caller owns the mutable container.
package screen

import (
	"campusmap/src/search"
	"campusmap/src/types"
)

const (
	NoticeLoadFailed       = "Could not load points of interest."
	NoticePermissionDenied = "Location permission denied; your position cannot be shown."
)

type Selection struct {
	Category types.Category `json:"category"`
	ID       string         `json:"id"`
}

type State struct {
	Collections     types.Collections
	Toggles         search.Toggles
	Query           string
	UserLocation    *types.GeoPoint
	LocationEnabled bool
	Selected        *Selection
	Loading         bool
	Notice          string
}

// Initial is the state of a freshly opened screen: loading, everything enabled.
func Initial() State {
	return State{
		Collections:     types.EmptyCollections(),
		Toggles:         search.AllEnabled(),
		LocationEnabled: true,
		Loading:         true,
	}
}

// VisiblePoints applies the toggles and query to the loaded collections.
func (s State) VisiblePoints() search.Result {
	return search.Visible(s.Collections, s.Toggles, s.Query)
}

// SelectedPoint returns the point the detail view is open on.
func (s State) SelectedPoint() (types.PointOfInterest, bool) {
	if s.Selected == nil {
		return types.PointOfInterest{}, false
	}
	for _, p := range s.Collections[s.Selected.Category] {
		if p.ID == s.Selected.ID {
			p.Category = s.Selected.Category
			return p, true
		}
	}
	return types.PointOfInterest{}, false
}
