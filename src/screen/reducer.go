package screen

import "campusmap/src/types"

type Event interface {
	isEvent()
}

type LoadStarted struct{}

type DataLoaded struct {
	Collections types.Collections
}

type DataLoadFailed struct {
	Err error
}

type CategoryToggled struct {
	Category types.Category
}

type QueryChanged struct {
	Query string
}

type LocationUpdated struct {
	Point types.GeoPoint
}

type PermissionDenied struct{}

type PointSelected struct {
	Category types.Category
	ID       string
}

type DetailClosed struct{}

func (LoadStarted) isEvent()      {}
func (DataLoaded) isEvent()       {}
func (DataLoadFailed) isEvent()   {}
func (CategoryToggled) isEvent()  {}
func (QueryChanged) isEvent()     {}
func (LocationUpdated) isEvent()  {}
func (PermissionDenied) isEvent() {}
func (PointSelected) isEvent()    {}
func (DetailClosed) isEvent()     {}

// Reduce returns the state that follows s after ev. s is never modified.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case LoadStarted:
		s.Loading = true
		s.Notice = ""

	case DataLoaded:
		s.Collections = copyCollections(e.Collections)
		s.Loading = false

	case DataLoadFailed:
		s.Collections = types.EmptyCollections()
		s.Selected = nil
		s.Loading = false
		s.Notice = NoticeLoadFailed

	case CategoryToggled:
		s.Toggles = s.Toggles.Toggle(e.Category)
		if s.Selected != nil && s.Selected.Category == e.Category && !s.Toggles.Enabled(e.Category) {
			s.Selected = nil
		}

	case QueryChanged:
		s.Query = e.Query

	case LocationUpdated:
		if !s.LocationEnabled {
			break
		}
		p := e.Point
		s.UserLocation = &p

	case PermissionDenied:
		s.LocationEnabled = false
		s.UserLocation = nil
		s.Notice = NoticePermissionDenied

	case PointSelected:
		s.Selected = &Selection{Category: e.Category, ID: e.ID}
		if _, ok := s.SelectedPoint(); !ok {
			s.Selected = nil
		}

	case DetailClosed:
		s.Selected = nil
	}
	return s
}

func copyCollections(in types.Collections) types.Collections {
	out := types.EmptyCollections()
	for _, cat := range types.Categories {
		points := in[cat]
		cp := make([]types.PointOfInterest, len(points))
		for i, p := range points {
			p.Category = cat
			cp[i] = p
		}
		out[cat] = cp
	}
	return out
}
