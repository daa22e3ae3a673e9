package screen

import (
	"campusmap/src/geo"
	"campusmap/src/nav"
	"campusmap/src/types"
)

// DetailView is the content of a point's detail sheet.
type DetailView struct {
	Point  types.PointOfInterest `json:"point"`
	Title  string                `json:"title"`
	Detail string                `json:"detail"`
	Walk   *geo.WalkDescription  `json:"walk,omitempty"`
	Links  []nav.Links           `json:"links,omitempty"`
}

// BuildDetail describes p for a user at user (nil when unknown). Points
// without coordinates get neither a walk estimate nor navigation links.
func BuildDetail(p types.PointOfInterest, user *types.GeoPoint, platform nav.Platform) DetailView {
	v := DetailView{
		Point:  p,
		Title:  p.Name,
		Detail: p.DetailText(),
	}
	if p.Coord == nil {
		return v
	}
	if user != nil {
		walk := geo.DescribeWalk(*user, *p.Coord)
		v.Walk = &walk
	}
	v.Links = nav.BothModes(platform, *p.Coord, p.Name)
	return v
}

// Detail returns the detail sheet for the selected point, if any.
func (s State) Detail(platform nav.Platform) (DetailView, bool) {
	p, ok := s.SelectedPoint()
	if !ok {
		return DetailView{}, false
	}
	return BuildDetail(p, s.UserLocation, platform), true
}
