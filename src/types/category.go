package types

import (
	"fmt"
	"strings"
)

type Category string

const (
	Food    Category = "food"
	Pickup  Category = "pickup"
	Faculty Category = "faculty"
)

// Categories lists every category in display order.
var Categories = []Category{Food, Pickup, Faculty}

// DetailField names the optional record field shown in a point's detail sheet.
type DetailField string

const (
	DetailDesc  DetailField = "desc"
	DetailLines DetailField = "lines"
)

type CategoryInfo struct {
	Collection  string
	Label       string
	Detail      DetailField
	EmptyDetail string
}

var categoryInfo = map[Category]CategoryInfo{
	Food: {
		Collection:  "foodSpots",
		Label:       "Food",
		Detail:      DetailDesc,
		EmptyDetail: "No description available.",
	},
	Pickup: {
		Collection:  "pickupPoints",
		Label:       "Stops",
		Detail:      DetailLines,
		EmptyDetail: "Not specified",
	},
	Faculty: {
		Collection:  "faculties",
		Label:       "Faculties",
		Detail:      DetailDesc,
		EmptyDetail: "No description available.",
	},
}

func (c Category) Info() CategoryInfo {
	return categoryInfo[c]
}

func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// DetailText returns the line shown under a point's name: its transit lines for
// pickup points, its description otherwise, or the category default when empty.
func (p PointOfInterest) DetailText() string {
	info := p.Category.Info()
	value := p.Desc
	if info.Detail == DetailLines {
		value = p.Lines
	}
	if strings.TrimSpace(value) == "" {
		value = info.EmptyDetail
	}
	if info.Detail == DetailLines {
		return "Lines: " + value
	}
	return value
}
