// Package nav builds deep links that hand a destination to the device's
// navigation app.
package nav

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"campusmap/src/apperr"
	"campusmap/src/types"
)

type Mode string

const (
	Walking Mode = "walking"
	Driving Mode = "driving"
)

type Platform string

const (
	IOS     Platform = "ios"
	Android Platform = "android"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case Walking, "":
		return Walking, nil
	case Driving:
		return Driving, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown travel mode %q", s))
}

func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(s)) {
	case Android, "":
		return Android, nil
	case IOS:
		return IOS, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown platform %q", s))
}

// Links holds the preferred deep link and the generic geo URI to try when the
// preferred one cannot be opened.
type Links struct {
	Mode     Mode   `json:"mode"`
	Primary  string `json:"primary"`
	Fallback string `json:"fallback"`
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m Mode) letter() string {
	if m == Driving {
		return "d"
	}
	return "w"
}

// DefaultLabel names a destination whose point has no name.
const DefaultLabel = "Destination"

// escapeLabel percent-encodes a label the way encodeURIComponent does, with
// spaces as %20; geo: URIs do not decode '+' as a space.
func escapeLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		label = DefaultLabel
	}
	return strings.ReplaceAll(url.QueryEscape(label), "+", "%20")
}

func GeoURI(target types.GeoPoint, label string) string {
	return fmt.Sprintf("geo:%s,%s?q=%s", coord(target.Latitude), coord(target.Longitude), escapeLabel(label))
}

func BuildLinks(platform Platform, target types.GeoPoint, label string, mode Mode) Links {
	ll := coord(target.Latitude) + "," + coord(target.Longitude)

	var primary string
	switch platform {
	case IOS:
		primary = fmt.Sprintf("http://maps.apple.com/?daddr=%s&dirflg=%s&q=%s", ll, mode.letter(), escapeLabel(label))
	default:
		primary = fmt.Sprintf("google.navigation:q=%s&mode=%s", ll, mode.letter())
	}

	return Links{
		Mode:     mode,
		Primary:  primary,
		Fallback: GeoURI(target, label),
	}
}

// BothModes returns walking and driving links for the same destination.
func BothModes(platform Platform, target types.GeoPoint, label string) []Links {
	return []Links{
		BuildLinks(platform, target, label, Walking),
		BuildLinks(platform, target, label, Driving),
	}
}
