package nav

import (
	"errors"
	"testing"

	"campusmap/src/apperr"
	"campusmap/src/types"
)

var target = types.GeoPoint{Latitude: 18.9822, Longitude: -99.238}

func TestBuildLinksAndroid(t *testing.T) {
	links := BuildLinks(Android, target, "Parada Norte", Walking)
	if links.Primary != "google.navigation:q=18.9822,-99.238&mode=w" {
		t.Fatalf("unexpected primary link %q", links.Primary)
	}
	if links.Fallback != "geo:18.9822,-99.238?q=Parada%20Norte" {
		t.Fatalf("unexpected fallback link %q", links.Fallback)
	}

	driving := BuildLinks(Android, target, "Parada Norte", Driving)
	if driving.Primary != "google.navigation:q=18.9822,-99.238&mode=d" {
		t.Fatalf("unexpected driving link %q", driving.Primary)
	}
}

func TestBuildLinksIOS(t *testing.T) {
	links := BuildLinks(IOS, target, "Tacos & Más", Driving)
	want := "http://maps.apple.com/?daddr=18.9822,-99.238&dirflg=d&q=Tacos%20%26%20M%C3%A1s"
	if links.Primary != want {
		t.Fatalf("got %q, want %q", links.Primary, want)
	}
}

func TestLabelEscaping(t *testing.T) {
	cases := map[string]string{
		"Parada Norte": "Parada%20Norte",
		"1+1 Café":     "1%2B1%20Caf%C3%A9",
		"Aula 3/B?":    "Aula%203%2FB%3F",
		"":             "Destination",
		"   ":          "Destination",
	}
	for label, want := range cases {
		if got := GeoURI(target, label); got != "geo:18.9822,-99.238?q="+want {
			t.Errorf("GeoURI(%q) = %q", label, got)
		}
	}

	links := BuildLinks(IOS, target, "", Walking)
	if links.Primary != "http://maps.apple.com/?daddr=18.9822,-99.238&dirflg=w&q=Destination" {
		t.Fatalf("unnamed destination: %q", links.Primary)
	}
}

func TestParse(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != Walking {
		t.Fatalf("empty mode should default to walking, got %q %v", m, err)
	}
	if _, err := ParseMode("flying"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if p, err := ParsePlatform("IOS"); err != nil || p != IOS {
		t.Fatalf("expected ios, got %q %v", p, err)
	}
}

func TestOpenFallsBack(t *testing.T) {
	links := BuildLinks(Android, target, "Parada", Walking)

	var opened []string
	l := LauncherFunc(func(url string) error {
		opened = append(opened, url)
		if url == links.Primary {
			return errors.New("no activity found")
		}
		return nil
	})

	used, err := Open(l, links, nil)
	if err != nil {
		t.Fatalf("expected fallback to recover, got %v", err)
	}
	if used != links.Fallback {
		t.Fatalf("expected fallback link, got %q", used)
	}
	if len(opened) != 2 {
		t.Fatalf("expected two attempts, got %d", len(opened))
	}
}

func TestOpenPrimary(t *testing.T) {
	links := BuildLinks(IOS, target, "Parada", Walking)
	calls := 0
	used, err := Open(LauncherFunc(func(string) error { calls++; return nil }), links, nil)
	if err != nil || used != links.Primary || calls != 1 {
		t.Fatalf("expected a single primary open, got %q %v after %d calls", used, err, calls)
	}
}

func TestOpenBothFail(t *testing.T) {
	links := BuildLinks(Android, target, "Parada", Walking)
	_, err := Open(LauncherFunc(func(string) error { return errors.New("nope") }), links, nil)
	if !apperr.Is(err, apperr.KindNavigationLaunch) {
		t.Fatalf("expected navigation launch error, got %v", err)
	}
}
