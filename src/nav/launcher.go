package nav

import (
	"log/slog"

	"campusmap/src/apperr"
)

// Launcher opens a URL with the host platform.
type Launcher interface {
	OpenURL(url string) error
}

type LauncherFunc func(url string) error

func (f LauncherFunc) OpenURL(url string) error {
	return f(url)
}

// Open tries the primary link and falls back to the geo URI. A primary failure
// is only logged; an error is returned when the fallback fails too.
func Open(l Launcher, links Links, log *slog.Logger) (string, error) {
	err := l.OpenURL(links.Primary)
	if err == nil {
		return links.Primary, nil
	}
	if log != nil {
		log.Debug("primary navigation link failed, using fallback",
			slog.String("link", links.Primary),
			slog.String("error", err.Error()),
		)
	}

	if err := l.OpenURL(links.Fallback); err != nil {
		return "", apperr.NavigationLaunch(err).WithOp("nav.Open")
	}
	return links.Fallback, nil
}
