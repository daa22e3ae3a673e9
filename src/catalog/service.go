package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusmap/src/apperr"
	"campusmap/src/logger"
	"campusmap/src/search"
	"campusmap/src/types"
)

type Service struct {
	store types.DataStore
	log   *logger.Logger

	mu       sync.RWMutex
	snapshot types.Collections
	loadedAt time.Time
	lastErr  error
}

func NewService(store types.DataStore, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		log:      log.With("component", "catalog"),
		snapshot: types.EmptyCollections(),
	}
}

// Reload replaces the snapshot with a fresh read of the store. On failure the
// snapshot becomes empty and the error is returned for the caller to report.
func (s *Service) Reload(ctx context.Context) error {
	start := time.Now()
	cols, err := Load(ctx, s.store)

	s.mu.Lock()
	s.snapshot = cols
	s.loadedAt = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.StoreError("catalog.reload", err)
		return err
	}

	s.reportUnrenderable(cols)
	s.log.Info("points loaded",
		slog.Int("food", len(cols[types.Food])),
		slog.Int("pickup", len(cols[types.Pickup])),
		slog.Int("faculty", len(cols[types.Faculty])),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// reportUnrenderable logs records that can never appear on the map.
func (s *Service) reportUnrenderable(cols types.Collections) {
	for _, cat := range types.Categories {
		for _, p := range cols[cat] {
			if search.Renderable(p) {
				continue
			}
			s.log.Warn("point is not renderable",
				slog.String("category", string(cat)),
				slog.String("id", p.ID),
				slog.Bool("has_name", p.Name != ""),
				slog.Bool("has_coord", p.Coord != nil),
			)
		}
	}
}

// Snapshot returns the current collections. Callers must not modify them.
func (s *Service) Snapshot() types.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

type Status struct {
	LoadedAt time.Time `json:"loadedAt"`
	Points   int       `json:"points"`
	Error    string    `json:"error,omitempty"`
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{LoadedAt: s.loadedAt, Points: s.snapshot.Count()}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

func (s *Service) Visible(toggles search.Toggles, query string) search.Result {
	return search.Visible(s.Snapshot(), toggles, query)
}

func (s *Service) Find(category types.Category, id string) (types.PointOfInterest, error) {
	for _, p := range s.Snapshot()[category] {
		if p.ID == id {
			return p, nil
		}
	}
	return types.PointOfInterest{}, apperr.NotFound("point not found").WithOp("catalog.Find")
}

func (s *Service) Page(ctx context.Context, category types.Category, limit, offset int) ([]types.PointOfInterest, int, error) {
	points, total, err := s.store.GetPoints(ctx, category, limit, offset)
	if err != nil {
		s.log.StoreError("catalog.page", err)
		return nil, 0, err
	}
	for i := range points {
		points[i].Category = category
	}
	return points, total, nil
}

func (s *Service) Nearby(ctx context.Context, category types.Category, at types.GeoPoint, size int) ([]types.PointOfInterest, error) {
	points, err := s.store.GetNearbyPoints(ctx, category, at, size)
	if err != nil {
		s.log.StoreError("catalog.nearby", err)
		return nil, err
	}
	for i := range points {
		points[i].Category = category
	}
	return points, nil
}
