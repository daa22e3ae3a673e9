package db

import (
	"context"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"campusmap/src/geo"
	"campusmap/src/types"
)

const pointTolerance = 1e-9

type indexedPoint struct {
	point types.PointOfInterest
}

func (p indexedPoint) Bounds() rtreego.Rect {
	return rtreego.Point{p.point.Coord.Longitude, p.point.Coord.Latitude}.ToRect(pointTolerance)
}

// MemoryStore keeps points in process, with one R-tree per category for
// nearest-point lookups.
type MemoryStore struct {
	mu     sync.RWMutex
	points types.Collections
	trees  map[types.Category]*rtreego.Rtree
}

func NewMemoryStore(points []types.PointOfInterest) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(points)
	return s
}

// Replace swaps the whole content of the store.
func (s *MemoryStore) Replace(points []types.PointOfInterest) {
	cols := GroupByCategory(points)
	trees := make(map[types.Category]*rtreego.Rtree, len(cols))
	for cat, list := range cols {
		tree := rtreego.NewTree(2, 25, 50)
		for _, p := range list {
			if p.Coord != nil {
				tree.Insert(indexedPoint{point: p})
			}
		}
		trees[cat] = tree
	}

	s.mu.Lock()
	s.points = cols
	s.trees = trees
	s.mu.Unlock()
}

func (s *MemoryStore) AllPoints(_ context.Context, category types.Category) ([]types.PointOfInterest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.PointOfInterest, len(s.points[category]))
	copy(out, s.points[category])
	return out, nil
}

func (s *MemoryStore) GetPoints(_ context.Context, category types.Category, limit, offset int) ([]types.PointOfInterest, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.points[category]
	total := len(all)
	if offset >= total || limit <= 0 {
		return []types.PointOfInterest{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]types.PointOfInterest, end-offset)
	copy(out, all[offset:end])
	return out, total, nil
}

// GetNearbyPoints takes the planar nearest candidates from the R-tree and
// orders them by great-circle distance.
func (s *MemoryStore) GetNearbyPoints(_ context.Context, category types.Category, at types.GeoPoint, size int) ([]types.PointOfInterest, error) {
	s.mu.RLock()
	tree := s.trees[category]
	s.mu.RUnlock()

	if tree == nil || size <= 0 {
		return []types.PointOfInterest{}, nil
	}

	// Candidates are picked by planar lon/lat distance, which can miss the true
	// nearest point near the poles or the antimeridian. Fine at campus scale.
	candidates := tree.NearestNeighbors(size*4, rtreego.Point{at.Longitude, at.Latitude})
	out := make([]types.PointOfInterest, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		out = append(out, c.(indexedPoint).point)
	}
	sortByDistance(out, at)
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func sortByDistance(points []types.PointOfInterest, at types.GeoPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return geo.DistanceKm(at, *points[i].Coord) < geo.DistanceKm(at, *points[j].Coord)
	})
}
