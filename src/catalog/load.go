// Package catalog loads the point collections from the store and keeps the
// snapshot the API serves.
package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"campusmap/src/apperr"
	"campusmap/src/types"
)

// Load reads every category concurrently and joins the results. Any failure
// yields empty collections and a data-load error; partial results are never
// returned and nothing is retried.
func Load(ctx context.Context, store types.DataStore) (types.Collections, error) {
	results := make([][]types.PointOfInterest, len(types.Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range types.Categories {
		g.Go(func() error {
			points, err := store.AllPoints(gctx, cat)
			if err != nil {
				return err
			}
			results[i] = points
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.EmptyCollections(), apperr.DataLoad(err).WithOp("catalog.Load")
	}

	cols := types.EmptyCollections()
	for i, cat := range types.Categories {
		tagged := make([]types.PointOfInterest, len(results[i]))
		for j, p := range results[i] {
			p.Category = cat
			tagged[j] = p
		}
		cols[cat] = tagged
	}
	return cols, nil
}
