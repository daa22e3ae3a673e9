package db

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/olivere/elastic/v7"
	"github.com/pkg/errors"

	"campusmap/src/logger"
	"campusmap/src/types"
)

const (
	maxResultWindow = 20000
	scrollPageSize  = 1000
)

type elasticPoint struct {
	ID       string            `json:"id"`
	Category string            `json:"category"`
	Name     string            `json:"name"`
	Desc     string            `json:"desc,omitempty"`
	Lines    string            `json:"lines,omitempty"`
	Location *elastic.GeoPoint `json:"location,omitempty"`
}

func toElastic(p types.PointOfInterest) elasticPoint {
	doc := elasticPoint{
		ID:       p.ID,
		Category: string(p.Category),
		Name:     p.Name,
		Desc:     p.Desc,
		Lines:    p.Lines,
	}
	if p.Coord != nil {
		doc.Location = elastic.GeoPointFromLatLon(p.Coord.Latitude, p.Coord.Longitude)
	}
	return doc
}

func (doc elasticPoint) point() types.PointOfInterest {
	p := types.PointOfInterest{
		ID:       doc.ID,
		Category: types.Category(doc.Category),
		Name:     doc.Name,
		Desc:     doc.Desc,
		Lines:    doc.Lines,
	}
	if doc.Location != nil {
		p.Coord = &types.GeoPoint{Latitude: doc.Location.Lat, Longitude: doc.Location.Lon}
	}
	return p
}

// docID keeps ids unique across categories, which the source collections do
// not guarantee.
func docID(p types.PointOfInterest) string {
	return string(p.Category) + ":" + p.ID
}

// ElasticStore mirrors every category into a single index with a geo_point
// location field.
type ElasticStore struct {
	Client *elastic.Client
	Index  string
	log    *logger.Logger
}

func NewElasticStore(url, index string, log *logger.Logger) (*ElasticStore, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, errors.Wrap(err, "create elastic client")
	}
	return &ElasticStore{Client: client, Index: index, log: log}, nil
}

func (es *ElasticStore) decodeHits(result *elastic.SearchResult) []types.PointOfInterest {
	points := make([]types.PointOfInterest, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc elasticPoint
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			es.log.Warn("skipping undecodable hit", slog.String("id", hit.Id), slog.String("error", err.Error()))
			continue
		}
		points = append(points, doc.point())
	}
	return points
}

func categoryQuery(category types.Category) *elastic.BoolQuery {
	return elastic.NewBoolQuery().Filter(elastic.NewTermQuery("category", string(category)))
}

// AllPoints scrolls through the category so that the read does not depend on
// the index's max_result_window.
func (es *ElasticStore) AllPoints(ctx context.Context, category types.Category) ([]types.PointOfInterest, error) {
	scroll := es.Client.Scroll(es.Index).
		Query(categoryQuery(category)).
		Sort("id", true).
		Size(scrollPageSize).
		KeepAlive("1m")
	defer func() {
		if err := scroll.Clear(context.Background()); err != nil {
			es.log.StoreError("clear scroll", err)
		}
	}()

	points := []types.PointOfInterest{}
	for {
		result, err := scroll.Do(ctx)
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "scroll %s", category)
		}
		points = append(points, es.decodeHits(result)...)
	}
}

func (es *ElasticStore) GetPoints(ctx context.Context, category types.Category, limit, offset int) ([]types.PointOfInterest, int, error) {
	result, err := es.Client.Search().
		Index(es.Index).
		Query(categoryQuery(category)).
		Sort("id", true).
		Size(limit).
		From(offset).
		Do(ctx)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "search %s", category)
	}

	count, err := es.Client.Count().Index(es.Index).Query(categoryQuery(category)).Do(ctx)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", category)
	}

	return es.decodeHits(result), int(count), nil
}

func (es *ElasticStore) GetNearbyPoints(ctx context.Context, category types.Category, at types.GeoPoint, size int) ([]types.PointOfInterest, error) {
	query := categoryQuery(category).Filter(elastic.NewExistsQuery("location"))

	result, err := es.Client.Search().
		Index(es.Index).
		Query(query).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(at.Latitude, at.Longitude).
			Asc().
			Unit("km").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "nearby %s", category)
	}
	return es.decodeHits(result), nil
}

// CreateIndexWithMapping creates the index from the JSON mapping at
// pathSchema unless it already exists.
func (es *ElasticStore) CreateIndexWithMapping(ctx context.Context, pathSchema string) error {
	exists, err := es.Client.IndexExists(es.Index).Do(ctx)
	if err != nil {
		return errors.Wrap(err, "check index")
	}
	if exists {
		es.log.Info("index already exists", slog.String("index", es.Index))
		return nil
	}

	schemaBytes, err := os.ReadFile(pathSchema)
	if err != nil {
		return errors.Wrap(err, "read index schema")
	}

	createIndex, err := es.Client.CreateIndex(es.Index).BodyString(string(schemaBytes)).Do(ctx)
	if err != nil {
		return errors.Wrap(err, "create index")
	}
	if !createIndex.Acknowledged {
		es.log.Warn("create index was not acknowledged", slog.String("index", es.Index))
	}

	settings := map[string]interface{}{
		"index": map[string]interface{}{
			"max_result_window": maxResultWindow,
		},
	}
	if _, err := es.Client.IndexPutSettings(es.Index).BodyJson(settings).Do(ctx); err != nil {
		return errors.Wrap(err, "update index settings")
	}

	es.log.Info("index created", slog.String("index", es.Index))
	return nil
}

// SavePoints bulk-indexes points. Per-item failures are logged and counted.
func (es *ElasticStore) SavePoints(ctx context.Context, points []types.PointOfInterest) error {
	if len(points) == 0 {
		return nil
	}

	bulkRequest := es.Client.Bulk()
	for _, p := range points {
		req := elastic.NewBulkIndexRequest().Index(es.Index).Id(docID(p)).Doc(toElastic(p))
		bulkRequest = bulkRequest.Add(req)
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return errors.Wrap(err, "bulk index")
	}

	failed := 0
	for _, item := range bulkResponse.Failed() {
		failed++
		if item.Error != nil {
			es.log.Warn("bulk item failed", slog.String("id", item.Id), slog.String("reason", item.Error.Reason))
		}
	}
	if failed > 0 {
		return errors.Errorf("bulk index: %d of %d points failed", failed, len(points))
	}
	return nil
}
