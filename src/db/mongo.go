package db

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"campusmap/src/types"
)

// MongoStore reads the three point collections from a document database. The
// documents look like {_id, name, coord: {latitude, longitude}, desc, lines}.
type MongoStore struct {
	Client   *mongo.Client
	Database *mongo.Database
}

type mongoPoint struct {
	ID    bson.RawValue   `bson:"_id"`
	Name  string          `bson:"name"`
	Coord *types.GeoPoint `bson:"coord,omitempty"`
	Desc  string          `bson:"desc,omitempty"`
	Lines string          `bson:"lines,omitempty"`
}

type mongoPointWrite struct {
	ID    string          `bson:"_id"`
	Name  string          `bson:"name"`
	Coord *types.GeoPoint `bson:"coord,omitempty"`
	Desc  string          `bson:"desc,omitempty"`
	Lines string          `bson:"lines,omitempty"`
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetRetryReads(false).
		SetReadPreference(readpref.Primary())

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	return &MongoStore{Client: client, Database: client.Database(dbName)}, nil
}

func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.Client.Disconnect(ctx)
}

func (ms *MongoStore) collection(category types.Category) (*mongo.Collection, error) {
	if !category.Valid() {
		return nil, errors.Errorf("unknown category %q", category)
	}
	return ms.Database.Collection(category.Info().Collection), nil
}

func (ms *MongoStore) find(ctx context.Context, category types.Category, opts *options.FindOptions) ([]types.PointOfInterest, error) {
	coll, err := ms.collection(category)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", coll.Name())
	}
	defer cursor.Close(ctx)

	var docs []mongoPoint
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode %s", coll.Name())
	}

	points := make([]types.PointOfInterest, 0, len(docs))
	for _, d := range docs {
		points = append(points, types.PointOfInterest{
			ID:       idString(d.ID),
			Name:     d.Name,
			Coord:    d.Coord,
			Desc:     d.Desc,
			Lines:    d.Lines,
			Category: category,
		})
	}
	return points, nil
}

func idString(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case bsontype.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	}
	return ""
}

func (ms *MongoStore) AllPoints(ctx context.Context, category types.Category) ([]types.PointOfInterest, error) {
	return ms.find(ctx, category, options.Find())
}

func (ms *MongoStore) GetPoints(ctx context.Context, category types.Category, limit, offset int) ([]types.PointOfInterest, int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	points, err := ms.find(ctx, category, opts)
	if err != nil {
		return nil, 0, err
	}

	coll, _ := ms.collection(category)
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", coll.Name())
	}
	return points, int(count), nil
}

// GetNearbyPoints orders the collection by great-circle distance; the
// collections are small and coord is not a GeoJSON field, so no geo index is
// involved.
func (ms *MongoStore) GetNearbyPoints(ctx context.Context, category types.Category, at types.GeoPoint, size int) ([]types.PointOfInterest, error) {
	all, err := ms.AllPoints(ctx, category)
	if err != nil {
		return nil, err
	}

	located := all[:0]
	for _, p := range all {
		if p.Coord != nil {
			located = append(located, p)
		}
	}
	sortByDistance(located, at)
	if len(located) > size {
		located = located[:size]
	}
	return located, nil
}

// SavePoints upserts points into their category collections.
func (ms *MongoStore) SavePoints(ctx context.Context, points []types.PointOfInterest) error {
	for cat, list := range GroupByCategory(points) {
		if len(list) == 0 {
			continue
		}
		coll, err := ms.collection(cat)
		if err != nil {
			return err
		}

		models := make([]mongo.WriteModel, 0, len(list))
		for _, p := range list {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": p.ID}).
				SetReplacement(mongoPointWrite{ID: p.ID, Name: p.Name, Coord: p.Coord, Desc: p.Desc, Lines: p.Lines}).
				SetUpsert(true))
		}

		if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return errors.Wrapf(err, "save %s", coll.Name())
		}
	}
	return nil
}
