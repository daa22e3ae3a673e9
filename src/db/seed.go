package db

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"campusmap/src/types"
)

// ReadCSV reads a tab-separated seed file with a header row and the columns
// category, id, name, lat, lon, desc, lines. Empty lat/lon leave the point
// without coordinates.
func ReadCSV(filePath string) ([]types.PointOfInterest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	defer file.Close()

	return ParseCSV(file)
}

func ParseCSV(r io.Reader) ([]types.PointOfInterest, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}

	var points []types.PointOfInterest
	for i, record := range records {
		if i == 0 {
			continue
		}
		point, err := parseRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "seed line %d", i+1)
		}
		points = append(points, point)
	}
	return points, nil
}

func parseRecord(record []string) (types.PointOfInterest, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	category, err := types.ParseCategory(field(0))
	if err != nil {
		return types.PointOfInterest{}, err
	}

	point := types.PointOfInterest{
		Category: category,
		ID:       field(1),
		Name:     field(2),
		Desc:     field(5),
		Lines:    field(6),
	}
	if point.ID == "" {
		return types.PointOfInterest{}, errors.New("missing id")
	}

	if field(3) == "" && field(4) == "" {
		return point, nil
	}
	latitude, err := strconv.ParseFloat(field(3), 64)
	if err != nil {
		return types.PointOfInterest{}, errors.Wrap(err, "latitude")
	}
	longitude, err := strconv.ParseFloat(field(4), 64)
	if err != nil {
		return types.PointOfInterest{}, errors.Wrap(err, "longitude")
	}
	coord := types.GeoPoint{Latitude: latitude, Longitude: longitude}
	if err := coord.Validate(); err != nil {
		return types.PointOfInterest{}, errors.Wrap(err, "coordinates")
	}
	point.Coord = &coord
	return point, nil
}

// GroupByCategory splits points into per-category collections, keeping order.
func GroupByCategory(points []types.PointOfInterest) types.Collections {
	cols := types.EmptyCollections()
	for _, p := range points {
		if !p.Category.Valid() {
			continue
		}
		cols[p.Category] = append(cols[p.Category], p)
	}
	return cols
}
