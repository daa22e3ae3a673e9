package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"campusmap/src/apperr"
	"campusmap/src/types"
)

type ErrorResponse = apperr.Response

// respondError writes err as JSON, using the status of a typed *apperr.Error
// and 500 for anything else.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.ToResponse(err))
}

func parseCategory(c *gin.Context, raw string) (types.Category, bool) {
	cat, err := types.ParseCategory(raw)
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return "", false
	}
	return cat, true
}

// parsePoint reads lat/lon query parameters. present is false when both are
// absent.
func parsePoint(c *gin.Context) (p types.GeoPoint, present bool, ok bool) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" && lonStr == "" {
		return types.GeoPoint{}, false, true
	}
	if latStr == "" || lonStr == "" {
		respondError(c, apperr.Validation("Missing latitude or longitude"))
		return types.GeoPoint{}, true, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondError(c, apperr.Validation("Invalid latitude"))
		return types.GeoPoint{}, true, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		respondError(c, apperr.Validation("Invalid longitude"))
		return types.GeoPoint{}, true, false
	}

	p = types.GeoPoint{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		respondError(c, apperr.Validation("Coordinates out of range"))
		return types.GeoPoint{}, true, false
	}
	return p, true, true
}
