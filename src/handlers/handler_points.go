package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campusmap/src/apperr"
	"campusmap/src/geo"
	"campusmap/src/nav"
	"campusmap/src/screen"
	"campusmap/src/search"
	"campusmap/src/types"
)

const (
	pageSize       = 10
	recommendCount = 3
)

type PointsPage struct {
	Name     string                  `json:"name"`
	Total    int                     `json:"total"`
	Points   []types.PointOfInterest `json:"points"`
	Page     int                     `json:"page"`
	LastPage int                     `json:"last_page"`
	PrevPage int                     `json:"prev_page,omitempty"`
	NextPage int                     `json:"next_page,omitempty"`
}

type VisibleResponse struct {
	Query    string            `json:"query"`
	Toggles  search.Toggles    `json:"toggles"`
	Points   types.Collections `json:"points"`
	Count    int               `json:"count"`
	// Unplaced counts matches hidden for lack of coordinates.
	Unplaced int               `json:"unplaced,omitempty"`
}

type NearbyPoint struct {
	Point types.PointOfInterest `json:"point"`
	Walk  types.WalkingEstimate `json:"walk"`
}

type Recommendation struct {
	Name   string        `json:"name"`
	Points []NearbyPoint `json:"points"`
}

func parseToggles(c *gin.Context) (search.Toggles, bool) {
	t := search.AllEnabled()
	for _, cat := range types.Categories {
		raw := c.Query(string(cat))
		if raw == "" {
			continue
		}
		on, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperr.Validation("Invalid value for "+string(cat)))
			return t, false
		}
		t = t.Set(cat, on)
	}
	return t, true
}

func (s *Server) visible(c *gin.Context) (search.Toggles, search.Result, bool) {
	toggles, ok := parseToggles(c)
	if !ok {
		return toggles, search.Result{}, false
	}
	return toggles, s.Catalog.Visible(toggles, c.Query("q")), true
}

// HandleVisiblePoints handles GET /api/points?q=&food=&pickup=&faculty=.
func (s *Server) HandleVisiblePoints(c *gin.Context) {
	toggles, res, ok := s.visible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, VisibleResponse{
		Query:    c.Query("q"),
		Toggles:  toggles,
		Points:   res.Points,
		Count:    res.Points.Count(),
		Unplaced: len(res.Dropped),
	})
}

// HandleVisibleGeoJSON serves the same set as HandleVisiblePoints as a
// FeatureCollection, one Point feature per point.
func (s *Server) HandleVisibleGeoJSON(c *gin.Context) {
	_, res, ok := s.visible(c)
	if !ok {
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, cat := range types.Categories {
		for _, p := range res.Points[cat] {
			f := geojson.NewFeature(orb.Point{p.Coord.Longitude, p.Coord.Latitude})
			f.ID = string(cat) + ":" + p.ID
			f.Properties["id"] = p.ID
			f.Properties["name"] = p.Name
			f.Properties["category"] = string(cat)
			f.Properties["detail"] = p.DetailText()
			fc.Append(f)
		}
	}
	c.JSON(http.StatusOK, fc)
}

// HandleListPoints handles GET /api/points/:category?page=.
func (s *Server) HandleListPoints(c *gin.Context) {
	cat, ok := parseCategory(c, c.Param("category"))
	if !ok {
		return
	}

	pageStr := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		respondError(c, apperr.Validation("Invalid 'page' value: "+pageStr))
		return
	}

	points, total, err := s.Catalog.Page(c.Request.Context(), cat, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, apperr.DataLoad(err))
		return
	}

	lastPage := (total + pageSize - 1) / pageSize
	if page > lastPage && total > 0 {
		respondError(c, apperr.Validation("Invalid 'page' value: "+pageStr))
		return
	}

	data := PointsPage{
		Name:     cat.Info().Label,
		Points:   points,
		Total:    total,
		Page:     page,
		LastPage: lastPage,
	}
	if page > 1 {
		data.PrevPage = page - 1
	}
	if page < lastPage {
		data.NextPage = page + 1
	}

	c.JSON(http.StatusOK, data)
}

// HandlePointDetail handles GET /api/points/:category/:id. The walk estimate
// uses lat/lon when given, or the latest position of ?device=.
func (s *Server) HandlePointDetail(c *gin.Context) {
	cat, ok := parseCategory(c, c.Param("category"))
	if !ok {
		return
	}
	platform, err := nav.ParsePlatform(c.Query("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	user, present, ok := parsePoint(c)
	if !ok {
		return
	}
	var userPtr *types.GeoPoint
	if present {
		userPtr = &user
	} else if device := c.Query("device"); device != "" {
		if latest, found := s.Hub.Latest(device); found {
			userPtr = &latest
		}
	}

	p, err := s.Catalog.Find(cat, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, screen.BuildDetail(p, userPtr, platform))
}

// HandleRecommend handles GET /api/recommend?category=&lat=&lon=.
func (s *Server) HandleRecommend(c *gin.Context) {
	cat, ok := parseCategory(c, c.DefaultQuery("category", string(types.Food)))
	if !ok {
		return
	}
	at, present, ok := parsePoint(c)
	if !ok {
		return
	}
	if !present {
		respondError(c, apperr.Validation("Missing latitude or longitude"))
		return
	}

	points, err := s.Catalog.Nearby(c.Request.Context(), cat, at, recommendCount)
	if err != nil {
		respondError(c, apperr.DataLoad(err))
		return
	}

	response := Recommendation{Name: "Recommendation", Points: make([]NearbyPoint, 0, len(points))}
	for _, p := range points {
		if p.Coord == nil {
			continue
		}
		response.Points = append(response.Points, NearbyPoint{Point: p, Walk: geo.Estimate(at, *p.Coord)})
	}
	c.JSON(http.StatusOK, response)
}

// HandleReload handles POST /api/reload.
func (s *Server) HandleReload(c *gin.Context) {
	if err := s.Catalog.Reload(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Catalog.Status())
}
