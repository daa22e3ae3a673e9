package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusmap/src/apperr"
	"campusmap/src/geo"
	"campusmap/src/types"
)

const streamBuffer = 8

type LocationEvent struct {
	Location types.GeoPoint       `json:"location"`
	Walk     *geo.WalkDescription `json:"walk,omitempty"`
}

// HandlePublishLocation handles POST /api/location/:device with a
// {latitude, longitude} body.
func (s *Server) HandlePublishLocation(c *gin.Context) {
	var p types.GeoPoint
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, apperr.Validation("Invalid request payload"))
		return
	}

	delivered, err := s.Hub.Publish(c.Param("device"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

// HandleLocationDenied handles POST /api/location/:device/denied.
func (s *Server) HandleLocationDenied(c *gin.Context) {
	s.Hub.Deny(c.Param("device"))
	c.JSON(http.StatusOK, gin.H{"status": apperr.KindPermissionDenied.String()})
}

// HandleLocationStream handles GET /api/location/:device/stream as
// server-sent events. With ?category=&id= each event also carries the walk to
// that point. The subscription is cancelled when the client goes away, and a
// denial ends the stream with a permission_denied event.
func (s *Server) HandleLocationStream(c *gin.Context) {
	var target *types.GeoPoint
	if rawCat := c.Query("category"); rawCat != "" {
		cat, ok := parseCategory(c, rawCat)
		if !ok {
			return
		}
		p, err := s.Catalog.Find(cat, c.Query("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		target = p.Coord
	}

	device := c.Param("device")
	updates := make(chan types.GeoPoint, streamBuffer)
	sub, err := s.Hub.Watch(device, func(p types.GeoPoint) {
		select {
		case updates <- p:
		default:
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Cancel()

	if latest, ok := s.Hub.Latest(device); ok {
		select {
		case updates <- latest:
		default:
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sub.Done():
			if err := sub.Err(); err != nil {
				_, body := apperr.ToResponse(err)
				c.SSEvent(body.Kind, body)
			}
			return false
		case p := <-updates:
			ev := LocationEvent{Location: p}
			if target != nil {
				walk := geo.DescribeWalk(p, *target)
				ev.Walk = &walk
			}
			c.SSEvent("location", ev)
			return true
		}
	})
}
