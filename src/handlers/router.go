package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"campusmap/src/catalog"
	"campusmap/src/location"
	"campusmap/src/logger"
	"campusmap/src/token"
)

type Server struct {
	Catalog     *catalog.Service
	Hub         *location.Hub
	Issuer      *token.Issuer
	Log         *logger.Logger
	CORSOrigins []string
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.Log), s.cors())

	r.GET("/health", s.HandleHealth)
	r.POST("/api/get_token", s.Issuer.GetToken)

	api := r.Group("/api")
	{
		api.GET("/points", s.HandleVisiblePoints)
		api.GET("/points.geojson", s.HandleVisibleGeoJSON)
		api.GET("/points/:category", s.HandleListPoints)
		api.GET("/points/:category/:id", s.HandlePointDetail)

		api.POST("/location/:device", s.HandlePublishLocation)
		api.POST("/location/:device/denied", s.HandleLocationDenied)
		api.GET("/location/:device/stream", s.HandleLocationStream)
	}

	protected := r.Group("/api", s.Issuer.Middleware())
	{
		protected.GET("/recommend", s.HandleRecommend)
		protected.POST("/reload", s.HandleReload)
	}

	return r
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.CORSOrigins) == 0 || (len(s.CORSOrigins) == 1 && s.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.CORSOrigins
	}
	return cors.New(cfg)
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := float64(time.Since(start).Microseconds()) / 1000
		status := c.Writer.Status()
		if len(c.Errors) > 0 {
			log.HTTPError(c.Request.Method, c.FullPath(), status, c.Errors.Last().Err, c.ClientIP())
			return
		}
		log.HTTPRequest(c.Request.Method, c.FullPath(), status, latency, c.ClientIP())
	}
}

func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"catalog": s.Catalog.Status(),
	})
}
