package api

import (
	"github.com/Domenick1991/airport/internal/auth"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Catalog *CatalogHandler
	Flights *FlightHandler
	Orders  *OrderHandler
}

// NewRouter mounts the REST API under /api/airport with per-resource access rules.
func NewRouter(authn *auth.Authenticator, log *logger.Logger, h Handlers) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), authn.Authenticate())

	api := router.Group("/api/airport")
	h.Catalog.Register(api.Group("", auth.AdminOrAuthenticatedReadOnly()))
	h.Flights.Register(api.Group("/flights", auth.AdminOrReadOnly()))
	h.Orders.Register(api.Group("/orders", auth.RequireAuthenticated()))
	h.Orders.RegisterCheckIn(api.Group("/tickets", auth.RequireAdmin()))
	return router
}
