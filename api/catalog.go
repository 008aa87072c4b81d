package api

import (
	"io"
	"net/http"

	"github.com/Domenick1991/airport/internal/auth"
	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service catalog.CatalogUseCase
	log     *logger.Logger
}

func NewCatalogHandler(service catalog.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, log: log}
}

// Register mounts every catalog resource; access rules come from the group.
func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	airports := router.Group("/airports")
	airports.GET("/", h.listAirports)
	airports.POST("/", h.createAirport)
	airports.POST("/:id/upload-image/", auth.RequireAdmin(), h.uploadAirportImage)

	types := router.Group("/airplane-types")
	types.GET("/", h.listAirplaneTypes)
	types.POST("/", h.createAirplaneType)
	types.POST("/:id/upload-image/", auth.RequireAdmin(), h.uploadAirplaneTypeImage)

	airplanes := router.Group("/airplanes")
	airplanes.GET("/", h.listAirplanes)
	airplanes.POST("/", h.createAirplane)

	routes := router.Group("/routes")
	routes.GET("/", h.listRoutes)
	routes.POST("/", h.createRoute)

	crews := router.Group("/crews")
	crews.GET("/", h.listCrews)
	crews.POST("/", h.createCrew)
}

type airportRequest struct {
	Name           string `json:"name" binding:"required"`
	ClosestBigCity string `json:"closest_big_city" binding:"required"`
}

type airportResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	ClosestBigCity string  `json:"closest_big_city"`
	Image          *string `json:"image"`
}

func toAirportResponse(a domain.Airport) airportResponse {
	return airportResponse{ID: a.ID, Name: a.Name, ClosestBigCity: a.ClosestBigCity, Image: a.Image}
}

func (h *CatalogHandler) listAirports(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	list, err := h.service.ListAirports(c.Request.Context(), domain.AirportFilter{Name: c.Query("name"), Page: page})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toAirportResponse)
}

func (h *CatalogHandler) createAirport(c *gin.Context) {
	var req airportRequest
	if !bindJSON(c, &req) {
		return
	}
	airport := domain.Airport{Name: req.Name, ClosestBigCity: req.ClosestBigCity}
	if err := h.service.CreateAirport(c.Request.Context(), &airport); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toAirportResponse(airport))
}

func (h *CatalogHandler) uploadAirportImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.withImage(c, func(image io.Reader) (any, error) {
		airport, err := h.service.UploadAirportImage(c.Request.Context(), id, image)
		if err != nil {
			return nil, err
		}
		return toAirportResponse(*airport), nil
	})
}

type airplaneTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

type airplaneTypeResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

func toAirplaneTypeResponse(t domain.AirplaneType) airplaneTypeResponse {
	return airplaneTypeResponse{ID: t.ID, Name: t.Name, Image: t.Image}
}

func (h *CatalogHandler) listAirplaneTypes(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	list, err := h.service.ListAirplaneTypes(c.Request.Context(), domain.AirplaneTypeFilter{Name: c.Query("name"), Page: page})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toAirplaneTypeResponse)
}

func (h *CatalogHandler) createAirplaneType(c *gin.Context) {
	var req airplaneTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	t := domain.AirplaneType{Name: req.Name}
	if err := h.service.CreateAirplaneType(c.Request.Context(), &t); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toAirplaneTypeResponse(t))
}

func (h *CatalogHandler) uploadAirplaneTypeImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.withImage(c, func(image io.Reader) (any, error) {
		t, err := h.service.UploadAirplaneTypeImage(c.Request.Context(), id, image)
		if err != nil {
			return nil, err
		}
		return toAirplaneTypeResponse(*t), nil
	})
}

// withImage opens the multipart "image" field and passes it to upload.
func (h *CatalogHandler) withImage(c *gin.Context, upload func(io.Reader) (any, error)) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{"No file was submitted."}})
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer file.Close()

	resp, err := upload(file)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type airplaneRequest struct {
	Name         string `json:"name" binding:"required"`
	Rows         int    `json:"rows"`
	SeatsInRow   int    `json:"seats_in_row"`
	AirplaneType int64  `json:"airplane_type" binding:"required"`
}

type airplaneResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Rows         int    `json:"rows"`
	SeatsInRow   int    `json:"seats_in_row"`
	Capacity     int    `json:"capacity"`
	AirplaneType string `json:"airplane_type"`
}

func toAirplaneResponse(a domain.Airplane) airplaneResponse {
	return airplaneResponse{
		ID:           a.ID,
		Name:         a.Name,
		Rows:         a.Rows,
		SeatsInRow:   a.SeatsInRow,
		Capacity:     a.Capacity(),
		AirplaneType: a.AirplaneType,
	}
}

func (h *CatalogHandler) listAirplanes(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	q := newQueryParser(c)
	filter := domain.AirplaneFilter{AirplaneTypeID: q.id("airplane_type"), Name: c.Query("airplane_name"), Page: page}
	if !q.ok() {
		return
	}
	list, err := h.service.ListAirplanes(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toAirplaneResponse)
}

func (h *CatalogHandler) createAirplane(c *gin.Context) {
	var req airplaneRequest
	if !bindJSON(c, &req) {
		return
	}
	airplane := domain.Airplane{Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow, AirplaneTypeID: req.AirplaneType}
	if err := h.service.CreateAirplane(c.Request.Context(), &airplane); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toAirplaneResponse(airplane))
}

type routeRequest struct {
	Source      int64 `json:"source" binding:"required"`
	Destination int64 `json:"destination" binding:"required"`
	Distance    int   `json:"distance"`
}

type routeResponse struct {
	ID          int64 `json:"id"`
	Source      int64 `json:"source"`
	Destination int64 `json:"destination"`
	Distance    int   `json:"distance"`
}

type routeListResponse struct {
	ID              int64  `json:"id"`
	SourceName      string `json:"source_name"`
	DestinationName string `json:"destination_name"`
	Distance        int    `json:"distance"`
}

func toRouteResponse(r domain.Route) routeResponse {
	return routeResponse{ID: r.ID, Source: r.SourceID, Destination: r.DestinationID, Distance: r.Distance}
}

func toRouteListResponse(r domain.Route) routeListResponse {
	return routeListResponse{ID: r.ID, SourceName: r.SourceName, DestinationName: r.DestinationName, Distance: r.Distance}
}

func (h *CatalogHandler) listRoutes(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	q := newQueryParser(c)
	filter := domain.RouteFilter{SourceID: q.id("source"), DestinationID: q.id("destination"), Page: page}
	if !q.ok() {
		return
	}
	list, err := h.service.ListRoutes(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toRouteListResponse)
}

func (h *CatalogHandler) createRoute(c *gin.Context) {
	var req routeRequest
	if !bindJSON(c, &req) {
		return
	}
	route := domain.Route{SourceID: req.Source, DestinationID: req.Destination, Distance: req.Distance}
	if err := h.service.CreateRoute(c.Request.Context(), &route); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toRouteResponse(route))
}

type crewRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type crewResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toCrewResponse(c domain.Crew) crewResponse {
	return crewResponse{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
}

func (h *CatalogHandler) listCrews(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	list, err := h.service.ListCrews(c.Request.Context(), domain.CrewFilter{Name: c.Query("name"), Page: page})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toCrewResponse)
}

func (h *CatalogHandler) createCrew(c *gin.Context) {
	var req crewRequest
	if !bindJSON(c, &req) {
		return
	}
	crew := domain.Crew{FirstName: req.FirstName, LastName: req.LastName}
	if err := h.service.CreateCrew(c.Request.Context(), &crew); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toCrewResponse(crew))
}
