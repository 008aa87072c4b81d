package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	log     *logger.Logger
}

func NewFlightHandler(service flights.FlightUseCase, log *logger.Logger) *FlightHandler {
	return &FlightHandler{service: service, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id/", h.get)
	router.PUT("/:id/", h.update)
	router.PATCH("/:id/", h.partialUpdate)
	router.DELETE("/:id/", h.delete)
}

type flightRequest struct {
	Route         int64      `json:"route" binding:"required"`
	Airplane      int64      `json:"airplane" binding:"required"`
	DepartureTime *time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   *time.Time `json:"arrival_time" binding:"required"`
	Crews         []int64    `json:"crews"`
}

type flightPatchRequest struct {
	Route         *int64     `json:"route"`
	Airplane      *int64     `json:"airplane"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Crews         *[]int64   `json:"crews"`
}

type flightResponse struct {
	ID            int64     `json:"id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Route         int64     `json:"route"`
	Airplane      int64     `json:"airplane"`
	Crews         []int64   `json:"crews"`
}

type flightListResponse struct {
	ID               int64     `json:"id"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	SourceName       string    `json:"source_name"`
	DestinationName  string    `json:"destination_name"`
	AirplaneCapacity int       `json:"airplane_capacity"`
	TicketsAvailable int       `json:"tickets_available"`
}

type seatResponse struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type flightDetailResponse struct {
	ID               int64            `json:"id"`
	DepartureTime    time.Time        `json:"departure_time"`
	ArrivalTime      time.Time        `json:"arrival_time"`
	Route            routeResponse    `json:"route"`
	Airplane         airplaneResponse `json:"airplane"`
	TakenPlaces      []seatResponse   `json:"taken_places"`
	Crews            []crewResponse   `json:"crews"`
	TicketsAvailable int              `json:"tickets_available"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	crews := f.CrewIDs
	if crews == nil {
		crews = []int64{}
	}
	return flightResponse{
		ID:            f.ID,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Route:         f.RouteID,
		Airplane:      f.AirplaneID,
		Crews:         crews,
	}
}

func toFlightListResponse(f domain.FlightSummary) flightListResponse {
	return flightListResponse{
		ID:               f.ID,
		DepartureTime:    f.DepartureTime,
		ArrivalTime:      f.ArrivalTime,
		SourceName:       f.SourceName,
		DestinationName:  f.DestinationName,
		AirplaneCapacity: f.AirplaneCapacity,
		TicketsAvailable: f.TicketsAvailable,
	}
}

func toFlightDetailResponse(d domain.FlightDetail) flightDetailResponse {
	resp := flightDetailResponse{
		ID:               d.ID,
		DepartureTime:    d.DepartureTime,
		ArrivalTime:      d.ArrivalTime,
		Route:            toRouteResponse(d.Route),
		Airplane:         toAirplaneResponse(d.Airplane),
		TakenPlaces:      make([]seatResponse, 0, len(d.TakenPlaces)),
		Crews:            make([]crewResponse, 0, len(d.Crews)),
		TicketsAvailable: d.TicketsAvailable,
	}
	for _, s := range d.TakenPlaces {
		resp.TakenPlaces = append(resp.TakenPlaces, seatResponse{Row: s.Row, Seat: s.Seat})
	}
	for _, c := range d.Crews {
		resp.Crews = append(resp.Crews, toCrewResponse(c))
	}
	return resp
}

func (h *FlightHandler) list(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	q := newQueryParser(c)
	filter := domain.FlightFilter{
		RouteID:    q.id("route"),
		AirplaneID: q.id("airplane"),
		CrewIDs:    q.ids("crew"),
		Page:       page,
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			q.errs.Add("date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		} else {
			filter.Date = &day
		}
	}
	if !q.ok() {
		return
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toFlightListResponse)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toFlightDetailResponse(*detail))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if !bindJSON(c, &req) {
		return
	}
	flight := domain.Flight{
		RouteID:       req.Route,
		AirplaneID:    req.Airplane,
		DepartureTime: *req.DepartureTime,
		ArrivalTime:   *req.ArrivalTime,
		CrewIDs:       req.Crews,
	}
	if err := h.service.Create(c.Request.Context(), &flight); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req flightRequest
	if !bindJSON(c, &req) {
		return
	}
	crews := req.Crews
	if crews == nil {
		crews = []int64{}
	}
	h.applyPatch(c, id, flights.Patch{
		RouteID:       &req.Route,
		AirplaneID:    &req.Airplane,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		CrewIDs:       &crews,
	})
}

func (h *FlightHandler) partialUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req flightPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	h.applyPatch(c, id, flights.Patch{
		RouteID:       req.Route,
		AirplaneID:    req.Airplane,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		CrewIDs:       req.Crews,
	})
}

func (h *FlightHandler) applyPatch(c *gin.Context, id int64, patch flights.Patch) {
	flight, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
