package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airport/internal/auth"
	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service booking.BookingUseCase
	log     *logger.Logger
}

func NewOrderHandler(service booking.BookingUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id/", h.get)
	router.GET("/:id/tickets/:ticket_id/qr/", h.qr)
}

// RegisterCheckIn mounts ticket verification for gate staff.
func (h *OrderHandler) RegisterCheckIn(router *gin.RouterGroup) {
	router.POST("/verify/", h.verify)
}

type ticketRequest struct {
	Flight *int64 `json:"flight"`
	Row    *int   `json:"row"`
	Seat   *int   `json:"seat"`
}

type createOrderRequest struct {
	Tickets []ticketRequest `json:"tickets" binding:"required"`
}

type verifyTicketRequest struct {
	Code string `json:"code" binding:"required"`
}

type verifiedTicketResponse struct {
	ID     int64 `json:"id"`
	Order  int64 `json:"order"`
	Row    int   `json:"row"`
	Seat   int   `json:"seat"`
	Flight int64 `json:"flight"`
}

type ticketResponse struct {
	ID     int64 `json:"id"`
	Row    int   `json:"row"`
	Seat   int   `json:"seat"`
	Flight int64 `json:"flight"`
}

type ticketListResponse struct {
	ID     int64          `json:"id"`
	Row    int            `json:"row"`
	Seat   int            `json:"seat"`
	Flight flightResponse `json:"flight"`
}

type orderResponse struct {
	ID        int64            `json:"id"`
	Tickets   []ticketResponse `json:"tickets"`
	CreatedAt time.Time        `json:"created_at"`
}

type orderListResponse struct {
	ID        int64                `json:"id"`
	Tickets   []ticketListResponse `json:"tickets"`
	CreatedAt time.Time            `json:"created_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]ticketResponse, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		resp.Tickets = append(resp.Tickets, ticketResponse{ID: t.ID, Row: t.Row, Seat: t.Seat, Flight: t.FlightID})
	}
	return resp
}

func toOrderListResponse(o domain.Order) orderListResponse {
	resp := orderListResponse{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]ticketListResponse, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		flight := domain.Flight{ID: t.FlightID}
		if t.Flight != nil {
			flight = *t.Flight
		}
		resp.Tickets = append(resp.Tickets, ticketListResponse{ID: t.ID, Row: t.Row, Seat: t.Seat, Flight: toFlightResponse(flight)})
	}
	return resp
}

func (h *OrderHandler) list(c *gin.Context) {
	principal, _ := auth.FromContext(c)
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	list, err := h.service.ListOrders(c.Request.Context(), domain.OrderFilter{UserID: principal.UserID, Page: page})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writePage(c, page, list, toOrderListResponse)
}

func (h *OrderHandler) create(c *gin.Context) {
	principal, _ := auth.FromContext(c)
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	requests := make([]domain.TicketRequest, len(req.Tickets))
	missing := domain.NewTicketErrors(len(req.Tickets))
	for i, t := range req.Tickets {
		for field, present := range map[string]bool{"flight": t.Flight != nil, "row": t.Row != nil, "seat": t.Seat != nil} {
			if !present {
				missing.Add(i, field, "This field is required.")
			}
		}
		if missing.Has(i) {
			continue
		}
		requests[i] = domain.TicketRequest{FlightID: *t.Flight, Row: *t.Row, Seat: *t.Seat}
	}
	if err := missing.Err(); err != nil {
		writeError(c, h.log, err)
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), principal.UserID, requests)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

func (h *OrderHandler) get(c *gin.Context) {
	principal, _ := auth.FromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id, principal.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(*order))
}

func (h *OrderHandler) qr(c *gin.Context) {
	principal, _ := auth.FromContext(c)
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	png, err := h.service.TicketQR(c.Request.Context(), orderID, ticketID, principal.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *OrderHandler) verify(c *gin.Context) {
	var req verifyTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.service.VerifyTicket(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, verifiedTicketResponse{
		ID:     ticket.ID,
		Order:  ticket.OrderID,
		Row:    ticket.Row,
		Seat:   ticket.Seat,
		Flight: ticket.FlightID,
	})
}
