package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/kafka"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/repository"
	"github.com/Domenick1991/airport/internal/ticketqr"
)

type BookingUseCase interface {
	CreateOrder(ctx context.Context, userID string, tickets []domain.TicketRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.List[domain.Order], error)
	GetOrder(ctx context.Context, id int64, userID string) (*domain.Order, error)
	TicketQR(ctx context.Context, orderID, ticketID int64, userID string) ([]byte, error)
	VerifyTicket(ctx context.Context, code string) (*domain.Ticket, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// TicketCodec renders ticket QR codes and opens the codes scanned from them.
type TicketCodec interface {
	PNG(p ticketqr.Payload) ([]byte, error)
	Open(code string) (ticketqr.Payload, error)
}

type BookingService struct {
	orders             repository.OrderRepository
	flights            repository.FlightRepository
	producer           Producer
	qr                 TicketCodec
	ordersTopic        string
	notificationsTopic string
	log                *logger.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithProducer(producer Producer, ordersTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.ordersTopic = ordersTopic
	}
}

func NewBookingService(
	orders repository.OrderRepository,
	flights repository.FlightRepository,
	qr TicketCodec,
	log *logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		orders:  orders,
		flights: flights,
		qr:      qr,
		log:     log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

const (
	emptyTicketsMessage = "This list may not be empty."
	takenSeatMessage    = "The fields flight, row, seat must make a unique set."
)

// CreateOrder books every requested seat for userID or none of them.
func (s *BookingService) CreateOrder(ctx context.Context, userID string, requests []domain.TicketRequest) (*domain.Order, error) {
	if len(requests) == 0 {
		return nil, domain.NewValidationError("tickets", emptyTicketsMessage)
	}
	if err := s.precheck(ctx, requests); err != nil {
		return nil, err
	}

	order := &domain.Order{UserID: userID, Tickets: make([]domain.Ticket, len(requests))}
	for i, r := range requests {
		order.Tickets[i] = domain.Ticket{FlightID: r.FlightID, Row: r.Row, Seat: r.Seat}
	}

	// The unique (flight, row, seat) constraint settles races the precheck cannot see.
	if err := s.orders.CreateWithTickets(ctx, order); err != nil {
		return nil, err
	}

	s.log.LogOrder("CREATE", order.ID, fmt.Sprintf("%d ticket(s) for user %s", len(order.Tickets), userID))
	if err := s.publish(ctx, order); err != nil {
		s.log.Warnf("kafka", "failed to publish order_created for order %d: %v", order.ID, err)
	}
	return order, nil
}

// precheck rejects unknown flights, out-of-range seats, seats already sold
// and seats requested twice, reporting each by ticket index.
func (s *BookingService) precheck(ctx context.Context, requests []domain.TicketRequest) error {
	errs := domain.NewTicketErrors(len(requests))
	layouts := make(map[int64]domain.SeatLayout)
	missing := make(map[int64]bool)
	taken := make(map[int64]map[domain.Seat]bool)
	requested := make(map[int64]map[domain.Seat]bool)

	for i, r := range requests {
		if missing[r.FlightID] {
			errs.Add(i, "flight", invalidFlight(r.FlightID))
			continue
		}
		layout, ok := layouts[r.FlightID]
		if !ok {
			var err error
			layout, err = s.flights.Layout(ctx, r.FlightID)
			if errors.Is(err, domain.ErrNotFound) {
				missing[r.FlightID] = true
				errs.Add(i, "flight", invalidFlight(r.FlightID))
				continue
			}
			if err != nil {
				return err
			}
			layouts[r.FlightID] = layout

			seats, err := s.flights.TakenSeats(ctx, r.FlightID)
			if err != nil {
				return err
			}
			taken[r.FlightID] = make(map[domain.Seat]bool, len(seats))
			for _, seat := range seats {
				taken[r.FlightID][seat] = true
			}
			requested[r.FlightID] = make(map[domain.Seat]bool)
		}

		if err := domain.ValidateSeat(r.Row, r.Seat, layout); err != nil {
			var rangeErr *domain.SeatRangeError
			if errors.As(err, &rangeErr) {
				errs.Add(i, rangeErr.Field, rangeErr.Message)
				continue
			}
			return err
		}

		seat := domain.Seat{Row: r.Row, Seat: r.Seat}
		if taken[r.FlightID][seat] || requested[r.FlightID][seat] {
			errs.Add(i, "non_field_errors", takenSeatMessage)
			continue
		}
		requested[r.FlightID][seat] = true
	}
	return errs.Err()
}

func invalidFlight(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func (s *BookingService) ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.List[domain.Order], error) {
	return s.orders.ListByUser(ctx, filter)
}

func (s *BookingService) GetOrder(ctx context.Context, id int64, userID string) (*domain.Order, error) {
	return s.orders.GetForUser(ctx, id, userID)
}

// TicketQR renders the QR code of one ticket of the caller's order.
func (s *BookingService) TicketQR(ctx context.Context, orderID, ticketID int64, userID string) ([]byte, error) {
	order, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range order.Tickets {
		if t.ID != ticketID {
			continue
		}
		return s.qr.PNG(ticketqr.Payload{
			TicketID: t.ID,
			OrderID:  order.ID,
			FlightID: t.FlightID,
			Row:      t.Row,
			Seat:     t.Seat,
			UserID:   order.UserID,
		})
	}
	return nil, fmt.Errorf("ticket %d: %w", ticketID, domain.ErrNotFound)
}

const invalidCodeMessage = "Ticket code is invalid or the ticket no longer exists."

// VerifyTicket resolves a scanned QR code to the ticket it was issued for.
// A code whose ticket was deleted or changed since issue is rejected.
func (s *BookingService) VerifyTicket(ctx context.Context, code string) (*domain.Ticket, error) {
	p, err := s.qr.Open(code)
	if err != nil {
		if errors.Is(err, ticketqr.ErrInvalidPayload) {
			return nil, domain.NewValidationError("code", invalidCodeMessage)
		}
		return nil, err
	}

	order, err := s.orders.GetForUser(ctx, p.OrderID, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("code", invalidCodeMessage)
	}
	if err != nil {
		return nil, err
	}
	for _, t := range order.Tickets {
		if t.ID == p.TicketID && t.FlightID == p.FlightID && t.Row == p.Row && t.Seat == p.Seat {
			s.log.LogOrder("VERIFY", order.ID, fmt.Sprintf("ticket %d row %d seat %d", t.ID, t.Row, t.Seat))
			return &t, nil
		}
	}
	return nil, domain.NewValidationError("code", invalidCodeMessage)
}

func (s *BookingService) publish(ctx context.Context, order *domain.Order) error {
	if s.producer == nil || s.ordersTopic == "" {
		return nil
	}
	event := kafka.OrderEvent{
		Type:      kafka.EventOrderCreated,
		OrderID:   order.ID,
		UserID:    order.UserID,
		CreatedAt: order.CreatedAt,
		Tickets:   make([]kafka.TicketEvent, len(order.Tickets)),
	}
	for i, t := range order.Tickets {
		event.Tickets[i] = kafka.TicketEvent{TicketID: t.ID, FlightID: t.FlightID, Row: t.Row, Seat: t.Seat}
	}

	key := strconv.FormatInt(order.ID, 10)
	if err := s.producer.Publish(ctx, s.ordersTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
