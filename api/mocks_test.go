package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airport/internal/auth"
	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) CreateAirport(ctx context.Context, airport *domain.Airport) error {
	return m.Called(ctx, airport).Error(0)
}

func (m *MockCatalogUseCase) ListAirports(ctx context.Context, filter domain.AirportFilter) (domain.List[domain.Airport], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.Airport]), args.Error(1)
}

func (m *MockCatalogUseCase) UploadAirportImage(ctx context.Context, id int64, image io.Reader) (*domain.Airport, error) {
	args := m.Called(ctx, id, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockCatalogUseCase) CreateAirplaneType(ctx context.Context, t *domain.AirplaneType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockCatalogUseCase) ListAirplaneTypes(ctx context.Context, filter domain.AirplaneTypeFilter) (domain.List[domain.AirplaneType], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.AirplaneType]), args.Error(1)
}

func (m *MockCatalogUseCase) UploadAirplaneTypeImage(ctx context.Context, id int64, image io.Reader) (*domain.AirplaneType, error) {
	args := m.Called(ctx, id, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AirplaneType), args.Error(1)
}

func (m *MockCatalogUseCase) CreateAirplane(ctx context.Context, airplane *domain.Airplane) error {
	return m.Called(ctx, airplane).Error(0)
}

func (m *MockCatalogUseCase) ListAirplanes(ctx context.Context, filter domain.AirplaneFilter) (domain.List[domain.Airplane], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.Airplane]), args.Error(1)
}

func (m *MockCatalogUseCase) CreateRoute(ctx context.Context, route *domain.Route) error {
	return m.Called(ctx, route).Error(0)
}

func (m *MockCatalogUseCase) ListRoutes(ctx context.Context, filter domain.RouteFilter) (domain.List[domain.Route], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.Route]), args.Error(1)
}

func (m *MockCatalogUseCase) CreateCrew(ctx context.Context, crew *domain.Crew) error {
	return m.Called(ctx, crew).Error(0)
}

func (m *MockCatalogUseCase) ListCrews(ctx context.Context, filter domain.CrewFilter) (domain.List[domain.Crew], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.Crew]), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.FlightSummary]), args.Error(1)
}

func (m *MockFlightUseCase) Get(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightDetail), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id int64, patch flights.Patch) (*domain.Flight, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateOrder(ctx context.Context, userID string, tickets []domain.TicketRequest) (*domain.Order, error) {
	args := m.Called(ctx, userID, tickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBookingUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.List[domain.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.Order]), args.Error(1)
}

func (m *MockBookingUseCase) GetOrder(ctx context.Context, id int64, userID string) (*domain.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBookingUseCase) TicketQR(ctx context.Context, orderID, ticketID int64, userID string) ([]byte, error) {
	args := m.Called(ctx, orderID, ticketID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBookingUseCase) VerifyTicket(ctx context.Context, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

type testServer struct {
	router  *gin.Engine
	authn   *auth.Authenticator
	catalog *MockCatalogUseCase
	flights *MockFlightUseCase
	orders  *MockBookingUseCase
}

func newTestServer() *testServer {
	s := &testServer{
		authn:   auth.NewAuthenticator("test-secret"),
		catalog: &MockCatalogUseCase{},
		flights: &MockFlightUseCase{},
		orders:  &MockBookingUseCase{},
	}
	log := logger.Discard()
	s.router = NewRouter(s.authn, log, Handlers{
		Catalog: NewCatalogHandler(s.catalog, log),
		Flights: NewFlightHandler(s.flights, log),
		Orders:  NewOrderHandler(s.orders, log),
	})
	return s
}

func (s *testServer) token(t *testing.T, userID string, staff bool) string {
	t.Helper()
	token, err := s.authn.IssueToken(userID, staff, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
