package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_Permissions(t *testing.T) {
	s := newTestServer()
	s.catalog.On("ListCrews", mock.Anything, mock.Anything).Return(domain.List[domain.Crew]{Items: []domain.Crew{}}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/crews/", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/airport/crews/", nil), s.token(t, "1", false))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodPost, "/api/airport/crews/", strings.NewReader(`{"first_name":"A","last_name":"B"}`)), s.token(t, "1", false))
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.catalog.AssertNotCalled(t, "CreateCrew", mock.Anything, mock.Anything)
}

func TestCatalogHandler_ListAirplanes(t *testing.T) {
	s := newTestServer()
	s.catalog.On("ListAirplanes", mock.Anything, domain.AirplaneFilter{AirplaneTypeID: 2, Name: "ur", Page: domain.Page{Number: 1, Size: 10}}).
		Return(domain.List[domain.Airplane]{Count: 1, Items: []domain.Airplane{
			{ID: 1, Name: "UR-PSA", Rows: 10, SeatsInRow: 6, AirplaneTypeID: 2, AirplaneType: "Narrow body"},
		}}, nil).Once()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/airplanes/?airplane_type=2&airplane_name=ur", nil), s.token(t, "1", false))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"next":null,"previous":null,"results":[
		{"id":1,"name":"UR-PSA","rows":10,"seats_in_row":6,"capacity":60,"airplane_type":"Narrow body"}
	]}`, w.Body.String())
}

func TestCatalogHandler_ListRoutes(t *testing.T) {
	s := newTestServer()
	s.catalog.On("ListRoutes", mock.Anything, domain.RouteFilter{SourceID: 1, Page: domain.Page{Number: 1, Size: 10}}).
		Return(domain.List[domain.Route]{Count: 1, Items: []domain.Route{
			{ID: 4, SourceID: 1, DestinationID: 2, Distance: 2100, SourceName: "Boryspil", DestinationName: "Heathrow"},
		}}, nil).Once()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/routes/?source=1", nil), s.token(t, "1", false))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"next":null,"previous":null,"results":[
		{"id":4,"source_name":"Boryspil","destination_name":"Heathrow","distance":2100}
	]}`, w.Body.String())
}

func TestCatalogHandler_CreateRoute(t *testing.T) {
	s := newTestServer()
	admin := s.token(t, "2", true)

	s.catalog.On("CreateRoute", mock.Anything, &domain.Route{SourceID: 1, DestinationID: 2, Distance: 2100}).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Route).ID = 4 }).
		Return(nil).Once()
	s.catalog.On("CreateRoute", mock.Anything, &domain.Route{SourceID: 1, DestinationID: 1, Distance: 10}).
		Return(domain.NewValidationError("non_field_errors", "Source and destination airports must differ.")).Once()

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/airport/routes/", strings.NewReader(`{"source":1,"destination":2,"distance":2100}`)), admin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":4,"source":1,"destination":2,"distance":2100}`, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodPost, "/api/airport/routes/", strings.NewReader(`{"source":1,"destination":1,"distance":10}`)), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"non_field_errors":["Source and destination airports must differ."]}`, w.Body.String())
}

func TestCatalogHandler_CreateAirportInternalError(t *testing.T) {
	s := newTestServer()
	s.catalog.On("CreateAirport", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/airport/airports/", strings.NewReader(`{"name":"Heathrow","closest_big_city":"London"}`)), s.token(t, "2", true))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestCatalogHandler_CreateAirportBadJSON(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/airport/airports/", strings.NewReader(`{"name":12}`)), s.token(t, "2", true))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "name")
}

func multipartImage(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCatalogHandler_UploadAirportImage(t *testing.T) {
	s := newTestServer()
	admin := s.token(t, "2", true)
	url := "/media/airports/boryspil-1.png"

	s.catalog.On("UploadAirportImage", mock.Anything, int64(1), mock.Anything).
		Return(&domain.Airport{ID: 1, Name: "Boryspil", ClosestBigCity: "Kyiv", Image: &url}, nil).Once()
	s.catalog.On("UploadAirportImage", mock.Anything, int64(2), mock.Anything).
		Return(nil, domain.ErrInvalidImage).Once()

	body, contentType := multipartImage(t, "image", []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/airport/airports/1/upload-image/", body)
	req.Header.Set("Content-Type", contentType)
	w := s.do(req, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"Boryspil","closest_big_city":"Kyiv","image":"/media/airports/boryspil-1.png"}`, w.Body.String())

	body, contentType = multipartImage(t, "image", []byte("text"))
	req = httptest.NewRequest(http.MethodPost, "/api/airport/airports/2/upload-image/", body)
	req.Header.Set("Content-Type", contentType)
	w = s.do(req, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"image"`)

	body, contentType = multipartImage(t, "file", []byte("text"))
	req = httptest.NewRequest(http.MethodPost, "/api/airport/airports/1/upload-image/", body)
	req.Header.Set("Content-Type", contentType)
	w = s.do(req, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"image":["No file was submitted."]}`, w.Body.String())

	s.catalog.AssertExpectations(t)
}

func TestCatalogHandler_UploadImageStaffOnly(t *testing.T) {
	s := newTestServer()

	for _, url := range []string{
		"/api/airport/airports/1/upload-image/",
		"/api/airport/airplane-types/1/upload-image/",
	} {
		body, contentType := multipartImage(t, "image", []byte("\x89PNG\r\n\x1a\n"))
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", contentType)
		assert.Equal(t, http.StatusUnauthorized, s.do(req, "").Code, url)

		body, contentType = multipartImage(t, "image", []byte("\x89PNG\r\n\x1a\n"))
		req = httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", contentType)
		assert.Equal(t, http.StatusForbidden, s.do(req, s.token(t, "7", false)).Code, url)
	}

	s.catalog.AssertNotCalled(t, "UploadAirportImage", mock.Anything, mock.Anything, mock.Anything)
	s.catalog.AssertNotCalled(t, "UploadAirplaneTypeImage", mock.Anything, mock.Anything, mock.Anything)
}
