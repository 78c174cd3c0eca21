package reservation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dinebook/infras/otel/mocks"
	availabilityModel "dinebook/internal/domains/availability/model"
	"dinebook/internal/domains/reservation/model/dto"
	"dinebook/internal/handlers/reservation"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	"dinebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	slotID        = "6f1c1a52-8a8e-4f55-9d47-3c0e6b1f2a10"
	reservationID = "0b7e4d2a-91c3-4f6a-8e25-5a1d3c9f7b64"
)

type fakeService struct {
	create func(req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	cancel func(id string) error
	getAll func(filter dto.ReservationFilter) (dto.GetReservationsResponse, error)
}

func (f *fakeService) Create(_ context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error) {
	return f.create(req)
}

func (f *fakeService) Cancel(_ context.Context, id string) error {
	return f.cancel(id)
}

func (f *fakeService) GetAll(_ context.Context, _ gDto.QueryParams, filter dto.ReservationFilter) (dto.GetReservationsResponse, error) {
	return f.getAll(filter)
}

func (f *fakeService) Get(_ context.Context, _ string) (dto.ReservationResponse, error) {
	return dto.ReservationResponse{}, failure.NotFound("reservation not found")
}

func serve(svc *fakeService, method, target, body string) *httptest.ResponseRecorder {
	handler := reservation.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error
}

func TestCreateReservation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		result   error
		wantCode int
		wantKind failure.Kind
	}{
		{
			name:     "booked",
			body:     `{"availability_id":"` + slotID + `"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing availability",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "availability is not a uuid",
			body:     `{"availability_id":"slot-1"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "lost the race",
			body:     `{"availability_id":"` + slotID + `"}`,
			result:   availabilityModel.ErrAlreadyBooked(),
			wantCode: http.StatusConflict,
			wantKind: failure.KindAlreadyBooked,
		},
		{
			name:     "slot blocked",
			body:     `{"availability_id":"` + slotID + `"}`,
			result:   failure.SlotUnavailable("availability is blocked"),
			wantCode: http.StatusConflict,
			wantKind: failure.KindSlotUnavailable,
		},
		{
			name:     "slot missing",
			body:     `{"availability_id":"` + slotID + `"}`,
			result:   failure.NotFound("availability not found"),
			wantCode: http.StatusNotFound,
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &fakeService{
				create: func(req dto.CreateReservationRequest) (dto.ReservationResponse, error) {
					called = true

					if tt.result != nil {
						return dto.ReservationResponse{}, tt.result
					}

					return dto.ReservationResponse{ID: "r-1", AvailabilityID: req.AvailabilityID}, nil
				},
			}

			rec := serve(svc, http.MethodPost, "/reservations/", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusBadRequest {
				assert.False(t, called, "service must not be reached with an invalid body")
			}

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeError(t, rec).Kind)
			}

			if tt.wantCode == http.StatusCreated {
				var body response.Data[dto.ReservationResponse]
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.NotNil(t, body.Data)
				assert.Equal(t, slotID, body.Data.AvailabilityID)
			}
		})
	}
}

func TestCancelReservation(t *testing.T) {
	tests := []struct {
		name     string
		result   error
		wantCode int
	}{
		{name: "cancelled", wantCode: http.StatusNoContent},
		{name: "not a participant", result: failure.Forbidden("not your reservation"), wantCode: http.StatusForbidden},
		{name: "already gone", result: failure.NotFound("reservation not found"), wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			svc := &fakeService{
				cancel: func(id string) error {
					gotID = id

					return tt.result
				},
			}

			rec := serve(svc, http.MethodDelete, "/reservations/"+reservationID, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, reservationID, gotID)
		})
	}
}

func TestGetReservationsFilter(t *testing.T) {
	var got dto.ReservationFilter
	svc := &fakeService{
		getAll: func(filter dto.ReservationFilter) (dto.GetReservationsResponse, error) {
			got = filter

			return dto.GetReservationsResponse{}, nil
		},
	}

	rec := serve(svc, http.MethodGet, "/reservations/?date=2024-06-01&restaurant_id="+slotID, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, slotID, got.RestaurantID)

	rec = serve(svc, http.MethodGet, "/reservations/?date=June", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReservationByIDNotFound(t *testing.T) {
	rec := serve(&fakeService{}, http.MethodGet, "/reservations/"+reservationID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, failure.KindNotFound, decodeError(t, rec).Kind)
}

func TestCancelReservationMalformedID(t *testing.T) {
	svc := &fakeService{
		cancel: func(string) error {
			t.Fatal("cancel must not run for a malformed id")

			return nil
		},
	}

	rec := serve(svc, http.MethodDelete, "/reservations/r-42", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, failure.KindValidation, decodeError(t, rec).Kind)
}
