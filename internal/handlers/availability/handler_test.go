package availability_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinebook/infras/otel/mocks"
	"dinebook/internal/domains/availability/model/dto"
	"dinebook/internal/domains/availability/service"
	"dinebook/internal/handlers/availability"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	"dinebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slotID = "3a9d5e1c-6b2f-4c8e-9f10-7d4b2a6c8e51"

type fakeService struct {
	service.Availability

	blockCalls []bool
	blockErr   error
	filter     dto.AvailabilityFilter
}

func (f *fakeService) SetBlock(_ context.Context, id string, blocked bool) (dto.AvailabilityResponse, error) {
	f.blockCalls = append(f.blockCalls, blocked)

	if f.blockErr != nil {
		return dto.AvailabilityResponse{}, f.blockErr
	}

	state := "open"
	if blocked {
		state = "blocked"
	}

	return dto.AvailabilityResponse{ID: id, IsBlocked: blocked, State: state}, nil
}

func (f *fakeService) GetAll(_ context.Context, _ gDto.QueryParams, filter dto.AvailabilityFilter) (dto.GetAvailabilitiesResponse, error) {
	f.filter = filter

	return dto.GetAvailabilitiesResponse{}, nil
}

func do(svc *fakeService, method, target string) *httptest.ResponseRecorder {
	handler := availability.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestBlockAndUnblock(t *testing.T) {
	svc := &fakeService{}

	rec := do(svc, http.MethodPost, "/availabilities/"+slotID+"/block")
	require.Equal(t, http.StatusOK, rec.Code)

	var body response.Data[dto.AvailabilityResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, "blocked", body.Data.State)

	rec = do(svc, http.MethodPost, "/availabilities/"+slotID+"/unblock")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []bool{true, false}, svc.blockCalls)
}

func TestBlockReservedSlot(t *testing.T) {
	svc := &fakeService{blockErr: failure.InvalidTransition("only an open slot can be blocked")}

	rec := do(svc, http.MethodPost, "/availabilities/"+slotID+"/block")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, failure.KindInvalidTransition, body.Error.Kind)
}

func TestGetAvailabilitiesFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
		want     dto.AvailabilityFilter
	}{
		{
			name:     "state and date",
			query:    "?state=open&date=2024-06-01",
			wantCode: http.StatusOK,
			want:     dto.AvailabilityFilter{State: "open", Date: "2024-06-01"},
		},
		{
			name:     "unknown state",
			query:    "?state=maybe",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "restaurant is not a uuid",
			query:    "?restaurant_id=abc",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}

			rec := do(svc, http.MethodGet, "/availabilities/"+tt.query)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.want, svc.filter)
		})
	}
}

func TestMalformedSlotID(t *testing.T) {
	svc := &fakeService{}

	rec := do(svc, http.MethodPost, "/availabilities/a-1/block")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.blockCalls)

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "id must be a valid UUID", body.Error.Message)
}
