package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinebook/shared/failure"
	"dinebook/transport/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind failure.Kind
		wantMsg  string
	}{
		{
			name:     "already booked",
			err:      failure.AlreadyBooked("slot has already been booked"),
			wantCode: http.StatusConflict,
			wantKind: failure.KindAlreadyBooked,
			wantMsg:  "slot has already been booked",
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("lookup: %w", failure.NotFound("availability not found")),
			wantCode: http.StatusNotFound,
			wantKind: failure.KindNotFound,
			wantMsg:  "availability not found",
		},
		{
			name:     "invalid transition",
			err:      failure.InvalidTransition("slot is not blocked"),
			wantCode: http.StatusBadRequest,
			wantKind: failure.KindInvalidTransition,
			wantMsg:  "slot is not blocked",
		},
		{
			name:     "driver error hides its text",
			err:      errors.New(`pq: relation "reservations" does not exist`),
			wantCode: http.StatusInternalServerError,
			wantKind: failure.KindInternal,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body response.Error
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error.Kind)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"id": "r1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"id":"r1"}}`, rec.Body.String())
}
