package user_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinebook/infras/otel/mocks"
	"dinebook/internal/domains/user/model/dto"
	"dinebook/internal/domains/user/service"
	"dinebook/internal/handlers/user"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "5c2e8f14-7a3b-4d9e-b6a1-2f8c0d4e9a37"

type fakeService struct {
	service.User

	created  []dto.CreateUserRequest
	filter   *gDto.FilterGroup
	getErr   error
	deleted  []string
	conflict bool
}

func (f *fakeService) Create(_ context.Context, req dto.CreateUserRequest) (dto.UserResponse, error) {
	if f.conflict {
		return dto.UserResponse{}, failure.Conflict("username already taken")
	}

	f.created = append(f.created, req)

	return dto.UserResponse{ID: "u-1", Username: req.Username}, nil
}

func (f *fakeService) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error) {
	f.filter = &filter

	return dto.GetUsersResponse{}, nil
}

func (f *fakeService) Get(_ context.Context, id string) (dto.UserResponse, error) {
	if f.getErr != nil {
		return dto.UserResponse{}, f.getErr
	}

	return dto.UserResponse{ID: id}, nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)

	return nil
}

func do(svc *fakeService, method, target, body string) *httptest.ResponseRecorder {
	handler := user.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewBufferString(body)))

	return rec
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		conflict bool
		want     int
	}{
		{
			name: "restaurant account",
			body: `{"username":"rosella","email":"rosella@example.com","password":"restaurantpass","role":"restaurant"}`,
			want: http.StatusCreated,
		},
		{
			name: "unknown role",
			body: `{"username":"rosella","email":"rosella@example.com","password":"restaurantpass","role":"chef"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "short password",
			body: `{"username":"rosella","email":"rosella@example.com","password":"short","role":"diner"}`,
			want: http.StatusBadRequest,
		},
		{
			name:     "taken username",
			body:     `{"username":"rosella","email":"rosella@example.com","password":"restaurantpass","role":"diner"}`,
			conflict: true,
			want:     http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{conflict: tt.conflict}

			rec := do(svc, http.MethodPost, "/users/", tt.body)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.want == http.StatusCreated {
				require.Len(t, svc.created, 1)
				assert.Equal(t, "rosella", svc.created[0].Username)
			}
		})
	}
}

func TestGetUsersFilter(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		want        int
		wantFilters int
	}{
		{name: "no filter", query: "", want: http.StatusOK, wantFilters: 0},
		{name: "role", query: "?role=diner", want: http.StatusOK, wantFilters: 1},
		{name: "role active and username", query: "?role=restaurant&active=true&username=ros", want: http.StatusOK, wantFilters: 3},
		{name: "unknown role", query: "?role=chef", want: http.StatusBadRequest},
		{name: "active is not a bool", query: "?active=maybe", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}

			rec := do(svc, http.MethodGet, "/users/"+tt.query, "")

			require.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.want != http.StatusOK {
				assert.Nil(t, svc.filter)

				return
			}

			require.NotNil(t, svc.filter)
			assert.Len(t, svc.filter.Filters, tt.wantFilters)
		})
	}
}

func TestUserFilterUsernameIsCaseInsensitiveLike(t *testing.T) {
	filter := dto.UserFilter{Username: "Ros", Active: "false"}

	group := filter.FilterGroup()
	where, args := group.GetWhereClause()

	assert.Contains(t, where, "LOWER(users.username) LIKE LOWER(:username)")
	assert.Contains(t, where, "users.active = :users_active")
	assert.Equal(t, "%Ros%", args["username"])
	assert.Equal(t, false, args["users_active"])
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := &fakeService{getErr: failure.NotFound("user not found")}

	rec := do(svc, http.MethodGet, "/users/"+userID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(svc, http.MethodGet, "/users/u-404", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	svc := &fakeService{}

	rec := do(svc, http.MethodDelete, "/users/"+userID, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{userID}, svc.deleted)
}
