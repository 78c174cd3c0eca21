package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dinebook/config"
	"dinebook/infras/jwt"
	jwtMocks "dinebook/infras/jwt/mocks"
	"dinebook/infras/otel/mocks"
	"dinebook/permissions"
	"dinebook/shared/constant"
	"dinebook/shared/role"
	"dinebook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type seen struct {
	userID string
	role   role.Role
	exp    time.Time
}

func newRouter(t *testing.T, jwtService jwt.JWT, cfg *config.Config) (http.Handler, *seen) {
	t.Helper()

	mw := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), permissions.Get(), cfg)
	got := &seen{}

	record := func(w http.ResponseWriter, r *http.Request) {
		got.userID, _ = r.Context().Value(constant.ContextKeyUserID).(string)
		got.role, _ = r.Context().Value(constant.ContextKeyUserRole).(role.Role)
		got.exp, _ = r.Context().Value(constant.ContextKeyTokenExp).(time.Time)
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)
	router.Route("/v1", func(r chi.Router) {
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", record)
			r.Post("/", record)
		})
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", record)
		})
	})

	return router, got
}

func TestAuthRBAC(t *testing.T) {
	exp := time.Date(2024, 6, 1, 12, 15, 0, 0, time.UTC)

	claims := func(id string, r role.Role) *jwt.Claims {
		return &jwt.Claims{
			UserID:           id,
			Role:             r,
			TokenID:          "tok-" + id,
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(exp)},
		}
	}

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		apiKey   string
		claims   *jwt.Claims
		tokenErr error
		wantCode int
		wantRole role.Role
	}{
		{
			name:     "public route anonymous",
			method:   http.MethodGet,
			path:     "/v1/restaurants",
			wantCode: http.StatusOK,
			wantRole: role.Anonymous,
		},
		{
			name:     "public route with token resolves identity",
			method:   http.MethodGet,
			path:     "/v1/restaurants",
			token:    "diner",
			claims:   claims("diner-1", role.Diner),
			wantCode: http.StatusOK,
			wantRole: role.Diner,
		},
		{
			name:     "private route without token",
			method:   http.MethodPost,
			path:     "/v1/reservations",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "role outside the route set",
			method:   http.MethodPost,
			path:     "/v1/reservations",
			token:    "admin",
			claims:   claims("admin-1", role.Admin),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "diner books",
			method:   http.MethodPost,
			path:     "/v1/reservations",
			token:    "diner",
			claims:   claims("diner-1", role.Diner),
			wantCode: http.StatusOK,
			wantRole: role.Diner,
		},
		{
			name:     "revoked token",
			method:   http.MethodGet,
			path:     "/v1/restaurants",
			token:    "revoked",
			tokenErr: jwt.ErrRevokedToken,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "admin only create",
			method:   http.MethodPost,
			path:     "/v1/restaurants",
			token:    "restaurant",
			claims:   claims("rest-1", role.Restaurant),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "api key acts as admin",
			method:   http.MethodPost,
			path:     "/v1/restaurants",
			apiKey:   "internal-key",
			wantCode: http.StatusOK,
			wantRole: role.Admin,
		},
		{
			name:     "wrong api key",
			method:   http.MethodPost,
			path:     "/v1/restaurants",
			apiKey:   "guess",
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jwtService := jwtMocks.NewMockJWT(ctrl)

			if tt.token != "" {
				jwtService.EXPECT().ValidateToken(gomock.Any(), tt.token, jwt.AccessToken).Return(tt.claims, tt.tokenErr)
			}

			cfg := &config.Config{}
			cfg.App.APIKey = "internal-key"

			router, got := newRouter(t, jwtService, cfg)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+tt.token)
			}

			if tt.apiKey != "" {
				req.Header.Set(constant.RequestHeaderAPIKey, tt.apiKey)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantRole, got.role)

				if tt.claims != nil {
					assert.Equal(t, tt.claims.UserID, got.userID)
					assert.Equal(t, exp, got.exp)
				}
			}
		})
	}
}
