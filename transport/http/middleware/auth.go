package middleware

import (
	"context"
	"errors"
	"net/http"

	"dinebook/config"
	"dinebook/infras/jwt"
	"dinebook/infras/otel"
	"dinebook/permissions"
	"dinebook/shared/constant"
	"dinebook/shared/failure"
	"dinebook/shared/role"
	"dinebook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type skipAuthKey struct{}

var skipAuth = skipAuthKey{}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// route resolves the chi pattern for r so permissions match "/v1/x/{id}"
// rather than the concrete path.
func (m *authRoleImpl) route(r *http.Request) (string, permissions.Permission) {
	path := r.URL.Path

	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		if pattern := rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path); pattern != "" {
			path = pattern
		}
	}

	if m.permission == nil {
		return path, permissions.Permission{}
	}

	return path, m.permission.FindPermissions(path, r.Method)
}

// tokenFailure maps a token validation error to the 401 message clients see.
func tokenFailure(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return failure.Unauthorized("token has expired")
	case errors.Is(err, jwt.ErrRevokedToken):
		return failure.Unauthorized("token has been revoked")
	case errors.Is(err, jwt.ErrInvalidClaim):
		return failure.Unauthorized("invalid token claims")
	default:
		return failure.Unauthorized("invalid token")
	}
}

func skipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipAuth).(bool)

	return skip
}

// Auth resolves the bearer token into the request identity. Public routes
// let requests without an Authorization header through as anonymous; a
// token that is present must always be valid.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipped(r.Context()) {
			next.ServeHTTP(w, r)

			return
		}

		identity, err := m.authenticate(r)
		if err != nil {
			response.WithError(w, err)

			return
		}

		if identity == nil {
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(identity))
	})
}

// authenticate returns nil without error for anonymous access to a public
// route.
func (m *authRoleImpl) authenticate(r *http.Request) (_ context.Context, err error) {
	ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	path, permission := m.route(r)

	scope.SetAttributes(map[string]any{
		"middleware.type": "auth",
		"http.path":       path,
		"http.method":     r.Method,
	})

	header := r.Header.Get(constant.RequestHeaderAuthorization)
	if header == constant.Empty {
		if permission.Public || m.permission == nil || m.permission.Skip {
			return nil, nil
		}

		return nil, failure.Unauthorized("missing authorization header")
	}

	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, failure.Unauthorized("invalid authorization header format")
	}

	claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
	if err != nil {
		return nil, tokenFailure(err)
	}

	identity := r.Context()
	identity = context.WithValue(identity, constant.ContextKeyUserID, claims.UserID)
	identity = context.WithValue(identity, constant.ContextKeyUserEmail, claims.Email)
	identity = context.WithValue(identity, constant.ContextKeyUserRole, claims.Role)
	identity = context.WithValue(identity, constant.ContextKeyTokenID, claims.TokenID)

	if claims.ExpiresAt != nil {
		identity = context.WithValue(identity, constant.ContextKeyTokenExp, claims.ExpiresAt.Time)
	}

	scope.SetAttribute("user_role", claims.Role)

	return identity, nil
}

// RBAC rejects roles the route does not admit. It runs after Auth; an
// anonymous caller on a protected route gets 401 rather than 403.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipped(r.Context()) || (m.permission != nil && m.permission.Skip) {
			next.ServeHTTP(w, r)

			return
		}

		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if m.permission == nil {
			response.WithError(w, failure.ForbiddenError)

			return
		}

		_, permission := m.route(r)
		userRole, _ := r.Context().Value(constant.ContextKeyUserRole).(role.Role)

		if permission.Allows(userRole) {
			next.ServeHTTP(w, r)

			return
		}

		var err error = failure.ForbiddenError
		if userRole == role.Anonymous {
			err = failure.Unauthorized("authentication required")
		}

		scope.TraceError(err)
		scope.SetAttributes(map[string]any{
			"user_role":     userRole,
			"allowed_roles": permission.Roles,
		})

		response.WithError(w, err)
	})
}

// APIKey lets internal services through as the system administrator.
// Requests without the header continue to Auth unchanged.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == constant.Empty {
			next.ServeHTTP(w, r)

			return
		}

		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == constant.Empty || key != m.cfg.App.APIKey {
			scope.TraceError(failure.ForbiddenError)
			scope.End()

			response.WithError(w, failure.ForbiddenError)

			return
		}

		scope.End()

		ctx := context.WithValue(r.Context(), skipAuth, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.ContextSystem)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role.Admin)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
