package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dinebook/config"
	"dinebook/infras/jwt"
	jwtMocks "dinebook/infras/jwt/mocks"
	"dinebook/infras/otel/mocks"
	"dinebook/internal/domains/auth/model/dto"
	"dinebook/internal/domains/auth/service"
	userMocks "dinebook/internal/domains/user/mocks"
	userModel "dinebook/internal/domains/user/model"
	"dinebook/shared/constant"
	"dinebook/shared/failure"
	gModel "dinebook/shared/model"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// "password" hashed with bcrypt.
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

func newService(t *testing.T) (service.Auth, *userMocks.MockUser, *jwtMocks.MockJWT) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), mockJWT, timezone.NewFixedClock(now))

	return svc, mockUserRepo, mockJWT
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name      string
		role      role.Role
		setupMock func(repo *userMocks.MockUser)
		wantKind  failure.Kind
	}{
		{
			name: "diner signs up",
			role: role.Diner,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user userModel.User) error {
					assert.Equal(t, role.Diner, user.Role)
					assert.Equal(t, constant.ContextGuest, user.CreatedBy)

					return nil
				})
			},
		},
		{
			name: "restaurant signs up",
			role: role.Restaurant,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "admin cannot self register",
			role:      role.Admin,
			setupMock: func(_ *userMocks.MockUser) {},
			wantKind:  failure.KindValidation,
		},
		{
			name: "duplicate account",
			role: role.Diner,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantKind: failure.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			tt.setupMock(repo)

			err := svc.Register(context.Background(), dto.RegisterRequest{
				Username: "someone",
				Email:    "someone@example.com",
				Password: "password",
				Role:     tt.role,
			})

			if tt.wantKind == "" {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantKind, failure.GetKind(err))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	validUser := userModel.User{
		ID:       "user-id-123",
		Username: "d1",
		Email:    "d1@example.com",
		Password: passwordHash,
		Role:     role.Diner,
		Active:   true,
		Metadata: gModel.NewMetadata("system", now),
	}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(repo *userMocks.MockUser, mockJWT *jwtMocks.MockJWT)
		wantKind  failure.Kind
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Username: "d1", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, mockJWT *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockJWT.EXPECT().
					GenerateTokenPair(jwt.Subject{UserID: validUser.ID, Email: validUser.Email, Role: role.Diner}).
					Return(&jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "unknown user",
			req:  dto.LoginRequest{Username: "ghost", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantKind: failure.KindUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Username: "d1", Password: "wrong-password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
			},
			wantKind: failure.KindUnauthorized,
		},
		{
			name: "inactive user",
			req:  dto.LoginRequest{Username: "d1", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				inactive := validUser
				inactive.Active = false

				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantKind: failure.KindForbidden,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Username: "d1", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, mockJWT *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockJWT.EXPECT().GenerateTokenPair(gomock.Any()).Return(nil, errors.New("token generation failed"))
			},
			wantKind: failure.KindInternal,
		},
		{
			name: "repository error",
			req:  dto.LoginRequest{Username: "d1", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("database error"))
			},
			wantKind: failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, mockJWT := newService(t)
			tt.setupMock(repo, mockJWT)

			result, err := svc.Login(context.Background(), tt.req)

			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, "access-token", result.AccessToken)
				assert.Equal(t, "refresh-token", result.RefreshToken)
				assert.Equal(t, role.Diner, result.User.Role)
				assert.NotEmpty(t, result.User.LastLogin)

				return
			}

			assert.Equal(t, tt.wantKind, failure.GetKind(err))
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("issues a new pair", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		mockJWT.EXPECT().RefreshTokens(gomock.Any(), "valid-refresh").
			Return(&jwt.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

		res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "valid-refresh"})
		require.NoError(t, err)
		assert.Equal(t, "a2", res.AccessToken)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		mockJWT.EXPECT().RefreshTokens(gomock.Any(), "bad").Return(nil, jwt.ErrInvalidToken)

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "bad"})
		assert.True(t, failure.IsKind(err, failure.KindUnauthorized))
	})
}

func TestAuthService_Logout(t *testing.T) {
	exp := now.Add(15 * time.Minute)

	authed := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	authed = context.WithValue(authed, constant.ContextKeyTokenID, "token-1")
	authed = context.WithValue(authed, constant.ContextKeyTokenExp, exp)

	t.Run("revokes access and refresh tokens", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		refreshClaims := &jwt.Claims{UserID: "user-1", TokenID: "token-2"}

		mockJWT.EXPECT().Revoke(gomock.Any(), jwt.RevocationClaims("token-1", exp)).Return(nil)
		mockJWT.EXPECT().ValidateToken(gomock.Any(), "refresh", jwt.RefreshToken).Return(refreshClaims, nil)
		mockJWT.EXPECT().Revoke(gomock.Any(), refreshClaims).Return(nil)

		assert.NoError(t, svc.Logout(authed, dto.LogoutRequest{RefreshToken: "refresh"}))
	})

	t.Run("refresh token of another user", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		mockJWT.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(nil)
		mockJWT.EXPECT().ValidateToken(gomock.Any(), "refresh", jwt.RefreshToken).
			Return(&jwt.Claims{UserID: "user-2", TokenID: "token-9"}, nil)

		err := svc.Logout(authed, dto.LogoutRequest{RefreshToken: "refresh"})
		assert.True(t, failure.IsKind(err, failure.KindForbidden))
	})

	t.Run("anonymous caller", func(t *testing.T) {
		svc, _, _ := newService(t)

		err := svc.Logout(context.Background(), dto.LogoutRequest{})
		assert.True(t, failure.IsKind(err, failure.KindUnauthorized))
	})
}
