package dto

import (
	"time"

	"dinebook/infras/jwt"
	userModel "dinebook/internal/domains/user/model"
	userDto "dinebook/internal/domains/user/model/dto"
	gModel "dinebook/shared/model"
	"dinebook/shared/role"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username  string    `json:"username"   validate:"required,alphanum,min=3,max=50"`
	Email     string    `json:"email"      validate:"required,email,max=254"`
	Password  string    `json:"password"   validate:"required,min=8,max=72"`
	Role      role.Role `json:"role"       validate:"required,role"                 swaggertype:"string" enums:"restaurant,diner"`
	FirstName string    `json:"first_name" validate:"omitempty,max=100"`
	LastName  string    `json:"last_name"  validate:"omitempty,max=100"`
}

func (r *RegisterRequest) ToUserModel(actor, hashedPassword string, now time.Time) userModel.User {
	return userModel.User{
		ID:        uuid.NewString(),
		Username:  r.Username,
		Email:     r.Email,
		Password:  hashedPassword,
		Role:      r.Role,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Active:    true,
		Metadata:  gModel.NewMetadata(actor, now),
	}
}

// LoginRequest accepts either the username or the email as Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	User         userDto.UserResponse `json:"user"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.AccessToken = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.TokenType = tokenPair.TokenType
	r.ExpiresIn = tokenPair.ExpiresIn
}

// LogoutRequest optionally names the refresh token to revoke along with the
// access token used for the call.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}
