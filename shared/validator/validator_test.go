package validator_test

import (
	"strings"
	"testing"

	"dinebook/shared/failure"
	"dinebook/shared/model"
	"dinebook/shared/role"
	"dinebook/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string    `json:"username" validate:"required,alphanum,min=3,max=20"`
	Email    string    `json:"email"    validate:"required,email"`
	Role     role.Role `json:"role"     validate:"required,role"`
	Party    int       `json:"party"    validate:"gte=1,lte=12"`
}

func TestValidateStructMessages(t *testing.T) {
	valid := signup{Username: "gyulook", Email: "gyulook@example.com", Role: role.Diner, Party: 2}

	tests := []struct {
		name    string
		mutate  func(s *signup)
		wantErr string
	}{
		{name: "valid", mutate: func(*signup) {}},
		{name: "missing username", mutate: func(s *signup) { s.Username = "" }, wantErr: "username is required"},
		{name: "short username", mutate: func(s *signup) { s.Username = "ab" }, wantErr: "username must be greater than or equal to 3"},
		{name: "bad email", mutate: func(s *signup) { s.Email = "gyulook" }, wantErr: "email must be a valid email address"},
		{name: "anonymous role", mutate: func(s *signup) { s.Role = role.Anonymous }, wantErr: "role is required"},
		{name: "party too large", mutate: func(s *signup) { s.Party = 13 }, wantErr: "party must be less than or equal to 12"},
		{name: "empty party", mutate: func(s *signup) { s.Party = 0 }, wantErr: "party must be greater than or equal to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)

			err := validator.ValidateStruct(&s)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.True(t, failure.IsKind(err, failure.KindValidation))
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		field   any
		tag     string
		wantErr bool
	}{
		{field: "diner", tag: "omitempty,role"},
		{field: "", tag: "omitempty,role"},
		{field: "chef", tag: "omitempty,role", wantErr: true},
		{field: "anonymous", tag: "role", wantErr: true},
		{field: "2024-02-29", tag: "date"},
		{field: "2023-02-29", tag: "date", wantErr: true},
		{field: "19:00", tag: "clock"},
		{field: "25:00", tag: "clock", wantErr: true},
		{field: "8f7c2a9e-0c55-4f5e-a2f4-3f0f3b7a1d10", tag: "uuid"},
		{field: "a-1", tag: "uuid", wantErr: true},
	}

	for _, tt := range tests {
		err := validator.ValidateVar("value", tt.field, tt.tag)

		if tt.wantErr {
			assert.Error(t, err, "%v with %q", tt.field, tt.tag)
		} else {
			assert.NoError(t, err, "%v with %q", tt.field, tt.tag)
		}
	}
}

func TestValidateVarNamesTheParameter(t *testing.T) {
	err := validator.ValidateVar("id", "r-42", "uuid")

	require.Error(t, err)
	assert.Equal(t, "id must be a valid UUID", err.Error())
	assert.Equal(t, failure.KindValidation, failure.GetKind(err))
}

type slotRequest struct {
	Role      role.Role       `json:"role"       validate:"required,role"`
	Date      model.Date      `json:"date"       validate:"required,date"`
	StartTime model.TimeOfDay `json:"start_time" validate:"clock"`
	Day       string          `json:"day"        validate:"omitempty,date"`
	At        string          `json:"at"         validate:"omitempty,clock"`
	RoleName  string          `json:"role_name"  validate:"omitempty,role"`
	IsBlocked *bool           `json:"-"          validate:"empty"`
}

func TestValidateBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "typed fields",
			body: `{"role":"diner","date":"2024-06-01","start_time":"18:00"}`,
		},
		{
			name: "string fields",
			body: `{"role":"restaurant","date":"2024-06-01","start_time":"18:00","day":"2024-06-02","at":"19:30","role_name":"admin"}`,
		},
		{
			name:    "missing role",
			body:    `{"date":"2024-06-01","start_time":"18:00"}`,
			wantErr: "role is required",
		},
		{
			name:    "unknown role decodes to an error",
			body:    `{"role":"chef","date":"2024-06-01","start_time":"18:00"}`,
			wantErr: "failed to decode request body",
		},
		{
			name:    "bad date string",
			body:    `{"role":"diner","date":"2024-06-01","start_time":"18:00","day":"06/02/2024"}`,
			wantErr: "day must be a date formatted as YYYY-MM-DD",
		},
		{
			name:    "bad clock string",
			body:    `{"role":"diner","date":"2024-06-01","start_time":"18:00","at":"7pm"}`,
			wantErr: "at must be a time formatted as HH:MM",
		},
		{
			name:    "anonymous is not a stored role",
			body:    `{"role":"diner","date":"2024-06-01","start_time":"18:00","role_name":"anonymous"}`,
			wantErr: "role_name must be one of admin restaurant diner",
		},
		{
			name:    "unknown field",
			body:    `{"role":"diner","date":"2024-06-01","start_time":"18:00","is_blocked":true}`,
			wantErr: "unknown field",
		},
		{
			name:    "not json",
			body:    `role=diner`,
			wantErr: "failed to decode request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req slotRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, failure.KindValidation, failure.GetKind(err))
		})
	}
}
