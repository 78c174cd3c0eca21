package dto

import (
	"net/http"
	"strconv"
	"time"

	"dinebook/internal/domains/user/model"
	"dinebook/shared"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	gModel "dinebook/shared/model"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username  string    `json:"username"   validate:"required,alphanum,min=3,max=50"`
	Email     string    `json:"email"      validate:"required,email,max=254"`
	Password  string    `json:"password"   validate:"required,min=8,max=72"`
	Role      role.Role `json:"role"       validate:"required,role"`
	FirstName string    `json:"first_name" validate:"omitempty,max=100"`
	LastName  string    `json:"last_name"  validate:"omitempty,max=100"`
}

func (r *CreateUserRequest) ToModel(actor, hashedPassword string, now time.Time) model.User {
	return model.User{
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

// UpdateUserRequest carries the mutable user fields. Role is deliberately
// absent, so a body naming it is rejected by the decoder.
type UpdateUserRequest struct {
	Email     *string `db:"email"      json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `db:"first_name" json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `db:"last_name"  json:"last_name,omitempty"  validate:"omitempty,max=100"`
	Active    *bool   `db:"active"     json:"active,omitempty"`
}

const (
	QueryParamRole     = "role"
	QueryParamActive   = "active"
	QueryParamUsername = "username"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role     string `validate:"omitempty,role"`
	Active   string `validate:"omitempty,boolean"`
	Username string `validate:"omitempty,max=50"`
}

func (f *UserFilter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	f.Role = query.Get(QueryParamRole)
	f.Active = query.Get(QueryParamActive)
	f.Username = query.Get(QueryParamUsername)
}

// FilterGroup assumes the filter passed validation.
func (f *UserFilter) FilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if f.Role != constant.Empty {
		group.Filters = append(group.Filters, gDto.Eq(model.TableName, model.FieldRole, f.Role))
	}

	if active, err := strconv.ParseBool(f.Active); err == nil {
		group.Filters = append(group.Filters, gDto.Eq(model.TableName, model.FieldActive, active))
	}

	if f.Username != constant.Empty {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    model.FieldUsername,
			Value:    f.Username,
			Operator: gDto.FilterOperatorLike,
			Table:    model.TableName,
		})
	}

	return group
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      role.Role `json:"role"       swaggertype:"string" enums:"admin,restaurant,diner"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"active"`
	LastLogin string    `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Username = model.Username
	r.Email = model.Email
	r.Role = model.Role
	r.FirstName = model.FirstName
	r.LastName = model.LastName
	r.Active = model.Active

	if model.LastLogin != nil {
		r.LastLogin = timezone.Format(*model.LastLogin, constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
