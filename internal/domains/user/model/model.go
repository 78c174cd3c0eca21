package model

import (
	"time"

	"dinebook/shared/model"
	"dinebook/shared/role"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldActive    = "active"
	FieldLastLogin = "last_login"
)

// User is an account. Role is fixed at creation.
type User struct {
	ID        string     `db:"id"`
	Username  string     `db:"username"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      role.Role  `db:"role"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Active    bool       `db:"active"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}
