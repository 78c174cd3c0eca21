// Package role defines the closed set of actor roles.
package role

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is the role of an actor. The zero value is Anonymous, which is never
// persisted: it marks a caller without a resolved identity.
type Role uint8

const (
	Anonymous Role = iota
	Admin
	Restaurant
	Diner
)

const (
	nameAnonymous  = "anonymous"
	nameAdmin      = "admin"
	nameRestaurant = "restaurant"
	nameDiner      = "diner"
)

// All lists every persisted role.
var All = []Role{Admin, Restaurant, Diner}

func (r Role) String() string {
	switch r {
	case Anonymous:
		return nameAnonymous
	case Admin:
		return nameAdmin
	case Restaurant:
		return nameRestaurant
	case Diner:
		return nameDiner
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Valid reports whether r is a role a user record can carry.
func (r Role) Valid() bool {
	switch r {
	case Admin, Restaurant, Diner:
		return true
	case Anonymous:
		return false
	default:
		return false
	}
}

// Parse converts a stored or transmitted role name.
func Parse(s string) (Role, error) {
	switch s {
	case nameAdmin:
		return Admin, nil
	case nameRestaurant:
		return Restaurant, nil
	case nameDiner:
		return Diner, nil
	case nameAnonymous, "":
		return Anonymous, nil
	default:
		return Anonymous, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}

	return r.UnmarshalText([]byte(s))
}

// Value stores the role by name. Anonymous is rejected.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("role %s cannot be stored", r)
	}

	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		*r = Anonymous

		return nil
	default:
		return fmt.Errorf("cannot scan %T into role", src)
	}
}
