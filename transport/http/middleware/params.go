package middleware

import (
	"net/http"

	"dinebook/shared/validator"
	"dinebook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

// UUIDParam rejects a request whose named route parameter is not a UUID,
// so a malformed id answers 400 instead of failing inside Postgres.
// Register it on the routes that declare the parameter.
func UUIDParam(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validator.ValidateVar(name, chi.URLParam(r, name), "required,uuid"); err != nil {
				response.WithError(w, err)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
