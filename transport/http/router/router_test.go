package router_test

import (
	"net/http"
	"testing"

	"dinebook/permissions"
	"dinebook/transport/http/router"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRouteHasPermissionEntry(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	r := router.New(router.DomainHandlers{})
	mux := chi.NewRouter()
	r.SetupRoutes(mux)

	walked := 0

	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		walked++

		assert.Equal(t, method, data.FindPermissions(route, method).Method, "%s %s has no permissions entry", method, route)

		return nil
	})

	require.NoError(t, err)
	assert.Positive(t, walked)
}
