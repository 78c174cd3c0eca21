package role_test

import (
	"encoding/json"
	"testing"

	"dinebook/shared/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    role.Role
		wantErr bool
	}{
		{in: "admin", want: role.Admin},
		{in: "restaurant", want: role.Restaurant},
		{in: "diner", want: role.Diner},
		{in: "anonymous", want: role.Anonymous},
		{in: "Admin", wantErr: true},
		{in: "superuser", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := role.Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range role.All {
		assert.True(t, r.Valid(), r.String())
	}

	assert.False(t, role.Anonymous.Valid())
	assert.False(t, role.Role(42).Valid())
}

func TestRole_JSON(t *testing.T) {
	payload := struct {
		Role role.Role `json:"role"`
	}{Role: role.Restaurant}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"restaurant"}`, string(data))

	payload.Role = role.Anonymous
	require.NoError(t, json.Unmarshal([]byte(`{"role":"diner"}`), &payload))
	assert.Equal(t, role.Diner, payload.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"owner"}`), &payload))
}

func TestRole_SQL(t *testing.T) {
	v, err := role.Admin.Value()
	require.NoError(t, err)
	assert.Equal(t, "admin", v)

	_, err = role.Anonymous.Value()
	assert.Error(t, err)

	var r role.Role
	require.NoError(t, r.Scan([]byte("diner")))
	assert.Equal(t, role.Diner, r)

	assert.Error(t, r.Scan(12))
}
