package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dinebook/shared"
	"dinebook/shared/cache/mocks"
	"dinebook/shared/constant"
	"dinebook/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{total: 0, limit: 10, want: 1},
		{total: 84, limit: 0, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 84, limit: 20, want: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

type profileUpdate struct {
	Name    string  `db:"name"`
	Cuisine *string `db:"cuisine"`
	Address *string `db:"address"`
	Note    string
	Secret  string `db:"-"`
}

func TestTransformFields(t *testing.T) {
	cuisine := "Korean"

	tests := []struct {
		name     string
		data     profileUpdate
		wantKeys []string
	}{
		{
			name:     "name only",
			data:     profileUpdate{Name: "Oiji Mi"},
			wantKeys: []string{"name"},
		},
		{
			name:     "pointer fields are dereferenced",
			data:     profileUpdate{Cuisine: &cuisine},
			wantKeys: []string{"cuisine"},
		},
		{
			name:     "untagged and skipped fields are ignored",
			data:     profileUpdate{Note: "x", Secret: "y"},
			wantKeys: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shared.TransformFields(tt.data, "admin")

			assert.Equal(t, "admin", got[constant.FieldModifiedBy])
			assert.Contains(t, got, constant.FieldModifiedAt)

			delete(got, constant.FieldModifiedBy)
			delete(got, constant.FieldModifiedAt)

			keys := make([]string, 0, len(got))
			for k := range got {
				keys = append(keys, k)
			}

			assert.ElementsMatch(t, tt.wantKeys, keys)
		})
	}

	got := shared.TransformFields(profileUpdate{Cuisine: &cuisine}, "admin")
	assert.Equal(t, "Korean", got["cuisine"])
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("a-1", "id", "availabilities")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "availabilities.id = :id", where)
	assert.Equal(t, map[string]any{"id": "a-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "restaurant", shared.BuildCacheKey("restaurant"))
	assert.Equal(t, "restaurant:get:r-1", shared.BuildCacheKey("restaurant", "get", "r-1"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "name", SortDir: "ASC"}
	korean := dto.And(dto.Eq("restaurants", "cuisine", "Korean"))

	key := shared.BuildCacheKeyWithQuery("restaurant:list", params, korean)

	require.True(t, strings.HasPrefix(key, "restaurant:list:"))
	assert.Equal(t, key, shared.BuildCacheKeyWithQuery("restaurant:list", params, dto.And(dto.Eq("restaurants", "cuisine", "Korean"))))

	japanese := dto.And(dto.Eq("restaurants", "cuisine", "Japanese"))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("restaurant:list", params, japanese))

	params.Page = 2
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("restaurant:list", params, korean))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "restaurant:list:*").Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "restaurant:list")

	redisCache.EXPECT().Clear(gomock.Any(), "restaurant:count:*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), redisCache, "restaurant:count")
}
