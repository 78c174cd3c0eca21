package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dinebook/shared/cache"
	"dinebook/shared/cache/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type restaurantPage struct {
	Names []string `json:"names"`
	Total int      `json:"total"`
}

func TestThroughHit(t *testing.T) {
	redisCache := mocks.NewMockRedisCache(gomock.NewController(t))

	redisCache.EXPECT().Get(gomock.Any(), "restaurant:list:1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			*value.(*restaurantPage) = restaurantPage{Names: []string{"Rosella"}, Total: 1}

			return nil
		})

	page, err := cache.Through(context.Background(), redisCache, "restaurant:list:1", 300,
		func(context.Context) (restaurantPage, error) {
			t.Fatal("load must not run on a hit")

			return restaurantPage{}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"Rosella"}, page.Names)
}

func TestThroughMissFillsCache(t *testing.T) {
	redisCache := mocks.NewMockRedisCache(gomock.NewController(t))
	saved := make(chan any, 1)

	redisCache.EXPECT().Get(gomock.Any(), "restaurant:count:1", gomock.Any()).Return(cache.Nil)
	redisCache.EXPECT().Save(gomock.Any(), "restaurant:count:1", 3, 300).
		DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
			saved <- value

			return nil
		})

	total, err := cache.Through(context.Background(), redisCache, "restaurant:count:1", 300,
		func(context.Context) (int, error) { return 3, nil })

	require.NoError(t, err)
	assert.Equal(t, 3, total)

	select {
	case v := <-saved:
		assert.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("cache was not filled")
	}
}

func TestThroughLoadErrorIsNotCached(t *testing.T) {
	redisCache := mocks.NewMockRedisCache(gomock.NewController(t))
	errLoad := errors.New("restaurant not found")

	redisCache.EXPECT().Get(gomock.Any(), "restaurant:get:r-404", gomock.Any()).Return(cache.Nil)
	redisCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := cache.Through(context.Background(), redisCache, "restaurant:get:r-404", 300,
		func(context.Context) (restaurantPage, error) { return restaurantPage{}, errLoad })

	assert.ErrorIs(t, err, errLoad)
}
