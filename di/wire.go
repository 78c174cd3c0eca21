//go:build wireinject
// +build wireinject

package di

import (
	"dinebook/config"
	"dinebook/infras/jwt"
	"dinebook/infras/kafka"
	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	"dinebook/infras/redis"
	"dinebook/permissions"
	"dinebook/shared/cache"
	gRepo "dinebook/shared/repository"
	"dinebook/shared/timezone"
	"dinebook/transport/http"
	"dinebook/transport/http/middleware"
	"dinebook/transport/http/router"

	authService "dinebook/internal/domains/auth/service"
	availabilityRepository "dinebook/internal/domains/availability/repository"
	availabilityService "dinebook/internal/domains/availability/service"
	reservationRepository "dinebook/internal/domains/reservation/repository"
	reservationService "dinebook/internal/domains/reservation/service"
	restaurantRepository "dinebook/internal/domains/restaurant/repository"
	restaurantService "dinebook/internal/domains/restaurant/service"
	userRepository "dinebook/internal/domains/user/repository"
	userService "dinebook/internal/domains/user/service"
	authHandler "dinebook/internal/handlers/auth"
	availabilityHandler "dinebook/internal/handlers/availability"
	reservationHandler "dinebook/internal/handlers/reservation"
	restaurantHandler "dinebook/internal/handlers/restaurant"
	userHandler "dinebook/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	timezone.NewSystemClock,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	gRepo.NewTransactor,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var restaurantDomain = wire.NewSet(
	restaurantRepository.New,
	restaurantService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	restaurantDomain,
	availabilityDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	restaurantHandler.New,
	availabilityHandler.New,
	reservationHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
