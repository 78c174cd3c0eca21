package service

import (
	"context"
	"fmt"

	"dinebook/config"
	"dinebook/infras/otel"
	"dinebook/internal/domains/restaurant/model"
	"dinebook/internal/domains/restaurant/model/dto"
	"dinebook/internal/domains/restaurant/repository"
	userModel "dinebook/internal/domains/user/model"
	userRepo "dinebook/internal/domains/user/repository"
	"dinebook/internal/policy"
	"dinebook/shared"
	"dinebook/shared/cache"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	gRepo "dinebook/shared/repository"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetRestaurant    = "restaurant:get"
	cacheGetAllRestaurant = "restaurant:gets"
	cacheCountRestaurant  = "restaurant:count"
)

type Restaurant interface {
	Create(ctx context.Context, req dto.CreateRestaurantRequest) (dto.RestaurantResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRestaurantsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RestaurantResponse, error)
	Update(ctx context.Context, req dto.UpdateRestaurantRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Restaurant
	userRepo userRepo.User
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	clock    timezone.Clock
}

func New(repo repository.Restaurant, userRepo userRepo.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, clock timezone.Clock) Restaurant {
	return &serviceImpl{
		repo:     repo,
		userRepo: userRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		clock:    clock,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRestaurantRequest) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Create, policy.Restaurant(req.UserID)); err != nil {
		return res, err
	}

	if err = s.ensureOwnerEligible(ctx, req.UserID); err != nil {
		return res, err
	}

	restaurant := req.ToModel(actor.AuditName(), s.clock.Now())

	if err = s.repo.Insert(ctx, restaurant); err != nil {
		if _, ok := gRepo.UniqueViolation(err); ok {
			return res, failure.Conflict("user already has a restaurant profile") // nolint:wrapcheck
		}

		if gRepo.IsForeignKeyViolation(err) {
			return res, failure.BadRequestFromString("user does not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create restaurant")

		return res, fmt.Errorf("failed to create restaurant: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	res.FromModel(restaurant)

	return res, nil
}

// ensureOwnerEligible checks the owner is a restaurant user without a profile.
func (s *serviceImpl) ensureOwnerEligible(ctx context.Context, userID string) error {
	owner, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get owner")

		return fmt.Errorf("failed to get owner: %w", err)
	}

	if owner.ID == constant.Empty {
		return failure.BadRequestFromString("user does not exist") // nolint:wrapcheck
	}

	if owner.Role != role.Restaurant {
		return failure.BadRequestFromString("user must have the restaurant role") // nolint:wrapcheck
	}

	exists, err := s.repo.Exist(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldUserID, userID)))
	if err != nil {
		log.Error().Err(err).Msg("failed to check existing restaurant profile")

		return fmt.Errorf("failed to check existing restaurant profile: %w", err)
	}

	if exists {
		return failure.Conflict("user already has a restaurant profile") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRestaurantsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheGetAllRestaurant, req, filter)

	return cache.Through(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetRestaurantsResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		restaurants, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list restaurants")

			return page, fmt.Errorf("failed to list restaurants: %w", err)
		}

		page.FromModels(restaurants, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheCountRestaurant, req, filter)

	return cache.Through(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count restaurants")

			return 0, fmt.Errorf("failed to count restaurants: %w", err)
		}

		return total, nil
	})
}

// Get is public; cached until the profile changes.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Through(ctx, s.cache, shared.BuildCacheKey(cacheGetRestaurant, id), s.cfg.Cache.TTL,
		func(ctx context.Context) (found dto.RestaurantResponse, err error) {
			restaurant, err := s.find(ctx, id)
			if err != nil {
				return found, err
			}

			found.FromModel(restaurant)

			return found, nil
		})
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Restaurant, error) {
	restaurant, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get restaurant")

		return restaurant, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if restaurant.ID == constant.Empty {
		return restaurant, failure.NotFound("restaurant not found") // nolint:wrapcheck
	}

	return restaurant, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRestaurantRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateRestaurantRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Update, policy.Restaurant(restaurant.UserID)); err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, actor.AuditName())
	updatedFields[constant.FieldModifiedAt] = s.clock.Now()

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update restaurant")

		return fmt.Errorf("failed to update restaurant: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the profile. Its slots and reservations go with it through
// the foreign key cascade.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = policy.Enforce(policy.ActorFromContext(ctx), policy.Delete, policy.Restaurant(restaurant.UserID)); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete restaurant")

		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRestaurant, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete restaurant from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRestaurant)
		shared.InvalidateCaches(c, s.cache, cacheCountRestaurant)
	}()
}
