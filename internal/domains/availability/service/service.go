package service

import (
	"context"
	"errors"
	"fmt"

	"dinebook/config"
	"dinebook/infras/kafka"
	"dinebook/infras/otel"
	"dinebook/internal/domains/availability/model"
	"dinebook/internal/domains/availability/model/dto"
	"dinebook/internal/domains/availability/repository"
	restaurantModel "dinebook/internal/domains/restaurant/model"
	restaurantRepo "dinebook/internal/domains/restaurant/repository"
	"dinebook/internal/policy"
	"dinebook/shared"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	gRepo "dinebook/shared/repository"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	msgDuplicateSlot   = "slot already exists for this restaurant, date and start time"
	msgReservedDelete  = "slot has a reservation; cancel it first"
	msgReservedUpdate  = "slot has a reservation; cancel it before rescheduling"
	msgNotFound        = "availability not found"
	msgProfileNotFound = "restaurant profile not found"
)

type Availability interface {
	Create(ctx context.Context, req dto.CreateAvailabilityRequest) (dto.AvailabilityResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.AvailabilityFilter) (dto.GetAvailabilitiesResponse, error)
	Get(ctx context.Context, id string) (dto.AvailabilityResponse, error)
	Update(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) error
	Delete(ctx context.Context, id string) error
	SetBlock(ctx context.Context, id string, blocked bool) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo           repository.Availability
	restaurantRepo restaurantRepo.Restaurant
	cfg            *config.Config
	kafka          kafka.Client
	otel           otel.Otel
	clock          timezone.Clock
}

func New(repo repository.Availability, restaurantRepo restaurantRepo.Restaurant, cfg *config.Config, kafka kafka.Client, otel otel.Otel, clock timezone.Clock) Availability {
	return &serviceImpl{
		repo:           repo,
		restaurantRepo: restaurantRepo,
		cfg:            cfg,
		kafka:          kafka,
		otel:           otel,
		clock:          clock,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := policy.ActorFromContext(ctx)

	restaurant, err := s.targetRestaurant(ctx, actor, req.RestaurantID)
	if err != nil {
		return res, err
	}

	if err = policy.Enforce(actor, policy.Create, policy.Availability(restaurant.UserID)); err != nil {
		return res, err
	}

	slot := req.ToModel(restaurant.ID, actor.AuditName(), s.clock.Now())

	if err = s.repo.Insert(ctx, slot); err != nil {
		if _, ok := gRepo.UniqueViolation(err); ok {
			return res, failure.BadRequestFromString(msgDuplicateSlot) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create availability")

		return res, fmt.Errorf("failed to create availability: %w", err)
	}

	slot.RestaurantOwnerID = restaurant.UserID
	res.FromModel(slot)

	return res, nil
}

// targetRestaurant resolves the restaurant a new slot belongs to. Restaurant
// users always publish for their own profile.
func (s *serviceImpl) targetRestaurant(ctx context.Context, actor policy.Actor, requestedID string) (restaurantModel.Restaurant, error) {
	var (
		filter gDto.FilterGroup
		msg    string
	)

	switch actor.Role {
	case role.Restaurant:
		filter = gDto.And(gDto.Eq(restaurantModel.TableName, restaurantModel.FieldUserID, actor.UserID))
		msg = msgProfileNotFound
	case role.Admin:
		if requestedID == constant.Empty {
			return restaurantModel.Restaurant{}, failure.BadRequestFromString("restaurant_id is required") // nolint:wrapcheck
		}

		filter = shared.FilterByID(requestedID, restaurantModel.FieldID, restaurantModel.TableName)
		msg = "restaurant not found"
	case role.Diner, role.Anonymous:
		return restaurantModel.Restaurant{}, policy.Enforce(actor, policy.Create, policy.Availability(constant.Empty))
	default:
		return restaurantModel.Restaurant{}, policy.Enforce(actor, policy.Create, policy.Availability(constant.Empty))
	}

	restaurant, err := s.restaurantRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get restaurant")

		return restaurant, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if restaurant.ID == constant.Empty {
		return restaurant, failure.NotFound(msg) // nolint:wrapcheck
	}

	return restaurant, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.AvailabilityFilter) (res dto.GetAvailabilitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.List, policy.Availability(constant.Empty)); err != nil {
		return res, err
	}

	group, err := listFilter(filter)
	if err != nil {
		return res, err
	}

	group = group.With(repository.ScopeFilter(policy.Scope(actor, policy.KindAvailability), actor.UserID))

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count availabilities")

		return res, fmt.Errorf("failed to count availabilities: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availabilities")

		return res, fmt.Errorf("failed to get availabilities: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func listFilter(filter dto.AvailabilityFilter) (gDto.FilterGroup, error) {
	conditions := []any{}

	if filter.RestaurantID != constant.Empty {
		conditions = append(conditions, gDto.Eq(model.TableName, model.FieldRestaurantID, filter.RestaurantID))
	}

	if filter.Date != constant.Empty {
		conditions = append(conditions, gDto.Eq(model.TableName, model.FieldDate, filter.Date))
	}

	if filter.State != constant.Empty {
		state, err := model.ParseState(filter.State)
		if err != nil {
			return gDto.FilterGroup{}, failure.BadRequest(err) // nolint:wrapcheck
		}

		conditions = append(conditions, repository.StateFilter(state))
	}

	return gDto.And(conditions...), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slot, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if err = policy.Enforce(policy.ActorFromContext(ctx), policy.Read, policy.Availability(slot.RestaurantOwnerID)); err != nil {
		return res, err
	}

	res.FromModel(slot)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Availability, error) {
	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return slot, fmt.Errorf("failed to get availability: %w", err)
	}

	if slot.ID == constant.Empty {
		return slot, failure.NotFound(msgNotFound) // nolint:wrapcheck
	}

	return slot, nil
}

// Update reschedules a slot. Reserved slots keep their date and time.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	slot, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Update, policy.Availability(slot.RestaurantOwnerID)); err != nil {
		return err
	}

	if slot.State() == model.StateReserved {
		return failure.InvalidTransition(msgReservedUpdate) // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, actor.AuditName())
	updatedFields[constant.FieldModifiedAt] = s.clock.Now()

	affected, err := s.repo.UpdateAffected(ctx, updatedFields,
		shared.FilterByID(id, model.FieldID, model.TableName).With(repository.NotReservedFilter()))
	if err != nil {
		if _, ok := gRepo.UniqueViolation(err); ok {
			return failure.BadRequestFromString(msgDuplicateSlot) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update availability")

		return fmt.Errorf("failed to update availability: %w", err)
	}

	if affected == 0 {
		return failure.InvalidTransition(msgReservedUpdate) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slot, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = policy.Enforce(policy.ActorFromContext(ctx), policy.Delete, policy.Availability(slot.RestaurantOwnerID)); err != nil {
		return err
	}

	if slot.State() == model.StateReserved {
		return failure.InvalidTransition(msgReservedDelete) // nolint:wrapcheck
	}

	affected, err := s.repo.DeleteAffected(ctx,
		shared.FilterByID(id, model.FieldID, model.TableName).With(repository.NotReservedFilter()))
	if err != nil {
		log.Error().Err(err).Msg("failed to delete availability")

		return fmt.Errorf("failed to delete availability: %w", err)
	}

	if affected == 0 {
		return failure.InvalidTransition(msgReservedDelete) // nolint:wrapcheck
	}

	return nil
}

// SetBlock blocks or unblocks a slot. A concurrent change between the read
// and the conditional write reports the same error as a stale state.
func (s *serviceImpl) SetBlock(ctx context.Context, id string, blocked bool) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetBlock")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	op, transition, eventType := policy.Unblock, model.Unblock, model.EventUnblocked
	if blocked {
		op, transition, eventType = policy.Block, model.Block, model.EventBlocked
	}

	slot, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, op, policy.Availability(slot.RestaurantOwnerID)); err != nil {
		return res, err
	}

	current := slot.State()

	next, err := transition(current)
	if err != nil {
		return res, err
	}

	now := s.clock.Now()

	if err = s.repo.SwapState(ctx, id, current, next, actor.AuditName(), now); err != nil {
		if errors.Is(err, gRepo.ErrStateConflict) {
			_, err = transition(model.StateUnknown)

			return res, err
		}

		log.Error().Err(err).Msg("failed to change availability state")

		return res, fmt.Errorf("failed to change availability state: %w", err)
	}

	slot = slot.WithState(next)
	slot.ModifiedAt = now
	slot.ModifiedBy = actor.AuditName()

	s.publish(ctx, model.Event{
		Type:           eventType,
		AvailabilityID: slot.ID,
		RestaurantID:   slot.RestaurantID,
		ActorID:        actor.UserID,
		OccurredAt:     now,
	})

	res.FromModel(slot)

	return res, nil
}

func (s *serviceImpl) publish(ctx context.Context, event model.Event) {
	go func() {
		c, scope := s.otel.NewScope(context.WithoutCancel(ctx), constant.OtelEventScopeName, constant.OtelEventScopeName+".PublishAvailability")
		defer scope.End()

		scope.SetAttribute("event.type", event.Type)

		msg := kafka.Message{Key: event.AvailabilityID, Value: event}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Availability, msg); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("type", event.Type).Msg("failed to publish availability event")
		}
	}()
}
