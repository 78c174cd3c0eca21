package service

import (
	"context"
	"errors"
	"fmt"

	"dinebook/config"
	"dinebook/infras/kafka"
	"dinebook/infras/otel"
	availabilityModel "dinebook/internal/domains/availability/model"
	availabilityRepo "dinebook/internal/domains/availability/repository"
	"dinebook/internal/domains/reservation/model"
	"dinebook/internal/domains/reservation/model/dto"
	"dinebook/internal/domains/reservation/repository"
	"dinebook/internal/policy"
	"dinebook/shared"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	gRepo "dinebook/shared/repository"
	"dinebook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	msgAvailabilityNotFound = "availability not found"
	msgReservationNotFound  = "reservation not found"
)

// Reservation is the booking workflow. Create and Cancel each run as one
// transaction holding the slot row lock, so a slot is never reserved twice.
type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id string) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ReservationFilter) (dto.GetReservationsResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
}

type serviceImpl struct {
	repo             repository.Reservation
	availabilityRepo availabilityRepo.Availability
	transactor       gRepo.Transactor
	cfg              *config.Config
	kafka            kafka.Client
	otel             otel.Otel
	clock            timezone.Clock
}

func New(
	repo repository.Reservation,
	availabilityRepo availabilityRepo.Availability,
	transactor gRepo.Transactor,
	cfg *config.Config,
	kafka kafka.Client,
	otel otel.Otel,
	clock timezone.Clock,
) Reservation {
	return &serviceImpl{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		transactor:       transactor,
		cfg:              cfg,
		kafka:            kafka,
		otel:             otel,
		clock:            clock,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slotFilter := shared.FilterByID(req.AvailabilityID, availabilityModel.FieldID, availabilityModel.TableName)

	slot, err := s.availabilityRepo.Get(ctx, slotFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return res, fmt.Errorf("failed to get availability: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound(msgAvailabilityNotFound) // nolint:wrapcheck
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Create, policy.Reservation(slot.RestaurantOwnerID, actor.UserID)); err != nil {
		return res, err
	}

	var reservation model.Reservation

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.availabilityRepo.GetForUpdate(ctx, slotFilter)
		if err != nil {
			return err
		}

		if locked.ID == constant.Empty {
			return failure.NotFound(msgAvailabilityNotFound) // nolint:wrapcheck
		}

		booked, err := s.repo.Exist(ctx, repository.ByAvailability(locked.ID))
		if err != nil {
			return err
		}

		current := locked.State()

		next, err := availabilityModel.Reserve(current, booked)
		if err != nil {
			return err
		}

		now := s.clock.Now()

		if err = s.availabilityRepo.SwapState(ctx, locked.ID, current, next, actor.AuditName(), now); err != nil {
			return err
		}

		reservation = model.Reservation{
			ID:                uuid.NewString(),
			RestaurantID:      locked.RestaurantID,
			DinerID:           actor.UserID,
			AvailabilityID:    locked.ID,
			CreatedAt:         now,
			RestaurantOwnerID: locked.RestaurantOwnerID,
			Date:              locked.Date,
			StartTime:         locked.StartTime,
		}

		return s.repo.Insert(ctx, reservation)
	})
	if err != nil {
		return res, s.bookingError(err)
	}

	s.publish(ctx, model.NewEvent(model.EventCreated, reservation, actor.UserID, reservation.CreatedAt))

	res.FromModel(reservation, s.clock.Now())

	return res, nil
}

// bookingError maps the ways a concurrent booking can win to AlreadyBooked.
func (s *serviceImpl) bookingError(err error) error {
	var fail *failure.Failure

	switch {
	case errors.As(err, &fail):
		return err
	case errors.Is(err, gRepo.ErrStateConflict), gRepo.IsTxConflict(err):
		return availabilityModel.ErrAlreadyBooked()
	}

	if _, ok := gRepo.UniqueViolation(err); ok {
		return availabilityModel.ErrAlreadyBooked()
	}

	log.Error().Err(err).Msg("failed to create reservation")

	return fmt.Errorf("failed to create reservation: %w", err)
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Delete, policy.Reservation(reservation.RestaurantOwnerID, reservation.DinerID)); err != nil {
		return err
	}

	now := s.clock.Now()

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.availabilityRepo.GetForUpdate(ctx,
			shared.FilterByID(reservation.AvailabilityID, availabilityModel.FieldID, availabilityModel.TableName))
		if err != nil {
			return err
		}

		if locked.ID == constant.Empty {
			return failure.NotFound(msgReservationNotFound) // nolint:wrapcheck
		}

		// A concurrent cancel may have won while we waited for the lock.
		deleted, err := s.repo.DeleteAffected(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			return err
		}

		if deleted == 0 {
			return failure.NotFound(msgReservationNotFound) // nolint:wrapcheck
		}

		current := locked.State()

		return s.availabilityRepo.SwapState(ctx, locked.ID, current, availabilityModel.Release(current), actor.AuditName(), now)
	})
	if err != nil {
		var fail *failure.Failure
		if errors.As(err, &fail) {
			return err
		}

		log.Error().Err(err).Msg("failed to cancel reservation")

		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.publish(ctx, model.NewEvent(model.EventCancelled, reservation, actor.UserID, now))

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ReservationFilter) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.List, policy.Reservation(constant.Empty, constant.Empty)); err != nil {
		return res, err
	}

	conditions := []any{}

	if filter.RestaurantID != constant.Empty {
		conditions = append(conditions, gDto.Eq(model.TableName, model.FieldRestaurantID, filter.RestaurantID))
	}

	if filter.Date != constant.Empty {
		conditions = append(conditions, gDto.Eq(availabilityModel.TableName, availabilityModel.FieldDate, filter.Date))
	}

	group := gDto.And(conditions...).With(repository.ScopeFilter(policy.Scope(actor, policy.KindReservation), actor.UserID))

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit, s.clock.Now())

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	actor := policy.ActorFromContext(ctx)
	if err = policy.Enforce(actor, policy.Read, policy.Reservation(reservation.RestaurantOwnerID, reservation.DinerID)); err != nil {
		return res, err
	}

	res.FromModel(reservation, s.clock.Now())

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound(msgReservationNotFound) // nolint:wrapcheck
	}

	return reservation, nil
}

func (s *serviceImpl) publish(ctx context.Context, event model.Event) {
	go func() {
		c, scope := s.otel.NewScope(context.WithoutCancel(ctx), constant.OtelEventScopeName, constant.OtelEventScopeName+".PublishReservation")
		defer scope.End()

		scope.SetAttribute("event.type", event.Type)

		msg := kafka.Message{Key: event.AvailabilityID, Value: event}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Reservation, msg); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("type", event.Type).Msg("failed to publish reservation event")
		}
	}()
}
