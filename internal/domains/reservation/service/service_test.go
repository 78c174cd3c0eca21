package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dinebook/config"
	"dinebook/infras/kafka"
	kafkaMocks "dinebook/infras/kafka/mocks"
	"dinebook/infras/otel/mocks"
	availabilityMocks "dinebook/internal/domains/availability/mocks"
	availabilityModel "dinebook/internal/domains/availability/model"
	reservationMocks "dinebook/internal/domains/reservation/mocks"
	"dinebook/internal/domains/reservation/model"
	"dinebook/internal/domains/reservation/model/dto"
	"dinebook/internal/domains/reservation/service"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/failure"
	gModel "dinebook/shared/model"
	gRepo "dinebook/shared/repository"
	repoMocks "dinebook/shared/repository/mocks"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const topic = "dinebook.reservation"

func actorContext(userID string, r role.Role) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, r)
}

type fixture struct {
	svc              service.Reservation
	repo             *reservationMocks.MockReservation
	availabilityRepo *availabilityMocks.MockAvailability
	kafka            *kafkaMocks.MockClient
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:             reservationMocks.NewMockReservation(ctrl),
		availabilityRepo: availabilityMocks.NewMockAvailability(ctrl),
		kafka:            kafkaMocks.NewMockClient(ctrl),
	}

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	cfg := &config.Config{}
	cfg.Kafka.Topics.Reservation = topic

	f.svc = service.New(f.repo, f.availabilityRepo, transactor, cfg, f.kafka, mocks.NewOtel(), timezone.NewFixedClock(now))

	return f
}

func TestReservationService_CreateErrors(t *testing.T) {
	open := openSlot()

	tests := []struct {
		name     string
		setup    func(f fixture)
		wantKind failure.Kind
	}{
		{
			name: "missing slot",
			setup: func(f fixture) {
				f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availabilityModel.Availability{}, nil)
			},
			wantKind: failure.KindNotFound,
		},
		{
			name: "slot taken between read and compare-and-set",
			setup: func(f fixture) {
				f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
				f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.availabilityRepo.EXPECT().SwapState(gomock.Any(), slotID, availabilityModel.StateOpen, availabilityModel.StateReserved, "diner-1", now).
					Return(gRepo.ErrStateConflict)
			},
			wantKind: failure.KindAlreadyBooked,
		},
		{
			name: "unique constraint fires",
			setup: func(f fixture) {
				f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
				f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.availabilityRepo.EXPECT().SwapState(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: "reservations_availability_id_key"})
			},
			wantKind: failure.KindAlreadyBooked,
		},
		{
			name: "serialization failure",
			setup: func(f fixture) {
				f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
				f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).
					Return(availabilityModel.Availability{}, &pq.Error{Code: constant.PqErrorCodeSerializationFailure})
			},
			wantKind: failure.KindAlreadyBooked,
		},
		{
			name: "storage error",
			setup: func(f fixture) {
				f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
				f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("connection refused"))
			},
			wantKind: failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, err := f.svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})

			assert.Equal(t, tt.wantKind, failure.GetKind(err))
		})
	}
}

func TestReservationService_CreatePublishesEvent(t *testing.T) {
	f := newFixture(t)
	open := openSlot()

	f.availabilityRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(open, nil)
	f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	f.availabilityRepo.EXPECT().SwapState(gomock.Any(), slotID, availabilityModel.StateOpen, availabilityModel.StateReserved, "diner-1", now).Return(nil)
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r model.Reservation) error {
		assert.Equal(t, "rest-profile-1", r.RestaurantID)
		assert.Equal(t, "diner-1", r.DinerID)
		assert.Equal(t, now, r.CreatedAt)

		return nil
	})

	published := make(chan model.Event, 1)
	f.kafka.EXPECT().SendMessages(gomock.Any(), topic, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msgs ...kafka.Message) error {
			event, _ := msgs[0].Value.(model.Event)
			published <- event

			return nil
		})

	res, err := f.svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})
	require.NoError(t, err)
	assert.False(t, res.IsPast)

	select {
	case event := <-published:
		assert.Equal(t, model.EventCreated, event.Type)
		assert.Equal(t, res.ID, event.ReservationID)
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
}

func TestReservationService_GetAll(t *testing.T) {
	t.Run("anonymous callers are refused", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetAll(context.Background(), gDto.QueryParams{}, dto.ReservationFilter{})
		assert.True(t, failure.IsKind(err, failure.KindForbidden))
	})

	scopes := []struct {
		name    string
		ctx     context.Context
		want    string
		argName string
	}{
		{name: "diner sees own", ctx: actorContext("diner-1", role.Diner), want: "reservations.diner_id", argName: "reservations_diner_id"},
		{name: "restaurant sees its own", ctx: actorContext("rest-1", role.Restaurant), want: "restaurants.user_id", argName: "restaurants_user_id"},
	}

	for _, tt := range scopes {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				where, args := filter.GetWhereClause()
				assert.Contains(t, where, tt.want)
				assert.Contains(t, where, "availabilities.date")
				assert.NotEmpty(t, args[tt.argName])

				return 0, nil
			})
			f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Reservation{}, nil)

			_, err := f.svc.GetAll(tt.ctx, gDto.QueryParams{Page: 1, Limit: 10}, dto.ReservationFilter{Date: "2024-06-02"})
			require.NoError(t, err)
		})
	}

	t.Run("admin sees all", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			where, _ := filter.GetWhereClause()
			assert.Empty(t, where)

			return 1, nil
		})
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Reservation{stored()}, nil)

		res, err := f.svc.GetAll(actorContext("admin-1", role.Admin), gDto.QueryParams{Page: 1, Limit: 10}, dto.ReservationFilter{})
		require.NoError(t, err)
		require.Len(t, res.Reservations, 1)
		assert.True(t, res.Reservations[0].IsPast)
	})
}

func stored() model.Reservation {
	return model.Reservation{
		ID:                "res-1",
		RestaurantID:      "rest-profile-1",
		DinerID:           "diner-1",
		AvailabilityID:    slotID,
		CreatedAt:         now.Add(-48 * time.Hour),
		RestaurantOwnerID: "rest-1",
		Date:              gModel.Date{Year: 2024, Month: time.May, Day: 31},
		StartTime:         gModel.TimeOfDay{Hour: 19},
	}
}

func TestReservationService_Get(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		wantKind failure.Kind
	}{
		{name: "diner", ctx: actorContext("diner-1", role.Diner)},
		{name: "owning restaurant", ctx: actorContext("rest-1", role.Restaurant)},
		{name: "admin", ctx: actorContext("admin-1", role.Admin)},
		{name: "other diner", ctx: actorContext("diner-2", role.Diner), wantKind: failure.KindForbidden},
		{name: "other restaurant", ctx: actorContext("rest-2", role.Restaurant), wantKind: failure.KindForbidden},
		{name: "anonymous", ctx: context.Background(), wantKind: failure.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(), nil)

			res, err := f.svc.Get(tt.ctx, "res-1")

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			require.NoError(t, err)
			assert.True(t, res.IsPast)
			assert.Equal(t, "2024-05-31", res.Date.String())
		})
	}
}

func TestReservationService_CancelReleasesSlot(t *testing.T) {
	f := newFixture(t)
	reserved := openSlot().WithState(availabilityModel.StateReserved)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(), nil)
	f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(reserved, nil)
	f.repo.EXPECT().DeleteAffected(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	f.availabilityRepo.EXPECT().SwapState(gomock.Any(), slotID, availabilityModel.StateReserved, availabilityModel.StateOpen, "diner-1", now).Return(nil)
	f.kafka.EXPECT().SendMessages(gomock.Any(), topic, gomock.Any()).Return(nil).AnyTimes()

	require.NoError(t, f.svc.Cancel(actorContext("diner-1", role.Diner), "res-1"))
}

func TestReservationService_CancelLostRace(t *testing.T) {
	f := newFixture(t)
	open := openSlot()

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(), nil)
	f.availabilityRepo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
	f.repo.EXPECT().DeleteAffected(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	err := f.svc.Cancel(actorContext("admin-1", role.Admin), "res-1")
	assert.True(t, failure.IsKind(err, failure.KindNotFound))
}
