package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dinebook/config"
	"dinebook/infras/kafka"
	"dinebook/infras/otel/mocks"
	availabilityModel "dinebook/internal/domains/availability/model"
	"dinebook/internal/domains/reservation/model"
	"dinebook/internal/domains/reservation/model/dto"
	"dinebook/internal/domains/reservation/service"
	"dinebook/shared/failure"
	gModel "dinebook/shared/model"
	"dinebook/shared/role"
	"dinebook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slotID = "6a1f0c3e-8f7b-4d57-9a0b-1d2e3f405162"

func openSlot() availabilityModel.Availability {
	return availabilityModel.Availability{
		ID:                slotID,
		RestaurantID:      "rest-profile-1",
		RestaurantOwnerID: "rest-1",
		Date:              gModel.Date{Year: 2024, Month: time.June, Day: 2},
		StartTime:         gModel.TimeOfDay{Hour: 19},
	}.WithState(availabilityModel.StateOpen)
}

func newWorkflow(store *memStore) service.Reservation {
	return service.New(
		memReservations{store: store},
		memAvailabilities{store: store},
		store,
		&config.Config{},
		kafka.New(&config.Config{}),
		mocks.NewOtel(),
		timezone.NewFixedClock(now),
	)
}

func TestConcurrentBookingsHaveOneWinner(t *testing.T) {
	const diners = 50

	store := newMemStore(openSlot())
	svc := newWorkflow(store)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, diners)
	)

	for i := range diners {
		wg.Add(1)

		go func() {
			defer wg.Done()

			<-start

			_, errs[i] = svc.Create(actorContext(fmt.Sprintf("diner-%d", i), role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})
		}()
	}

	close(start)
	wg.Wait()

	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++

			continue
		}

		assert.Equal(t, failure.KindAlreadyBooked, failure.GetKind(err))
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.reservationCount())
	assert.Equal(t, availabilityModel.StateReserved, store.slot(slotID).State())
}

func TestBookCancelRebook(t *testing.T) {
	store := newMemStore(openSlot())
	svc := newWorkflow(store)

	first, err := svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})
	require.NoError(t, err)
	assert.Equal(t, "rest-profile-1", first.RestaurantID)
	assert.Equal(t, "diner-1", first.DinerID)
	assert.Equal(t, availabilityModel.StateReserved, store.slot(slotID).State())

	_, err = svc.Create(actorContext("diner-2", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})
	assert.True(t, failure.IsKind(err, failure.KindAlreadyBooked))

	// Another diner may not cancel it.
	err = svc.Cancel(actorContext("diner-2", role.Diner), first.ID)
	assert.True(t, failure.IsKind(err, failure.KindForbidden))

	// The owning restaurant may.
	require.NoError(t, svc.Cancel(actorContext("rest-1", role.Restaurant), first.ID))
	assert.Equal(t, availabilityModel.StateOpen, store.slot(slotID).State())
	assert.Zero(t, store.reservationCount())

	err = svc.Cancel(actorContext("rest-1", role.Restaurant), first.ID)
	assert.True(t, failure.IsKind(err, failure.KindNotFound))

	second, err := svc.Create(actorContext("diner-2", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, store.reservationCount())
}

func TestBlockedSlotCannotBeBooked(t *testing.T) {
	store := newMemStore(openSlot().WithState(availabilityModel.StateBlocked))
	svc := newWorkflow(store)

	_, err := svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})

	require.True(t, failure.IsKind(err, failure.KindSlotUnavailable))
	assert.EqualError(t, err, "slot is not available")
	assert.Zero(t, store.reservationCount())
	assert.Equal(t, availabilityModel.StateBlocked, store.slot(slotID).State())
}

func TestOnlyDinersBook(t *testing.T) {
	for _, r := range []role.Role{role.Admin, role.Restaurant, role.Anonymous} {
		store := newMemStore(openSlot())
		svc := newWorkflow(store)

		_, err := svc.Create(actorContext("user-1", r), dto.CreateReservationRequest{AvailabilityID: slotID})

		assert.True(t, failure.IsKind(err, failure.KindForbidden), r.String())
		assert.Equal(t, availabilityModel.StateOpen, store.slot(slotID).State())
	}
}

type failingInsert struct {
	memReservations
}

func (failingInsert) Insert(context.Context, model.Reservation) error {
	return errors.New("connection reset")
}

func TestFailedInsertRollsBackSlot(t *testing.T) {
	store := newMemStore(openSlot())
	svc := service.New(
		failingInsert{memReservations{store: store}},
		memAvailabilities{store: store},
		store,
		&config.Config{},
		kafka.New(&config.Config{}),
		mocks.NewOtel(),
		timezone.NewFixedClock(now),
	)

	_, err := svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})

	require.Error(t, err)
	assert.Equal(t, failure.KindInternal, failure.GetKind(err))
	assert.Equal(t, availabilityModel.StateOpen, store.slot(slotID).State())
	assert.Zero(t, store.reservationCount())
}

func TestStaleReservationRowBlocksBooking(t *testing.T) {
	store := newMemStore(openSlot())
	require.NoError(t, memReservations{store: store}.Insert(context.Background(), model.Reservation{
		ID:             "stale",
		AvailabilityID: slotID,
		DinerID:        "diner-9",
	}))

	svc := newWorkflow(store)

	_, err := svc.Create(actorContext("diner-1", role.Diner), dto.CreateReservationRequest{AvailabilityID: slotID})

	assert.True(t, failure.IsKind(err, failure.KindAlreadyBooked))
	assert.Equal(t, availabilityModel.StateOpen, store.slot(slotID).State())
	assert.Equal(t, 1, store.reservationCount())
}
