package service_test

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	availabilityModel "dinebook/internal/domains/availability/model"
	"dinebook/internal/domains/reservation/model"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	gRepo "dinebook/shared/repository"

	"github.com/lib/pq"
)

var errUnsupported = errors.New("not supported by the in-memory store")

type txKey struct{}

// memStore keeps slots and reservations in maps. Transactions are
// serialized by txMu, which plays the part of the slot row lock, and are
// rolled back by restoring a snapshot.
type memStore struct {
	txMu         sync.Mutex
	mu           sync.Mutex
	slots        map[string]availabilityModel.Availability
	reservations map[string]model.Reservation
}

func newMemStore(slots ...availabilityModel.Availability) *memStore {
	s := &memStore{
		slots:        map[string]availabilityModel.Availability{},
		reservations: map[string]model.Reservation{},
	}

	for _, slot := range slots {
		s.slots[slot.ID] = slot
	}

	return s
}

func (s *memStore) slot(id string) availabilityModel.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slots[id]
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.reservations)
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	slots, reservations := maps.Clone(s.slots), maps.Clone(s.reservations)
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.slots, s.reservations = slots, reservations
		s.mu.Unlock()

		return err
	}

	return nil
}

func valueOf(filter gDto.FilterGroup, field string) string {
	for _, f := range filter.Filters {
		switch v := f.(type) {
		case gDto.Filter:
			if v.Field == field {
				value, _ := v.Value.(string)

				return value
			}
		case gDto.FilterGroup:
			if value := valueOf(v, field); value != constant.Empty {
				return value
			}
		}
	}

	return constant.Empty
}

type memAvailabilities struct {
	store *memStore
}

func (r memAvailabilities) Insert(_ context.Context, slot availabilityModel.Availability) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.slots[slot.ID] = slot

	return nil
}

func (r memAvailabilities) InsertBulk(ctx context.Context, slots []availabilityModel.Availability) error {
	for _, slot := range slots {
		if err := r.Insert(ctx, slot); err != nil {
			return err
		}
	}

	return nil
}

func (r memAvailabilities) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (availabilityModel.Availability, error) {
	return r.store.slot(valueOf(filter, availabilityModel.FieldID)), nil
}

func (r memAvailabilities) GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (availabilityModel.Availability, error) {
	if ctx.Value(txKey{}) == nil {
		return availabilityModel.Availability{}, errors.New("row lock outside transaction")
	}

	return r.store.slot(valueOf(filter, availabilityModel.FieldID)), nil
}

func (r memAvailabilities) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]availabilityModel.Availability, error) {
	return nil, errUnsupported
}

func (r memAvailabilities) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	return r.store.slot(valueOf(filter, availabilityModel.FieldID)).ID != constant.Empty, nil
}

func (r memAvailabilities) Count(context.Context, gDto.FilterGroup) (int, error) {
	return 0, errUnsupported
}

func (r memAvailabilities) Update(context.Context, map[string]any, gDto.FilterGroup) error {
	return errUnsupported
}

func (r memAvailabilities) UpdateAffected(context.Context, map[string]any, gDto.FilterGroup) (int64, error) {
	return 0, errUnsupported
}

func (r memAvailabilities) DeleteAffected(context.Context, gDto.FilterGroup) (int64, error) {
	return 0, errUnsupported
}

func (r memAvailabilities) Delete(context.Context, gDto.FilterGroup) error {
	return errUnsupported
}

func (r memAvailabilities) SwapState(_ context.Context, id string, from, to availabilityModel.State, actor string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot, ok := r.store.slots[id]
	if !ok || slot.State() != from {
		return gRepo.ErrStateConflict
	}

	slot = slot.WithState(to)
	slot.ModifiedAt = at
	slot.ModifiedBy = actor
	r.store.slots[id] = slot

	return nil
}

type memReservations struct {
	store *memStore
}

func (r memReservations) Insert(_ context.Context, reservation model.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.reservations {
		if existing.AvailabilityID == reservation.AvailabilityID {
			return &pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: "reservations_availability_id_key"}
		}
	}

	r.store.reservations[reservation.ID] = reservation

	return nil
}

func (r memReservations) find(filter gDto.FilterGroup) model.Reservation {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id := valueOf(filter, model.FieldID); id != constant.Empty {
		return r.store.reservations[id]
	}

	slotID := valueOf(filter, model.FieldAvailabilityID)
	for _, reservation := range r.store.reservations {
		if reservation.AvailabilityID == slotID {
			return reservation
		}
	}

	return model.Reservation{}
}

func (r memReservations) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Reservation, error) {
	return r.find(filter), nil
}

func (r memReservations) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Reservation, error) {
	return nil, errUnsupported
}

func (r memReservations) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	return r.find(filter).ID != constant.Empty, nil
}

func (r memReservations) Count(context.Context, gDto.FilterGroup) (int, error) {
	return 0, errUnsupported
}

func (r memReservations) Update(context.Context, map[string]any, gDto.FilterGroup) error {
	return errUnsupported
}

func (r memReservations) Delete(ctx context.Context, filter gDto.FilterGroup) error {
	_, err := r.DeleteAffected(ctx, filter)

	return err
}

func (r memReservations) DeleteAffected(_ context.Context, filter gDto.FilterGroup) (int64, error) {
	id := valueOf(filter, model.FieldID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.reservations[id]; !ok {
		return 0, nil
	}

	delete(r.store.reservations, id)

	return 1, nil
}
