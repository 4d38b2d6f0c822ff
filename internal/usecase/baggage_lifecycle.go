package usecase

import (
	"context"
	"errors"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"
	"scantrace-service/pkg/logger"
)

// ErrBaggageNotFound is returned when a lifecycle operation addresses a tag
// number with no record.
var ErrBaggageNotFound = errors.New("baggage record not found")

// BaggageLifecycle applies operator-driven lifecycle moves: forward status
// transitions, rush declaration and cancellation, re-check and lost. Illegal
// moves surface as *entity.ConflictError for manual resolution.
type BaggageLifecycle struct {
	baggageRepo repository.BaggageRepository
	publisher   repository.EventPublisher
	locks       *KeyLocker
	logger      logger.Logger
}

// NewBaggageLifecycle creates a new baggage lifecycle usecase
func NewBaggageLifecycle(
	baggageRepo repository.BaggageRepository,
	publisher repository.EventPublisher,
	locks *KeyLocker,
	logger logger.Logger,
) *BaggageLifecycle {
	return &BaggageLifecycle{
		baggageRepo: baggageRepo,
		publisher:   publisher,
		locks:       locks,
		logger:      logger,
	}
}

// DeclareRush pulls a bag from its scheduled flight.
func (l *BaggageLifecycle) DeclareRush(ctx context.Context, tagNumber, reason, nextFlight, userID string) (*entity.Baggage, error) {
	return l.apply(ctx, tagNumber, "rush_declared", func(bag *entity.Baggage, at time.Time) error {
		return bag.DeclareRush(reason, nextFlight, userID, at)
	})
}

// CancelRush reverses a rush declared in error, restoring the prior status.
func (l *BaggageLifecycle) CancelRush(ctx context.Context, tagNumber string) (*entity.Baggage, error) {
	return l.apply(ctx, tagNumber, "rush_cancelled", func(bag *entity.Baggage, at time.Time) error {
		return bag.CancelRush(at)
	})
}

// TransitionStatus applies an explicit status change requested by an
// operator. Checked re-enters a rushed bag onto a new flight, lost is an
// administrative declaration, everything else must be the next forward step.
func (l *BaggageLifecycle) TransitionStatus(ctx context.Context, tagNumber string, to entity.BaggageStatus, flightNumber, userID string) (*entity.Baggage, error) {
	return l.apply(ctx, tagNumber, "status_changed", func(bag *entity.Baggage, at time.Time) error {
		switch to {
		case entity.BaggageChecked:
			return bag.ReCheck(flightNumber, userID, at)
		case entity.BaggageLost:
			return bag.DeclareLost(userID, at)
		default:
			return bag.Transition(to, userID, at)
		}
	})
}

// GetByTagNumber returns the current record for a tag.
func (l *BaggageLifecycle) GetByTagNumber(ctx context.Context, tagNumber string) (*entity.Baggage, error) {
	bag, err := l.baggageRepo.FindByTagNumber(ctx, tagNumber)
	if err != nil {
		return nil, err
	}
	if bag == nil {
		return nil, ErrBaggageNotFound
	}
	return bag, nil
}

func (l *BaggageLifecycle) apply(ctx context.Context, tagNumber, kind string, mutate func(*entity.Baggage, time.Time) error) (*entity.Baggage, error) {
	lock := l.locks.Get("baggage", tagNumber)
	lock.Lock()
	defer lock.Unlock()

	bag, err := l.baggageRepo.FindByTagNumber(ctx, tagNumber)
	if err != nil {
		return nil, err
	}
	if bag == nil {
		return nil, ErrBaggageNotFound
	}

	if err := mutate(bag, time.Now()); err != nil {
		return nil, err
	}

	if err := l.baggageRepo.Upsert(ctx, bag); err != nil {
		return nil, err
	}

	event := &repository.OutcomeEvent{
		Kind:        kind,
		AirportCode: bag.AirportCode,
		Key:         bag.TagNumber,
		Status:      string(bag.Status),
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Error("Failed to publish lifecycle event",
			"tagNumber", bag.TagNumber,
			"kind", kind,
			"error", err)
	}

	return bag, nil
}
