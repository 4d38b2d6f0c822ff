package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLifecycleFixture(t *testing.T, bags ...*entity.Baggage) (*BaggageLifecycle, *fakeBaggageRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeBaggageRepo()
	for _, bag := range bags {
		require.NoError(t, repo.Upsert(context.Background(), bag))
	}
	publisher := &fakePublisher{}
	return NewBaggageLifecycle(repo, publisher, NewKeyLocker(), logger.NewNopLogger()), repo, publisher
}

func checkedLifecycleBag(tag string) *entity.Baggage {
	return &entity.Baggage{
		TagNumber:           tag,
		AirportCode:         "FIH",
		FlightNumber:        "8Z334",
		Status:              entity.BaggageChecked,
		CheckedAt:           time.Unix(1700000000, 0),
		CheckedBy:           "BELT-01",
		ScanHash:            "18_1700000000_abc123",
		OriginalCheckInHash: "18_1700000000_abc123",
	}
}

func TestLifecycleForwardTransition(t *testing.T) {
	lifecycle, repo, publisher := newLifecycleFixture(t, checkedLifecycleBag("0075123456"))
	ctx := context.Background()

	bag, err := lifecycle.TransitionStatus(ctx, "0075123456", entity.BaggageLoaded, "", "ramp-7")
	require.NoError(t, err)
	assert.Equal(t, entity.BaggageLoaded, bag.Status)

	stored, _ := repo.FindByTagNumber(ctx, "0075123456")
	assert.Equal(t, entity.BaggageLoaded, stored.Status)
	assert.Equal(t, []string{"status_changed"}, publisher.kinds())
}

func TestLifecycleRejectsSkippedStep(t *testing.T) {
	lifecycle, repo, publisher := newLifecycleFixture(t, checkedLifecycleBag("0075123456"))
	ctx := context.Background()

	_, err := lifecycle.TransitionStatus(ctx, "0075123456", entity.BaggageArrived, "", "ramp-7")
	require.Error(t, err)

	var conflict *entity.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "0075123456", conflict.TagNumber)
	assert.Equal(t, entity.BaggageChecked, conflict.Current)
	assert.Equal(t, entity.BaggageArrived, conflict.Attempted)

	// Nothing was written or announced for the failed move.
	stored, _ := repo.FindByTagNumber(ctx, "0075123456")
	assert.Equal(t, entity.BaggageChecked, stored.Status)
	assert.Empty(t, publisher.kinds())
}

func TestLifecycleRushAndCancel(t *testing.T) {
	bag := checkedLifecycleBag("0075123456")
	bag.Status = entity.BaggageLoaded
	lifecycle, _, publisher := newLifecycleFixture(t, bag)
	ctx := context.Background()

	rushed, err := lifecycle.DeclareRush(ctx, "0075123456", "missed connection", "ET914", "ops-2")
	require.NoError(t, err)
	assert.Equal(t, entity.BaggageRush, rushed.Status)
	assert.Equal(t, entity.BaggageLoaded, rushed.PrevStatus)
	assert.Equal(t, "missed connection", rushed.RushReason)
	assert.Equal(t, "ET914", rushed.RushNextFlight)

	restored, err := lifecycle.CancelRush(ctx, "0075123456")
	require.NoError(t, err)
	assert.Equal(t, entity.BaggageLoaded, restored.Status)
	assert.Empty(t, restored.RushReason)

	assert.Equal(t, []string{"rush_declared", "rush_cancelled"}, publisher.kinds())
}

func TestLifecycleRushRequiresReason(t *testing.T) {
	lifecycle, _, _ := newLifecycleFixture(t, checkedLifecycleBag("0075123456"))

	_, err := lifecycle.DeclareRush(context.Background(), "0075123456", "", "ET914", "ops-2")
	var conflict *entity.ConflictError
	require.True(t, errors.As(err, &conflict))
}

func TestLifecycleReCheckAfterRush(t *testing.T) {
	lifecycle, _, _ := newLifecycleFixture(t, checkedLifecycleBag("0075123456"))
	ctx := context.Background()

	_, err := lifecycle.DeclareRush(ctx, "0075123456", "offloaded", "ET914", "ops-2")
	require.NoError(t, err)

	// Checked on a rushed bag re-enters the cycle; the declared next flight
	// applies when no explicit one is given.
	bag, err := lifecycle.TransitionStatus(ctx, "0075123456", entity.BaggageChecked, "", "belt-2")
	require.NoError(t, err)
	assert.Equal(t, entity.BaggageChecked, bag.Status)
	assert.Equal(t, "ET914", bag.FlightNumber)
	assert.Equal(t, "18_1700000000_abc123", bag.OriginalCheckInHash)
}

func TestLifecycleDeclareLost(t *testing.T) {
	bag := checkedLifecycleBag("0075123456")
	bag.Status = entity.BaggageInTransit
	lifecycle, _, _ := newLifecycleFixture(t, bag)

	lost, err := lifecycle.TransitionStatus(context.Background(), "0075123456", entity.BaggageLost, "", "ops-2")
	require.NoError(t, err)
	assert.Equal(t, entity.BaggageLost, lost.Status)

	// Lost is terminal.
	_, err = lifecycle.TransitionStatus(context.Background(), "0075123456", entity.BaggageArrived, "", "ops-2")
	require.Error(t, err)
}

func TestLifecycleUnknownTag(t *testing.T) {
	lifecycle, _, _ := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := lifecycle.TransitionStatus(ctx, "no-such-tag", entity.BaggageLoaded, "", "ops-2")
	assert.ErrorIs(t, err, ErrBaggageNotFound)

	_, err = lifecycle.GetByTagNumber(ctx, "no-such-tag")
	assert.ErrorIs(t, err, ErrBaggageNotFound)
}
