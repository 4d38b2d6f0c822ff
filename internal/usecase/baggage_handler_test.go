package usecase

import (
	"context"
	"testing"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/pkg/bcbp"
	"scantrace-service/pkg/fingerprint"
	"scantrace-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	minimalTag = "0075123456 8Z 0334"
	fullTag    = "0075123456 RAZIOU/MOUSTAPHA KQ0555 FIHNBO 1/2"
)

func newTestBaggageHandler(repo *fakeBaggageRepo) *BaggageTagHandler {
	return NewBaggageTagHandler(repo, bcbp.NewDecoder(logger.NewNopLogger()), NewKeyLocker(), logger.NewNopLogger())
}

func baggageScan(scanID, payload, deviceID string, capturedAt time.Time) *entity.RawScanEvent {
	return &entity.RawScanEvent{
		ScanID:            scanID,
		Payload:           payload,
		ScanType:          entity.ScanTypeBaggageTag,
		AirportCode:       "FIH",
		StationOrDeviceID: deviceID,
		CapturedAt:        capturedAt,
		Fingerprint:       fingerprint.New(payload, capturedAt).String(),
		Signature:         fingerprint.Signature(payload),
	}
}

func TestBaggageHandlerCreate(t *testing.T) {
	repo := newFakeBaggageRepo()
	handler := newTestBaggageHandler(repo)
	ctx := context.Background()

	at := time.Unix(1700000000, 0)
	scan := baggageScan("scan-1", minimalTag, "BELT-01", at)
	result, err := handler.Process(ctx, scan)
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomeCreated, result.Outcome)
	assert.Equal(t, "0075123456", result.Key)

	bag, err := repo.FindByTagNumber(ctx, "0075123456")
	require.NoError(t, err)
	require.NotNil(t, bag)
	assert.Equal(t, entity.BaggageChecked, bag.Status)
	assert.Equal(t, "8Z334", bag.FlightNumber)
	assert.Equal(t, at, bag.CheckedAt)
	assert.Equal(t, "BELT-01", bag.CheckedBy)
	assert.Equal(t, scan.Fingerprint, bag.ScanHash)
	assert.Equal(t, scan.Fingerprint, bag.OriginalCheckInHash)
}

func TestBaggageHandlerDuplicate(t *testing.T) {
	repo := newFakeBaggageRepo()
	handler := newTestBaggageHandler(repo)
	ctx := context.Background()

	at := time.Unix(1700000000, 0)
	_, err := handler.Process(ctx, baggageScan("scan-1", minimalTag, "BELT-01", at))
	require.NoError(t, err)

	result, err := handler.Process(ctx, baggageScan("scan-2", minimalTag, "BELT-01", at))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeDuplicate, result.Outcome)
}

func TestBaggageHandlerGapFillDoesNotMoveStatus(t *testing.T) {
	repo := newFakeBaggageRepo()
	handler := newTestBaggageHandler(repo)
	ctx := context.Background()

	_, err := handler.Process(ctx, baggageScan("scan-1", minimalTag, "BELT-01", time.Unix(1700000000, 0)))
	require.NoError(t, err)

	// Simulate downstream lifecycle progress between the two scans.
	bag, _ := repo.FindByTagNumber(ctx, "0075123456")
	require.NoError(t, bag.Transition(entity.BaggageLoaded, "ramp-7", time.Now()))
	require.NoError(t, repo.Upsert(ctx, bag))

	// A richer scan of the same tag fills fields but never touches status.
	result, err := handler.Process(ctx, baggageScan("scan-2", fullTag, "RAMP-07", time.Unix(1700000100, 0)))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeUpdated, result.Outcome)

	bag, _ = repo.FindByTagNumber(ctx, "0075123456")
	assert.Equal(t, entity.BaggageLoaded, bag.Status)
	assert.Equal(t, "RAZIOU/MOUSTAPHA", bag.PassengerName)
	assert.Equal(t, "FIH", bag.OriginCode)
	assert.Equal(t, "NBO", bag.DestinationCode)
	assert.Equal(t, 2, bag.BaggageCount)
	// The flight from the first scan is known and never overwritten.
	assert.Equal(t, "8Z334", bag.FlightNumber)
}

func TestBaggageHandlerNoNewFields(t *testing.T) {
	repo := newFakeBaggageRepo()
	handler := newTestBaggageHandler(repo)
	ctx := context.Background()

	_, err := handler.Process(ctx, baggageScan("scan-1", fullTag, "BELT-01", time.Unix(1700000000, 0)))
	require.NoError(t, err)

	result, err := handler.Process(ctx, baggageScan("scan-2", fullTag, "BELT-02", time.Unix(1700000200, 0)))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeDuplicate, result.Outcome)
	assert.Equal(t, "no new fields", result.Reason)
}

func TestBaggageHandlerRejectsWithoutTagNumber(t *testing.T) {
	handler := newTestBaggageHandler(newFakeBaggageRepo())

	result, err := handler.Process(context.Background(),
		baggageScan("scan-1", "RAZIOU/MOUSTAPHA KQ0555", "BELT-01", time.Unix(1700000000, 0)))
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomeRejected, result.Outcome)
	assert.Equal(t, "no tag number extracted", result.Reason)
}

func TestBaggageHandlerFingerprintOnly(t *testing.T) {
	repo := newFakeBaggageRepo()
	handler := newTestBaggageHandler(repo)
	ctx := context.Background()

	at := time.Unix(1700000000, 0)
	full := baggageScan("scan-1", minimalTag, "BELT-01", at)
	_, err := handler.Process(ctx, full)
	require.NoError(t, err)

	confirm := &entity.RawScanEvent{
		ScanID:      "scan-2",
		ScanType:    entity.ScanTypeBaggageTag,
		AirportCode: "FIH",
		CapturedAt:  at,
		Fingerprint: full.Fingerprint,
	}
	result, err := handler.Process(ctx, confirm)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeDuplicate, result.Outcome)
	assert.Equal(t, "0075123456", result.Key)

	missing := &entity.RawScanEvent{
		ScanID:      "scan-3",
		ScanType:    entity.ScanTypeBaggageTag,
		AirportCode: "FIH",
		CapturedAt:  at,
		Fingerprint: "99_1700000000_deadbeef",
	}
	result, err = handler.Process(ctx, missing)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeRejected, result.Outcome)
	assert.Equal(t, "payload required", result.Reason)
}
