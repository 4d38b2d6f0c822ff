package usecase

import (
	"context"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"
	"scantrace-service/pkg/bcbp"
	"scantrace-service/pkg/logger"
)

// BaggageTagHandler reconciles baggage-tag scans into per-bag records. A scan
// only ever creates a record or fills its gaps; lifecycle moves go through
// the explicit status operations, never through scan traffic.
type BaggageTagHandler struct {
	baggageRepo repository.BaggageRepository
	decoder     *bcbp.Decoder
	locks       *KeyLocker
	logger      logger.Logger
}

// NewBaggageTagHandler creates a new baggage tag handler
func NewBaggageTagHandler(
	baggageRepo repository.BaggageRepository,
	decoder *bcbp.Decoder,
	locks *KeyLocker,
	logger logger.Logger,
) *BaggageTagHandler {
	return &BaggageTagHandler{
		baggageRepo: baggageRepo,
		decoder:     decoder,
		locks:       locks,
		logger:      logger,
	}
}

// CanHandle checks if this handler can process the scan
func (h *BaggageTagHandler) CanHandle(scanType string) bool {
	return scanType == entity.ScanTypeBaggageTag
}

// Process reconciles one baggage-tag scan event.
func (h *BaggageTagHandler) Process(ctx context.Context, scan *entity.RawScanEvent) (*entity.ScanResult, error) {
	result := &entity.ScanResult{ScanID: scan.ScanID}

	if scan.Payload == "" {
		existing, err := h.baggageRepo.FindByScanHash(ctx, scan.Fingerprint)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			scan.ProcessSteps.Reconciled = true
			result.Outcome = entity.OutcomeDuplicate
			result.Key = existing.TagNumber
			return result, nil
		}
		result.Outcome = entity.OutcomeRejected
		result.Reason = "payload required"
		return result, nil
	}

	tag := h.decoder.DecodeBaggageTag(scan.Payload)
	scan.ProcessSteps.FieldsExtracted = true

	if tag.TagNumber == bcbp.Unknown {
		h.logger.Warn("Baggage tag carried no tag number",
			"scanId", scan.ScanID,
			"signature", scan.Signature)
		result.Outcome = entity.OutcomeRejected
		result.Reason = "no tag number extracted"
		return result, nil
	}

	result.Key = tag.TagNumber

	lock := h.locks.Get("baggage", tag.TagNumber)
	lock.Lock()
	defer lock.Unlock()

	existing, err := h.baggageRepo.FindByTagNumber(ctx, tag.TagNumber)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		baggage := &entity.Baggage{
			TagNumber:       tag.TagNumber,
			AirportCode:     scan.AirportCode,
			PassengerName:   tag.PassengerName,
			PNR:             tag.PNR,
			FlightNumber:    tag.FlightNumber,
			OriginCode:      tag.OriginCode,
			DestinationCode: tag.DestinationCode,
			BaggageSequence: tag.BaggageSequence,
			BaggageCount:    tag.BaggageCount,
			Status:          entity.BaggageChecked,
			CheckedAt:       scan.CapturedAt,
			CheckedBy:       scan.StationOrDeviceID,
			ScanHash:        scan.Fingerprint,
			// First check-in scan, kept across rush re-routes.
			OriginalCheckInHash: scan.Fingerprint,
		}

		if err := h.baggageRepo.Upsert(ctx, baggage); err != nil {
			return nil, err
		}

		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeCreated
		return result, nil
	}

	if existing.ScanHash == scan.Fingerprint {
		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeDuplicate
		return result, nil
	}

	if !existing.MergeTag(tag) {
		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeDuplicate
		result.Reason = "no new fields"
		return result, nil
	}

	existing.ScanHash = scan.Fingerprint
	if err := h.baggageRepo.Upsert(ctx, existing); err != nil {
		return nil, err
	}

	scan.ProcessSteps.Reconciled = true
	result.Outcome = entity.OutcomeUpdated
	return result, nil
}
