package usecase

import (
	"context"
	"fmt"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"
	"scantrace-service/pkg/fingerprint"
	"scantrace-service/pkg/logger"
	"scantrace-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ScanProcessor orchestrates raw scan ingestion and reconciliation. Every
// submitted event is stored before reconciliation, so delivery is
// at-least-once and reconciliation is what makes re-delivery safe.
type ScanProcessor struct {
	scanRepo  repository.ScanRepository
	router    ScanTypeRouter
	publisher repository.EventPublisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	batchSize int
}

// NewScanProcessor creates a new scan processor
func NewScanProcessor(
	scanRepo repository.ScanRepository,
	router ScanTypeRouter,
	publisher repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
	batchSize int,
) *ScanProcessor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ScanProcessor{
		scanRepo:  scanRepo,
		router:    router,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		batchSize: batchSize,
	}
}

// IngestScan validates, fingerprints, stores and immediately reconciles one
// submitted scan event.
func (p *ScanProcessor) IngestScan(ctx context.Context, scan *entity.RawScanEvent) (*entity.ScanResult, error) {
	if scan.ScanID == "" {
		scan.ScanID = uuid.NewString()
	}

	if scan.Payload == "" && scan.Fingerprint == "" {
		return &entity.ScanResult{
			ScanID:  scan.ScanID,
			Outcome: entity.OutcomeRejected,
			Reason:  "payload or fingerprint required",
		}, nil
	}
	// Defaulting to the server clock would put a delayed retry of the same
	// capture in a different fingerprint timestamp bucket and defeat dedup.
	if scan.CapturedAt.IsZero() {
		return &entity.ScanResult{
			ScanID:  scan.ScanID,
			Outcome: entity.OutcomeRejected,
			Reason:  "capturedAt required",
		}, nil
	}
	if scan.Fingerprint == "" {
		scan.Fingerprint = fingerprint.New(scan.Payload, scan.CapturedAt).String()
	}
	scan.Signature = fingerprint.Signature(scan.Payload)

	// Retry of an event we already accepted returns its recorded outcome
	// without touching anything.
	prior, err := p.scanRepo.FindByScanID(ctx, scan.ScanID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		outcome := prior.Outcome
		if outcome == "" {
			outcome = entity.OutcomeDuplicate
		}
		return &entity.ScanResult{
			ScanID:  prior.ScanID,
			Outcome: outcome,
			Reason:  "scan already submitted",
		}, nil
	}

	// Same capture submitted under a new scan ID, usually from a second
	// device. Record it for audit but skip reconciliation.
	dup, err := p.scanRepo.FindByFingerprint(ctx, scan.Fingerprint)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ProcessStatus == entity.StatusCompleted {
		scan.ProcessStatus = entity.StatusSkipped
		scan.Outcome = entity.OutcomeDuplicate
		if err := p.scanRepo.Save(ctx, scan); err != nil {
			p.logger.Error("Failed to record duplicate scan", "scanId", scan.ScanID, "error", err)
		}
		p.metrics.DuplicatesDetected.Inc()
		return &entity.ScanResult{
			ScanID:  scan.ScanID,
			Outcome: entity.OutcomeDuplicate,
		}, nil
	}

	if err := p.scanRepo.Save(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to store scan: %w", err)
	}

	return p.ProcessScan(ctx, scan)
}

// ProcessScan runs one stored scan through its handler and records the outcome.
func (p *ScanProcessor) ProcessScan(ctx context.Context, scan *entity.RawScanEvent) (*entity.ScanResult, error) {
	timer := prometheus.NewTimer(p.metrics.ProcessingTime)
	defer timer.ObserveDuration()

	handler := p.router.GetHandler(scan.ScanType)
	if handler == nil {
		p.logger.Debug("No handler found for scan",
			"scanType", scan.ScanType,
			"scanId", scan.ScanID)

		err := p.scanRepo.MarkAsProcessed(
			ctx,
			scan.ScanID,
			entity.StatusSkipped,
			entity.OutcomeRejected,
			"no handler for scan type",
			map[string]interface{}{"scanType": scan.ScanType},
		)
		if err != nil {
			p.logger.Error("Failed to mark scan as skipped", "scanId", scan.ScanID, "error", err)
		}
		return &entity.ScanResult{
			ScanID:  scan.ScanID,
			Outcome: entity.OutcomeRejected,
			Reason:  "unsupported scan type",
		}, nil
	}

	if err := p.scanRepo.UpdateStatus(ctx, scan.ScanID, entity.StatusProcessing, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	result, err := handler.Process(ctx, scan)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("process_scan").Inc()
		p.logger.Error("Handler failed to process scan",
			"scanId", scan.ScanID,
			"scanType", scan.ScanType,
			"error", err)

		p.scanRepo.MarkAsProcessed(ctx, scan.ScanID, entity.StatusFailed, "", err.Error(), nil)
		return nil, err
	}

	if err := p.scanRepo.UpdateProcessSteps(ctx, scan.ScanID, scan.ProcessSteps); err != nil {
		p.logger.Error("Failed to update process steps", "scanId", scan.ScanID, "error", err)
	}

	extracted := map[string]interface{}{
		"key":     result.Key,
		"variant": scan.ProcessSteps.Variant,
	}
	if err := p.scanRepo.MarkAsProcessed(ctx, scan.ScanID, entity.StatusCompleted, result.Outcome, result.Reason, extracted); err != nil {
		p.logger.Error("Failed to mark scan as processed", "scanId", scan.ScanID, "error", err)
	}

	p.metrics.ScansProcessed.Inc()
	if result.Outcome == entity.OutcomeDuplicate {
		p.metrics.DuplicatesDetected.Inc()
	}

	p.publishOutcome(ctx, scan, result)

	return result, nil
}

// ProcessPendingScans drains the pending queue for one airport, oldest first.
func (p *ScanProcessor) ProcessPendingScans(ctx context.Context, airportCode string) (*entity.SyncStats, error) {
	// Reset scans stuck mid-flight from a crashed pass
	if err := p.scanRepo.ResetProcessingScans(ctx); err != nil {
		p.logger.Error("Failed to reset stale scans", "error", err)
	}

	scans, err := p.scanRepo.FindUnprocessed(ctx, airportCode, p.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to find unprocessed scans: %w", err)
	}

	stats := &entity.SyncStats{TotalScans: len(scans)}
	if len(scans) == 0 {
		return stats, nil
	}

	p.logger.Info("Processing pending scans", "airport", airportCode, "count", len(scans))

	for _, scan := range scans {
		result, err := p.ProcessScan(ctx, scan)
		if err != nil {
			stats.Errors++
			continue
		}
		stats.Processed++
		if result.Outcome == entity.OutcomeCreated {
			switch scan.ScanType {
			case entity.ScanTypeBoardingPass:
				stats.PassengersCreated++
			case entity.ScanTypeBaggageTag:
				stats.BaggagesCreated++
			}
		}
	}

	return stats, nil
}

func (p *ScanProcessor) publishOutcome(ctx context.Context, scan *entity.RawScanEvent, result *entity.ScanResult) {
	event := &repository.OutcomeEvent{
		Kind:        "scan_outcome",
		AirportCode: scan.AirportCode,
		Key:         result.Key,
		Outcome:     result.Outcome,
		ScanType:    scan.ScanType,
		Detail:      result.Reason,
	}

	if err := p.publisher.Publish(ctx, event); err != nil {
		p.metrics.ErrorsCount.WithLabelValues("publish_outcome").Inc()
		p.logger.Error("Failed to publish outcome event", "scanId", scan.ScanID, "error", err)
		return
	}
	p.metrics.EventsPublished.Inc()
}
