package repository

import (
	"context"
	"time"

	"scantrace-service/internal/domain/entity"
)

// ScanRepository defines the interface for raw scan storage operations
type ScanRepository interface {
	Save(ctx context.Context, scan *entity.RawScanEvent) error
	FindByScanID(ctx context.Context, scanID string) (*entity.RawScanEvent, error)
	FindByFingerprint(ctx context.Context, fp string) (*entity.RawScanEvent, error)
	FindUnprocessed(ctx context.Context, airportCode string, limit int) ([]*entity.RawScanEvent, error)
	UpdateStatus(ctx context.Context, scanID string, status string, startedAt time.Time) error
	UpdateProcessSteps(ctx context.Context, scanID string, steps entity.ProcessSteps) error
	MarkAsProcessed(ctx context.Context, scanID string, status string, outcome entity.Outcome, errorDetail string, extractedData map[string]interface{}) error
	ResetProcessingScans(ctx context.Context) error
}
