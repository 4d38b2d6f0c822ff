package usecase

import (
	"context"

	"scantrace-service/internal/domain/entity"
)

// ScanHandler reconciles raw scan events of the type it supports.
type ScanHandler interface {
	CanHandle(scanType string) bool
	Process(ctx context.Context, scan *entity.RawScanEvent) (*entity.ScanResult, error)
}

// ScanTypeRouter selects a handler for a scan type.
type ScanTypeRouter interface {
	GetHandler(scanType string) ScanHandler
}
