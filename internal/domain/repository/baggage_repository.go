package repository

import (
	"context"

	"scantrace-service/internal/domain/entity"
)

// BaggageRepository defines the interface for baggage record operations
type BaggageRepository interface {
	FindByTagNumber(ctx context.Context, tagNumber string) (*entity.Baggage, error)
	FindByScanHash(ctx context.Context, scanHash string) (*entity.Baggage, error)
	Upsert(ctx context.Context, baggage *entity.Baggage) error
}
