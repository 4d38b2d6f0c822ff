package repository

import (
	"context"

	"scantrace-service/internal/domain/entity"
)

// BoardingRepository defines the interface for boarding status operations
type BoardingRepository interface {
	FindByPassengerKey(ctx context.Context, passengerKey string) (*entity.BoardingStatus, error)
	FindByScanHash(ctx context.Context, scanHash string) (*entity.BoardingStatus, error)
	Upsert(ctx context.Context, status *entity.BoardingStatus) error
}
