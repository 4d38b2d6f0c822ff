package repository

import (
	"context"

	"scantrace-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference lookups
type AirportRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error)
}
