package repository

import (
	"context"

	"scantrace-service/internal/domain/entity"
)

// OutcomeEvent is published after a scan is reconciled or a lifecycle
// transition is applied, for downstream dashboard/manifest collaborators.
type OutcomeEvent struct {
	Kind        string         `json:"kind"` // scan_outcome, rush_declared, rush_cancelled, status_changed
	AirportCode string         `json:"airportCode"`
	Key         string         `json:"key"`
	Outcome     entity.Outcome `json:"outcome,omitempty"`
	ScanType    string         `json:"scanType,omitempty"`
	Status      string         `json:"status,omitempty"`
	Detail      string         `json:"detail,omitempty"`
}

// EventPublisher defines the interface for publishing outcome events
type EventPublisher interface {
	Publish(ctx context.Context, event *OutcomeEvent) error
	Close() error
}
