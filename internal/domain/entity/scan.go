package entity

import (
	"time"
)

// Scan types
const (
	ScanTypeBoardingPass = "boarding_pass"
	ScanTypeBaggageTag   = "baggage_tag"
)

// Scan process status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// Outcome is the reconciliation decision for one submitted scan event.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUpdated   Outcome = "updated"
	OutcomeRejected  Outcome = "rejected"
)

// RawScanEvent is an immutable capture from a handheld device. It may be
// submitted more than once (network retry, multi-device); reconciliation is
// what makes re-delivery safe. Payload may be empty when only the
// fingerprint was synced.
type RawScanEvent struct {
	ID                string                 `bson:"_id,omitempty"`
	ScanID            string                 `bson:"scanId"`
	Payload           string                 `bson:"payload"`
	ScanType          string                 `bson:"scanType"`
	AirportCode       string                 `bson:"airportCode"`
	StationOrDeviceID string                 `bson:"stationOrDeviceId"`
	CapturedAt        time.Time              `bson:"capturedAt"`
	Fingerprint       string                 `bson:"fingerprint"`
	Signature         string                 `bson:"signature"`
	ReceivedAt        time.Time              `bson:"receivedAt"`
	ProcessStatus     string                 `bson:"processStatus"`
	ProcessStartedAt  time.Time              `bson:"processStartedAt"`
	ProcessedAt       time.Time              `bson:"processedAt"`
	ProcessSteps      ProcessSteps           `bson:"processSteps"`
	Outcome           Outcome                `bson:"outcome,omitempty"`
	ErrorDetail       string                 `bson:"errorDetail,omitempty"`
	ExtractedData     map[string]interface{} `bson:"extractedData,omitempty"`
}

// ProcessSteps tracks how far a scan made it through the pipeline.
type ProcessSteps struct {
	Classified      bool   `bson:"classified"`
	Variant         string `bson:"variant,omitempty"`
	FieldsExtracted bool   `bson:"fieldsExtracted"`
	Reconciled      bool   `bson:"reconciled"`
}

// ScanResult is the per-event outcome reported back to the ingesting client.
type ScanResult struct {
	ScanID  string  `json:"scanId"`
	Outcome Outcome `json:"outcome"`
	Key     string  `json:"key,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// SyncStats aggregates a pending-scan processing pass for one airport.
type SyncStats struct {
	Processed         int `json:"processed"`
	TotalScans        int `json:"totalScans"`
	PassengersCreated int `json:"passengersCreated"`
	BaggagesCreated   int `json:"baggagesCreated"`
	Errors            int `json:"errors"`
}
