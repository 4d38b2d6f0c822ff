package usecase

import (
	"context"
	"sync"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"

	"gorm.io/gorm"
)

type fakeScanRepo struct {
	mu    sync.Mutex
	scans map[string]*entity.RawScanEvent
}

func newFakeScanRepo() *fakeScanRepo {
	return &fakeScanRepo{scans: make(map[string]*entity.RawScanEvent)}
}

func (r *fakeScanRepo) Save(ctx context.Context, scan *entity.RawScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan.ProcessStatus == "" {
		scan.ProcessStatus = entity.StatusPending
	}
	if scan.ReceivedAt.IsZero() {
		scan.ReceivedAt = time.Now()
	}
	copied := *scan
	r.scans[scan.ScanID] = &copied
	return nil
}

func (r *fakeScanRepo) FindByScanID(ctx context.Context, scanID string) (*entity.RawScanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan, ok := r.scans[scanID]; ok {
		copied := *scan
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeScanRepo) FindByFingerprint(ctx context.Context, fp string) (*entity.RawScanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, scan := range r.scans {
		if scan.Fingerprint == fp {
			copied := *scan
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeScanRepo) FindUnprocessed(ctx context.Context, airportCode string, limit int) ([]*entity.RawScanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RawScanEvent
	for _, scan := range r.scans {
		if scan.AirportCode != airportCode {
			continue
		}
		if scan.ProcessStatus != "" && scan.ProcessStatus != entity.StatusPending {
			continue
		}
		copied := *scan
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeScanRepo) UpdateStatus(ctx context.Context, scanID string, status string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan, ok := r.scans[scanID]; ok {
		scan.ProcessStatus = status
		if status == entity.StatusProcessing {
			scan.ProcessStartedAt = startedAt
		}
	}
	return nil
}

func (r *fakeScanRepo) UpdateProcessSteps(ctx context.Context, scanID string, steps entity.ProcessSteps) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan, ok := r.scans[scanID]; ok {
		scan.ProcessSteps = steps
	}
	return nil
}

func (r *fakeScanRepo) MarkAsProcessed(ctx context.Context, scanID string, status string, outcome entity.Outcome, errorDetail string, extractedData map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scan, ok := r.scans[scanID]; ok {
		scan.ProcessStatus = status
		scan.Outcome = outcome
		scan.ErrorDetail = errorDetail
		scan.ExtractedData = extractedData
		scan.ProcessedAt = time.Now()
	}
	return nil
}

func (r *fakeScanRepo) ResetProcessingScans(ctx context.Context) error {
	return nil
}

type fakeBoardingRepo struct {
	mu      sync.Mutex
	records map[string]*entity.BoardingStatus
}

func newFakeBoardingRepo() *fakeBoardingRepo {
	return &fakeBoardingRepo{records: make(map[string]*entity.BoardingStatus)}
}

func (r *fakeBoardingRepo) FindByPassengerKey(ctx context.Context, passengerKey string) (*entity.BoardingStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.records[passengerKey]; ok {
		copied := *status
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeBoardingRepo) FindByScanHash(ctx context.Context, scanHash string) (*entity.BoardingStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range r.records {
		if status.ScanHash == scanHash {
			copied := *status
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBoardingRepo) Upsert(ctx context.Context, status *entity.BoardingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *status
	r.records[status.PassengerKey] = &copied
	return nil
}

type fakeBaggageRepo struct {
	mu      sync.Mutex
	records map[string]*entity.Baggage
}

func newFakeBaggageRepo() *fakeBaggageRepo {
	return &fakeBaggageRepo{records: make(map[string]*entity.Baggage)}
}

func (r *fakeBaggageRepo) FindByTagNumber(ctx context.Context, tagNumber string) (*entity.Baggage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bag, ok := r.records[tagNumber]; ok {
		copied := *bag
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeBaggageRepo) FindByScanHash(ctx context.Context, scanHash string) (*entity.Baggage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bag := range r.records {
		if bag.ScanHash == scanHash {
			copied := *bag
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBaggageRepo) Upsert(ctx context.Context, bag *entity.Baggage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *bag
	r.records[bag.TagNumber] = &copied
	return nil
}

type fakeAirlineRepo struct {
	airlines map[string]string // code -> name
}

func (r *fakeAirlineRepo) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	if name, ok := r.airlines[code]; ok {
		return &entity.Airline{Code: code, Name: name}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAirportRepo struct {
	timezones map[string]string // airport code -> tz name
}

func (r *fakeAirportRepo) GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error) {
	if tz, ok := r.timezones[code]; ok {
		return &entity.Airport{AirportCode: code, TzName: tz}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*repository.OutcomeEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event *repository.OutcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeRouter struct {
	handlers []ScanHandler
}

func (r *fakeRouter) GetHandler(scanType string) ScanHandler {
	for _, h := range r.handlers {
		if h.CanHandle(scanType) {
			return h
		}
	}
	return nil
}
