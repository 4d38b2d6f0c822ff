package usecase

import (
	"context"
	"strings"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"
	"scantrace-service/pkg/bcbp"
	"scantrace-service/pkg/fingerprint"
	"scantrace-service/pkg/logger"
)

// gateDevicePrefix marks scanners stationed at a departure gate. The prefix
// only supplies the gate label; the boarding action itself belongs to every
// successful boarding-pass scan regardless of which device captured it.
const gateDevicePrefix = "GATE-"

// BoardingPassHandler reconciles boarding-pass scans into per-passenger
// boarding status records.
type BoardingPassHandler struct {
	boardingRepo  repository.BoardingRepository
	airlineRepo   repository.AirlineRepository
	airportRepo   repository.AirportRepository
	decoder       *bcbp.Decoder
	locks         *KeyLocker
	logger        logger.Logger
	referenceYear int
}

// NewBoardingPassHandler creates a new boarding pass handler
func NewBoardingPassHandler(
	boardingRepo repository.BoardingRepository,
	airlineRepo repository.AirlineRepository,
	airportRepo repository.AirportRepository,
	decoder *bcbp.Decoder,
	locks *KeyLocker,
	logger logger.Logger,
	referenceYear int,
) *BoardingPassHandler {
	return &BoardingPassHandler{
		boardingRepo:  boardingRepo,
		airlineRepo:   airlineRepo,
		airportRepo:   airportRepo,
		decoder:       decoder,
		locks:         locks,
		logger:        logger,
		referenceYear: referenceYear,
	}
}

// CanHandle checks if this handler can process the scan
func (h *BoardingPassHandler) CanHandle(scanType string) bool {
	return scanType == entity.ScanTypeBoardingPass
}

// Process reconciles one boarding-pass scan event.
func (h *BoardingPassHandler) Process(ctx context.Context, scan *entity.RawScanEvent) (*entity.ScanResult, error) {
	result := &entity.ScanResult{ScanID: scan.ScanID}

	// Fingerprint-only sync: a device uploaded the dedup hash without the
	// payload. It can confirm a scan we already applied, never create one.
	if scan.Payload == "" {
		existing, err := h.boardingRepo.FindByScanHash(ctx, scan.Fingerprint)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			scan.ProcessSteps.Reconciled = true
			result.Outcome = entity.OutcomeDuplicate
			result.Key = existing.PassengerKey
			return result, nil
		}
		result.Outcome = entity.OutcomeRejected
		result.Reason = "payload required"
		return result, nil
	}

	variant := bcbp.Classify(scan.Payload)
	scan.ProcessSteps.Classified = true
	scan.ProcessSteps.Variant = string(variant)

	rec := h.decoder.Decode(scan.Payload, variant)
	scan.ProcessSteps.FieldsExtracted = true

	if !rec.Confidence.PNR && !rec.Confidence.Name && !rec.Confidence.Flight {
		h.logger.Warn("Boarding pass carried no identifying fields",
			"scanId", scan.ScanID,
			"signature", scan.Signature)
		result.Outcome = entity.OutcomeRejected
		result.Reason = "no identifying fields extracted"
		return result, nil
	}

	key := fingerprint.BoardingIdentifier(rec.PNR, rec.FullName, rec.FlightNumber)
	result.Key = key

	lock := h.locks.Get("boarding", key)
	lock.Lock()
	defer lock.Unlock()

	existing, err := h.boardingRepo.FindByPassengerKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		status := &entity.BoardingStatus{
			PassengerKey:     key,
			AirportCode:      scan.AirportCode,
			FullName:         rec.FullName,
			LastName:         rec.LastName,
			FirstName:        rec.FirstName,
			PNR:              rec.PNR,
			FlightNumber:     rec.FlightNumber,
			FlightDateJulian: rec.FlightDateJulian,
			DepartureCode:    rec.DepartureCode,
			ArrivalCode:      rec.ArrivalCode,
			SeatNumber:       rec.SeatNumber,
			SequenceNumber:   rec.SequenceNumber,
			BaggageCount:     rec.BaggageCount,
			Confidence:       rec.Confidence,
			ScanHash:         scan.Fingerprint,
			// The first successful scan is the boarding event, whichever
			// device captured it.
			Boarded:   true,
			BoardedAt: scan.CapturedAt,
			BoardedBy: scan.StationOrDeviceID,
			Gate:      gateFromDevice(scan.StationOrDeviceID),
		}
		h.enrich(ctx, status, rec)

		if err := h.boardingRepo.Upsert(ctx, status); err != nil {
			return nil, err
		}

		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeCreated
		return result, nil
	}

	// Same capture resubmitted, nothing to apply.
	if existing.ScanHash == scan.Fingerprint {
		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeDuplicate
		return result, nil
	}

	// Already boarded with a different fingerprint: first writer wins for
	// boardedAt/boardedBy; a later re-scan, possibly corrupted, never
	// clobbers a confirmed boarding.
	if existing.Boarded {
		scan.ProcessSteps.Reconciled = true
		result.Outcome = entity.OutcomeDuplicate
		result.Reason = "already boarded"
		return result, nil
	}

	// A stored record that is not boarded predates the current writer.
	// The scan fills its gaps and applies the boarding action.
	existing.MergeParsed(rec)
	existing.Boarded = true
	existing.BoardedAt = scan.CapturedAt
	existing.BoardedBy = scan.StationOrDeviceID
	existing.Gate = gateFromDevice(scan.StationOrDeviceID)
	h.enrich(ctx, existing, rec)

	existing.ScanHash = scan.Fingerprint
	if err := h.boardingRepo.Upsert(ctx, existing); err != nil {
		return nil, err
	}

	scan.ProcessSteps.Reconciled = true
	result.Outcome = entity.OutcomeUpdated
	return result, nil
}

// enrich resolves reference data the payload cannot carry: the operating
// airline's name from its code, and the concrete flight date from the Julian
// day in the departure airport's timezone. Lookup failures degrade to the
// unenriched record, they never fail the scan.
func (h *BoardingPassHandler) enrich(ctx context.Context, status *entity.BoardingStatus, rec *bcbp.ParsedBoardingRecord) {
	if rec.Confidence.Flight && len(rec.FlightNumber) >= 2 && status.AirlineName == "" {
		airline, err := h.airlineRepo.GetByCode(ctx, rec.FlightNumber[:2])
		if err != nil {
			h.logger.Debug("Airline lookup failed", "code", rec.FlightNumber[:2], "error", err)
		} else if airline != nil {
			status.AirlineName = airline.Name
		}
	}

	if !rec.Confidence.FlightDate || !status.FlightDate.IsZero() {
		return
	}

	loc := time.UTC
	if rec.Confidence.Route {
		airport, err := h.airportRepo.GetByAirportCode(ctx, rec.DepartureCode)
		if err != nil {
			h.logger.Debug("Airport lookup failed", "code", rec.DepartureCode, "error", err)
		} else if airport != nil {
			if l, lerr := time.LoadLocation(airport.TzName); lerr == nil {
				loc = l
			}
		}
	}

	date, err := bcbp.ResolveFlightDate(rec.FlightDateJulian, h.referenceYear, loc)
	if err != nil {
		h.logger.Debug("Could not resolve flight date", "julianDay", rec.FlightDateJulian, "error", err)
		return
	}
	status.FlightDate = date
}

// gateFromDevice maps a gate scanner ID like "GATE-B12" to its gate label.
// Devices that report no gate degrade to the explicit sentinel.
func gateFromDevice(deviceID string) string {
	if strings.HasPrefix(deviceID, gateDevicePrefix) {
		return strings.TrimPrefix(deviceID, gateDevicePrefix)
	}
	return bcbp.NotAvailable
}
