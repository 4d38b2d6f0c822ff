package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/usecase"
	"scantrace-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes scan ingestion and baggage lifecycle operations over HTTP.
type Server struct {
	mux       *chi.Mux
	processor *usecase.ScanProcessor
	lifecycle *usecase.BaggageLifecycle
	logger    logger.Logger
}

// New creates the HTTP server and wires its routes
func New(processor *usecase.ScanProcessor, lifecycle *usecase.BaggageLifecycle, log logger.Logger) *Server {
	s := &Server{
		processor: processor,
		lifecycle: lifecycle,
		logger:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", s.handleIngestScan)
		r.Post("/scans/batch", s.handleIngestBatch)
		r.Post("/sync/{airport}", s.handleSync)

		r.Route("/baggage", func(r chi.Router) {
			r.Post("/rush", s.handleDeclareRush)
			r.Post("/rush/cancel", s.handleCancelRush)
			r.Get("/{tag}", s.handleGetBaggage)
			r.Post("/{tag}/status", s.handleTransitionStatus)
		})
	})

	s.mux = r
	return s
}

// Mux returns the underlying router
func (s *Server) Mux() *chi.Mux {
	return s.mux
}

type scanRequest struct {
	ScanID            string    `json:"scanId,omitempty"`
	Payload           string    `json:"payload"`
	ScanType          string    `json:"scanType"`
	AirportCode       string    `json:"airportCode"`
	StationOrDeviceID string    `json:"stationOrDeviceId"`
	CapturedAt        time.Time `json:"capturedAt,omitempty"`
	Fingerprint       string    `json:"fingerprint,omitempty"`
}

func (req *scanRequest) toEntity() *entity.RawScanEvent {
	return &entity.RawScanEvent{
		ScanID:            req.ScanID,
		Payload:           req.Payload,
		ScanType:          req.ScanType,
		AirportCode:       req.AirportCode,
		StationOrDeviceID: req.StationOrDeviceID,
		CapturedAt:        req.CapturedAt,
		Fingerprint:       req.Fingerprint,
	}
}

func (s *Server) handleIngestScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AirportCode == "" || req.ScanType == "" || req.CapturedAt.IsZero() {
		s.writeError(w, http.StatusBadRequest, "airportCode, scanType and capturedAt are required")
		return
	}

	result, err := s.processor.IngestScan(r.Context(), req.toEntity())
	if err != nil {
		s.logger.Error("Scan ingestion failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "scan processing failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Scans []scanRequest `json:"scans"`
}

type batchResponse struct {
	Results []*entity.ScanResult `json:"results"`
}

// handleIngestBatch processes an offline device's backlog in one request.
// Events are applied in order; one bad event fails alone, not the batch.
func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Scans) == 0 {
		s.writeError(w, http.StatusBadRequest, "scans must not be empty")
		return
	}

	resp := batchResponse{Results: make([]*entity.ScanResult, 0, len(req.Scans))}
	for i := range req.Scans {
		scan := req.Scans[i].toEntity()
		result, err := s.processor.IngestScan(r.Context(), scan)
		if err != nil {
			s.logger.Error("Batch scan failed", "scanId", scan.ScanID, "error", err)
			result = &entity.ScanResult{
				ScanID:  scan.ScanID,
				Outcome: entity.OutcomeRejected,
				Reason:  "processing failed",
			}
		}
		resp.Results = append(resp.Results, result)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	airport := chi.URLParam(r, "airport")

	stats, err := s.processor.ProcessPendingScans(r.Context(), airport)
	if err != nil {
		s.logger.Error("Sync failed", "airport", airport, "error", err)
		s.writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

type rushRequest struct {
	TagNumber  string `json:"tagNumber"`
	Reason     string `json:"reason"`
	NextFlight string `json:"nextFlight,omitempty"`
	UserID     string `json:"userId"`
}

func (s *Server) handleDeclareRush(w http.ResponseWriter, r *http.Request) {
	var req rushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TagNumber == "" {
		s.writeError(w, http.StatusBadRequest, "tagNumber is required")
		return
	}

	bag, err := s.lifecycle.DeclareRush(r.Context(), req.TagNumber, req.Reason, req.NextFlight, req.UserID)
	if err != nil {
		s.writeLifecycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bag)
}

type cancelRushRequest struct {
	TagNumber string `json:"tagNumber"`
}

func (s *Server) handleCancelRush(w http.ResponseWriter, r *http.Request) {
	var req cancelRushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TagNumber == "" {
		s.writeError(w, http.StatusBadRequest, "tagNumber is required")
		return
	}

	bag, err := s.lifecycle.CancelRush(r.Context(), req.TagNumber)
	if err != nil {
		s.writeLifecycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bag)
}

type statusRequest struct {
	Status       string `json:"status"`
	FlightNumber string `json:"flightNumber,omitempty"`
	UserID       string `json:"userId"`
}

func (s *Server) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		s.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	bag, err := s.lifecycle.TransitionStatus(r.Context(), tag, entity.BaggageStatus(req.Status), req.FlightNumber, req.UserID)
	if err != nil {
		s.writeLifecycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bag)
}

func (s *Server) handleGetBaggage(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	bag, err := s.lifecycle.GetByTagNumber(r.Context(), tag)
	if err != nil {
		s.writeLifecycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bag)
}

// writeLifecycleError maps lifecycle failures onto status codes: a missing
// record is 404, an illegal transition 409 with full conflict context.
func (s *Server) writeLifecycleError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrBaggageNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var conflict *entity.ConflictError
	if errors.As(err, &conflict) {
		s.writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     conflict.Error(),
			"tagNumber": conflict.TagNumber,
			"current":   conflict.Current,
			"attempted": conflict.Attempted,
		})
		return
	}

	s.logger.Error("Lifecycle operation failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "operation failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
