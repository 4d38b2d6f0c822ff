package router

import (
	"scantrace-service/internal/usecase"
	"scantrace-service/pkg/logger"
)

// ScanRouter routes raw scan events to the handler for their scan type
type ScanRouter struct {
	handlers []usecase.ScanHandler
	logger   logger.Logger
}

// NewScanRouter creates a new scan router
func NewScanRouter(logger logger.Logger) *ScanRouter {
	return &ScanRouter{
		handlers: make([]usecase.ScanHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler for a scan type
func (r *ScanRouter) Register(handler usecase.ScanHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered scan handler", "handler", handler)
}

// GetHandler returns the appropriate handler for a given scan type
func (r *ScanRouter) GetHandler(scanType string) usecase.ScanHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(scanType) {
			return handler
		}
	}
	return nil
}
