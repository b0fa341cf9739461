package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	Probe     *ProbeMiddleware
	Admission *AdmissionMiddleware
	Auth      *AuthMiddleware
	Logging   *LoggingMiddleware
	Metrics   *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	probeService ports.ProbeService,
	admissionService ports.AdmissionService,
	householdService ports.HouseholdService,
	authService ports.AuthService,
	logger *logrus.Logger,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		Probe:     NewProbeMiddleware(probeService, logger),
		Admission: NewAdmissionMiddleware(admissionService, householdService, logger),
		Auth:      NewAuthMiddleware(authService, logger),
		Logging:   NewLoggingMiddleware(logger),
		Metrics:   NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}
