package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
	customMiddleware "github.com/homewarden/homewarden/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type ServerDeps struct {
	AuthService       ports.AuthService
	HouseholdService  ports.HouseholdService
	MemberService     ports.MemberService
	RecordService     ports.RecordService
	SuggestionService ports.SuggestionService
	InsightService    ports.InsightService
	ProbeService      ports.ProbeService
	AdmissionService  ports.AdmissionService
	HealthCheckers    []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	authSvc        ports.AuthService
	householdSvc   ports.HouseholdService
	memberSvc      ports.MemberService
	recordSvc      ports.RecordService
	suggestionSvc  ports.SuggestionService
	insightSvc     ports.InsightService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		authSvc:        deps.AuthService,
		householdSvc:   deps.HouseholdService,
		memberSvc:      deps.MemberService,
		recordSvc:      deps.RecordService,
		suggestionSvc:  deps.SuggestionService,
		insightSvc:     deps.InsightService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.ProbeService,
			deps.AdmissionService,
			deps.HouseholdService,
			deps.AuthService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
