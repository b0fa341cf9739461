package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/homewarden/homewarden/configs"
	"github.com/homewarden/homewarden/internal/application/services"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/cache"
	"github.com/homewarden/homewarden/internal/infrastructure/db"
	"github.com/homewarden/homewarden/internal/infrastructure/email"
	"github.com/homewarden/homewarden/internal/infrastructure/health"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver"
	"github.com/homewarden/homewarden/internal/infrastructure/insights"
	"github.com/homewarden/homewarden/internal/infrastructure/kvstore"
	"github.com/homewarden/homewarden/internal/infrastructure/ratelimit"
	"github.com/homewarden/homewarden/internal/infrastructure/redis"
	"github.com/homewarden/homewarden/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting HomeWarden...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Select the durable key-value backend. The memory backend keeps all
	// coordination state in-process and is meant for local runs.
	var store ports.DurableStore
	switch cfg.Store.Backend {
	case "memory":
		logger.Warn("Using in-memory store backend; rate-limit and cache state will not survive restarts")
		store = kvstore.NewMemoryStore()
	default:
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")
		store = kvstore.NewRedisStore(redisClient, cfg.Store.KeyPrefix)
	}

	// Initialize db repository implementations
	householdRepo := repositories.NewHouseholdRepository(database, logger)
	memberRepo := repositories.NewMemberRepository(database, logger)
	recordRepo := repositories.NewRecordRepository(database, logger)

	// Edge governance: sliding-window counter and named admission policies
	counterOpts := ratelimit.DefaultOptions()
	if cfg.Store.PersistInterval > 0 {
		counterOpts.PersistInterval = cfg.Store.PersistInterval
	}
	if cfg.Store.NearLimitFraction > 0 {
		counterOpts.NearLimitFraction = cfg.Store.NearLimitFraction
	}
	counter := ratelimit.NewWindowCounter(store, counterOpts, logger)

	policies := map[string]services.PolicyConfig{
		"edge": policyFromConfig(cfg.Admission.Edge),
		"api":  policyFromConfig(cfg.Admission.API),
		"auth": policyFromConfig(cfg.Admission.Auth),
	}
	admissionService := services.NewAdmissionService(counter, policies, logger)

	probeConfig := services.DefaultProbeConfig()
	probeConfig.AllowedClients = append(probeConfig.AllowedClients, cfg.Probe.AllowedClients...)
	probeConfig.BlockedPaths = append(probeConfig.BlockedPaths, cfg.Probe.BlockedPaths...)
	probeConfig.BlockedExtensions = append(probeConfig.BlockedExtensions, cfg.Probe.BlockedExtensions...)
	probeConfig.BlockedUserAgents = append(probeConfig.BlockedUserAgents, cfg.Probe.BlockedUserAgents...)
	probeConfig.SuspiciousParams = append(probeConfig.SuspiciousParams, cfg.Probe.SuspiciousParams...)
	probeService := services.NewProbeService(probeConfig, admissionService, logger)

	// Shared TTL cache over the durable store
	artifactCache := cache.NewTTLCache(store, cfg.Cache.KeyPrefix, logger)

	// Email delivery
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		BaseURL:        cfg.Email.BaseURL,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	// Wire application services
	householdService := services.NewHouseholdService(householdRepo, logger)
	memberService := services.NewMemberService(memberRepo, householdRepo, emailService, logger)
	authService := services.NewAuthService(memberRepo, services.AuthConfig{
		Secret:         cfg.JWT.Secret,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	}, logger)

	suggestionService := services.NewSuggestionService(recordRepo, artifactCache, services.SuggestionConfig{
		TTL:       cfg.Cache.SuggestionTTL,
		KeyPrefix: "suggest",
	}, logger)
	recordService := services.NewRecordService(recordRepo, suggestionService, logger)

	insightGenerator := insights.NewGenerator(recordRepo, logger)
	insightService := services.NewInsightService(insightGenerator, artifactCache, services.InsightConfig{
		TTL:       cfg.Cache.InsightTTL,
		KeyPrefix: "insights",
	}, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewStoreHealthChecker(store)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		AuthService:       authService,
		HouseholdService:  householdService,
		MemberService:     memberService,
		RecordService:     recordService,
		SuggestionService: suggestionService,
		InsightService:    insightService,
		ProbeService:      probeService,
		AdmissionService:  admissionService,
		HealthCheckers:    hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func policyFromConfig(p config.AdmissionPolicyConfig) services.PolicyConfig {
	return services.PolicyConfig{
		Window:      p.Window,
		MaxCount:    p.RequestsPerWindow,
		KeyPrefix:   p.KeyPrefix,
		SkipOnError: p.SkipOnError,
	}
}
