package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/config"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	httpapi "github.com/GriffinCanCode/DriveDeck/backend/internal/http"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/middleware"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/providers/media"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/service"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	registry    *service.Registry
	provider    *media.Provider
	broadcaster *events.Broadcaster
	logger      *logging.Logger
	config      *config.Config
	metrics     *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	logger.Info("Initializing DriveDeck server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	logger.Info("Performance monitoring initialized")

	// Event broadcaster feeds the WebSocket stream
	broadcaster := events.NewBroadcaster(metrics)

	// Media provider and service registry
	provider := media.NewProvider(cfg.Media, logger, metrics, broadcaster)
	serviceRegistry := service.NewRegistry()
	if err := serviceRegistry.Register(provider); err != nil {
		return nil, fmt.Errorf("failed to register media provider: %w", err)
	}
	logger.Info("Registered media provider",
		zap.Int("tools", len(provider.Definition().Tools)),
		zap.Strings("scan_bases", cfg.Media.ScanBases),
	)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := httpapi.NewHandlers(provider, serviceRegistry, broadcaster, logger)
	wsHandler := ws.NewHandler(broadcaster, metrics, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Media browsing
	router.GET("/mounts", handlers.ListMounts)
	router.GET("/files", handlers.ListFiles)
	router.GET("/files/search", handlers.SearchFiles)

	// File mutations
	router.POST("/files/rename", handlers.RenameFile)
	router.POST("/files/delete", handlers.DeleteFile)
	router.POST("/files/move", handlers.MoveFile)
	router.POST("/folders", handlers.CreateFolder)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	httpServer := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:      router,
		httpServer:  httpServer,
		registry:    serviceRegistry,
		provider:    provider,
		broadcaster: broadcaster,
		logger:      logger,
		config:      cfg,
		metrics:     metrics,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Sync()
	return nil
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
