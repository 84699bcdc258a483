package api

import (
	"fmt"
	"net/http"

	"gatta/internal/auth"
	"gatta/internal/cache"
	"gatta/internal/config"
	"gatta/internal/database"
	"gatta/internal/handlers"
	"gatta/internal/logger"
	"gatta/internal/messaging"
	"gatta/internal/middleware"
	"gatta/internal/realtime"
	"gatta/internal/repository"
	"gatta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	relay    *realtime.Relay
	cache    *cache.PotCache
	hub      *realtime.Hub
	services *service.Services
}

// NewServer connects every backing service and builds the router. Redis and
// NATS are optional: without Redis reads go to Postgres, without NATS seat
// events are fanned out by the local hub only.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GinMode)
	log := logger.WithFields("component", "api")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{config: cfg, db: db, hub: realtime.NewHub()}

	var publisher messaging.Publisher = s.hub
	if cfg.NATS.Enabled {
		s.nats, err = messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			s.Cleanup()
			return nil, err
		}
		s.relay = realtime.NewRelay(s.nats, s.hub)
		if err := s.relay.Start(); err != nil {
			s.Cleanup()
			return nil, err
		}
		publisher = s.nats
	} else {
		log.Warn("NATS disabled, seat events reach this instance's watchers only")
	}

	var potCache service.PotCache
	if cfg.Redis.Enabled {
		s.cache, err = cache.NewPotCache(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, pot cache disabled", "error", err)
		} else {
			potCache = s.cache
		}
	}

	repos := repository.NewRepositories(db)
	issuer := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	s.services = service.NewServices(repos.Pots, repos.Seats, publisher, potCache, issuer, service.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		FeePerSeat:    cfg.FeePerSeat,
		Location:      cfg.DisplayLocation(),
	})

	s.router = gin.New()
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logger())
	if cfg.MetricsEnabled {
		s.router.Use(middleware.Metrics())
	}
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))

	s.setupRoutes(issuer)
	return s, nil
}

// setupRoutes mounts the pot API, health and metrics routes
func (s *Server) setupRoutes(issuer *auth.Issuer) {
	h := handlers.NewHandlers(s.services, s.hub)
	handlers.RegisterRoutes(s.router.Group("/api"), h, issuer)

	s.router.GET("/health", s.healthCheck)
	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// healthCheck reports database health and which optional backends are connected
func (s *Server) healthCheck(c *gin.Context) {
	db := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   db.Status,
		"service":  "gatta-api",
		"database": db,
		"nats":     s.nats != nil,
		"cache":    s.cache != nil,
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Cleanup closes every connection NewServer opened
func (s *Server) Cleanup() error {
	log := logger.WithFields("component", "api")

	if s.hub != nil {
		s.hub.Close()
	}
	if s.relay != nil {
		if err := s.relay.Stop(); err != nil {
			log.Error("Error stopping seat relay", "error", err)
		}
	}
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
