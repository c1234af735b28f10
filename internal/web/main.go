// Package web implements the http web service.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	fiberlogger "github.com/ToonStack-Admin/ToonStack-Admin/internal/logger/adapter/fiber"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler/admin/permission"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler/admin/role"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler/admin/user"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler/login"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler/logout"
)

const (
	// CheckAlivePath is the health check endpoint polled by load balancers.
	CheckAlivePath = "/checkalive"

	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	rbacService  *rbac.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// basic auth middleware
	app.Use(AuthMiddleware)

	// Initialize rbac service
	rbacService := rbac.NewService(db)

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		rbacService: rbacService,
	}
	service.alive.Store(true)

	// init handlers (they register their own routes with permission checks)
	login.Handler.Init(app, cfg, db, rbacService)
	logout.Handler.Init(app, cfg)
	role.Handler.Init(app, cfg, db, rbacService)
	permission.Handler.Init(app, cfg, db, rbacService)
	user.Handler.Init(app, cfg, db, rbacService)

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	return service
}

// checkAlive reports whether the service accepts traffic. During graceful
// shutdown it returns 503 so the load balancer drains this instance.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("online")
}
