// Package daemon wires the database, the session store and the web service
// into a running process.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/gofiber/storage"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/dsn"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	// seed the permission catalog and the built-in roles on every start
	if err = rbac.Initialize(db); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize rbac")
		return nil
	}

	seed(cfg, db)

	session.Init(openSessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

// openDialector selects the gorm driver matching the configured DB driver.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.Driver {
	case config.DBDriverPostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// openSessionStorage creates the fiber session storage on the same database
// the application uses.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.Driver == config.DBDriverPostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
