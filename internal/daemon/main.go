// Package daemon boots the DataSpace backend: database, Keycloak client,
// token cache and web service.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage/memory/v2"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/dsn"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
	"github.com/dataspace-exchange/dataspace-backend/internal/logger"
	"github.com/dataspace-exchange/dataspace-backend/internal/web"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// OpenDB opens the configured database with the matching gorm driver.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.Name)
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Dataset{},
		&models.DatasetPermission{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if _, err = role.Seed(db); err != nil {
		return nil, fmt.Errorf("failed to seed roles: %w", err)
	}

	seed(cfg, db)

	kc, err := keycloak.New(context.Background(), cfg.Keycloak)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak client: %w", err)
	}

	// validated-token cache
	session.Init(memory.New())

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, kc),
	}, nil
}
