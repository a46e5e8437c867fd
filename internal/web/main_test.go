package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/session"
)

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Dataset{},
		&models.DatasetPermission{},
	))

	_, err = role.Seed(db)
	require.NoError(t, err)

	kc, err := keycloak.New(context.Background(), cfg.Keycloak)
	require.NoError(t, err)

	session.Init(memory.New())

	return New(cfg, db, kc)
}

func TestNewWiresShutdownBehaviour(t *testing.T) {
	cfg := &config.Config{
		Webserver: config.Webserver{Port: 8000, FastShutdown: true},
		Keycloak:  config.Keycloak{DevMode: true},
	}

	svc := newTestService(t, cfg)
	assert.True(t, svc.fastShutDown)

	cfg.Webserver.FastShutdown = false
	svc = newTestService(t, cfg)
	assert.False(t, svc.fastShutDown)
}

func TestHealthzReflectsAliveFlag(t *testing.T) {
	cfg := &config.Config{
		Webserver: config.Webserver{Port: 8000},
		Keycloak:  config.Keycloak{DevMode: true},
	}

	svc := newTestService(t, cfg)

	// not started yet, the liveness check reports unavailable
	resp, err := svc.App.Test(httptest.NewRequest(http.MethodGet, HealthPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	svc.alive.Store(true)

	resp, err = svc.App.Test(httptest.NewRequest(http.MethodGet, HealthPath, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var status map[string]string

	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ok", status["status"])

	// draining flips the check back to unavailable
	svc.alive.Store(false)

	resp, err = svc.App.Test(httptest.NewRequest(http.MethodGet, HealthPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
