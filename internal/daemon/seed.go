package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// seed creates the dev-mode admin account when the user table is empty.
// Production deployments get their users from Keycloak.
func seed(cfg *config.Config, db *gorm.DB) {
	if !cfg.DevMode {
		return
	}

	var count int64

	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		db.Create(
			&models.User{
				Username:    "admin",
				Password:    models.HashPassword("changeme"),
				Active:      true,
				IsStaff:     true,
				IsSuperuser: true,
			},
		)

		log.Warn().Msg("dev mode: seeded local admin account with default password")
	}
}
