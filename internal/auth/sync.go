package auth

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
)

// SyncUser mirrors a validated Keycloak identity into the local database.
//
// Lookup order is Keycloak subject, then email, then username; the first hit
// is updated with the token's profile fields and re-activated. When no
// account exists one is created, and the token's organization claims yield
// default viewer memberships for organizations that exist locally.
// Memberships are never removed here; role management lives in the database.
func (s *Service) SyncUser(info *keycloak.UserInfo, orgs []keycloak.OrganizationClaim) (*models.User, error) {
	if info == nil || info.Subject == "" || info.Username() == "" {
		return nil, ErrMissingUserInfo
	}

	var (
		user    *models.User
		created bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error

		user, created, err = upsertUser(tx, info)
		if err != nil {
			return err
		}

		if created {
			seedMemberships(tx, user, orgs)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return user, nil
}

// upsertUser finds the account by subject, email or username and updates it,
// or creates a fresh one.
func upsertUser(tx *gorm.DB, info *keycloak.UserInfo) (*models.User, bool, error) {
	var user models.User

	err := tx.Where("keycloak_id = ?", info.Subject).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) && info.Email != "" {
		err = tx.Where("email = ?", info.Email).First(&user).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = tx.Where("username = ?", info.Username()).First(&user).Error
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Active:     true,
			Username:   info.Username(),
			Email:      info.Email,
			FirstName:  info.GivenName,
			LastName:   info.FamilyName,
			KeycloakID: info.Subject,
		}

		if err := tx.Create(&user).Error; err != nil {
			return nil, false, err //nolint:wrapcheck
		}

		log.Info().Str("keycloak_id", info.Subject).Str("username", user.Username).
			Msg("created user from keycloak identity")

		return &user, true, nil
	case err != nil:
		return nil, false, err //nolint:wrapcheck
	}

	user.KeycloakID = info.Subject
	user.Username = info.Username()
	user.Email = info.Email
	user.FirstName = info.GivenName
	user.LastName = info.FamilyName
	user.Active = true

	if err := tx.Save(&user).Error; err != nil {
		return nil, false, err //nolint:wrapcheck
	}

	return &user, false, nil
}

// seedMemberships gives a new user default viewer memberships for the
// organizations asserted in the token. Unknown organizations and a missing
// viewer role are logged and skipped; sync must not fail over them.
func seedMemberships(tx *gorm.DB, user *models.User, orgs []keycloak.OrganizationClaim) {
	if len(orgs) == 0 {
		return
	}

	var viewer models.Role

	if err := tx.Where("name = ?", models.RoleViewer).First(&viewer).Error; err != nil {
		log.Error().Err(err).Msg("default viewer role not found, skipping membership seeding")
		return
	}

	for _, claim := range orgs {
		orgID, err := strconv.ParseUint(claim.OrganizationID, 10, 64)
		if err != nil {
			log.Warn().Str("organization_id", claim.OrganizationID).
				Msg("skipping non-numeric organization claim")

			continue
		}

		var org models.Organization

		if err := tx.First(&org, orgID).Error; err != nil {
			log.Warn().Uint64("organization_id", orgID).
				Msg("organization from token does not exist locally")

			continue
		}

		membership := models.OrganizationMembership{
			UserID:         user.ID,
			OrganizationID: org.ID,
			RoleID:         viewer.ID,
		}

		err = tx.Where("user_id = ? AND organization_id = ?", user.ID, org.ID).
			FirstOrCreate(&membership).Error
		if err != nil {
			log.Error().Err(err).Uint64("organization_id", org.ID).
				Msg("failed to seed organization membership")
		}
	}
}
