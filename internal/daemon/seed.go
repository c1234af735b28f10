package daemon

import (
	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
)

// seed creates the initial admin account when the user table is empty, so a
// fresh install has an operator login. The password must be changed after the
// first login.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		return
	}

	var adminRole models.Role
	if err := db.Where("name = ?", rbac.RoleAdmin).First(&adminRole).Error; err != nil {
		log.Error().Err(err).Msg("admin role missing, skipping admin user seed")
		return
	}

	admin := models.User{
		Username: "admin",
		Password: models.HashPassword("changeme"),
		Active:   true,
		RoleID:   &adminRole.ID,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed admin user")
		return
	}

	log.Info().Msg("seeded initial admin user")
}
