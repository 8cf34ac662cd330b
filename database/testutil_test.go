package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/higbec/project-portal-backend/models"
)

// setupTestDB opens a fresh in-memory SQLite database, migrated and scoped to
// the calling test. A single connection keeps concurrent writes serialized.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Registration{}, &models.Admin{}))
	return db
}

func sampleRegistration(email string) *models.Registration {
	return &models.Registration{
		FullName:         "Jane Doe",
		PhoneNumber:      "9876543210",
		Email:            email,
		CollegeName:      "ABC Institute",
		Branch:           "CSE",
		Semester:         "6",
		BatchType:        "B.Tech",
		RegistrationType: models.TypeIndividual,
		ProjectTitle:     "Smart Irrigation System",
	}
}
