package testhelpers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"oneonone/internal/models"
)

// SetupTestDB creates an isolated in-memory SQLite database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	return db
}

// SeedSession inserts a session row and returns it.
func SeedSession(t *testing.T, db *gorm.DB, sessionID, orgID, managerID, employeeID, notes string) *models.Session {
	t.Helper()

	session := &models.Session{
		SessionID:  sessionID,
		OrgID:      orgID,
		ManagerID:  managerID,
		EmployeeID: employeeID,
		Notes:      notes,
		Status:     "scheduled",
	}
	if err := db.Create(session).Error; err != nil {
		panic(fmt.Sprintf("failed to seed session: %v", err))
	}
	return session
}
