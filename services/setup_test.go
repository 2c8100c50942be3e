package services

import (
	"testing"

	"award-nomination-system/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the production
// schema. TranslateError is on, as in main.go, so unique-index hits surface
// as gorm.ErrDuplicatedKey the same way the Postgres driver reports them.
// A single connection serializes writers, which keeps the optimistic-write
// paths honest without a server.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Nomination{},
		&models.Vote{},
		&models.Judge{},
		&models.JudgeCategoryProgress{},
		&models.JudgeUser{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// submitTestNomination creates a valid nomination in (submitted, pending).
func submitTestNomination(t *testing.T, s *NominationService, category models.Category) *models.Nomination {
	t.Helper()
	nom, err := s.SubmitNomination(SubmissionInput{
		NomineeName:    "Jordan Okafor",
		NomineeEmail:   "jordan@example.org",
		NominatorName:  "Sam Mensah",
		NominatorEmail: "sam@example.org",
		Relationship:   "teacher",
		Reason:         "Outstanding results across three terms.",
		AwardCategory:  category,
	})
	if err != nil {
		t.Fatalf("submit nomination failed: %v", err)
	}
	return nom
}

// advanceToFinalist walks a fresh nomination to finalist so votes can land.
func advanceToFinalist(t *testing.T, s *NominationService, id string) *models.Nomination {
	t.Helper()
	if _, err := s.AdvanceLifecycle(id, models.StatusUnderReview); err != nil {
		t.Fatalf("advance to under-review failed: %v", err)
	}
	nom, err := s.AdvanceLifecycle(id, models.StatusFinalist)
	if err != nil {
		t.Fatalf("advance to finalist failed: %v", err)
	}
	return nom
}
