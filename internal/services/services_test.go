package services

import (
	"testing"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points the global store at an in-memory SQLite DB and wipes
// any rows left over from a previous test. A single open connection keeps
// concurrent writers serialized the way the Postgres pool would.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	if err := db.AutoMigrate(&models.User{}, &models.Job{}, &models.Conversation{}, &models.Message{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	for _, table := range []string{"messages", "conversations", "jobs", "users"} {
		db.Exec("DELETE FROM " + table)
	}
}

// seedParties creates an approved worker, employer and one job posting.
func seedParties(t *testing.T) (models.User, models.User, models.Job) {
	t.Helper()

	worker := models.User{ID: "worker1", Name: "Tendai", Email: "worker1@example.com", Role: models.RoleWorker, Status: models.ApprovalApproved}
	employer := models.User{ID: "employer1", Name: "Chipo", Email: "employer1@example.com", Role: models.RoleEmployer, Status: models.ApprovalApproved}
	database.DB.Create(&worker)
	database.DB.Create(&employer)

	job := models.Job{ID: "job1", EmployerID: employer.ID, Title: "Gardener", Location: "Mkoba", IsOpen: true}
	database.DB.Create(&job)

	return worker, employer, job
}

// seedMessage inserts a message directly, bypassing Send, so tests can
// control timestamps.
func seedMessage(t *testing.T, conversationID, senderID, body string, at time.Time) models.Message {
	t.Helper()

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      at,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		t.Fatalf("failed to seed message: %v", err)
	}
	return msg
}
