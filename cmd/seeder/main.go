package main

import (
	"log"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/config"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/google/uuid"
)

// Seeds a demo worker, employer and job so the messaging flow can be
// exercised against a fresh database.
func main() {
	config.LoadConfig()
	database.Connect()

	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	worker := getOrCreateUser("demo.worker@gweru-linkups.co.zw", models.User{
		ID:       uuid.New().String(),
		Name:     "Tendai Moyo",
		Email:    "demo.worker@gweru-linkups.co.zw",
		Location: "Mkoba",
		Role:     models.RoleWorker,
		Status:   models.ApprovalApproved,
	})

	employer := getOrCreateUser("demo.employer@gweru-linkups.co.zw", models.User{
		ID:       uuid.New().String(),
		Name:     "Chipo Ndlovu",
		Email:    "demo.employer@gweru-linkups.co.zw",
		Location: "Gweru CBD",
		Role:     models.RoleEmployer,
		Status:   models.ApprovalApproved,
	})

	var job models.Job
	err := database.DB.Where("employer_id = ? AND title = ?", employer.ID, "General hand - hardware store").First(&job).Error
	if err != nil {
		job = models.Job{
			ID:          uuid.New().String(),
			EmployerID:  employer.ID,
			Title:       "General hand - hardware store",
			Location:    "Gweru CBD",
			Description: "Stock handling and deliveries, Mon-Sat.",
			IsOpen:      true,
		}
		if err := database.DB.Create(&job).Error; err != nil {
			log.Fatalf("failed to seed job: %v", err)
		}
		log.Printf("seeded job %s", job.ID)
	}

	log.Printf("seed complete: worker=%s employer=%s job=%s", worker.ID, employer.ID, job.ID)
}

func getOrCreateUser(email string, u models.User) models.User {
	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return existing
	}
	if err := database.DB.Create(&u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	log.Printf("seeded user %s (%s)", u.Name, u.Role)
	return u
}
