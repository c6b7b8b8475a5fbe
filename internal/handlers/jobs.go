package handlers

import (
	"errors"
	"net/http"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListJobs returns open postings, newest first. Job management lives in
// the listings service; this read surface exists so the inbox can link
// back to the posting a thread is about.
func ListJobs(c *gin.Context) {
	query := database.DB.Where("is_open = ?", true).Order("created_at desc").Limit(50)
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var jobs []models.Job
	if err := query.Preload("Employer").Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GetJob returns a single posting by id.
func GetJob(c *gin.Context) {
	var job models.Job
	if err := database.DB.Preload("Employer").First(&job, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}
