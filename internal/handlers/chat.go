package handlers

import (
	"errors"
	"net/http"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondChatError maps engine sentinels onto HTTP codes. Each kind keeps
// its own status; nothing collapses into a generic 500 except true
// unknowns.
func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidParticipants):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store temporarily unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// GetConversations returns the caller's inbox: every conversation they
// take part in, with last message and unread count, newest activity first.
func GetConversations(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	conversations, err := services.ListConversations(userId)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// CreateConversation resolves or creates the conversation for a job and a
// worker/employer pair. Workers open a thread with the job's employer;
// employers name the worker they want to reach.
func CreateConversation(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	role := c.MustGet("role").(string)

	var req struct {
		JobID    string `json:"jobId" binding:"required"`
		WorkerID string `json:"workerId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var workerID, employerID string
	switch models.Role(role) {
	case models.RoleWorker:
		var job models.Job
		if err := database.DB.First(&job, "id = ?", req.JobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
				return
			}
			respondChatError(c, services.ErrStoreUnavailable)
			return
		}
		workerID = userId
		employerID = job.EmployerID
	case models.RoleEmployer:
		if req.WorkerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "workerId required"})
			return
		}
		workerID = req.WorkerID
		employerID = userId
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Only workers and employers can start conversations"})
		return
	}

	conv, err := services.GetOrCreateConversation(req.JobID, workerID, employerID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// GetMessages returns the full history of a conversation, oldest first.
// Fetching history marks the counterpart's messages read for the caller.
func GetMessages(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	conversationID := c.Param("id")

	messages, err := services.FetchHistory(conversationID, userId)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage appends a message to the conversation.
func SendMessage(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	conversationID := c.Param("id")

	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	msg, err := services.Send(conversationID, userId, req.Body)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
