package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite DB for testing
func SetupTestDB() {
	db, _ := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	database.DB = db
	database.DB.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Conversation{},
		&models.Message{},
	)
	for _, table := range []string{"messages", "conversations", "jobs", "users"} {
		database.DB.Exec("DELETE FROM " + table)
	}
}

func seedMarketplace() (worker models.User, employer models.User, job models.Job) {
	worker = models.User{ID: "w1", Name: "Tendai", Email: "w1@example.com", Role: models.RoleWorker, Status: models.ApprovalApproved}
	employer = models.User{ID: "e1", Name: "Chipo", Email: "e1@example.com", Role: models.RoleEmployer, Status: models.ApprovalApproved}
	database.DB.Create(&worker)
	database.DB.Create(&employer)

	job = models.Job{ID: "j1", EmployerID: employer.ID, Title: "Welder", Location: "Gweru CBD", IsOpen: true}
	database.DB.Create(&job)
	return
}

func testContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var buf *bytes.Buffer
	if body != nil {
		buf = bytes.NewBuffer(body)
		c.Request, _ = http.NewRequest(method, path, buf)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request, _ = http.NewRequest(method, path, nil)
	}
	return c, w
}

func TestGetConversationsHandler(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, employer, job := seedMarketplace()

	conv, err := services.GetOrCreateConversation(job.ID, worker.ID, employer.ID)
	assert.NoError(t, err)
	_, err = services.Send(conv.ID, worker.ID, "I saw your posting")
	assert.NoError(t, err)

	c, w := testContext("GET", "/api/chat/conversations", nil)
	c.Set("userId", employer.ID)

	GetConversations(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversations []services.ConversationSummary `json:"conversations"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	assert.Len(t, resp.Conversations, 1)
	assert.Equal(t, conv.ID, resp.Conversations[0].Conversation.ID)
	assert.Equal(t, "Welder", resp.Conversations[0].JobTitle)
	assert.Equal(t, "Tendai", resp.Conversations[0].CounterpartName)
	assert.Equal(t, int64(1), resp.Conversations[0].UnreadCount)
}

func TestCreateConversationHandlerWorker(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, _, job := seedMarketplace()

	body, _ := json.Marshal(map[string]string{"jobId": job.ID})

	c, w := testContext("POST", "/api/chat/conversations", body)
	c.Set("userId", worker.ID)
	c.Set("role", string(models.RoleWorker))

	CreateConversation(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var first struct {
		Conversation models.Conversation `json:"conversation"`
	}
	json.Unmarshal(w.Body.Bytes(), &first)
	assert.NotEmpty(t, first.Conversation.ID)

	// Clicking "message" again resolves to the same thread.
	c2, w2 := testContext("POST", "/api/chat/conversations", body)
	c2.Set("userId", worker.ID)
	c2.Set("role", string(models.RoleWorker))

	CreateConversation(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	var second struct {
		Conversation models.Conversation `json:"conversation"`
	}
	json.Unmarshal(w2.Body.Bytes(), &second)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	var count int64
	database.DB.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateConversationHandlerEmployerNeedsWorker(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	_, employer, job := seedMarketplace()

	body, _ := json.Marshal(map[string]string{"jobId": job.ID})

	c, w := testContext("POST", "/api/chat/conversations", body)
	c.Set("userId", employer.ID)
	c.Set("role", string(models.RoleEmployer))

	CreateConversation(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageHandlerRejectsOutsider(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, employer, job := seedMarketplace()

	outsider := models.User{ID: "w2", Name: "Farai", Email: "w2@example.com", Role: models.RoleWorker, Status: models.ApprovalApproved}
	database.DB.Create(&outsider)

	conv, _ := services.GetOrCreateConversation(job.ID, worker.ID, employer.ID)

	body, _ := json.Marshal(map[string]string{"body": "hello"})
	c, w := testContext("POST", "/api/chat/conversations/"+conv.ID+"/messages", body)
	c.Set("userId", outsider.ID)
	c.Params = gin.Params{{Key: "id", Value: conv.ID}}

	SendMessage(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	database.DB.Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSendMessageHandlerRejectsBlankBody(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, employer, job := seedMarketplace()

	conv, _ := services.GetOrCreateConversation(job.ID, worker.ID, employer.ID)

	body, _ := json.Marshal(map[string]string{"body": "   "})
	c, w := testContext("POST", "/api/chat/conversations/"+conv.ID+"/messages", body)
	c.Set("userId", worker.ID)
	c.Params = gin.Params{{Key: "id", Value: conv.ID}}

	SendMessage(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessagesHandlerMarksRead(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, employer, job := seedMarketplace()

	conv, _ := services.GetOrCreateConversation(job.ID, worker.ID, employer.ID)
	sent, err := services.Send(conv.ID, worker.ID, "Hello")
	assert.NoError(t, err)

	c, w := testContext("GET", "/api/chat/conversations/"+conv.ID+"/messages", nil)
	c.Set("userId", employer.ID)
	c.Params = gin.Params{{Key: "id", Value: conv.ID}}

	GetMessages(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Messages, 1)
	assert.Equal(t, sent.ID, resp.Messages[0].ID)

	unread, err := services.UnreadCount(conv.ID, employer.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestGetMessagesHandlerUnknownConversation(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)
	worker, _, _ := seedMarketplace()

	c, w := testContext("GET", "/api/chat/conversations/missing/messages", nil)
	c.Set("userId", worker.ID)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	GetMessages(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
