package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ConversationSummary is one inbox row: the conversation plus everything
// the list view renders without further queries.
type ConversationSummary struct {
	Conversation    models.Conversation `json:"conversation"`
	JobTitle        string              `json:"jobTitle"`
	JobLocation     string              `json:"jobLocation"`
	CounterpartID   string              `json:"counterpartId"`
	CounterpartName string              `json:"counterpartName"`
	LastMessage     *models.Message     `json:"lastMessage,omitempty"`
	UnreadCount     int64               `json:"unreadCount"`
}

// ListConversations returns every conversation the user takes part in,
// newest activity first, decorated with job snapshot, counterpart name,
// last message and unread count. One aggregated query; per-conversation
// lookups would fan out N+1 under a busy inbox. Jobs deleted after the
// conversation existed come back with an empty title and stay readable.
func ListConversations(userID string) ([]ConversationSummary, error) {
	query := `
		SELECT
			c.id, c.job_id, c.worker_id, c.employer_id, c.created_at, c.last_activity_at,
			COALESCE(j.title, '') AS job_title,
			COALESCE(j.location, '') AS job_location,
			COALESCE(u.name, '') AS counterpart_name,
			m.id, m.sender_id, m.body, m.created_at, m.read_at,
			(SELECT COUNT(*) FROM messages um
				WHERE um.conversation_id = c.id
				  AND um.sender_id <> ?
				  AND um.read_at IS NULL) AS unread_count
		FROM conversations c
		LEFT JOIN jobs j ON j.id = c.job_id
		LEFT JOIN users u ON u.id = CASE WHEN c.worker_id = ? THEN c.employer_id ELSE c.worker_id END
		LEFT JOIN messages m ON m.id = (
			SELECT m2.id FROM messages m2
			WHERE m2.conversation_id = c.id
			ORDER BY m2.created_at DESC, m2.id DESC
			LIMIT 1)
		WHERE c.worker_id = ? OR c.employer_id = ?
		ORDER BY c.last_activity_at DESC
	`

	rows, err := database.DB.Raw(query, userID, userID, userID, userID).Rows()
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	summaries := make([]ConversationSummary, 0)
	for rows.Next() {
		var s ConversationSummary
		var lastID, lastSender, lastBody sql.NullString
		var lastAt, lastReadAt sql.NullTime

		if err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.JobID, &s.Conversation.WorkerID,
			&s.Conversation.EmployerID, &s.Conversation.CreatedAt, &s.Conversation.LastActivityAt,
			&s.JobTitle, &s.JobLocation, &s.CounterpartName,
			&lastID, &lastSender, &lastBody, &lastAt, &lastReadAt,
			&s.UnreadCount,
		); err != nil {
			return nil, storeErr(err)
		}

		s.CounterpartID = s.Conversation.Counterpart(userID)
		if lastID.Valid {
			msg := models.Message{
				ID:             lastID.String,
				ConversationID: s.Conversation.ID,
				SenderID:       lastSender.String,
				Body:           lastBody.String,
				CreatedAt:      lastAt.Time,
			}
			if lastReadAt.Valid {
				t := lastReadAt.Time
				msg.ReadAt = &t
			}
			s.LastMessage = &msg
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return summaries, nil
}

// GetConversation loads a conversation and enforces that the caller is one
// of its two parties. Every engine operation goes through this check.
func GetConversation(conversationID, userID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := database.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	return &conv, nil
}

// GetOrCreateConversation resolves the single conversation for a
// (job, worker, employer) triple, creating it on first contact. Safe under
// concurrent calls from both parties: the lookup-miss create relies on the
// composite unique index, and a duplicate-key conflict falls back to
// re-reading the row the other caller won with.
func GetOrCreateConversation(jobID, workerID, employerID string) (*models.Conversation, error) {
	if workerID == "" || employerID == "" || workerID == employerID {
		return nil, ErrInvalidParticipants
	}

	var job models.Job
	if err := database.DB.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}
	if job.EmployerID != employerID {
		return nil, ErrInvalidParticipants
	}

	var conv models.Conversation
	err := database.DB.
		Where("job_id = ? AND worker_id = ? AND employer_id = ?", jobID, workerID, employerID).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err)
	}

	now := time.Now()
	conv = models.Conversation{
		JobID:          jobID,
		WorkerID:       workerID,
		EmployerID:     employerID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := database.DB.Create(&conv).Error; err != nil {
		if isDuplicateKey(err) {
			// Lost the race; the winner's row is the conversation.
			var existing models.Conversation
			rerr := database.DB.
				Where("job_id = ? AND worker_id = ? AND employer_id = ?", jobID, workerID, employerID).
				First(&existing).Error
			if rerr != nil {
				return nil, storeErr(rerr)
			}
			return &existing, nil
		}
		return nil, storeErr(err)
	}

	database.Events.Publish(database.Change{
		Table: database.TableConversations,
		Kind:  database.ChangeInsert,
		Row:   conv,
	})
	return &conv, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}
