package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
)

type AuditEntry struct {
	ActorID      *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// AuditService persists audit rows off the request path.
type AuditService struct {
	DB *gorm.DB

	queue  chan models.AuditLog
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAuditService(db *gorm.DB, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	s := &AuditService{
		DB:    db,
		queue: make(chan models.AuditLog, bufferSize),
	}
	s.wg.Add(1)
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	if s == nil {
		return
	}

	row := models.AuditLog{
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	defer s.wg.Done()
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}

// Close stops accepting entries and waits until queued rows are written.
func (s *AuditService) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}

type AuditQuery struct {
	Action       string
	ResourceType string
	Since        *time.Time
	Limit        int
}

// List returns the newest audit rows first.
func (s *AuditService) List(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	limit := q.Limit
	if limit <= 0 || limit > 10000 {
		limit = 10000
	}

	query := s.DB.WithContext(ctx).Model(&models.AuditLog{})
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.ResourceType != "" {
		query = query.Where("resource_type = ?", q.ResourceType)
	}
	if q.Since != nil {
		query = query.Where("created_at >= ?", *q.Since)
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, internalError("failed loading audit logs", err)
	}
	return logs, nil
}
