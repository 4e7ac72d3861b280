package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadsync/internal/models"
)

const maxQueuedNotifications = 50

// NotificationService queues transient toasts per dashboard session
type NotificationService interface {
	Success(sessionID, message string)
	Error(sessionID, message string)
	Info(sessionID, message string)
	Push(sessionID string, level models.NotificationLevel, message string) models.Notification

	// Drain returns and clears the session's pending toasts, oldest first
	Drain(sessionID string) []models.Notification
	Pending(sessionID string) int
	Clear(sessionID string)
}

type notificationService struct {
	mu     sync.Mutex
	queues map[string][]models.Notification
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates an in-memory toast queue
func NewNotificationService(logger *zap.Logger) NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notificationService{
		queues: make(map[string][]models.Notification),
		logger: logger,
		now:    time.Now,
	}
}

func (s *notificationService) Success(sessionID, message string) {
	s.Push(sessionID, models.NotificationSuccess, message)
}

func (s *notificationService) Error(sessionID, message string) {
	s.Push(sessionID, models.NotificationError, message)
}

func (s *notificationService) Info(sessionID, message string) {
	s.Push(sessionID, models.NotificationInfo, message)
}

func (s *notificationService) Push(sessionID string, level models.NotificationLevel, message string) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	queue := append(s.queues[sessionID], n)
	// Oldest toasts fall off once a session stops draining
	if len(queue) > maxQueuedNotifications {
		queue = queue[len(queue)-maxQueuedNotifications:]
	}
	s.queues[sessionID] = queue
	s.mu.Unlock()

	s.logger.Debug("notification queued",
		zap.String("session_id", sessionID),
		zap.String("level", string(level)),
		zap.String("message", message))
	return n
}

func (s *notificationService) Drain(sessionID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[sessionID]
	delete(s.queues, sessionID)
	if queue == nil {
		return []models.Notification{}
	}
	return queue
}

func (s *notificationService) Pending(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[sessionID])
}

func (s *notificationService) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.queues, sessionID)
	s.mu.Unlock()
}
