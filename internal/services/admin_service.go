package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"leadsync/internal/models"
)

var (
	ErrAdminRequired = errors.New("admin role required")
	ErrMissingUserID = errors.New("user id is required")
)

// AdminService wraps the backend's admin endpoints
type AdminService interface {
	ListCustomers(ctx context.Context, sess *Session) ([]models.Customer, error)
	GrantAccess(ctx context.Context, sess *Session, userID string) error
	RevokeAccess(ctx context.Context, sess *Session, userID string) error
}

type adminService struct {
	notifier NotificationService
	logger   *zap.Logger
}

func NewAdminService(notifier NotificationService, logger *zap.Logger) AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{notifier: notifier, logger: logger}
}

func (s *adminService) ListCustomers(ctx context.Context, sess *Session) ([]models.Customer, error) {
	if !sess.Account().IsAdmin() {
		return nil, ErrAdminRequired
	}
	return sess.Backend.FetchCustomers(ctx)
}

func (s *adminService) GrantAccess(ctx context.Context, sess *Session, userID string) error {
	return s.changeAccess(ctx, sess, userID, "granted", sess.Backend.GrantAccess)
}

func (s *adminService) RevokeAccess(ctx context.Context, sess *Session, userID string) error {
	return s.changeAccess(ctx, sess, userID, "revoked", sess.Backend.RevokeAccess)
}

func (s *adminService) changeAccess(ctx context.Context, sess *Session, userID, verb string, call func(context.Context, string) error) error {
	if !sess.Account().IsAdmin() {
		return ErrAdminRequired
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUserID
	}

	if err := call(ctx, userID); err != nil {
		if s.notifier != nil {
			s.notifier.Error(sess.ID, "Failed to update access: "+errorMessage(err))
		}
		return err
	}

	s.logger.Info("admin access changed",
		zap.String("admin_id", sess.Account().ID),
		zap.String("user_id", userID),
		zap.String("change", verb))
	if s.notifier != nil {
		s.notifier.Success(sess.ID, "Admin access "+verb)
	}
	return nil
}
