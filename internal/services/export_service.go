package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadsync/internal/leadview"
	"leadsync/internal/models"
)

var ErrNothingToExport = errors.New("no leads match the export query")

const csvContentType = "text/csv"

const exportPrefix = "exports/"

// ExportService writes the current lead table to object storage
type ExportService interface {
	Export(ctx context.Context, sess *Session, q leadview.Query) (*models.LeadExport, error)
	// Prune deletes exports whose download links have expired
	Prune(ctx context.Context) (int, error)
}

type exportService struct {
	storage MinioService
	bucket  string
	urlTTL  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewExportService(storage MinioService, bucket string, urlTTL time.Duration, logger *zap.Logger) ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exportService{
		storage: storage,
		bucket:  bucket,
		urlTTL:  urlTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// Export renders every row the query matches, not just the visible page
func (s *exportService) Export(ctx context.Context, sess *Session, q leadview.Query) (*models.LeadExport, error) {
	now := s.now()
	rows := leadview.Select(sess.Leads.Leads(), q, now)
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := leadview.WriteCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}

	owner := sess.Account().CustomerID
	if owner == "" {
		owner = sess.Account().ID
	}
	objectName := fmt.Sprintf("%s%s/leads-%s.csv", exportPrefix, owner, now.UTC().Format("20060102T150405Z"))

	if err := s.storage.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, fmt.Errorf("failed to prepare bucket: %w", err)
	}
	if err := s.storage.UploadObject(ctx, s.bucket, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), csvContentType); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, objectName, s.urlTTL)
	if err != nil {
		if delErr := s.storage.DeleteObject(ctx, s.bucket, objectName); delErr != nil {
			s.logger.Warn("failed to remove unsigned export", zap.String("object", objectName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}

	s.logger.Info("lead export written",
		zap.String("session_id", sess.ID),
		zap.String("object", objectName),
		zap.Int("rows", len(rows)))

	return &models.LeadExport{
		ObjectName: objectName,
		URL:        url,
		Rows:       len(rows),
		ExpiresAt:  now.Add(s.urlTTL).UTC(),
	}, nil
}

func (s *exportService) Prune(ctx context.Context) (int, error) {
	removed, err := s.storage.RemoveOlderThan(ctx, s.bucket, exportPrefix, s.now().Add(-s.urlTTL))
	if removed > 0 {
		s.logger.Info("pruned expired exports", zap.Int("removed", removed))
	}
	if err != nil {
		return removed, fmt.Errorf("failed to prune exports: %w", err)
	}
	return removed, nil
}
