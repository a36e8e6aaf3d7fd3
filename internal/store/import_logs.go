package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// FindImportLogByHash looks up an import log by file hash. Returns
// (nil, nil) when no import of those bytes is on record.
func (s *Store) FindImportLogByHash(ctx context.Context, hash string) (*model.ImportLog, error) {
	var log model.ImportLog
	err := s.db.WithContext(ctx).Where("file_hash = ?", hash).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding import log: %w", err)
	}
	return &log, nil
}

// CreateImportLog inserts a new import log. A conflict on the file hash
// comes back as importer.ErrDuplicateImport so a racing second upload of
// the same bytes resolves to the duplicate-file outcome.
func (s *Store) CreateImportLog(ctx context.Context, log *model.ImportLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return importer.ErrDuplicateImport
		}
		return fmt.Errorf("creating import log: %w", err)
	}
	return nil
}

// UpdateImportLog saves the final state of an import log.
func (s *Store) UpdateImportLog(ctx context.Context, log *model.ImportLog) error {
	if err := s.db.WithContext(ctx).Save(log).Error; err != nil {
		return fmt.Errorf("updating import log: %w", err)
	}
	return nil
}

// ListImportLogs returns all import logs, newest first.
func (s *Store) ListImportLogs(ctx context.Context) ([]model.ImportLog, error) {
	var logs []model.ImportLog
	if err := s.db.WithContext(ctx).Order("imported_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("listing import logs: %w", err)
	}
	return logs, nil
}
