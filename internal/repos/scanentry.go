package repos

import (
	"context"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/gorm"
)

type ScanEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.ScanEntry) ([]*types.ScanEntry, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]types.ScanEntry, error)
	GetByFileNames(ctx context.Context, tx *gorm.DB, fileNames []string) ([]types.ScanEntry, error)
	ForTitles(ctx context.Context, tx *gorm.DB, keys []string) ([]types.ScanEntry, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type scanEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanEntryRepo(db *gorm.DB, baseLog *logger.Logger) ScanEntryRepo {
	repoLog := baseLog.With("repo", "ScanEntryRepo")
	return &scanEntryRepo{db: db, log: repoLog}
}

func (r *scanEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.ScanEntry) ([]*types.ScanEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.ScanEntry{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *scanEntryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]types.ScanEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.ScanEntry
	if err := transaction.WithContext(ctx).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scanEntryRepo) GetByFileNames(ctx context.Context, tx *gorm.DB, fileNames []string) ([]types.ScanEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.ScanEntry
	if len(fileNames) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("file_name IN ?", fileNames).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ForTitles loads only the entries that could match one of the given title
// or abbreviation keys: folder equality or filename prefix.
func (r *scanEntryRepo) ForTitles(ctx context.Context, tx *gorm.DB, keys []string) ([]types.ScanEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.ScanEntry
	if len(keys) == 0 {
		return results, nil
	}

	scope := transaction.WithContext(ctx).Where("source_folder IN ?", keys)
	for _, key := range keys {
		scope = scope.Or("file_name LIKE ?", key+"%")
	}
	if err := scope.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scanEntryRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.ScanEntry{}).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *scanEntryRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&types.ScanEntry{}).Error
}
