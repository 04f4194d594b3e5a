package repos

import (
	"context"
	"errors"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/gorm"
)

// ErrNotFound is returned by single-row getters when no row matches.
var ErrNotFound = errors.New("record not found")

type ContentRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.ContentRecord) ([]*types.ContentRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.ContentRecord, error)
	GetByTitleName(ctx context.Context, tx *gorm.DB, title string) (*types.ContentRecord, error)
	GetByTitleNames(ctx context.Context, tx *gorm.DB, titles []string) ([]*types.ContentRecord, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int, keyword string) ([]*types.ContentRecord, int64, error)
	Update(ctx context.Context, tx *gorm.DB, record *types.ContentRecord) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error
}

type contentRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRecordRepo(db *gorm.DB, baseLog *logger.Logger) ContentRecordRepo {
	repoLog := baseLog.With("repo", "ContentRecordRepo")
	return &contentRecordRepo{db: db, log: repoLog}
}

func (r *contentRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.ContentRecord) ([]*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.ContentRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *contentRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ContentRecord
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *contentRecordRepo) GetByTitleName(ctx context.Context, tx *gorm.DB, title string) (*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ContentRecord
	if err := transaction.WithContext(ctx).
		Where("title_name = ?", title).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *contentRecordRepo) GetByTitleNames(ctx context.Context, tx *gorm.DB, titles []string) ([]*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentRecord
	if len(titles) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("title_name IN ?", titles).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentRecordRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int, keyword string) ([]*types.ContentRecord, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.ContentRecord{})
	if keyword != "" {
		query = query.Where("title_name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.ContentRecord
	if err := query.
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *contentRecordRepo) Update(ctx context.Context, tx *gorm.DB, record *types.ContentRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(record).Error
}

func (r *contentRecordRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ContentRecord{}).Error
}
