package repos

import (
	"context"
	"errors"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/gorm"
)

type TitleHeaderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, headers []*types.TitleHeader) ([]*types.TitleHeader, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.TitleHeader, error)
	GetByTenantAndTitle(ctx context.Context, tx *gorm.DB, tenantCode, title string) (*types.TitleHeader, error)
	GetByTenantAndTitles(ctx context.Context, tx *gorm.DB, tenantCode string, titles []string) ([]*types.TitleHeader, error)
	GetByTitleName(ctx context.Context, tx *gorm.DB, title string) ([]*types.TitleHeader, error)
	ListByTenant(ctx context.Context, tx *gorm.DB, tenantCode string, offset, limit int) ([]*types.TitleHeader, int64, error)
	Update(ctx context.Context, tx *gorm.DB, header *types.TitleHeader) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []int64) error
}

type titleHeaderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTitleHeaderRepo(db *gorm.DB, baseLog *logger.Logger) TitleHeaderRepo {
	repoLog := baseLog.With("repo", "TitleHeaderRepo")
	return &titleHeaderRepo{db: db, log: repoLog}
}

func (r *titleHeaderRepo) Create(ctx context.Context, tx *gorm.DB, headers []*types.TitleHeader) ([]*types.TitleHeader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(headers) == 0 {
		return []*types.TitleHeader{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&headers).Error; err != nil {
		return nil, err
	}
	return headers, nil
}

func (r *titleHeaderRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.TitleHeader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TitleHeader
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

func (r *titleHeaderRepo) GetByTenantAndTitle(ctx context.Context, tx *gorm.DB, tenantCode, title string) (*types.TitleHeader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TitleHeader
	if err := transaction.WithContext(ctx).
		Where("tenant_code = ? AND title_name = ?", tenantCode, title).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *titleHeaderRepo) GetByTenantAndTitles(ctx context.Context, tx *gorm.DB, tenantCode string, titles []string) ([]*types.TitleHeader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TitleHeader
	if len(titles) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("tenant_code = ? AND title_name IN ?", tenantCode, titles).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *titleHeaderRepo) GetByTitleName(ctx context.Context, tx *gorm.DB, title string) ([]*types.TitleHeader, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TitleHeader
	if err := transaction.WithContext(ctx).
		Where("title_name = ?", title).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *titleHeaderRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantCode string, offset, limit int) ([]*types.TitleHeader, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.TitleHeader{}).
		Where("tenant_code = ?", tenantCode)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.TitleHeader
	if err := query.
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *titleHeaderRepo) Update(ctx context.Context, tx *gorm.DB, header *types.TitleHeader) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(header).Error
}

func (r *titleHeaderRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.TitleHeader{}).Error
}
