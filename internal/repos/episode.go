package repos

import (
	"context"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/gorm"
)

type EpisodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, episodes []*types.Episode) ([]*types.Episode, error)
	GetByHeaderID(ctx context.Context, tx *gorm.DB, headerID int64) ([]*types.Episode, error)
	GetByHeaderIDs(ctx context.Context, tx *gorm.DB, headerIDs []int64) ([]*types.Episode, error)
	MaxEpisodeNum(ctx context.Context, tx *gorm.DB, headerID int64) (int, error)
	Update(ctx context.Context, tx *gorm.DB, episode *types.Episode) error
	DeleteAboveNum(ctx context.Context, tx *gorm.DB, headerID int64, num int) error
	DeleteByHeaderIDs(ctx context.Context, tx *gorm.DB, headerIDs []int64) error
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	repoLog := baseLog.With("repo", "EpisodeRepo")
	return &episodeRepo{db: db, log: repoLog}
}

func (r *episodeRepo) Create(ctx context.Context, tx *gorm.DB, episodes []*types.Episode) ([]*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(episodes) == 0 {
		return []*types.Episode{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

func (r *episodeRepo) GetByHeaderID(ctx context.Context, tx *gorm.DB, headerID int64) ([]*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Episode
	if err := transaction.WithContext(ctx).
		Where("header_id = ?", headerID).
		Order("episode_num").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *episodeRepo) GetByHeaderIDs(ctx context.Context, tx *gorm.DB, headerIDs []int64) ([]*types.Episode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Episode
	if len(headerIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("header_id IN ?", headerIDs).
		Order("header_id, episode_num").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *episodeRepo) MaxEpisodeNum(ctx context.Context, tx *gorm.DB, headerID int64) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.Episode{}).
		Where("header_id = ?", headerID).
		Select("MAX(episode_num)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *episodeRepo) Update(ctx context.Context, tx *gorm.DB, episode *types.Episode) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(episode).Error
}

func (r *episodeRepo) DeleteAboveNum(ctx context.Context, tx *gorm.DB, headerID int64, num int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("header_id = ? AND episode_num > ?", headerID, num).
		Delete(&types.Episode{}).Error
}

func (r *episodeRepo) DeleteByHeaderIDs(ctx context.Context, tx *gorm.DB, headerIDs []int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(headerIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("header_id IN ?", headerIDs).
		Delete(&types.Episode{}).Error
}
