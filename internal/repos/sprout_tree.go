package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type SproutTreeRepo interface {
	EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SproutTree, error)
	SetLastRefresh(ctx context.Context, tx *gorm.DB, treeID uuid.UUID, at time.Time) error
	AddGrant(ctx context.Context, tx *gorm.DB, grant *types.TreeGrant) error
	ListGrants(ctx context.Context, tx *gorm.DB, treeID uuid.UUID) ([]types.TreeGrant, error)
	ConsumeGrant(ctx context.Context, tx *gorm.DB, grantID uuid.UUID, at time.Time) error
}

type sproutTreeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSproutTreeRepo(db *gorm.DB, baseLog *logger.Logger) SproutTreeRepo {
	return &sproutTreeRepo{
		db:  db,
		log: baseLog.With("repo", "SproutTreeRepo"),
	}
}

func (r *sproutTreeRepo) EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SproutTree, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.SproutTree
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID != uuid.Nil {
		return &row, nil
	}
	created := &types.SproutTree{
		ID:            uuid.New(),
		UserID:        userID,
		LastRefreshAt: time.Now().UTC(),
	}
	err = transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(created).Error
	if err != nil {
		return nil, err
	}
	err = transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *sproutTreeRepo) SetLastRefresh(ctx context.Context, tx *gorm.DB, treeID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if treeID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.SproutTree{}).
		Where("id = ?", treeID).
		Updates(map[string]interface{}{
			"last_refresh_at": at,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *sproutTreeRepo) AddGrant(ctx context.Context, tx *gorm.DB, grant *types.TreeGrant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if grant == nil || grant.TreeID == uuid.Nil {
		return nil
	}
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(grant).Error
}

func (r *sproutTreeRepo) ListGrants(ctx context.Context, tx *gorm.DB, treeID uuid.UUID) ([]types.TreeGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if treeID == uuid.Nil {
		return nil, nil
	}
	var rows []types.TreeGrant
	err := transaction.WithContext(ctx).
		Where("tree_id = ?", treeID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sproutTreeRepo) ConsumeGrant(ctx context.Context, tx *gorm.DB, grantID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if grantID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.TreeGrant{}).
		Where("id = ? AND consumed = false", grantID).
		Updates(map[string]interface{}{
			"consumed":    true,
			"consumed_at": at,
			"updated_at":  time.Now().UTC(),
		}).Error
}
