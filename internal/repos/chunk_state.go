package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type ChunkStateRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, chunkID uuid.UUID) (*types.ChunkState, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.ChunkState) error
	CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]int, error)
}

type chunkStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkStateRepo(db *gorm.DB, baseLog *logger.Logger) ChunkStateRepo {
	return &chunkStateRepo{
		db:  db,
		log: baseLog.With("repo", "ChunkStateRepo"),
	}
}

func (r *chunkStateRepo) Get(ctx context.Context, tx *gorm.DB, userID, chunkID uuid.UUID) (*types.ChunkState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || chunkID == uuid.Nil {
		return nil, nil
	}
	var row types.ChunkState
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND chunk_id = ?", userID, chunkID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *chunkStateRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ChunkState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ChunkID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *chunkStateRepo) CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return map[string]int{}, nil
	}
	var rows []struct {
		Status string
		N      int
	}
	err := transaction.WithContext(ctx).
		Model(&types.ChunkState{}).
		Select("status, count(*) as n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
