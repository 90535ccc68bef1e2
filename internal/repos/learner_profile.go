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

type LearnerProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error)
	EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error)
	UpdateStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, avgConfidence, wrongRate, helpRate float64, lastActivity time.Time) error
	UpdateFilterRisk(ctx context.Context, tx *gorm.DB, userID uuid.UUID, risk float64) error
	UpdateChunkCounts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, acquired, learning, fragile int) error
}

type learnerProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerProfileRepo(db *gorm.DB, baseLog *logger.Logger) LearnerProfileRepo {
	return &learnerProfileRepo{
		db:  db,
		log: baseLog.With("repo", "LearnerProfileRepo"),
	}
}

func (r *learnerProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.LearnerProfile
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
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

func (r *learnerProfileRepo) EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error) {
	existing, err := r.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.LearnerProfile{
		ID:            uuid.New(),
		UserID:        userID,
		AvgConfidence: 0.5,
	}
	err = transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, tx, userID)
}

func (r *learnerProfileRepo) UpdateStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, avgConfidence, wrongRate, helpRate float64, lastActivity time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LearnerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"avg_confidence":    avgConfidence,
			"wrong_answer_rate": wrongRate,
			"help_request_rate": helpRate,
			"last_activity_at":  lastActivity,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *learnerProfileRepo) UpdateFilterRisk(ctx context.Context, tx *gorm.DB, userID uuid.UUID, risk float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LearnerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"filter_risk_score": risk,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *learnerProfileRepo) UpdateChunkCounts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, acquired, learning, fragile int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LearnerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"chunks_acquired": acquired,
			"chunks_learning": learning,
			"chunks_fragile":  fragile,
			"updated_at":      time.Now().UTC(),
		}).Error
}
