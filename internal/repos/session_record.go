package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
	"github.com/yungbote/sproutlingo-backend/internal/types"
)

type SessionRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SessionRecord, error)
	Finalize(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error
	AppendActivityEvent(ctx context.Context, tx *gorm.DB, event *types.ActivityEvent) error
}

type sessionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRecordRepo(db *gorm.DB, baseLog *logger.Logger) SessionRecordRepo {
	return &sessionRecordRepo{
		db:  db,
		log: baseLog.With("repo", "SessionRecordRepo"),
	}
}

func (r *sessionRecordRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *sessionRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SessionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.SessionRecord
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *sessionRecordRepo) Finalize(ctx context.Context, tx *gorm.DB, row *types.SessionRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.SessionRecord{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"final_target_level":   row.FinalTargetLevel,
			"activity_count":       row.ActivityCount,
			"correct_count":        row.CorrectCount,
			"adaptation_count":     row.AdaptationCount,
			"session_filter_score": row.SessionFilterScore,
			"ended_reason":         row.EndedReason,
			"ended_at":             row.EndedAt,
			"updated_at":           time.Now().UTC(),
		}).Error
}

func (r *sessionRecordRepo) AppendActivityEvent(ctx context.Context, tx *gorm.DB, event *types.ActivityEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if event == nil || event.SessionID == uuid.Nil {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(event).Error
}
