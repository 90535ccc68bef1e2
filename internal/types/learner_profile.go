package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearnerProfile is the longitudinal stats row behind the decision engine's
// read model. All rates live in [0,1]; the profile service is the only
// writer.
type LearnerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	AvgConfidence   float64 `gorm:"column:avg_confidence;not null;default:0.5" json:"avg_confidence"`
	WrongAnswerRate float64 `gorm:"column:wrong_answer_rate;not null;default:0" json:"wrong_answer_rate"`
	HelpRequestRate float64 `gorm:"column:help_request_rate;not null;default:0" json:"help_request_rate"`
	FilterRiskScore float64 `gorm:"column:filter_risk_score;not null;default:0" json:"filter_risk_score"`

	LastActivityAt *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`

	ChunksAcquired int `gorm:"column:chunks_acquired;not null;default:0" json:"chunks_acquired"`
	ChunksLearning int `gorm:"column:chunks_learning;not null;default:0" json:"chunks_learning"`
	ChunksFragile  int `gorm:"column:chunks_fragile;not null;default:0" json:"chunks_fragile"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearnerProfile) TableName() string { return "learner_profile" }
