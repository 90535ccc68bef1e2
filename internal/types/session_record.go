package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionRecord is the persisted summary of one play session. The live
// context (signals, adaptations) stays in the session store and is
// discarded at session end; only the fold survives here.
type SessionRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Topic            string  `gorm:"column:topic;not null" json:"topic"`
	BaseTargetLevel  float64 `gorm:"column:base_target_level;not null" json:"base_target_level"`
	FinalTargetLevel float64 `gorm:"column:final_target_level;not null;default:0" json:"final_target_level"`

	ActivityCount      int     `gorm:"column:activity_count;not null;default:0" json:"activity_count"`
	CorrectCount       int     `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	AdaptationCount    int     `gorm:"column:adaptation_count;not null;default:0" json:"adaptation_count"`
	SessionFilterScore float64 `gorm:"column:session_filter_score;not null;default:0" json:"session_filter_score"`
	EndedReason        string  `gorm:"column:ended_reason" json:"ended_reason,omitempty"`

	StartedAt time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SessionRecord) TableName() string { return "session_record" }

// ActivityEvent is the append-only activity log, written fire-and-forget
// from the report flow for later analytics.
type ActivityEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	ActivityType   string         `gorm:"column:activity_type;not null" json:"activity_type"`
	Correct        bool           `gorm:"column:correct;not null" json:"correct"`
	UsedHelp       bool           `gorm:"column:used_help;not null" json:"used_help"`
	Abandoned      bool           `gorm:"column:abandoned;not null;default:false" json:"abandoned"`
	ResponseTimeMs float64        `gorm:"column:response_time_ms;not null" json:"response_time_ms"`
	Attempts       int            `gorm:"column:attempts;not null;default:1" json:"attempts"`
	Payload        datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ActivityEvent) TableName() string { return "activity_event" }
