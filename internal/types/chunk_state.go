package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChunkStatusLearning = "learning"
	ChunkStatusAcquired = "acquired"
	ChunkStatusFragile  = "fragile"
)

// ChunkState tracks one learner's acquisition progress for one content
// chunk. One row per (user, chunk), upserted on every encounter.
type ChunkState struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_user_chunk,unique" json:"user_id"`
	User    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ChunkID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_chunk,unique" json:"chunk_id"`

	Status         string     `gorm:"column:status;not null;default:'learning'" json:"status"`
	CorrectCount   int        `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	IncorrectCount int        `gorm:"column:incorrect_count;not null;default:0" json:"incorrect_count"`
	MissStreak     int        `gorm:"column:miss_streak;not null;default:0" json:"miss_streak"`
	LastSeenAt     *time.Time `gorm:"column:last_seen_at" json:"last_seen_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChunkState) TableName() string { return "chunk_state" }
