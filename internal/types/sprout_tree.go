package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SproutTree stores the ground truth the engagement model derives health
// from: the last refresh timestamp. Health itself is never persisted.
type SproutTree struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	LastRefreshAt time.Time `gorm:"column:last_refresh_at;not null;default:now()" json:"last_refresh_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SproutTree) TableName() string { return "sprout_tree" }

// TreeGrant is a protection grant delivered by the shop or a friend. The
// kind→buffer-days mapping is owned by the economy service; the resolved
// days are stored alongside the kind at grant time.
type TreeGrant struct {
	ID     uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TreeID uuid.UUID   `gorm:"type:uuid;not null;index" json:"tree_id"`
	Tree   *SproutTree `gorm:"constraint:OnDelete:CASCADE;foreignKey:TreeID;references:ID" json:"tree,omitempty"`

	Kind       string         `gorm:"column:kind;not null" json:"kind"`
	BufferDays float64        `gorm:"column:buffer_days;not null" json:"buffer_days"`
	Consumed   bool           `gorm:"column:consumed;not null;default:false" json:"consumed"`
	ConsumedAt *time.Time     `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TreeGrant) TableName() string { return "tree_grant" }
