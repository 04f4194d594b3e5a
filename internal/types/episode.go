package types

import (
	"time"

	"gorm.io/datatypes"
)

// Episode belongs to exactly one TitleHeader. EpisodeNum is stored as a real
// column (not only inside the attribute bag) so shrink deletes and rename
// rebuilds never depend on a tenant's attribute naming. Invariant: the
// numbers for a header are contiguous 1..N after every reconciliation.
type Episode struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	HeaderID    int64          `gorm:"column:header_id;not null;index:idx_episode_header_num,priority:1" json:"header_id"`
	EpisodeNum  int            `gorm:"column:episode_num;not null;index:idx_episode_header_num,priority:2" json:"episode_num"`
	EpisodeName string         `gorm:"column:episode_name;size:200;not null" json:"episode_name"`
	Attributes  datatypes.JSON `gorm:"column:attributes" json:"attributes,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Episode) TableName() string { return "episode" }
