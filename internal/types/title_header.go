package types

import (
	"time"

	"gorm.io/datatypes"
)

// TitleHeader is one tenant's projection of a ContentRecord. The generated
// column values live in the Attributes bag keyed by the tenant schema's
// column names, so tenants can differ without schema migrations.
type TitleHeader struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantCode string         `gorm:"column:tenant_code;size:50;not null;index:idx_header_tenant_title,priority:1" json:"tenant_code"`
	TitleName  string         `gorm:"column:title_name;size:200;not null;index:idx_header_tenant_title,priority:2" json:"title_name"`
	Attributes datatypes.JSON `gorm:"column:attributes" json:"attributes,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (TitleHeader) TableName() string { return "title_header" }
