package types

import "time"

// ScanEntry is one row of the externally produced media scan inventory:
// duration, size and checksum for a physical file, plus the filename stem
// and folder used to match it back to an episode. Read-only from the
// synthesis engine's perspective.
type ScanEntry struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceFolder      string    `gorm:"column:source_folder;size:300;index" json:"source_folder,omitempty"`
	SourceFile        string    `gorm:"column:source_file;size:300;index" json:"source_file,omitempty"`
	FileName          string    `gorm:"column:file_name;size:300;index" json:"file_name"`
	PinyinAbbr        string    `gorm:"column:pinyin_abbr;size:100;index" json:"pinyin_abbr,omitempty"`
	DurationSeconds   float64   `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	DurationFormatted string    `gorm:"column:duration_formatted;size:20" json:"duration_formatted,omitempty"`
	SizeBytes         int64     `gorm:"column:size_bytes" json:"size_bytes,omitempty"`
	MD5               string    `gorm:"column:md5;size:64" json:"md5,omitempty"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (ScanEntry) TableName() string { return "scan_entry" }
