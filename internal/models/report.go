package models

import "time"

// Report kinds
const (
	ReportMonthly = "monthly"
	ReportGlobal  = "global"
	ReportXLSX    = "xlsx"
	ReportCSV     = "csv"
)

// ReportArchive records a generated report file kept in local storage.
type ReportArchive struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Kind        string    `gorm:"size:16;index;not null" json:"kind"`
	Mois        string    `gorm:"size:7" json:"mois,omitempty"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	Size        int64     `json:"size"`
	GeneratedBy string    `gorm:"size:64" json:"generated_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for ReportArchive
func (ReportArchive) TableName() string {
	return "report_archives"
}
