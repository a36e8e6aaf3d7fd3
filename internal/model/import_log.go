package model

import "time"

// ImportStatus is the lifecycle state of a statement file import.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportLog records one uploaded statement file. FileHash is the SHA-256
// of the raw file bytes; its unique index is what makes a re-upload of the
// exact same file a duplicate-file outcome instead of a second import,
// including when two uploads of the same file race each other.
type ImportLog struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	FileHash        string       `gorm:"size:64;not null;uniqueIndex" json:"fileHash"`
	Filename        string       `gorm:"size:255;not null" json:"filename"`
	TotalRecords    int          `gorm:"not null;default:0" json:"totalRecords"`
	ImportedRecords int          `gorm:"not null;default:0" json:"importedRecords"`
	SkippedRecords  int          `gorm:"not null;default:0" json:"skippedRecords"`
	ErrorRecords    int          `gorm:"not null;default:0" json:"errorRecords"`
	Status          ImportStatus `gorm:"size:16;not null;default:pending" json:"status"`
	ErrorMessage    *string      `gorm:"type:text" json:"errorMessage"`
	ImportedAt      time.Time    `json:"importedAt"`
	CompletedAt     *time.Time   `json:"completedAt"`
}
