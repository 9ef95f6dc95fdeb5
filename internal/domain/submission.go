package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission statuses
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusPublished = "published"
	SubmissionStatusRejected  = "rejected"
)

// Submission is a contributor's intake record. Until it is published it
// carries the full editable state itself; on publication that state is
// copied into a ContentItem, which becomes the live record.
type Submission struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);index;not null" json:"user_id"`

	Status string `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`

	Content datatypes.JSONType[ContentSnapshot] `json:"content"`

	EthicsAgreed bool `gorm:"not null;default:false" json:"ethics_agreed"`

	// RevisionCount tracks resubmissions while the lineage is still
	// unpublished. Published lineages version through ContentItem.
	RevisionCount int `gorm:"not null;default:0" json:"revision_count"`

	ReviewedBy  string     `gorm:"type:varchar(36)" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsPublished reports whether the submission has a live record
func (s *Submission) IsPublished() bool {
	return s.Status == SubmissionStatusPublished
}
