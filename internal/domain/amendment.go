package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Amendment statuses
const (
	AmendmentStatusPending  = "pending"
	AmendmentStatusApproved = "approved"
	AmendmentStatusRejected = "rejected"
)

// AmendmentRequest is a proposed revision of a record. ProposedChanges
// holds the complete would-be state after merging the user's edits onto
// the baseline; CurrentSnapshot preserves the baseline it was built
// against so reviewers can compare the two without touching the live
// record.
type AmendmentRequest struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubmissionID string `gorm:"type:varchar(36);index:idx_amendments_submission;not null" json:"submission_id"`
	ContentID    string `gorm:"type:varchar(36);index" json:"content_id,omitempty"`
	UserID       string `gorm:"type:varchar(36);index;not null" json:"user_id"`

	VersionNumber         int    `gorm:"not null" json:"version_number"`
	PreviousVersionNumber int    `gorm:"not null" json:"previous_version_number"`
	Status                string `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`

	ProposedChanges datatypes.JSONType[ContentSnapshot] `json:"proposed_changes"`
	CurrentSnapshot datatypes.JSONType[ContentSnapshot] `json:"current_snapshot"`
	ChangedFields   datatypes.JSONType[[]FieldChange]   `json:"changed_fields"`

	Reason string `gorm:"type:text" json:"reason,omitempty"`

	ReviewedBy  string     `gorm:"type:varchar(36)" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AmendmentRequest) TableName() string {
	return "amendment_requests"
}

// IsPending reports whether the amendment still awaits review
func (a *AmendmentRequest) IsPending() bool {
	return a.Status == AmendmentStatusPending
}

// VersionEntry is one row of a lineage's version history
type VersionEntry struct {
	Version     int           `json:"version"`
	AmendmentID string        `json:"amendment_id,omitempty"`
	Status      string        `json:"status"`
	IsCurrent   bool          `json:"is_current"`
	IsOriginal  bool          `json:"is_original"`
	SubmittedBy string        `json:"submitted_by,omitempty"`
	ReviewedBy  string        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
	Changes     []FieldChange `json:"changes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
