package domain

import "time"

// Collaboration statuses
const (
	CollaborationStatusPending  = "pending"
	CollaborationStatusAccepted = "accepted"
	CollaborationStatusRejected = "rejected"
)

// Collaboration is a contributor-to-contributor working request,
// scoped to a cultural domain. One request per user pair.
type Collaboration struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	RequesterID    string `gorm:"type:varchar(36);index;uniqueIndex:idx_collab_pair,priority:1;not null" json:"requester_id"`
	RecipientID    string `gorm:"type:varchar(36);index;uniqueIndex:idx_collab_pair,priority:2;not null" json:"recipient_id"`
	CulturalDomain string `gorm:"type:varchar(50);not null" json:"cultural_domain"`
	Status         string `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`

	RequesterName string `gorm:"-" json:"requester_name,omitempty"`
	RecipientName string `gorm:"-" json:"recipient_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Collaboration) TableName() string {
	return "collaborations"
}

// Contributor is a user with published content in a cultural domain
type Contributor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CulturalDomain string `json:"cultural_domain"`
	PublishedCount int64  `json:"published_count"`
}
