package domain

import "time"

// FilePurgeItem is a storage object whose deletion failed and is
// queued for retry. Object deletion is best effort at decision time;
// the sweeper drains this queue in the background.
type FilePurgeItem struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StorageKey string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	Source     string    `gorm:"type:varchar(50)" json:"source"`
	Attempts   int       `gorm:"not null;default:0" json:"attempts"`
	LastError  string    `gorm:"type:varchar(500)" json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FilePurgeItem) TableName() string {
	return "file_purge_queue"
}
