package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Access tiers control who may view a published record
const (
	AccessTierPublic     = "public"
	AccessTierCommunity  = "community"
	AccessTierRestricted = "restricted"
)

// Change types recorded in an amendment's field diff
const (
	ChangeTypeText   = "text"
	ChangeTypeFile   = "file"
	ChangeTypeArray  = "array"
	ChangeTypeObject = "object"
)

// Consent captures the consent documentation attached to a record
type Consent struct {
	FileType         string   `json:"file_type,omitempty"`
	FileURL          string   `json:"file_url,omitempty"`
	FileKey          string   `json:"file_key,omitempty"`
	ConsentType      string   `json:"consent_type,omitempty"`
	ConsentNames     string   `json:"consent_names,omitempty"`
	ConsentDate      string   `json:"consent_date,omitempty"`
	PermissionType   []string `json:"permission_type,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	DigitalSignature string   `json:"digital_signature,omitempty"`
}

// ContentSnapshot is the complete editable state of a record. The same
// shape is stored three ways: flattened into content_items columns for
// the live record, and as JSON inside amendments for both the proposed
// state and the pre-amendment baseline.
type ContentSnapshot struct {
	Country              string   `json:"country,omitempty"`
	StateRegion          string   `json:"state_region,omitempty"`
	Tribe                string   `json:"tribe,omitempty"`
	Village              string   `json:"village,omitempty"`
	CulturalDomain       string   `json:"cultural_domain,omitempty"`
	Title                string   `json:"title,omitempty"`
	Description          string   `json:"description,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	Language             string   `json:"language,omitempty"`
	DateOfRecording      string   `json:"date_of_recording,omitempty"`
	CulturalSignificance string   `json:"cultural_significance,omitempty"`

	ContentFileType string `json:"content_file_type,omitempty"`
	ContentURL      string `json:"content_url,omitempty"`
	ContentKey      string `json:"content_key,omitempty"`

	Consent Consent `json:"consent,omitempty"`

	AccessTier       string   `json:"access_tier,omitempty"`
	ContentWarnings  []string `json:"content_warnings,omitempty"`
	WarningOtherText string   `json:"warning_other_text,omitempty"`

	TranslationFileURL string `json:"translation_file_url,omitempty"`
	TranslationFileKey string `json:"translation_file_key,omitempty"`
	BackgroundInfo     string `json:"background_info,omitempty"`

	VerificationDocURL string `json:"verification_doc_url,omitempty"`
	VerificationDocKey string `json:"verification_doc_key,omitempty"`
}

// FieldChange is a single entry in an amendment's diff
type FieldChange struct {
	FieldName  string      `json:"field_name"`
	OldValue   interface{} `json:"old_value"`
	NewValue   interface{} `json:"new_value"`
	ChangeType string      `json:"change_type"`
}

// ContentItem is a published heritage record
type ContentItem struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubmissionID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"submission_id"`
	OwnerID      string `gorm:"type:varchar(36);index;not null" json:"owner_id"`

	Country              string                         `gorm:"type:varchar(100)" json:"country"`
	StateRegion          string                         `gorm:"type:varchar(100)" json:"state_region"`
	Tribe                string                         `gorm:"type:varchar(100)" json:"tribe"`
	Village              string                         `gorm:"type:varchar(100)" json:"village"`
	CulturalDomain       string                         `gorm:"type:varchar(100);index" json:"cultural_domain"`
	Title                string                         `gorm:"type:varchar(255);not null" json:"title"`
	Description          string                         `gorm:"type:text" json:"description"`
	Keywords             datatypes.JSONSlice[string]    `json:"keywords"`
	Language             string                         `gorm:"type:varchar(50)" json:"language"`
	DateOfRecording      string                         `gorm:"type:varchar(50)" json:"date_of_recording"`
	CulturalSignificance string                         `gorm:"type:text" json:"cultural_significance"`
	ContentFileType      string                         `gorm:"type:varchar(50)" json:"content_file_type"`
	ContentURL           string                         `gorm:"type:varchar(500)" json:"content_url"`
	ContentKey           string                         `gorm:"type:varchar(500)" json:"content_key"`
	Consent              datatypes.JSONType[Consent]    `json:"consent"`
	AccessTier           string                         `gorm:"type:varchar(20);index;default:public" json:"access_tier"`
	ContentWarnings      datatypes.JSONSlice[string]    `json:"content_warnings"`
	WarningOtherText     string                         `gorm:"type:varchar(255)" json:"warning_other_text"`
	TranslationFileURL   string                         `gorm:"type:varchar(500)" json:"translation_file_url"`
	TranslationFileKey   string                         `gorm:"type:varchar(500)" json:"translation_file_key"`
	BackgroundInfo       string                         `gorm:"type:text" json:"background_info"`
	VerificationDocURL   string                         `gorm:"type:varchar(500)" json:"verification_doc_url"`
	VerificationDocKey   string                         `gorm:"type:varchar(500)" json:"verification_doc_key"`

	CurrentVersion  int        `gorm:"not null;default:1" json:"current_version"`
	TotalAmendments int        `gorm:"not null;default:0" json:"total_amendments"`
	LastAmendmentAt *time.Time `json:"last_amendment_at,omitempty"`

	ApprovedBy string     `gorm:"type:varchar(36)" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	Views     int64 `gorm:"not null;default:0" json:"views"`
	Downloads int64 `gorm:"not null;default:0" json:"downloads"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ContentItem) TableName() string {
	return "content_items"
}

// Snapshot returns the record's editable state as a snapshot
func (c *ContentItem) Snapshot() ContentSnapshot {
	return ContentSnapshot{
		Country:              c.Country,
		StateRegion:          c.StateRegion,
		Tribe:                c.Tribe,
		Village:              c.Village,
		CulturalDomain:       c.CulturalDomain,
		Title:                c.Title,
		Description:          c.Description,
		Keywords:             append([]string(nil), c.Keywords...),
		Language:             c.Language,
		DateOfRecording:      c.DateOfRecording,
		CulturalSignificance: c.CulturalSignificance,
		ContentFileType:      c.ContentFileType,
		ContentURL:           c.ContentURL,
		ContentKey:           c.ContentKey,
		Consent:              c.Consent.Data(),
		AccessTier:           c.AccessTier,
		ContentWarnings:      append([]string(nil), c.ContentWarnings...),
		WarningOtherText:     c.WarningOtherText,
		TranslationFileURL:   c.TranslationFileURL,
		TranslationFileKey:   c.TranslationFileKey,
		BackgroundInfo:       c.BackgroundInfo,
		VerificationDocURL:   c.VerificationDocURL,
		VerificationDocKey:   c.VerificationDocKey,
	}
}

// ApplySnapshot overwrites the record's editable state from a snapshot.
// Version counters, ownership and audit columns are untouched.
func (c *ContentItem) ApplySnapshot(s ContentSnapshot) {
	c.Country = s.Country
	c.StateRegion = s.StateRegion
	c.Tribe = s.Tribe
	c.Village = s.Village
	c.CulturalDomain = s.CulturalDomain
	c.Title = s.Title
	c.Description = s.Description
	c.Keywords = datatypes.NewJSONSlice(s.Keywords)
	c.Language = s.Language
	c.DateOfRecording = s.DateOfRecording
	c.CulturalSignificance = s.CulturalSignificance
	c.ContentFileType = s.ContentFileType
	c.ContentURL = s.ContentURL
	c.ContentKey = s.ContentKey
	c.Consent = datatypes.NewJSONType(s.Consent)
	c.AccessTier = s.AccessTier
	c.ContentWarnings = datatypes.NewJSONSlice(s.ContentWarnings)
	c.WarningOtherText = s.WarningOtherText
	c.TranslationFileURL = s.TranslationFileURL
	c.TranslationFileKey = s.TranslationFileKey
	c.BackgroundInfo = s.BackgroundInfo
	c.VerificationDocURL = s.VerificationDocURL
	c.VerificationDocKey = s.VerificationDocKey
}
