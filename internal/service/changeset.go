package service

import (
	"reflect"

	"github.com/openheritage/heritage-backend/internal/common"
	"github.com/openheritage/heritage-backend/internal/domain"
)

// SnapshotEdits carries the fields a contributor wants to change. Nil
// means "leave as is"; a pointer to the zero value clears the field.
type SnapshotEdits struct {
	Country              *string
	StateRegion          *string
	Tribe                *string
	Village              *string
	CulturalDomain       *string
	Title                *string
	Description          *string
	Keywords             *[]string
	Language             *string
	DateOfRecording      *string
	CulturalSignificance *string
	AccessTier           *string
	ContentWarnings      *[]string
	WarningOtherText     *string
	BackgroundInfo       *string

	ConsentFileType  *string
	ConsentType      *string
	ConsentNames     *string
	ConsentDate      *string
	PermissionType   *[]string
	Duration         *string
	DigitalSignature *string
}

// FileUpload is an already-stored replacement file
type FileUpload struct {
	URL      string
	Key      string
	FileType string
}

// ChangeSetUploads carries replacement files for the record's four
// file slots. Nil means the slot keeps its current file.
type ChangeSetUploads struct {
	Content         *FileUpload
	ConsentFile     *FileUpload
	Translation     *FileUpload
	VerificationDoc *FileUpload
}

type trackedField struct {
	name string
	kind string
	get  func(*domain.ContentSnapshot) interface{}
}

// File replacement is detected by comparing storage keys, not URLs:
// a CDN or URL-format change must not read as a content change.
var trackedFields = []trackedField{
	{"country", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Country }},
	{"state_region", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.StateRegion }},
	{"tribe", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Tribe }},
	{"village", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Village }},
	{"cultural_domain", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.CulturalDomain }},
	{"title", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Title }},
	{"description", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Description }},
	{"keywords", domain.ChangeTypeArray, func(s *domain.ContentSnapshot) interface{} { return s.Keywords }},
	{"language", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.Language }},
	{"date_of_recording", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.DateOfRecording }},
	{"cultural_significance", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.CulturalSignificance }},
	{"access_tier", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.AccessTier }},
	{"content_warnings", domain.ChangeTypeArray, func(s *domain.ContentSnapshot) interface{} { return s.ContentWarnings }},
	{"warning_other_text", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.WarningOtherText }},
	{"background_info", domain.ChangeTypeText, func(s *domain.ContentSnapshot) interface{} { return s.BackgroundInfo }},
	{"consent", domain.ChangeTypeObject, func(s *domain.ContentSnapshot) interface{} { return s.Consent }},
}

type fileSlot struct {
	name   string
	getKey func(*domain.ContentSnapshot) string
	getURL func(*domain.ContentSnapshot) string
}

var fileSlots = []fileSlot{
	{"content_file", func(s *domain.ContentSnapshot) string { return s.ContentKey }, func(s *domain.ContentSnapshot) string { return s.ContentURL }},
	{"consent_file", func(s *domain.ContentSnapshot) string { return s.Consent.FileKey }, func(s *domain.ContentSnapshot) string { return s.Consent.FileURL }},
	{"translation_file", func(s *domain.ContentSnapshot) string { return s.TranslationFileKey }, func(s *domain.ContentSnapshot) string { return s.TranslationFileURL }},
	{"verification_doc", func(s *domain.ContentSnapshot) string { return s.VerificationDocKey }, func(s *domain.ContentSnapshot) string { return s.VerificationDocURL }},
}

// BuildChangeSet merges sparse edits and replacement uploads onto a
// baseline snapshot. The baseline is never mutated. It returns the
// complete proposed state plus the per-field diff, or an error if
// nothing actually changed.
func BuildChangeSet(baseline domain.ContentSnapshot, edits SnapshotEdits, uploads ChangeSetUploads) (domain.ContentSnapshot, []domain.FieldChange, error) {
	merged := cloneSnapshot(baseline)

	applyEdits(&merged, edits)
	applyUploads(&merged, uploads)

	var changes []domain.FieldChange

	for _, f := range trackedFields {
		oldVal := f.get(&baseline)
		newVal := f.get(&merged)
		if !reflect.DeepEqual(oldVal, newVal) {
			changes = append(changes, domain.FieldChange{
				FieldName:  f.name,
				OldValue:   oldVal,
				NewValue:   newVal,
				ChangeType: f.kind,
			})
		}
	}

	for _, f := range fileSlots {
		if f.getKey(&baseline) != f.getKey(&merged) {
			changes = append(changes, domain.FieldChange{
				FieldName:  f.name,
				OldValue:   f.getURL(&baseline),
				NewValue:   f.getURL(&merged),
				ChangeType: domain.ChangeTypeFile,
			})
		}
	}

	if len(changes) == 0 {
		return domain.ContentSnapshot{}, nil, common.ErrNoChanges
	}

	// The consent file slot also shows up inside the consent object
	// diff; drop the duplicate object entry when only the file moved.
	changes = dedupeConsent(changes, baseline, merged)

	return merged, changes, nil
}

// FileKeyDiff compares the file slots of two snapshots. replaced holds
// the baseline keys that the proposal drops (delete on approval);
// added holds the proposal's new keys (delete on rejection).
func FileKeyDiff(baseline, proposed domain.ContentSnapshot) (replaced, added []string) {
	for _, f := range fileSlots {
		oldKey := f.getKey(&baseline)
		newKey := f.getKey(&proposed)
		if oldKey == newKey {
			continue
		}
		if oldKey != "" {
			replaced = append(replaced, oldKey)
		}
		if newKey != "" {
			added = append(added, newKey)
		}
	}
	return replaced, added
}

func cloneSnapshot(s domain.ContentSnapshot) domain.ContentSnapshot {
	out := s
	out.Keywords = append([]string(nil), s.Keywords...)
	out.ContentWarnings = append([]string(nil), s.ContentWarnings...)
	out.Consent.PermissionType = append([]string(nil), s.Consent.PermissionType...)
	return out
}

func applyEdits(s *domain.ContentSnapshot, e SnapshotEdits) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setSlice := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = append([]string(nil), *src...)
		}
	}

	setStr(&s.Country, e.Country)
	setStr(&s.StateRegion, e.StateRegion)
	setStr(&s.Tribe, e.Tribe)
	setStr(&s.Village, e.Village)
	setStr(&s.CulturalDomain, e.CulturalDomain)
	setStr(&s.Title, e.Title)
	setStr(&s.Description, e.Description)
	setSlice(&s.Keywords, e.Keywords)
	setStr(&s.Language, e.Language)
	setStr(&s.DateOfRecording, e.DateOfRecording)
	setStr(&s.CulturalSignificance, e.CulturalSignificance)
	setStr(&s.AccessTier, e.AccessTier)
	setSlice(&s.ContentWarnings, e.ContentWarnings)
	setStr(&s.WarningOtherText, e.WarningOtherText)
	setStr(&s.BackgroundInfo, e.BackgroundInfo)

	setStr(&s.Consent.FileType, e.ConsentFileType)
	setStr(&s.Consent.ConsentType, e.ConsentType)
	setStr(&s.Consent.ConsentNames, e.ConsentNames)
	setStr(&s.Consent.ConsentDate, e.ConsentDate)
	setSlice(&s.Consent.PermissionType, e.PermissionType)
	setStr(&s.Consent.Duration, e.Duration)
	setStr(&s.Consent.DigitalSignature, e.DigitalSignature)
}

func applyUploads(s *domain.ContentSnapshot, u ChangeSetUploads) {
	if u.Content != nil {
		s.ContentURL = u.Content.URL
		s.ContentKey = u.Content.Key
		if u.Content.FileType != "" {
			s.ContentFileType = u.Content.FileType
		}
	}
	if u.ConsentFile != nil {
		s.Consent.FileURL = u.ConsentFile.URL
		s.Consent.FileKey = u.ConsentFile.Key
		if u.ConsentFile.FileType != "" {
			s.Consent.FileType = u.ConsentFile.FileType
		}
	}
	if u.Translation != nil {
		s.TranslationFileURL = u.Translation.URL
		s.TranslationFileKey = u.Translation.Key
	}
	if u.VerificationDoc != nil {
		s.VerificationDocURL = u.VerificationDoc.URL
		s.VerificationDocKey = u.VerificationDoc.Key
	}
}

func dedupeConsent(changes []domain.FieldChange, baseline, merged domain.ContentSnapshot) []domain.FieldChange {
	fileOnly := !reflect.DeepEqual(baseline.Consent, merged.Consent) &&
		reflect.DeepEqual(consentWithoutFile(baseline.Consent), consentWithoutFile(merged.Consent))
	if !fileOnly {
		return changes
	}

	out := changes[:0]
	for _, c := range changes {
		if c.FieldName == "consent" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func consentWithoutFile(c domain.Consent) domain.Consent {
	c.FileURL = ""
	c.FileKey = ""
	c.FileType = ""
	return c
}
