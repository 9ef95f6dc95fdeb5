package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/heritage-backend/internal/common"
)

// ReferenceHandler serves the static taxonomy used by intake and
// amendment forms
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

var culturalDomains = []string{
	"oral_traditions",
	"performing_arts",
	"social_practices",
	"rituals_and_festivals",
	"traditional_craftsmanship",
	"knowledge_of_nature",
	"foodways",
	"language_and_dialects",
}

var accessTiers = []string{"public", "community", "restricted"}

var contentWarnings = []string{
	"sacred_content",
	"sensitive_ritual",
	"deceased_persons",
	"graphic_content",
	"other",
}

var permissionTypes = []string{
	"archive",
	"research",
	"education",
	"public_display",
	"commercial",
}

var consentTypes = []string{"individual", "family", "community", "institutional"}

// Curated typeahead seeds; contributors can still enter values
// free-form.
var villagesByState = map[string][]string{
	"Odisha":            {"Bhitarkanika", "Chilika", "Raghurajpur", "Lanjigarh"},
	"West Bengal":       {"Chilapata", "Raghunathpur"},
	"Chhattisgarh":      {"Bastar", "Kanker"},
	"Jharkhand":         {"Netarhat"},
	"Arunachal Pradesh": {"Ziro", "Daporijo"},
	"Assam":             {"Majuli"},
	"Tripura":           {"Korang"},
	"Maharashtra":       {"Jawhar", "Hirvewadi", "Dahanu", "Mendha Lekha"},
	"Rajasthan":         {"Piplantri", "Kumbhalgarh"},
	"Andhra Pradesh":    {"Araku Valley"},
}

var preloadedTribes = []string{
	"Angami", "Ao", "Sema (Sümi)", "Lotha", "Chakhesang", "Konyak",
	"Rengma", "Phom", "Chang", "Sangtam", "Khiamniungan", "Yimchunger",
	"Zeliang", "Pochury", "Mizo", "Khasi", "Garo", "Apatani", "Nyishi",
	"Lepcha", "Bhil", "Santhal", "Bodo", "Mishing",
}

// Taxonomy returns the controlled vocabularies in one payload
func (h *ReferenceHandler) Taxonomy(c *gin.Context) {
	common.SuccessResponse(c, http.StatusOK, gin.H{
		"cultural_domains": culturalDomains,
		"access_tiers":     accessTiers,
		"content_warnings": contentWarnings,
		"permission_types": permissionTypes,
		"consent_types":    consentTypes,
		"tribes":           preloadedTribes,
	})
}

// Villages returns the curated village seeds, optionally narrowed to
// one state
func (h *ReferenceHandler) Villages(c *gin.Context) {
	if state := c.Query("state"); state != "" {
		common.SuccessResponse(c, http.StatusOK, gin.H{
			"state":    state,
			"villages": villagesByState[state],
		})
		return
	}

	var all []string
	for _, villages := range villagesByState {
		all = append(all, villages...)
	}
	sort.Strings(all)
	common.SuccessResponse(c, http.StatusOK, gin.H{"villages": all})
}
