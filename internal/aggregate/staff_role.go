package aggregate

import (
	"strings"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// teachingDesignations are fragments that usually mark a teaching post.
var teachingDesignations = []string{
	"teacher", "shikkhok", "শিক্ষক", "ustad", "ustaz", "উস্তাদ", "hafez", "hafiz", "হাফেজ",
	"mawlana", "maulana", "মাওলানা", "muhaddis", "mufti", "principal", "muhtamim", "মুহতামিম",
}

// SuggestStaffRole guesses a role from a free-text designation so forms can
// prefill the role field. The stored role is always the explicit one.
func SuggestStaffRole(designation string) models.StaffRole {
	d := strings.ToLower(designation)
	for _, fragment := range teachingDesignations {
		if strings.Contains(d, fragment) {
			return models.StaffTeacher
		}
	}
	return models.StaffNonTeacher
}
