package validators

import (
	"regexp"
	"strings"
)

// Current-style GB mark (AB12 CDE) plus the older prefix/suffix formats.
var regMarkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{3}$`),
	regexp.MustCompile(`^[A-Z][0-9]{1,3}[A-Z]{3}$`),
	regexp.MustCompile(`^[A-Z]{3}[0-9]{1,3}[A-Z]$`),
	regexp.MustCompile(`^[0-9]{1,4}[A-Z]{1,3}$`),
	regexp.MustCompile(`^[A-Z]{1,3}[0-9]{1,4}$`),
}

// NormalizeRegistration strips spaces and upper-cases a registration mark.
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

func IsRegistrationValid(reg string) bool {
	normalized := NormalizeRegistration(reg)
	if normalized == "" || len(normalized) > 8 {
		return false
	}

	for _, p := range regMarkPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}
