package submissions

import (
	"regexp"
	"strings"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// companySlug folds a company name into the key the archive is searched by:
// "Acme & Sons, Ltd." becomes "acme-and-sons-ltd".
func companySlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
