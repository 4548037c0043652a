package usecase

import (
	"regexp"
	"strings"

	"github.com/stockboard/backend/internal/domain"
)

// Multiple spaces cleanup
var multiSpacePattern = regexp.MustCompile(`\s+`)

// Normalize turns raw recognized text into a candidate barcode.
// The text is used verbatim apart from trimming surrounding whitespace;
// no checksum or character-set validation is applied.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// NormalizeSearch cleans free-text search input before it is sent to the store
func NormalizeSearch(query domain.SearchQuery) domain.SearchQuery {
	return domain.SearchQuery{
		Name:     strings.TrimSpace(multiSpacePattern.ReplaceAllString(query.Name, " ")),
		Category: strings.TrimSpace(query.Category),
	}
}
