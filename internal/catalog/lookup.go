package catalog

import (
	"slices"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// suggestLimit bounds how far a typo may be from a known code to be offered
func suggestLimit(length int) int {
	limit := length / 3
	if limit < 1 {
		return 1
	}
	return limit
}

// Suggest returns the known code of kind closest to code, if one is near enough.
func (c *Catalog) Suggest(kind Kind, code string) (string, bool) {
	best := ""
	bestDist := -1
	for _, candidate := range c.Codes(kind) {
		dist := levenshtein.ComputeDistance(code, candidate)
		if dist > suggestLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best, bestDist >= 0
}

// SortCodes orders codes using the collation rules of tag, in place.
func SortCodes(codes []string, tag language.Tag) {
	col := collate.New(tag, collate.IgnoreCase)
	slices.SortStableFunc(codes, col.CompareString)
}
