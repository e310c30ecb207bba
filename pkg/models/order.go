package models

import (
	"slices"
	"strings"
)

var columnOrder = map[string]int{
	ColProductID:     0,
	ColName:          1,
	ColMainCategory:  2,
	ColSubCategory:   3,
	ColImage:         4,
	ColLink:          5,
	ColDiscountPrice: 6,
	ColActualPrice:   7,
	ColRatings:       8,
	ColNoOfRatings:   9,
	ColDate:          10,
}

// OrderedKeys returns the keys of rec with known columns first in schema
// order, then any others alphabetically.
func OrderedKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia, okA := columnOrder[a]
		ib, okB := columnOrder[b]
		switch {
		case okA && okB:
			return ia - ib
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}
