package processor

import (
	"sort"

	"flight-position-gateway/internal/model"
)

// DistinctSortedCountries returns each origin country once, in ascending
// byte order. Comparison is case-sensitive.
func DistinctSortedCountries(positions []model.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	countries := make([]string, 0)

	for _, p := range positions {
		if _, ok := seen[p.OriginCountry]; ok {
			continue
		}
		seen[p.OriginCountry] = struct{}{}
		countries = append(countries, p.OriginCountry)
	}

	sort.Strings(countries)
	return countries
}
