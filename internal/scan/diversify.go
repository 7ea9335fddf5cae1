package scan

import "github.com/jshaw/alphascan/internal/contracts"

// Diversify walks a ranked list in order and admits each entry only while
// its sector's running count is below maxPerSector. A stable greedy
// filter: relative order within and across sectors is preserved, and no
// global re-optimization is attempted.
func Diversify(ranked []contracts.Recommendation, maxPerSector int) []contracts.Recommendation {
	if maxPerSector < 1 {
		return nil
	}

	sectorCount := make(map[string]int)
	filtered := make([]contracts.Recommendation, 0, len(ranked))

	for _, rec := range ranked {
		if sectorCount[rec.Sector] >= maxPerSector {
			continue
		}
		filtered = append(filtered, rec)
		sectorCount[rec.Sector]++
	}

	return filtered
}

// SectorSummary counts entries per sector in a ranked list
func SectorSummary(ranked []contracts.Recommendation) map[string]int {
	summary := make(map[string]int)
	for _, rec := range ranked {
		summary[rec.Sector]++
	}
	return summary
}
