package contracts

// Constituent is one row of the tradable universe: a ticker symbol with its
// listed name and sector classification.
type Constituent struct {
	Symbol   string `json:"symbol"`
	Security string `json:"security"`
	Sector   string `json:"sector"`
}

// SectorMap maps a sector name to its ticker symbols. Duplicate symbols
// within a sector are possible (source data is best-effort) and must be
// tolerated by consumers.
type SectorMap map[string][]string

// Sectors returns the sector names present in the map
func (m SectorMap) Sectors() []string {
	sectors := make([]string, 0, len(m))
	for sector := range m {
		sectors = append(sectors, sector)
	}
	return sectors
}

// Count returns the total number of ticker entries across all sectors
func (m SectorMap) Count() int {
	total := 0
	for _, tickers := range m {
		total += len(tickers)
	}
	return total
}
