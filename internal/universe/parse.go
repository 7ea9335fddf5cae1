package universe

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jshaw/alphascan/internal/contracts"
)

// Column names accepted from the structured source. DataHub publishes
// Symbol/Name/Sector; the cache and Wikipedia use Symbol/Security/GICS
// Sector. Both are normalized to the Constituent fields.
var (
	securityAliases = []string{"Security", "Name"}
	sectorAliases   = []string{"GICS Sector", "Sector"}
)

// parseConstituentCSV decodes a CSV table with at least Symbol and a
// sector column
func parseConstituentCSV(data []byte) ([]contracts.Constituent, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	header := records[0]
	symbolIdx := indexOf(header, "Symbol")
	if symbolIdx < 0 {
		return nil, fmt.Errorf("csv missing Symbol column")
	}
	securityIdx := indexOfAny(header, securityAliases)
	sectorIdx := indexOfAny(header, sectorAliases)
	if sectorIdx < 0 {
		return nil, fmt.Errorf("csv missing sector column")
	}

	table := make([]contracts.Constituent, 0, len(records)-1)
	for _, record := range records[1:] {
		if symbolIdx >= len(record) || sectorIdx >= len(record) {
			continue
		}

		row := contracts.Constituent{
			Symbol: strings.TrimSpace(record[symbolIdx]),
			Sector: strings.TrimSpace(record[sectorIdx]),
		}
		if securityIdx >= 0 && securityIdx < len(record) {
			row.Security = strings.TrimSpace(record[securityIdx])
		}
		if row.Symbol == "" {
			continue
		}
		table = append(table, row)
	}

	return table, nil
}

// encodeConstituentCSV writes the table in the cache's canonical column
// order
func encodeConstituentCSV(table []contracts.Constituent) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Symbol", "Security", "GICS Sector"}); err != nil {
		return nil, err
	}
	for _, row := range table {
		if err := writer.Write([]string{row.Symbol, row.Security, row.Sector}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseConstituentHTML extracts the constituent table from the reference
// page. The first wikitable carries Symbol/Security/GICS Sector columns.
// Dot-separated share classes are rewritten to hyphens to match the market
// data provider's symbol convention (BRK.B -> BRK-B).
func parseConstituentHTML(data []byte) ([]contracts.Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	htmlTable := doc.Find("table.wikitable").First()
	if htmlTable.Length() == 0 {
		return nil, fmt.Errorf("no constituent table found in page")
	}

	// Resolve column positions from the header row
	symbolIdx, securityIdx, sectorIdx := -1, -1, -1
	htmlTable.Find("tr").First().Find("th").Each(func(i int, cell *goquery.Selection) {
		switch strings.TrimSpace(cell.Text()) {
		case "Symbol":
			symbolIdx = i
		case "Security":
			securityIdx = i
		case "GICS Sector", "Sector":
			sectorIdx = i
		}
	})
	if symbolIdx < 0 || sectorIdx < 0 {
		return nil, fmt.Errorf("constituent table missing Symbol or sector column")
	}

	var table []contracts.Constituent
	htmlTable.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}

		cells := row.Find("td")
		if cells.Length() <= sectorIdx || cells.Length() <= symbolIdx {
			return
		}

		symbol := strings.TrimSpace(cells.Eq(symbolIdx).Text())
		if symbol == "" {
			return
		}
		symbol = strings.ReplaceAll(symbol, ".", "-")

		entry := contracts.Constituent{
			Symbol: symbol,
			Sector: strings.TrimSpace(cells.Eq(sectorIdx).Text()),
		}
		if securityIdx >= 0 && cells.Length() > securityIdx {
			entry.Security = strings.TrimSpace(cells.Eq(securityIdx).Text())
		}
		table = append(table, entry)
	})

	return table, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func indexOfAny(header []string, names []string) int {
	for _, name := range names {
		if idx := indexOf(header, name); idx >= 0 {
			return idx
		}
	}
	return -1
}
