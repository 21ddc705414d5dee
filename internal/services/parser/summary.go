package parser

import (
	"strings"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// ParseSummary extracts the aggregate stats block from the general info
// page: a label/value table with race counts, earnings and the first
// pedigree generation.
func (p *Parser) ParseSummary(page *interfaces.RenderedPage) (*models.HorseSummary, error) {
	tbl, _, err := p.locate(page)
	if err != nil {
		return nil, err
	}

	summary := &models.HorseSummary{}

	assign := func(label, value string) {
		normalized := strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		switch {
		case strings.Contains(normalized, "koşu sayısı"):
			summary.RaceCount = parseCount(value)
		case strings.Contains(normalized, "birincilik"):
			summary.WinCount = parseCount(value)
		case strings.Contains(normalized, "tabla"), strings.Contains(normalized, "plase"):
			summary.PlaceCount = parseCount(value)
		case strings.Contains(normalized, "kazanç"), strings.Contains(normalized, "ikramiye"):
			summary.TotalEarnings = value
		case normalized == "baba":
			summary.Sire = value
		case normalized == "anne":
			summary.Dam = value
		}
	}

	if len(tbl.headers) >= 2 {
		assign(tbl.headers[0], tbl.headers[1])
	}
	for _, cells := range tbl.rows {
		if len(cells) >= 2 {
			assign(cells[0], cells[1])
		}
	}

	return summary, nil
}
