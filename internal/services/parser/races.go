package parser

import (
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// ParseRaces extracts completed race results from a races page. Horse id
// and natural key are left empty; the sync engine assigns both.
func (p *Parser) ParseRaces(page *interfaces.RenderedPage) ([]*models.RaceRecord, error) {
	tbl, ps, err := p.locate(page)
	if err != nil {
		return nil, err
	}

	cm := buildColumnMap(tbl.headers, ps)

	var records []*models.RaceRecord
	for _, cells := range tbl.rows {
		date, err := ParseSourceDate(cm.cell(cells, "date"))
		if err != nil {
			p.logger.Debug().
				Str("page_kind", string(page.Kind)).
				Str("cell", cm.cell(cells, "date")).
				Msg("Dropping row with unparseable date")
			continue
		}

		record := &models.RaceRecord{
			RaceDate: date,
			RaceName: cm.cell(cells, "race_name"),
			City:     cm.cell(cells, "city"),
			Distance: parseDistance(cm.cell(cells, "distance")),
			Track:    cm.cell(cells, "track"),
			RaceTime: cm.cell(cells, "race_time"),
			Jockey:   cm.cell(cells, "jockey"),
			Weight:   cm.cell(cells, "weight"),
			Earnings: cm.cell(cells, "earnings"),
		}

		if pos, err := ExtractFinishPosition(tbl.headers, cells, ps); err == nil {
			record.Position = pos
		}

		records = append(records, record)
	}

	return records, nil
}
