package parser

import (
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// ParseGallops extracts training-session rows from a gallops page
func (p *Parser) ParseGallops(page *interfaces.RenderedPage) ([]*models.GallopRecord, error) {
	tbl, ps, err := p.locate(page)
	if err != nil {
		return nil, err
	}

	cm := buildColumnMap(tbl.headers, ps)

	var records []*models.GallopRecord
	for _, cells := range tbl.rows {
		date, err := ParseSourceDate(cm.cell(cells, "date"))
		if err != nil {
			p.logger.Debug().
				Str("cell", cm.cell(cells, "date")).
				Msg("Dropping gallop row with unparseable date")
			continue
		}

		records = append(records, &models.GallopRecord{
			GallopDate: date,
			Racecourse: cm.cell(cells, "racecourse"),
			Distance:   parseDistance(cm.cell(cells, "distance")),
			Time:       cm.cell(cells, "time"),
			Rider:      cm.cell(cells, "rider"),
			Notes:      cm.cell(cells, "notes"),
		})
	}

	return records, nil
}
