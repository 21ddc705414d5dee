package parser

import (
	"strings"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// ParseRegistrations extracts pending race entries from a registrations
// page. An entry whose state cell mentions a declaration is DEKLARE
// (jockey fixed); everything else is KAYIT.
func (p *Parser) ParseRegistrations(page *interfaces.RenderedPage) ([]*models.Registration, error) {
	tbl, ps, err := p.locate(page)
	if err != nil {
		return nil, err
	}

	cm := buildColumnMap(tbl.headers, ps)

	var registrations []*models.Registration
	for _, cells := range tbl.rows {
		date, err := ParseSourceDate(cm.cell(cells, "date"))
		if err != nil {
			p.logger.Debug().
				Str("cell", cm.cell(cells, "date")).
				Msg("Dropping registration row with unparseable date")
			continue
		}

		registration := &models.Registration{
			RaceDate: date,
			City:     cm.cell(cells, "city"),
			Distance: parseDistance(cm.cell(cells, "distance")),
			RaceName: cm.cell(cells, "race_name"),
			Jockey:   cm.cell(cells, "jockey"),
			Weight:   cm.cell(cells, "weight"),
			Type:     parseEntryState(cm.cell(cells, "entry_state"), cm.cell(cells, "jockey")),
		}

		registrations = append(registrations, registration)
	}

	return registrations, nil
}

// parseEntryState maps the source's state cell to an entry type. When
// the state column is missing entirely (older layout), a fixed jockey
// implies the entry was declared.
func parseEntryState(state, jockey string) models.RegistrationType {
	normalized := strings.ToLower(strings.TrimSpace(state))
	if strings.Contains(normalized, "deklare") || normalized == "d" {
		return models.RegistrationDeklare
	}
	if normalized == "" && strings.TrimSpace(jockey) != "" {
		return models.RegistrationDeklare
	}
	return models.RegistrationKayit
}
