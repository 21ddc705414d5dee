package parser

import (
	"strings"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// pedigreeLabels maps the source's relation labels to pedigree slots.
// The pedigree page is a two-column relation/name listing rather than
// a grid, which keeps it stable under the site's layout churn.
var pedigreeLabels = []struct {
	label string
	slot  func(*models.Pedigree) *string
}{
	{"babanın babasının babası", func(p *models.Pedigree) *string { return &p.SireSireSire }},
	{"babanın babasının annesi", func(p *models.Pedigree) *string { return &p.SireSireDam }},
	{"annenin babasının babası", func(p *models.Pedigree) *string { return &p.DamSireSire }},
	{"annenin babasının annesi", func(p *models.Pedigree) *string { return &p.DamSireDam }},
	{"babanın babası", func(p *models.Pedigree) *string { return &p.SireSire }},
	{"babanın annesi", func(p *models.Pedigree) *string { return &p.SireDam }},
	{"annenin babası", func(p *models.Pedigree) *string { return &p.DamSire }},
	{"annenin annesi", func(p *models.Pedigree) *string { return &p.DamDam }},
}

// ParsePedigree extracts ancestor names from a pedigree page. Slots the
// page does not carry stay empty; the merge policy decides what an
// empty or shorter name means downstream.
func (p *Parser) ParsePedigree(page *interfaces.RenderedPage) (*models.Pedigree, error) {
	tbl, _, err := p.locate(page)
	if err != nil {
		return nil, err
	}

	pedigree := &models.Pedigree{}

	assign := func(label, name string) {
		normalized := strings.ToLower(strings.TrimSpace(label))
		// longest labels first so "babanın babasının babası" is not
		// claimed by the "babanın babası" entry
		for _, entry := range pedigreeLabels {
			if strings.Contains(normalized, entry.label) {
				*entry.slot(pedigree) = strings.TrimSpace(name)
				return
			}
		}
	}

	// header row of a label/value table is itself a data row
	if len(tbl.headers) >= 2 {
		assign(tbl.headers[0], tbl.headers[1])
	}
	for _, cells := range tbl.rows {
		if len(cells) >= 2 {
			assign(cells[0], cells[1])
		}
	}

	return pedigree, nil
}
