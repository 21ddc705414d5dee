package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

// ErrSchemaDrift means the expected table or columns were not found in
// the rendered document. Callers degrade the page kind to an empty
// result set rather than aborting the horse.
var ErrSchemaDrift = errors.New("expected table or columns not found")

// Parser turns rendered documents into typed record lists
type Parser struct {
	logger arbor.ILogger
}

// New creates a parser
func New(logger arbor.ILogger) *Parser {
	return &Parser{logger: logger}
}

// table is a located data table: normalized headers plus body rows
type table struct {
	headers []string
	rows    [][]string
}

// findTable locates the page's target table heuristically by matching
// known header substrings, because the source carries several tables
// per page and renames classes between releases. The table matching
// the most hints wins; a majority of hints must match.
func findTable(doc *goquery.Document, ps *PageSchema) (*table, error) {
	var best *table
	bestScore := 0

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		headers := extractHeaders(sel)
		if len(headers) == 0 {
			return
		}

		joined := strings.ToLower(strings.Join(headers, "|"))
		score := 0
		for _, hint := range ps.TableHints {
			if strings.Contains(joined, strings.ToLower(hint)) {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			best = &table{
				headers: headers,
				rows:    extractRows(sel, headers, ps.MinColumns),
			}
		}
	})

	if best == nil || bestScore*2 < len(ps.TableHints) {
		return nil, fmt.Errorf("no table matching hints %v: %w", ps.TableHints, ErrSchemaDrift)
	}

	return best, nil
}

// extractHeaders reads the header row from thead, falling back to the
// first row of the table.
func extractHeaders(sel *goquery.Selection) []string {
	var headers []string

	headerRow := sel.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = sel.Find("tr").First()
	}

	headerRow.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, normalizeText(cell.Text()))
	})

	return headers
}

// extractRows reads body rows, skipping header-echo rows and rows with
// fewer cells than the minimum schema width.
func extractRows(sel *goquery.Selection, headers []string, minColumns int) [][]string {
	var rows [][]string

	body := sel.Find("tbody tr")
	if body.Length() == 0 {
		body = sel.Find("tr").Slice(1, goquery.ToEnd)
	}

	body.Each(func(_ int, rowSel *goquery.Selection) {
		var cells []string
		rowSel.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeText(cell.Text()))
		})

		if len(cells) < minColumns {
			return
		}
		if isHeaderEcho(cells, headers) {
			return
		}

		rows = append(rows, cells)
	})

	return rows
}

// isHeaderEcho detects the source's habit of repeating the header row
// inside the body on paginated tables.
func isHeaderEcho(cells, headers []string) bool {
	if len(cells) != len(headers) {
		return false
	}
	for i := range cells {
		if cells[i] != headers[i] {
			return false
		}
	}
	return true
}

// normalizeText trims and collapses whitespace so incidental formatting
// differences between fetches do not change parsed values.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// createDocument parses raw HTML into a goquery document
func createDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// locate parses the page HTML and finds the page kind's target table
func (p *Parser) locate(page *interfaces.RenderedPage) (*table, *PageSchema, error) {
	ps, err := pageSchema(page.Kind)
	if err != nil {
		return nil, nil, err
	}

	doc, err := createDocument(page.HTML)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML for %s: %w", page.Kind, err)
	}

	tbl, err := findTable(doc, ps)
	if err != nil {
		return nil, nil, err
	}

	return tbl, ps, nil
}
