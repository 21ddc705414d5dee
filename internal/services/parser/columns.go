package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sourceDateLayout is the fixed DD.MM.YYYY textual format the federation
// site uses everywhere. A row whose date fails to parse is dropped, not
// the whole page.
const sourceDateLayout = "02.01.2006"

// ParseSourceDate parses the source's DD.MM.YYYY date format
func ParseSourceDate(s string) (time.Time, error) {
	return time.Parse(sourceDateLayout, strings.TrimSpace(s))
}

// columnMap maps semantic column names to header positions
type columnMap map[string]int

// buildColumnMap resolves each schema column against the header row.
// Exact columns require the whole (trimmed) header to equal an alias;
// substring columns match case-insensitively anywhere in the header.
// Columns with no match are absent from the map, not defaulted: the
// per-column default index only applies to the finish position, which
// has its own tiered fallback.
func buildColumnMap(headers []string, ps *PageSchema) columnMap {
	cm := make(columnMap)
	for name, spec := range ps.Columns {
		for i, header := range headers {
			if matchesColumn(header, spec) {
				cm[name] = i
				break
			}
		}
	}
	return cm
}

func matchesColumn(header string, spec ColumnSpec) bool {
	header = strings.TrimSpace(header)
	for _, alias := range spec.Aliases {
		if spec.Exact {
			if header == alias {
				return true
			}
			continue
		}
		if strings.Contains(strings.ToLower(header), strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

// cell returns the trimmed cell text for a semantic column, or ""
func (cm columnMap) cell(cells []string, name string) string {
	idx, ok := cm[name]
	if !ok || idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// looksLikeRaceTime reports whether a cell carries a race-time string
// such as "1.33.94" or "1:33.94" rather than a finish position.
func looksLikeRaceTime(s string) bool {
	return strings.ContainsAny(s, ".:")
}

// ExtractFinishPosition resolves the finish-position column despite the
// source's confusable headers: the position column is labelled exactly
// "S" while an adjacent race-time column is labelled "Derece". Three
// tiers:
//
//  1. exact "S" header (substring matches like "Sıra" never qualify,
//     and a header the "Derece" rule also claims is skipped);
//  2. if the matched cell carries a decimal point or colon it is a time
//     string, so the column immediately preceding "Derece" is used;
//  3. with no header match at all, a fixed default index applies.
//
// The time-shape check of tier 2 guards every tier, so the returned
// value is always the integer position, never the race time.
func ExtractFinishPosition(headers, cells []string, ps *PageSchema) (int, error) {
	spec := ps.Columns["position"]

	primary := -1
	for i, header := range headers {
		trimmed := strings.TrimSpace(header)
		if trimmed == "S" && !strings.Contains(strings.ToLower(trimmed), "derece") {
			primary = i
			break
		}
	}

	if primary < 0 && spec.DefaultIndex != nil {
		primary = *spec.DefaultIndex
	}

	if primary >= 0 && primary < len(cells) {
		value := strings.TrimSpace(cells[primary])
		if !looksLikeRaceTime(value) {
			if pos, err := strconv.Atoi(value); err == nil {
				return pos, nil
			}
		} else if idx := findHeader(headers, "Derece"); idx > 0 && idx-1 < len(cells) {
			value = strings.TrimSpace(cells[idx-1])
			if !looksLikeRaceTime(value) {
				if pos, err := strconv.Atoi(value); err == nil {
					return pos, nil
				}
			}
		}
	}

	return 0, fmt.Errorf("no finish position found in row")
}

// findHeader returns the index of the first header containing the given
// substring, or -1.
func findHeader(headers []string, substring string) int {
	for i, header := range headers {
		if strings.Contains(strings.ToLower(header), strings.ToLower(substring)) {
			return i
		}
	}
	return -1
}

// parseDistance reads a distance cell such as "1400m" or "1.400"
func parseDistance(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	d, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return d
}

// parseCount reads an integer stat cell, tolerating surrounding text
func parseCount(s string) int {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
