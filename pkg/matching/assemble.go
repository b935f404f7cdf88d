package matching

import "github.com/Ramsey-B/clover/pkg/models"

// Assemble produces exactly one row per principal, in principal input order.
// Exact rows take precedence over advanced rows for the same principal, and
// principals with no row from either stage come out as Unmatched with no
// candidate and no score.
func Assemble(principals []models.Record, exact, advanced []models.MatchRecord) ([]models.MatchRecord, models.RunStats) {
	byPrincipal := make(map[string]models.MatchRecord, len(exact)+len(advanced))
	for _, row := range advanced {
		byPrincipal[row.PrincipalID] = row
	}
	for _, row := range exact {
		byPrincipal[row.PrincipalID] = row
	}

	rows := make([]models.MatchRecord, 0, len(principals))
	matched := 0

	for _, principal := range principals {
		row, ok := byPrincipal[principal.ID]
		if !ok {
			row = models.MatchRecord{
				PrincipalID:   principal.ID,
				PrincipalText: principal.OriginalText,
				MatchType:     models.MatchTypeUnmatched,
			}
		} else {
			matched++
		}
		rows = append(rows, row)
	}

	stats := models.RunStats{
		Total:   len(principals),
		Matched: matched,
	}
	if stats.Total > 0 {
		stats.MatchRate = float64(stats.Matched) / float64(stats.Total) * 100
	}

	return rows, stats
}
