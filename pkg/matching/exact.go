package matching

import "github.com/Ramsey-B/clover/pkg/models"

// MatchExact pairs principals with candidates whose normalized text is
// identical. It returns the matched rows and the principals left for the
// advanced stage. When multiple candidates share the same text the first one
// in candidate order wins.
func MatchExact(principals, candidates []models.Record) ([]models.MatchRecord, []models.Record, error) {
	for _, r := range principals {
		if r.NormalizedText == "" {
			return nil, nil, NewInputError("principal record %s has no text content", r.ID)
		}
	}
	for _, r := range candidates {
		if r.NormalizedText == "" {
			return nil, nil, NewInputError("candidate record %s has no text content", r.ID)
		}
	}

	byText := make(map[string]models.Record, len(candidates))
	for _, candidate := range candidates {
		if _, ok := byText[candidate.NormalizedText]; !ok {
			byText[candidate.NormalizedText] = candidate
		}
	}

	matched := make([]models.MatchRecord, 0, len(principals))
	var unmatched []models.Record

	for _, principal := range principals {
		candidate, ok := byText[principal.NormalizedText]
		if !ok {
			unmatched = append(unmatched, principal)
			continue
		}

		score := 100.0
		matched = append(matched, models.MatchRecord{
			PrincipalID:   principal.ID,
			PrincipalText: principal.OriginalText,
			CandidateID:   &candidate.ID,
			CandidateText: &candidate.OriginalText,
			MatchType:     models.MatchTypeExact,
			MatchScore:    &score,
		})
	}

	return matched, unmatched, nil
}
