package models

// Record is a single cleaned entry from one of the two input lists. Records are
// produced by the normalizers package at run start and are read-only afterwards.
type Record struct {
	ID             string `json:"id"`
	NormalizedText string `json:"normalized_text"`
	OriginalText   string `json:"original_text"`
}

// MatchRecord is the final decision for one principal record.
type MatchRecord struct {
	PrincipalID   string   `json:"principal_id" db:"principal_id"`
	PrincipalText string   `json:"principal_text" db:"principal_text"`
	CandidateID   *string  `json:"candidate_id" db:"candidate_id"`
	CandidateText *string  `json:"candidate_text" db:"candidate_text"`
	MatchType     string   `json:"match_type" db:"match_type"`
	MatchScore    *float64 `json:"match_score" db:"match_score"`
}

// Match type labels for final rows. Fuzzy rows carry the method name instead.
const (
	MatchTypeExact     = "Exact"
	MatchTypeSemantic  = "Semantic"
	MatchTypeHybrid    = "Hybrid"
	MatchTypeUnmatched = "Unmatched"
)

// RunStats summarizes a completed matching run.
type RunStats struct {
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	MatchRate float64 `json:"match_rate"`
}
