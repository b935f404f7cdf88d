package models

import "time"

// MatchRunStatus tracks the lifecycle of a persisted run.
type MatchRunStatus string

const (
	MatchRunStatusRunning   MatchRunStatus = "running"
	MatchRunStatusCompleted MatchRunStatus = "completed"
	MatchRunStatusFailed    MatchRunStatus = "failed"
)

// MatchRun is a persisted matching run with its configuration and summary stats.
type MatchRun struct {
	ID                string         `json:"id" db:"id"`
	Method            string         `json:"method" db:"method"`
	Threshold         int            `json:"threshold" db:"threshold"`
	SemanticThreshold *int           `json:"semantic_threshold,omitempty" db:"semantic_threshold"`
	Status            MatchRunStatus `json:"status" db:"status"`
	TotalRecords      int            `json:"total_records" db:"total_records"`
	MatchedRecords    int            `json:"matched_records" db:"matched_records"`
	MatchRate         float64        `json:"match_rate" db:"match_rate"`
	ErrorMessage      *string        `json:"error_message,omitempty" db:"error_message"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// MatchRecordRow is the persisted form of a MatchRecord, scoped to a run and
// ordered by the principal's input position.
type MatchRecordRow struct {
	RunID         string   `json:"run_id" db:"run_id"`
	Position      int      `json:"position" db:"position"`
	PrincipalID   string   `json:"principal_id" db:"principal_id"`
	PrincipalText string   `json:"principal_text" db:"principal_text"`
	CandidateID   *string  `json:"candidate_id" db:"candidate_id"`
	CandidateText *string  `json:"candidate_text" db:"candidate_text"`
	MatchType     string   `json:"match_type" db:"match_type"`
	MatchScore    *float64 `json:"match_score" db:"match_score"`
}
