package matchrecord

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// insertChunkSize keeps batch inserts well under the postgres parameter limit
const insertChunkSize = 500

// Repository handles match record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts the result rows for a run. Rows keep their position so
// output order matches principal input order.
func (r *Repository) CreateBatch(ctx context.Context, runID string, records []models.MatchRecord) error {
	ctx, span := tracing.StartSpan(ctx, "matchrecord.Repository.CreateBatch")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	// all chunks land in one transaction so a failed run never leaves a
	// partial result set behind
	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match records")
	}

	for start := 0; start < len(records); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(records) {
			end = len(records)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("match_records")
		sb.Cols("run_id", "position", "principal_id", "principal_text", "candidate_id", "candidate_text", "match_type", "match_score")

		for i := start; i < end; i++ {
			record := records[i]
			sb.Values(runID, i, record.PrincipalID, record.PrincipalText, record.CandidateID, record.CandidateText, record.MatchType, record.MatchScore)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			_ = tx.Rollback(ctx)
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": runID}).Error("Failed to create match records batch")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match records")
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match records")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"run_id": runID, "count": len(records)}).Debug("Created match records batch")
	return nil
}

// ListByRun retrieves result rows for a run in input order
func (r *Repository) ListByRun(ctx context.Context, runID string, limit, offset int) ([]models.MatchRecordRow, error) {
	ctx, span := tracing.StartSpan(ctx, "matchrecord.Repository.ListByRun")
	defer span.End()

	if limit < 1 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("run_id", "position", "principal_id", "principal_text", "candidate_id", "candidate_text", "match_type", "match_score")
	sb.From("match_records")
	sb.Where(sb.Equal("run_id", runID))
	sb.OrderBy("position ASC")
	sb.Limit(limit)
	sb.Offset(offset)

	query, args := sb.Build()
	var rows []models.MatchRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match records")
	}

	return rows, nil
}
