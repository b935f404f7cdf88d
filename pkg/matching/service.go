package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/matchrecord"
	"github.com/Ramsey-B/clover/internal/repositories/matchrun"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Service runs the matching pipeline and persists the outcome. It records a
// run before executing so failures stay visible, and emits lifecycle events
// when a producer is configured.
type Service struct {
	pipeline *Pipeline
	runs     *matchrun.Repository
	records  *matchrecord.Repository
	emitter  *events.Emitter
	logger   ectologger.Logger
}

// NewService creates a matching service. The emitter may be nil when Kafka is
// disabled.
func NewService(pipeline *Pipeline, runs *matchrun.Repository, records *matchrecord.Repository, emitter *events.Emitter, logger ectologger.Logger) *Service {
	return &Service{
		pipeline: pipeline,
		runs:     runs,
		records:  records,
		emitter:  emitter,
		logger:   logger,
	}
}

// StartRunInput describes a requested matching run
type StartRunInput struct {
	Method            string
	Threshold         int
	SemanticThreshold int
	StopWords         []string
	Principals        []string
	Candidates        []string
}

// RunOutput carries the persisted run and its result rows
type RunOutput struct {
	Run     *models.MatchRun
	Records []models.MatchRecord
}

// StartRun validates the request, records the run, executes the pipeline and
// persists the results. The run row is only created after validation passes,
// so malformed requests never leave failed runs behind. When a stage fails
// mid-run the error comes back together with the rows from the stages that
// completed, so callers can still show partial results.
func (s *Service) StartRun(ctx context.Context, input StartRunInput, progress ProgressFunc) (*RunOutput, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.StartRun")
	defer span.End()

	cfg := RunConfig{
		Method:            models.MatchMethod(input.Method),
		Threshold:         input.Threshold,
		SemanticThreshold: input.SemanticThreshold,
		StopWords:         input.StopWords,
		Principals:        input.Principals,
		Candidates:        input.Candidates,
	}

	if err := s.pipeline.validate(cfg); err != nil {
		return nil, err
	}

	threshold := input.Threshold
	if threshold == 0 {
		threshold = s.pipeline.opts.DefaultThreshold
	}

	run := &models.MatchRun{
		Method:    input.Method,
		Threshold: threshold,
	}
	if input.SemanticThreshold != 0 {
		st := input.SemanticThreshold
		run.SemanticThreshold = &st
	}

	run, err := s.runs.Create(ctx, run)
	if err != nil {
		return nil, err
	}

	result, runErr := s.pipeline.Run(ctx, cfg, progress)
	if runErr != nil {
		reason := runErr.Error()
		if failErr := s.runs.Fail(ctx, run.ID, reason); failErr != nil {
			s.logger.WithContext(ctx).WithError(failErr).Error("Failed to record run failure")
		}
		if emitErr := s.emitter.EmitRunFailed(ctx, run, reason); emitErr != nil {
			s.logger.WithContext(ctx).WithError(emitErr).Warn("Failed to emit run.failed event")
		}
		if result == nil {
			return nil, runErr
		}

		run.Status = models.MatchRunStatusFailed
		run.ErrorMessage = &reason
		run.TotalRecords = result.Stats.Total
		run.MatchedRecords = result.Stats.Matched
		run.MatchRate = result.Stats.MatchRate
		return &RunOutput{
			Run:     run,
			Records: result.Records,
		}, runErr
	}

	if err := s.records.CreateBatch(ctx, run.ID, result.Records); err != nil {
		if failErr := s.runs.Fail(ctx, run.ID, "failed to persist results"); failErr != nil {
			s.logger.WithContext(ctx).WithError(failErr).Error("Failed to record run failure")
		}
		return nil, err
	}

	if err := s.runs.Complete(ctx, run.ID, result.Stats); err != nil {
		return nil, err
	}

	run.Status = models.MatchRunStatusCompleted
	run.TotalRecords = result.Stats.Total
	run.MatchedRecords = result.Stats.Matched
	run.MatchRate = result.Stats.MatchRate

	if err := s.emitter.EmitRunCompleted(ctx, run); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to emit run.completed event")
	}

	return &RunOutput{
		Run:     run,
		Records: result.Records,
	}, nil
}

// GetRun retrieves a persisted run by ID
func (s *Service) GetRun(ctx context.Context, id string) (*models.MatchRun, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.GetRun")
	defer span.End()

	return s.runs.Get(ctx, id)
}

// ListRuns retrieves recent runs, newest first
func (s *Service) ListRuns(ctx context.Context, limit int) ([]models.MatchRun, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.ListRuns")
	defer span.End()

	return s.runs.List(ctx, limit)
}

// ListRunRecords retrieves result rows for a run in input order
func (s *Service) ListRunRecords(ctx context.Context, runID string, limit, offset int) ([]models.MatchRecordRow, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.ListRunRecords")
	defer span.End()

	// confirm the run exists so unknown IDs return 404 instead of an empty list
	if _, err := s.runs.Get(ctx, runID); err != nil {
		return nil, err
	}

	return s.records.ListByRun(ctx, runID, limit, offset)
}
