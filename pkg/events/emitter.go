// Package events handles event emission for matching run lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes run lifecycle events. A nil Emitter is safe to call and
// emits nothing, which keeps Kafka optional in local setups.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRunCompleted emits a run.completed event with final stats
func (e *Emitter) EmitRunCompleted(ctx context.Context, run *models.MatchRun) error {
	if e == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	data := map[string]any{
		"schema_version":  SchemaVersion,
		"total_records":   run.TotalRecords,
		"matched_records": run.MatchedRecords,
		"match_rate":      run.MatchRate,
		"threshold":       run.Threshold,
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.RunEvent{
		EventType: "run.completed",
		RunID:     run.ID,
		Method:    run.Method,
		Data:      dataJSON,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.completed event")
		return err
	}

	return nil
}

// EmitRunFailed emits a run.failed event with the failure reason
func (e *Emitter) EmitRunFailed(ctx context.Context, run *models.MatchRun, reason string) error {
	if e == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunFailed")
	defer span.End()

	data := map[string]any{
		"schema_version": SchemaVersion,
		"reason":         reason,
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.RunEvent{
		EventType: "run.failed",
		RunID:     run.ID,
		Method:    run.Method,
		Data:      dataJSON,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.failed event")
		return err
	}

	return nil
}
