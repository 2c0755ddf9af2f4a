package normalizer

import (
	"context"
	"fmt"
	"time"

	"scrubber/internal/config"
	"scrubber/internal/logger"
	"scrubber/internal/models"
	"scrubber/internal/validator"
)

// ProcessResult holds both passes of a pipeline run.
type ProcessResult struct {
	Cleaned    []*models.Record
	Validation *validator.BatchResult
	Duration   time.Duration
}

// Processor runs cleaning followed by validation. Validation sees the
// cleaned records and never re-cleans them.
type Processor struct {
	cleaner   *Cleaner
	validator *validator.RecordValidator
	log       *logger.Logger
}

// NewProcessor creates a new processor instance. Nil arguments get defaults.
func NewProcessor(c *Cleaner, v *validator.RecordValidator, log *logger.Logger) *Processor {
	if c == nil {
		c = NewCleaner()
	}

	if v == nil {
		v = validator.NewRecordValidator(config.DefaultValidationConfig())
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Processor{
		cleaner:   c,
		validator: v,
		log:       log,
	}
}

// Process cleans and validates a batch.
func (p *Processor) Process(ctx context.Context, records []*models.Record) (*ProcessResult, error) {
	start := time.Now()

	// 1. Clean the raw records
	cleaned, err := p.cleaner.CleanBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("cleaning failed: %w", err)
	}

	// 2. Validate the cleaned records
	result, err := p.validator.ValidateBatch(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	elapsed := time.Since(start)

	p.log.Info("Processed batch",
		"records", len(records),
		"valid", result.Stats.ValidRecords,
		"invalid", result.Stats.InvalidRecords,
		"duration", elapsed)

	return &ProcessResult{
		Cleaned:    cleaned,
		Validation: result,
		Duration:   elapsed,
	}, nil
}
