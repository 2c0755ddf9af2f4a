package validator

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"scrubber/internal/config"
	"scrubber/internal/logger"
	"scrubber/internal/models"
)

// Check names a validation check.
type Check string

// Validation checks, in the order they run.
const (
	CheckRequired  Check = "required_fields"
	CheckURL       Check = "url_format"
	CheckMinLength Check = "content_length"
)

// Outcome is the result of validating one record. Valid is true iff Reasons
// is empty.
type Outcome struct {
	Reasons []string
	Failed  []Check
	Valid   bool
}

// InvalidRecord is a rejected record with its position in the input batch.
type InvalidRecord struct {
	Record  *models.Record
	Reasons []string
	Index   int
}

// MarshalJSON writes the index first so reject files read naturally.
func (ir InvalidRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index   int            `json:"index"`
		Record  *models.Record `json:"record"`
		Reasons []string       `json:"reasons"`
	}{ir.Index, ir.Record, ir.Reasons})
}

// ValidationStats counts outcomes across a batch. The per-check counters
// count records, not reasons.
type ValidationStats struct {
	TotalRecords    int `json:"total_records"`
	ValidRecords    int `json:"valid_records"`
	InvalidRecords  int `json:"invalid_records"`
	MissingRequired int `json:"missing_required"`
	InvalidURL      int `json:"invalid_url"`
	ContentTooShort int `json:"content_too_short"`
	TotalReasons    int `json:"total_reasons"`
	DurationMillis  int `json:"duration_ms"`
}

// BatchResult partitions a batch. Every input record is in exactly one of
// Valid or Invalid; both keep input order.
type BatchResult struct {
	Valid   []*models.Record
	Invalid []InvalidRecord
	Stats   ValidationStats
}

// RecordValidator runs the field checks against whole records.
type RecordValidator struct {
	cfg     config.ValidationConfig
	aliases models.FieldAliases
	workers int
	log     *logger.Logger
}

// Option configures a RecordValidator.
type Option func(*RecordValidator)

// WithWorkers bounds batch parallelism. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(v *RecordValidator) {
		v.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(v *RecordValidator) {
		if log != nil {
			v.log = log
		}
	}
}

// NewRecordValidator creates a validator. Unset fields of cfg take their
// defaults.
func NewRecordValidator(cfg config.ValidationConfig, opts ...Option) *RecordValidator {
	defaults := config.DefaultValidationConfig()

	if len(cfg.RequiredFields) == 0 {
		cfg.RequiredFields = defaults.RequiredFields
	}

	if cfg.URLField == "" {
		cfg.URLField = defaults.URLField
	}

	if cfg.ContentField == "" {
		cfg.ContentField = defaults.ContentField
	}

	v := &RecordValidator{
		cfg:     cfg,
		aliases: models.FieldAliases(cfg.FieldAliases),
		log:     logger.Nop(),
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.workers < 1 {
		v.workers = runtime.GOMAXPROCS(0)
	}

	return v
}

// ValidateRecord runs every applicable check and accumulates all reasons.
// Required fields are always checked. The URL and content length checks run
// only when their field is present and non-blank, so a missing field is
// reported once, by the required check.
func (v *RecordValidator) ValidateRecord(r *models.Record) Outcome {
	var out Outcome

	add := func(check Check, reasons []string) {
		if len(reasons) == 0 {
			return
		}

		out.Reasons = append(out.Reasons, reasons...)
		out.Failed = append(out.Failed, check)
	}

	add(CheckRequired, CheckRequiredFields(r, v.cfg.RequiredFields, v.aliases))

	if val, ok := r.Get(v.aliases.Resolve(v.cfg.URLField)); ok && !val.IsBlank() {
		add(CheckURL, ValidateURLFormat(val, v.cfg.URLField))
	}

	if val, ok := r.Get(v.aliases.Resolve(v.cfg.ContentField)); ok && !val.IsBlank() {
		add(CheckMinLength, CheckContentLength(val, v.cfg.ContentMinLength, v.cfg.ContentField))
	}

	out.Valid = len(out.Reasons) == 0

	return out
}

// ValidateBatch validates records in parallel and partitions them, keeping
// each record's index in the input. The error is non-nil only when ctx is
// cancelled.
func (v *RecordValidator) ValidateBatch(ctx context.Context, records []*models.Record) (*BatchResult, error) {
	start := time.Now()
	outcomes := make([]Outcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcomes[i] = v.ValidateRecord(rec)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Valid:   []*models.Record{},
		Invalid: []InvalidRecord{},
	}

	for i, o := range outcomes {
		result.Stats.add(o)

		if o.Valid {
			result.Valid = append(result.Valid, records[i])

			continue
		}

		result.Invalid = append(result.Invalid, InvalidRecord{
			Index:   i,
			Record:  records[i],
			Reasons: o.Reasons,
		})
	}

	result.Stats.DurationMillis = int(time.Since(start).Milliseconds())

	v.log.Debug("Validated batch",
		"records", result.Stats.TotalRecords,
		"valid", result.Stats.ValidRecords,
		"invalid", result.Stats.InvalidRecords)

	return result, nil
}

func (s *ValidationStats) add(o Outcome) {
	s.TotalRecords++
	s.TotalReasons += len(o.Reasons)

	if o.Valid {
		s.ValidRecords++

		return
	}

	s.InvalidRecords++

	for _, c := range o.Failed {
		switch c {
		case CheckRequired:
			s.MissingRequired++
		case CheckURL:
			s.InvalidURL++
		case CheckMinLength:
			s.ContentTooShort++
		}
	}
}
