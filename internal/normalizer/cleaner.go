// Package normalizer cleans raw scraped records: text normalization, date
// standardization and per-field custom transforms.
package normalizer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"scrubber/internal/config"
	"scrubber/internal/logger"
	"scrubber/internal/models"
)

// Cleaner applies field classification and normalization to records.
type Cleaner struct {
	textFields  models.FieldSet
	dateFields  models.FieldSet
	transforms  TransformSet
	aliases     models.FieldAliases
	dates       *DateNormalizer
	textOptions TextOptions
	workers     int
	log         *logger.Logger
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithTextFields sets the text field names. An empty list keeps the defaults.
func WithTextFields(names ...string) CleanerOption {
	return func(c *Cleaner) {
		if len(names) > 0 {
			c.textFields = models.NewFieldSet(names...)
		}
	}
}

// WithDateFields sets the date field names. There are none by default.
func WithDateFields(names ...string) CleanerOption {
	return func(c *Cleaner) {
		c.dateFields = models.NewFieldSet(names...)
	}
}

// WithTransforms registers custom per-field transforms.
func WithTransforms(transforms TransformSet) CleanerOption {
	return func(c *Cleaner) {
		c.transforms = transforms
	}
}

// WithFieldAliases sets the canonical-to-actual key mapping.
func WithFieldAliases(aliases models.FieldAliases) CleanerOption {
	return func(c *Cleaner) {
		c.aliases = aliases
	}
}

// WithDateNormalizer replaces the default date normalizer.
func WithDateNormalizer(d *DateNormalizer) CleanerOption {
	return func(c *Cleaner) {
		if d != nil {
			c.dates = d
		}
	}
}

// WithTextOptions sets the text pipeline stages.
func WithTextOptions(opts TextOptions) CleanerOption {
	return func(c *Cleaner) {
		c.textOptions = opts
	}
}

// WithWorkers bounds batch parallelism. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) CleanerOption {
	return func(c *Cleaner) {
		c.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) CleanerOption {
	return func(c *Cleaner) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCleaner creates a cleaner with the default text fields, no date fields
// and the full text pipeline.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		textFields:  models.NewFieldSet(config.DefaultTextFields()...),
		dateFields:  models.NewFieldSet(),
		dates:       NewDateNormalizer(),
		textOptions: DefaultTextOptions(),
		log:         logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}

	return c
}

// NewCleanerFromConfig builds a Cleaner from the cleaning section of cfg.
// Fields listed in cleaning.lowercase_fields get the Lowercase transform in
// addition to any transforms passed by the caller, which take precedence.
func NewCleanerFromConfig(cfg *config.Config, log *logger.Logger, transforms TransformSet) (*Cleaner, error) {
	policy, err := ParseFailPolicy(cfg.Cleaning.DateFailPolicy)
	if err != nil {
		return nil, err
	}

	merged := make(TransformSet, len(cfg.Cleaning.LowercaseFields)+len(transforms))
	for _, name := range cfg.Cleaning.LowercaseFields {
		merged[name] = Lowercase()
	}

	for name, t := range transforms {
		merged[name] = t
	}

	stages := cfg.Cleaning.Text

	return NewCleaner(
		WithTextFields(cfg.Cleaning.TextFields...),
		WithDateFields(cfg.Cleaning.DateFields...),
		WithTransforms(merged),
		WithFieldAliases(cfg.FieldAliases()),
		WithDateNormalizer(&DateNormalizer{
			OutputLayout: cfg.Cleaning.DateOutputLayout,
			FailPolicy:   policy,
		}),
		WithTextOptions(TextOptions{
			RemoveHTML:          stages.RemoveHTML,
			NormalizeEncoding:   stages.NormalizeEncoding,
			HandleSpecial:       stages.HandleSpecial,
			NormalizeWhitespace: stages.NormalizeWhitespace,
			RepairMojibake:      stages.RepairMojibake,
		}),
		WithWorkers(cfg.Advanced.Workers),
		WithLogger(log),
	), nil
}

// Classify reports how the cleaner treats key, taking field aliases into
// account.
func (c *Cleaner) Classify(key string) Classification {
	class, _ := classifyAliased(key, c.textFields, c.dateFields, c.transforms, c.aliases)

	return class
}

// CleanRecord cleans every field of r in order. Fields are never dropped or
// renamed. The only error is one returned by a custom transform.
func (c *Cleaner) CleanRecord(r *models.Record) (*models.Record, error) {
	out := models.NewRecord()

	var err error

	r.Range(func(key string, v models.Value) bool {
		var cleaned models.Value

		cleaned, err = c.cleanField(key, v)
		if err != nil {
			return false
		}

		out.Set(key, cleaned)

		return true
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Cleaner) cleanField(key string, v models.Value) (models.Value, error) {
	class, name := classifyAliased(key, c.textFields, c.dateFields, c.transforms, c.aliases)

	switch class {
	case ClassCustom:
		out, err := c.transforms[name].Apply(v)
		if err != nil {
			return models.Value{}, fmt.Errorf("transform %q: %w", key, err)
		}

		return out, nil
	case ClassDate:
		return c.dates.StandardizeValue(v), nil
	default:
		s, ok := v.Text()
		if !ok {
			return v, nil
		}

		return models.StringValue(CleanText(s, c.textOptions)), nil
	}
}

// CleanBatch cleans records in parallel. The output has the same length and
// order as the input. The first transform error aborts the batch.
func (c *Cleaner) CleanBatch(ctx context.Context, records []*models.Record) ([]*models.Record, error) {
	start := time.Now()
	out := make([]*models.Record, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			cleaned, err := c.CleanRecord(rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}

			out[i] = cleaned

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("Cleaned batch",
		"records", len(records),
		"workers", c.workers,
		"duration", time.Since(start))

	return out, nil
}

// CleanOne cleans a bare record as a one-element batch.
func (c *Cleaner) CleanOne(ctx context.Context, r *models.Record) ([]*models.Record, error) {
	return c.CleanBatch(ctx, []*models.Record{r})
}
