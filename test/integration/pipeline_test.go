package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scrubber/internal/config"
	"scrubber/internal/logger"
	"scrubber/internal/models"
	"scrubber/internal/normalizer"
	"scrubber/internal/validator"
	"scrubber/pkg/metadata"
)

func loadFixtures(t *testing.T) (*config.Config, []*models.Record) {
	t.Helper()

	cfg, err := config.LoadConfig(filepath.Join("..", "fixtures", "pipeline.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	content, err := os.ReadFile(filepath.Join("..", "fixtures", "raw_records.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	records, err := models.DecodeRecords(content)
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}

	return cfg, records
}

func newProcessor(t *testing.T, cfg *config.Config) *normalizer.Processor {
	t.Helper()

	var logs bytes.Buffer

	log := logger.NewLoggerWithWriter(&logs, cfg.Logging.Level, cfg.Logging.Format)

	cleaner, err := normalizer.NewCleanerFromConfig(cfg, log, nil)
	if err != nil {
		t.Fatalf("NewCleanerFromConfig failed: %v", err)
	}

	vcfg := cfg.Validation
	vcfg.FieldAliases = cfg.FieldAliases()

	return normalizer.NewProcessor(cleaner, validator.NewRecordValidator(vcfg, validator.WithLogger(log)), log)
}

func TestPipeline_Fixture(t *testing.T) {
	cfg, records := loadFixtures(t)

	if len(records) != 6 {
		t.Fatalf("Expected 6 records, got %d", len(records))
	}

	result, err := newProcessor(t, cfg).Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	batch := result.Validation

	if len(batch.Valid)+len(batch.Invalid) != len(records) {
		t.Fatalf("Partition lost records: %d valid + %d invalid", len(batch.Valid), len(batch.Invalid))
	}

	// Valid records
	var titles []string

	for _, r := range batch.Valid {
		v, _ := r.Get("title")
		titles = append(titles, v.String())
	}

	wantTitles := []string{"Breaking: Markets rally", `Café "review"`, "Second story"}
	if !reflect.DeepEqual(titles, wantTitles) {
		t.Errorf("Valid titles = %v, want %v", titles, wantTitles)
	}

	first := batch.Valid[0]
	for key, want := range map[string]string{
		"content":   "Stocks rose & bonds fell.",
		"published": "2025-02-05",
		"author":    "Jane Doe",
		"link":      "https://news.example.com/markets",
	} {
		if v, _ := first.Get(key); v.String() != want {
			t.Errorf("Valid[0].%s = %q, want %q", key, v.String(), want)
		}
	}

	review := batch.Valid[1]
	if v, _ := review.Get("published"); v.String() != "2025-02-05" {
		t.Errorf("review published = %q", v.String())
	}

	if v, _ := review.Get("rating"); v.Kind() != models.KindNumber || v.String() != "4.5" {
		t.Errorf("rating = %v (%s), want number 4.5", v, v.Kind())
	}

	if v, _ := review.Get("tags"); v.String() != `["food","coffee"]` {
		t.Errorf("tags = %s, want untouched array", v)
	}

	if v, _ := batch.Valid[2].Get("published"); v.String() != "2025-02-05" {
		t.Errorf("second story published = %q", v.String())
	}

	// Rejected records
	wantInvalid := map[int][]string{
		1: {"content: too short (10 chars, minimum 20)"},
		2: {
			"missing required field: title",
			"url: invalid scheme (expected http or https)",
		},
		4: {
			"missing required field: title",
			"url: invalid scheme (expected http or https)",
			"content: too short (1 chars, minimum 20)",
		},
	}

	if len(batch.Invalid) != len(wantInvalid) {
		t.Fatalf("Expected %d invalid records, got %d", len(wantInvalid), len(batch.Invalid))
	}

	for _, inv := range batch.Invalid {
		if !reflect.DeepEqual(inv.Reasons, wantInvalid[inv.Index]) {
			t.Errorf("Invalid[%d] reasons = %v, want %v", inv.Index, inv.Reasons, wantInvalid[inv.Index])
		}
	}

	if v, _ := batch.Invalid[0].Record.Get("published"); v.String() != "2025-04-03" {
		t.Errorf("ambiguous date = %q, want day-first 2025-04-03", v.String())
	}

	if v, _ := batch.Invalid[1].Record.Get("published"); !v.IsNull() {
		t.Errorf("unparseable date = %v, want null", v)
	}

	stats := batch.Stats
	if stats.MissingRequired != 2 || stats.InvalidURL != 2 || stats.ContentTooShort != 2 || stats.TotalReasons != 6 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestPipeline_CleaningIsIdempotent(t *testing.T) {
	cfg, records := loadFixtures(t)

	cleaner, err := normalizer.NewCleanerFromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewCleanerFromConfig failed: %v", err)
	}

	once, err := cleaner.CleanBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("CleanBatch failed: %v", err)
	}

	twice, err := cleaner.CleanBatch(context.Background(), once)
	if err != nil {
		t.Fatalf("CleanBatch failed: %v", err)
	}

	for i := range once {
		a, _ := once[i].MarshalJSON()
		b, _ := twice[i].MarshalJSON()

		if !bytes.Equal(a, b) {
			t.Errorf("record %d changed on second pass:\n%s\n%s", i, a, b)
		}
	}
}

func TestPipeline_ManifestRoundTrip(t *testing.T) {
	cfg, records := loadFixtures(t)

	result, err := newProcessor(t, cfg).Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var out bytes.Buffer
	if err := models.EncodeRecords(&out, result.Validation.Valid, cfg.Output.Format, cfg.Output.PrettyPrint); err != nil {
		t.Fatalf("EncodeRecords failed: %v", err)
	}

	stats := result.Validation.Stats

	m := metadata.New("test")
	m.SetCounts(stats.TotalRecords, stats.ValidRecords, stats.InvalidRecords)
	m.Sign(out.Bytes())

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := metadata.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := loaded.Verify(out.Bytes()); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	decoded, err := models.DecodeRecords(out.Bytes())
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}

	if err := loaded.VerifyCount(len(decoded)); err != nil {
		t.Errorf("VerifyCount failed: %v", err)
	}
}
