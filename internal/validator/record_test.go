package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"scrubber/internal/config"
	"scrubber/internal/models"
)

func validRecord() *models.Record {
	return models.NewRecord(
		models.F("title", "Launch day"),
		models.F("content", "The product shipped on time."),
		models.F("url", "https://example.com/launch"),
	)
}

func TestValidateRecord_Valid(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{})

	out := v.ValidateRecord(validRecord())
	if !out.Valid || len(out.Reasons) != 0 || len(out.Failed) != 0 {
		t.Errorf("ValidateRecord = %+v, want valid", out)
	}
}

func TestValidateRecord_ReasonsAreDeterministic(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{})
	r := models.NewRecord(models.F("url", "not-a-url"))

	want := []string{
		"missing required field: title",
		"missing required field: content",
		"url: invalid scheme (expected http or https)",
	}

	for range 5 {
		out := v.ValidateRecord(r)

		if out.Valid {
			t.Fatal("record should be invalid")
		}

		if !reflect.DeepEqual(out.Reasons, want) {
			t.Fatalf("Reasons = %v, want %v", out.Reasons, want)
		}

		if !reflect.DeepEqual(out.Failed, []Check{CheckRequired, CheckURL}) {
			t.Fatalf("Failed = %v", out.Failed)
		}
	}
}

func TestValidateRecord_BlankFieldsReportedOnce(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{})

	r := models.NewRecord(
		models.F("title", "t"),
		models.F("content", "   "),
		models.F("url", "   "),
	)

	want := []string{
		"required field 'content' is empty or whitespace-only",
		"required field 'url' is empty or whitespace-only",
	}

	if out := v.ValidateRecord(r); !reflect.DeepEqual(out.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", out.Reasons, want)
	}
}

func TestValidateRecord_ContentMinLength(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{ContentMinLength: 50})

	out := v.ValidateRecord(validRecord())

	want := []string{"content: too short (28 chars, minimum 50)"}
	if !reflect.DeepEqual(out.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", out.Reasons, want)
	}

	if !reflect.DeepEqual(out.Failed, []Check{CheckMinLength}) {
		t.Errorf("Failed = %v, want [%s]", out.Failed, CheckMinLength)
	}
}

func TestValidateBatch_CountsShortContent(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{ContentMinLength: 50})

	result, err := v.ValidateBatch(context.Background(), []*models.Record{validRecord(), validRecord()})
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}

	stats := result.Stats
	if stats.ContentTooShort != 2 || stats.MissingRequired != 0 || stats.InvalidURL != 0 {
		t.Errorf("Stats = %+v, want ContentTooShort = 2 only", stats)
	}
}

func TestValidateRecord_Aliases(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{
		FieldAliases: map[string]string{"url": "link", "content": "body"},
	})

	ok := models.NewRecord(
		models.F("title", "t"),
		models.F("body", "some body"),
		models.F("link", "https://example.com"),
	)

	if out := v.ValidateRecord(ok); !out.Valid {
		t.Errorf("aliased record invalid: %v", out.Reasons)
	}

	bad := models.NewRecord(
		models.F("title", "t"),
		models.F("body", "some body"),
		models.F("link", "ftp://example.com"),
	)

	want := []string{"url: invalid scheme (expected http or https)"}
	if out := v.ValidateRecord(bad); !reflect.DeepEqual(out.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", out.Reasons, want)
	}
}

func TestValidateRecord_OddValuesDoNotPanic(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{ContentMinLength: 3})

	records := []*models.Record{
		nil,
		models.NewRecord(),
		models.NewRecord(
			models.F("title", map[string]int{"a": 1}),
			models.F("content", true),
			models.F("url", map[string]int{"a": 1}),
		),
		models.NewRecord(
			models.F("title", "t"),
			models.F("content", 1.5),
			models.F("url", "http://[::1"),
		),
	}

	for i, r := range records {
		if out := v.ValidateRecord(r); out.Valid {
			t.Errorf("record %d unexpectedly valid", i)
		}
	}
}

func TestValidateBatch_Partition(t *testing.T) {
	v := NewRecordValidator(config.ValidationConfig{}, WithWorkers(3))

	var records []*models.Record

	for i := range 30 {
		if i%3 == 0 {
			records = append(records, models.NewRecord(models.F("title", fmt.Sprintf("bad %d", i))))

			continue
		}

		r := validRecord()
		r.Set("id", models.FromAny(i))
		records = append(records, r)
	}

	result, err := v.ValidateBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}

	if len(result.Valid)+len(result.Invalid) != len(records) {
		t.Fatalf("partition lost records: %d + %d != %d", len(result.Valid), len(result.Invalid), len(records))
	}

	if len(result.Invalid) != 10 {
		t.Errorf("Invalid = %d, want 10", len(result.Invalid))
	}

	for i, inv := range result.Invalid {
		if inv.Index != i*3 {
			t.Errorf("Invalid[%d].Index = %d, want %d", i, inv.Index, i*3)
		}

		if inv.Record != records[inv.Index] {
			t.Errorf("Invalid[%d] does not point at its input record", i)
		}

		if len(inv.Reasons) == 0 {
			t.Errorf("Invalid[%d] has no reasons", i)
		}
	}

	prev := -1

	for _, r := range result.Valid {
		id, _ := r.Get("id")

		n, _ := id.Number()
		if int(n) <= prev {
			t.Errorf("valid records out of order: %d after %d", int(n), prev)
		}

		prev = int(n)
	}

	stats := result.Stats
	if stats.TotalRecords != 30 || stats.ValidRecords != 20 || stats.InvalidRecords != 10 {
		t.Errorf("Stats = %+v", stats)
	}

	if stats.MissingRequired != 10 || stats.TotalReasons != 20 {
		t.Errorf("MissingRequired = %d, TotalReasons = %d, want 10 and 20", stats.MissingRequired, stats.TotalReasons)
	}
}

func TestValidateBatch_Empty(t *testing.T) {
	result, err := NewRecordValidator(config.ValidationConfig{}).ValidateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}

	if result.Valid == nil || result.Invalid == nil {
		t.Error("empty batch should yield empty, non-nil partitions")
	}

	if result.Stats.TotalRecords != 0 {
		t.Errorf("TotalRecords = %d, want 0", result.Stats.TotalRecords)
	}
}

func TestValidateBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecordValidator(config.ValidationConfig{}).ValidateBatch(ctx, []*models.Record{validRecord()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ValidateBatch() error = %v, want context.Canceled", err)
	}
}

func TestInvalidRecord_MarshalJSON(t *testing.T) {
	ir := InvalidRecord{
		Index:   4,
		Record:  models.NewRecord(models.F("url", "x"), models.F("a", 1)),
		Reasons: []string{"r1", "r2"},
	}

	data, err := json.Marshal(ir)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"index":4,"record":{"url":"x","a":1},"reasons":["r1","r2"]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
