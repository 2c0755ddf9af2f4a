package normalizer

import (
	"context"
	"testing"

	"scrubber/internal/models"
)

func TestNewProcessor(t *testing.T) {
	p := NewProcessor(nil, nil, nil)
	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}
}

func TestProcessor_Process(t *testing.T) {
	p := NewProcessor(nil, nil, nil)

	records := []*models.Record{
		models.NewRecord(
			models.F("title", " <h1>Launch</h1> "),
			models.F("content", "<p>The product&nbsp;shipped.</p>"),
			models.F("url", " https://example.com/launch "),
		),
		models.NewRecord(
			models.F("title", "<b></b>"),
			models.F("url", "ftp://example.com"),
		),
	}

	result, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	if len(result.Cleaned) != 2 {
		t.Fatalf("Cleaned = %d records, want 2", len(result.Cleaned))
	}

	if got := result.Validation.Stats.ValidRecords; got != 1 {
		t.Errorf("ValidRecords = %d, want 1", got)
	}

	valid := result.Validation.Valid[0]
	if v, _ := valid.Get("content"); v.String() != "The product shipped." {
		t.Errorf("content = %q, want cleaned text", v.String())
	}

	if v, _ := valid.Get("url"); v.String() != "https://example.com/launch" {
		t.Errorf("url = %q, want trimmed", v.String())
	}

	invalid := result.Validation.Invalid[0]
	if invalid.Index != 1 {
		t.Errorf("Invalid index = %d, want 1", invalid.Index)
	}

	want := []string{
		"missing required field: title",
		"missing required field: content",
		"url: invalid scheme (expected http or https)",
	}

	if len(invalid.Reasons) != len(want) {
		t.Fatalf("Reasons = %v, want %v", invalid.Reasons, want)
	}

	for i := range want {
		if invalid.Reasons[i] != want[i] {
			t.Errorf("Reasons[%d] = %q, want %q", i, invalid.Reasons[i], want[i])
		}
	}
}

func TestProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcessor(nil, nil, nil).Process(ctx, []*models.Record{models.NewRecord()})
	if err == nil {
		t.Error("Process expected error for cancelled context")
	}
}
