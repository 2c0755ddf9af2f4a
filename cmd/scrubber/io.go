package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scrubber/internal/config"
	"scrubber/internal/models"
	"scrubber/internal/validator"
)

// stdio is the path that means stdin or stdout.
const stdio = "-"

func readRecords(path string, stdin io.Reader) ([]*models.Record, error) {
	var (
		data []byte
		err  error
	)

	if path == stdio {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	records, err := models.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return records, nil
}

func encodeOutput(records []*models.Record, out config.OutputConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := models.EncodeRecords(&buf, records, out.Format, out.PrettyPrint); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == stdio || path == "" {
		_, err := stdout.Write(data)

		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// encodeRejects writes one {"index","record","reasons"} object per line.
func encodeRejects(rejects []validator.InvalidRecord) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)

	for _, r := range rejects {
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", r.Index, err)
		}
	}

	return buf.Bytes(), nil
}
