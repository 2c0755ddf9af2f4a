package models

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// ErrUnsupportedInput is returned when input is neither a JSON array of
// objects, a single JSON object, nor JSON Lines.
var ErrUnsupportedInput = errors.New("input must be a JSON array, a JSON object or JSON Lines")

// DecodeRecords reads a batch. A JSON array yields one record per element,
// a single object is a one-element batch, and anything else is read as JSON
// Lines with blank lines skipped.
func DecodeRecords(data []byte) ([]*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []*Record{}, nil
	}

	if gjson.ValidBytes(trimmed) {
		res := gjson.ParseBytes(trimmed)

		switch {
		case res.IsArray():
			return decodeArray(res)
		case res.IsObject():
			return []*Record{recordFromResult(res)}, nil
		default:
			return nil, ErrUnsupportedInput
		}
	}

	return decodeLines(trimmed)
}

func decodeArray(res gjson.Result) ([]*Record, error) {
	var (
		records []*Record
		err     error
	)

	i := 0

	res.ForEach(func(_, elem gjson.Result) bool {
		if !elem.IsObject() {
			err = fmt.Errorf("element %d: %w", i, ErrRecordNotObject)

			return false
		}

		records = append(records, recordFromResult(elem))
		i++

		return true
	})

	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []*Record{}
	}

	return records, nil
}

func decodeLines(data []byte) ([]*Record, error) {
	var records []*Record

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("line %d: %w", lineNum, ErrUnsupportedInput)
		}

		res := gjson.ParseBytes(line)
		if !res.IsObject() {
			return nil, fmt.Errorf("line %d: %w", lineNum, ErrRecordNotObject)
		}

		records = append(records, recordFromResult(res))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}

	return records, nil
}

// EncodeRecords writes records as a JSON array ("json") or JSON Lines
// ("jsonl"). Pretty printing applies to the array form only.
func EncodeRecords(w io.Writer, records []*Record, format string, prettyPrint bool) error {
	switch format {
	case FormatJSONL:
		return encodeLines(w, records)
	case FormatJSON, "":
		return encodeArray(w, records, prettyPrint)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func encodeLines(w io.Writer, records []*Record) error {
	bw := bufio.NewWriter(w)

	for i, r := range records {
		line, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		bw.Write(line)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func encodeArray(w io.Writer, records []*Record, prettyPrint bool) error {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}

		obj, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		buf.Write(obj)
	}

	buf.WriteByte(']')

	out := buf.Bytes()
	if prettyPrint {
		out = pretty.PrettyOptions(out, &pretty.Options{Indent: "  ", Width: 80})
	} else {
		out = append(out, '\n')
	}

	_, err := w.Write(out)

	return err
}
