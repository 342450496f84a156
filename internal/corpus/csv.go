package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var csvColumns = []string{"doc_id", "page_number", "text"}

// CSVSource reads the corpus from a CSV file with a header row containing at
// least doc_id, page_number and text. Extra columns are ignored.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Load(ctx context.Context) ([]Entry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus csv %s: %w", s.Path, err)
	}
	defer f.Close()
	entries, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading corpus csv %s: %w", s.Path, err)
	}
	return entries, nil
}

// ReadCSV parses corpus rows from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	idx := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		pos, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		idx[i] = pos
	}

	var entries []Entry
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= maxIndex(idx) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, maxIndex(idx)+1, len(record))
		}
		page, err := parsePage(record[idx[1]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, Entry{
			DocID:      record[idx[0]],
			PageNumber: page,
			Text:       record[idx[2]],
		})
	}
	return entries, nil
}

// WriteCSV writes entries with the canonical header.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.DocID, strconv.Itoa(e.PageNumber), e.Text}); err != nil {
			return fmt.Errorf("writing %s: %w", e.Key(), err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// parsePage accepts integer page numbers, including the "3.0" form pandas
// emits for float columns.
func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid page_number %q", raw)
	}
	return int(f), nil
}

func maxIndex(idx []int) int {
	m := 0
	for _, v := range idx {
		if v > m {
			m = v
		}
	}
	return m
}
