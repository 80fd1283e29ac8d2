package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"options-sim-lab/internal/domain"
)

// CSV errors
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadField      = errors.New("malformed field")
)

var requiredColumns = []string{"date", "open", "high", "low", "close"}

// dateLayouts are tried in order.
var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"}

// CSVBarSource reads bars from a CSV file with a header row.
// Required columns: date, open, high, low, close. Optional: volume, vix,
// iv, option_volume, open_interest. Empty optional fields stay unset.
// A symbol column, when present, filters rows; otherwise every row belongs
// to the requested symbol.
type CSVBarSource struct {
	path string
}

// NewCSVBarSource creates a source over path.
func NewCSVBarSource(path string) *CSVBarSource {
	return &CSVBarSource{path: path}
}

// Fetch parses the file.
func (s *CSVBarSource) Fetch(_ context.Context, symbol string) ([]*domain.Bar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBarsCSV(f, symbol)
}

// ParseBarsCSV parses bars from r. Times are UTC.
func ParseBarsCSV(r io.Reader, symbol string) ([]*domain.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var bars []*domain.Bar
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := csvRow{rec: rec, cols: cols, line: line}
		if i, ok := cols["symbol"]; ok && i < len(rec) && !strings.EqualFold(strings.TrimSpace(rec[i]), symbol) {
			continue
		}

		bar := &domain.Bar{Symbol: symbol}
		if bar.Date, err = row.date("date"); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low}, {"close", &bar.Close},
		} {
			if *f.dst, err = row.float(f.name); err != nil {
				return nil, err
			}
		}

		volume, err := row.optional("volume")
		if err != nil {
			return nil, err
		}
		if volume != nil {
			bar.Volume = *volume
		}
		if bar.VIX, err = row.optional("vix"); err != nil {
			return nil, err
		}
		if bar.IV, err = row.optional("iv"); err != nil {
			return nil, err
		}
		if bar.OptionVolume, err = row.optional("option_volume"); err != nil {
			return nil, err
		}
		if bar.OpenInterest, err = row.optional("open_interest"); err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

type csvRow struct {
	rec  []string
	cols map[string]int
	line int
}

func (r csvRow) field(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r csvRow) date(name string) (time.Time, error) {
	v := r.field(name)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: line %d: %s %q", ErrBadField, r.line, name, v)
}

func (r csvRow) float(name string) (float64, error) {
	v := r.field(name)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %s %q", ErrBadField, r.line, name, v)
	}
	return f, nil
}

func (r csvRow) optional(name string) (*float64, error) {
	if r.field(name) == "" {
		return nil, nil
	}
	f, err := r.float(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
