package intents

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrMalformedCSV = errors.New("malformed result csv")

// WriteCSV encodes r as UTF-8 CSV: a header naming the key and value columns, then
// one row per point with the grouping key first.
func WriteCSV(w io.Writer, r *Result) error {
	if r == nil {
		return errors.New("nil result")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{r.KeyLabel, r.ValueLabel}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range r.Points {
		if err := cw.Write([]string{p.Key, strconv.FormatFloat(p.Value, 'f', -1, 64)}); err != nil {
			return fmt.Errorf("failed to write csv row %q: %w", p.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output of WriteCSV back into a Result.
func ReadCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	res := &Result{KeyLabel: header[0], ValueLabel: header[1], Points: []Point{}}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid value %q", ErrMalformedCSV, line, row[1])
		}
		res.Points = append(res.Points, Point{Key: row[0], Value: v})
	}
	return res, nil
}
