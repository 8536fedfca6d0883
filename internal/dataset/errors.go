package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptySheet is returned when the file has no header row.
	ErrEmptySheet = errors.New("dataset has no header row")
	// ErrInvalidDate is returned when an order date cannot be parsed.
	ErrInvalidDate = errors.New("invalid order date")
	// ErrInvalidNumber is returned when a numeric cell is not a number.
	ErrInvalidNumber = errors.New("invalid number")
)

// LoadError reports why a dataset could not be loaded. Row is the 1-based file row
// (header is row 1) and is zero when the failure is not tied to a row.
type LoadError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q: %v", e.Path, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
