package landing

import "errors"

var (
	// ErrMissingInputFile is returned when an input list does not exist.
	ErrMissingInputFile = errors.New("input file not found")

	// ErrEmptyInputFile is returned when the keyword list has no usable lines.
	ErrEmptyInputFile = errors.New("input file has no usable lines")

	// ErrLengthMismatch is returned by strict pairing when the keyword and
	// photo lists differ in length.
	ErrLengthMismatch = errors.New("keyword and photo counts differ")

	// ErrWriteFailure wraps any error writing a page or the sitemap.
	ErrWriteFailure = errors.New("write failed")
)
