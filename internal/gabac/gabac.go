// Package gabac codes descriptor subsequences with the CABAC engine.
//
// A subsequence goes through three stages on the way out:
//   - the subsequence transform splits it into physical streams
//   - every symbol of a stream is split into subsymbols, each binarized
//     and coded with a context picked from its position and history
//   - the coded streams are framed with their sizes and symbol counts
//
// Decoding runs the same stages in reverse.
package gabac

import "errors"

var (
	// ErrSymbolCountMismatch is returned when the decoded symbol count
	// differs from the count the caller expected.
	ErrSymbolCountMismatch = errors.New("gabac: symbol count mismatch")

	// ErrDesync is returned when the arithmetic decoder runs out of step
	// with the encoder: a missing terminator or an impossible bin string.
	ErrDesync = errors.New("gabac: decoder desynchronised")

	// ErrValueOutOfRange is returned when a symbol cannot be represented
	// with the configured symbol size or binarization.
	ErrValueOutOfRange = errors.New("gabac: value out of range")

	// ErrMalformed is returned for payload framing that is inconsistent
	// with the data it wraps.
	ErrMalformed = errors.New("gabac: malformed payload")
)
