// Package transform implements the subsequence transforms applied to a
// descriptor subsequence before entropy coding.
//
// A transform splits one logical symbol sequence into a fixed number of
// physical streams. The number of streams depends only on the transform
// ID, never on the data, so encoder and decoder always agree on the
// stream layout.
package transform

import (
	"errors"
	"fmt"
)

// Transform IDs as carried in transform_ID_subseq.
const (
	None     ID = 0 // NO_TRANSFORM
	Equality ID = 1 // EQUALITY_CODING
	Match    ID = 2 // MATCH_CODING
	RLE      ID = 3 // RLE_CODING
	Merge    ID = 4 // MERGE_CODING
)

var (
	// ErrUnsupported is returned for merge coding, which is recognised but
	// not implemented.
	ErrUnsupported = errors.New("transform: merge coding is not supported")

	// ErrUnknown is returned for transform IDs outside the defined set.
	ErrUnknown = errors.New("transform: unknown transform ID")

	// ErrInvalidParameter is returned for a parameter the transform
	// cannot work with, such as an RLE guard of zero.
	ErrInvalidParameter = errors.New("transform: invalid parameter")

	// ErrMalformed is returned when the physical streams handed to an
	// inverse transform are inconsistent with each other.
	ErrMalformed = errors.New("transform: malformed streams")

	// ErrLimit is returned by Inverse when the rebuilt sequence would hold
	// more symbols than allowed. It wraps ErrMalformed.
	ErrLimit = fmt.Errorf("%w: symbol limit exceeded", ErrMalformed)
)

// ID identifies a subsequence transform.
type ID uint8

// String returns the transform name.
func (id ID) String() string {
	switch id {
	case None:
		return "NO_TRANSFORM"
	case Equality:
		return "EQUALITY_CODING"
	case Match:
		return "MATCH_CODING"
	case RLE:
		return "RLE_CODING"
	case Merge:
		return "MERGE_CODING"
	default:
		return fmt.Sprintf("TRANSFORM(%d)", uint8(id))
	}
}

// NumStreams returns the number of physical streams the transform
// produces.
func (id ID) NumStreams() (int, error) {
	switch id {
	case None:
		return 1, nil
	case Equality, RLE:
		return 2, nil
	case Match:
		return 3, nil
	case Merge:
		return 0, ErrUnsupported
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknown, uint8(id))
	}
}

// ParamBits returns the width of the parameter the transform carries in
// the configuration: 16 bits of buffer size for match coding, 8 bits of
// guard for RLE and 0 otherwise.
func (id ID) ParamBits() uint {
	switch id {
	case Match:
		return 16
	case RLE:
		return 8
	default:
		return 0
	}
}

// Params selects a transform and its parameter.
type Params struct {
	ID ID

	// Param is the match buffer size for Match and the guard for RLE.
	Param uint16
}

// Forward splits symbols into the transform's physical streams.
func Forward(p Params, symbols []uint64) ([][]uint64, error) {
	switch p.ID {
	case None:
		return [][]uint64{append([]uint64(nil), symbols...)}, nil
	case Equality:
		flags, raw := EncodeEquality(symbols)
		return [][]uint64{flags, raw}, nil
	case RLE:
		lengths, literals, err := EncodeRLE(symbols, p.Param)
		if err != nil {
			return nil, err
		}
		return [][]uint64{lengths, literals}, nil
	case Match:
		flags, distances, literals := EncodeMatch(symbols, p.Param)
		return [][]uint64{flags, distances, literals}, nil
	}
	_, err := p.ID.NumStreams()
	return nil, err
}

// Inverse rebuilds the logical sequence from the physical streams. It
// fails with ErrLimit as soon as the sequence would hold more than limit
// symbols.
func Inverse(p Params, streams [][]uint64, limit int) ([]uint64, error) {
	n, err := p.ID.NumStreams()
	if err != nil {
		return nil, err
	}
	if len(streams) != n {
		return nil, fmt.Errorf("%w: %s needs %d streams, got %d", ErrMalformed, p.ID, n, len(streams))
	}
	if p.ID == RLE {
		return DecodeRLE(streams[0], streams[1], p.Param, limit)
	}
	// Every other transform emits one symbol per entry of its first stream.
	if len(streams[0]) > limit {
		return nil, fmt.Errorf("%w: %d symbols, limit %d", ErrLimit, len(streams[0]), limit)
	}
	switch p.ID {
	case Equality:
		return DecodeEquality(streams[0], streams[1])
	case Match:
		return DecodeMatch(streams[0], streams[1], streams[2], p.Param)
	default:
		return append([]uint64(nil), streams[0]...), nil
	}
}
