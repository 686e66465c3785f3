package gabac

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
	"github.com/mrjoshuak/go-mpegg/internal/transform"
)

// Encode transforms and codes a subsequence. The payload holds, for every
// physical stream, a 32-bit byte size (omitted for the last stream), a
// 32-bit symbol count and the CABAC bytes when the count is non-zero. An
// empty subsequence encodes to an empty payload.
func Encode(symbols []uint64, cfg *paramcabac.Subsequence) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	streams, err := transform.Forward(cfg.Transform, symbols)
	if err != nil {
		return nil, err
	}

	var out []byte
	for i, st := range streams {
		if uint64(len(st)) > 1<<32-1 {
			return nil, fmt.Errorf("%w: stream %d holds %d symbols", ErrValueOutOfRange, i, len(st))
		}
		coded, err := EncodeTransformed(st, &cfg.Streams[i])
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
		if i < len(streams)-1 {
			out = binary.BigEndian.AppendUint32(out, uint32(4+len(coded)))
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(st)))
		out = append(out, coded...)
	}
	return out, nil
}

// Decode reverses Encode. The reconstructed subsequence must hold exactly
// expected symbols.
func Decode(data []byte, cfg *paramcabac.Subsequence, expected int) ([]uint64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if expected != 0 {
			return nil, fmt.Errorf("%w: empty payload, expected %d symbols", ErrSymbolCountMismatch, expected)
		}
		return []uint64{}, nil
	}

	streams := make([][]uint64, len(cfg.Streams))
	for i := range streams {
		chunk := data
		if i < len(streams)-1 {
			if len(data) < 4 {
				return nil, fmt.Errorf("%w: stream %d size truncated", ErrMalformed, i)
			}
			size := binary.BigEndian.Uint32(data)
			data = data[4:]
			if uint64(size) > uint64(len(data)) || size < 4 {
				return nil, fmt.Errorf("%w: stream %d size %d", ErrMalformed, i, size)
			}
			chunk, data = data[:size], data[size:]
		}
		if len(chunk) < 4 {
			return nil, fmt.Errorf("%w: stream %d symbol count truncated", ErrMalformed, i)
		}
		n := binary.BigEndian.Uint32(chunk)
		st, err := DecodeTransformed(chunk[4:], &cfg.Streams[i], int(n))
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
		streams[i] = st
	}

	symbols, err := transform.Inverse(cfg.Transform, streams, expected)
	if errors.Is(err, transform.ErrLimit) {
		return nil, fmt.Errorf("%w: more than %d symbols: %w", ErrSymbolCountMismatch, expected, err)
	}
	if err != nil {
		return nil, err
	}
	if len(symbols) != expected {
		return nil, fmt.Errorf("%w: decoded %d symbols, expected %d", ErrSymbolCountMismatch, len(symbols), expected)
	}
	return symbols, nil
}
