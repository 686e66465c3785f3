package gabac

import (
	"encoding/binary"
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// EncodeDescriptor codes the subsequences of a regular descriptor into one
// block payload. Subsequence i uses cfg.Subsequences[i]; missing trailing
// subsequences are coded as empty. Each subsequence is written as a
// 32-bit symbol count, a 32-bit payload size (omitted for the last) and
// its Encode payload.
func EncodeDescriptor(subseqs [][]uint64, cfg *paramcabac.Regular) ([]byte, error) {
	if len(subseqs) > len(cfg.Subsequences) {
		return nil, fmt.Errorf("%w: %d subsequences, %d configured",
			paramcabac.ErrInvalidConfig, len(subseqs), len(cfg.Subsequences))
	}
	var out []byte
	for i, sc := range cfg.Subsequences {
		var symbols []uint64
		if i < len(subseqs) {
			symbols = subseqs[i]
		}
		if uint64(len(symbols)) > 1<<32-1 {
			return nil, fmt.Errorf("%w: subsequence %d holds %d symbols", ErrValueOutOfRange, i, len(symbols))
		}
		payload, err := Encode(symbols, sc)
		if err != nil {
			return nil, fmt.Errorf("subsequence %d: %w", i, err)
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(symbols)))
		if i < len(cfg.Subsequences)-1 {
			out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
		}
		out = append(out, payload...)
	}
	return out, nil
}

// DecodeDescriptor reverses EncodeDescriptor and returns one slice per
// configured subsequence.
func DecodeDescriptor(data []byte, cfg *paramcabac.Regular) ([][]uint64, error) {
	out := make([][]uint64, len(cfg.Subsequences))
	for i, sc := range cfg.Subsequences {
		last := i == len(cfg.Subsequences)-1
		need := 8
		if last {
			need = 4
		}
		if len(data) < need {
			return nil, fmt.Errorf("%w: subsequence %d header truncated", ErrMalformed, i)
		}
		n := binary.BigEndian.Uint32(data)
		payload := data[need:]
		if !last {
			size := binary.BigEndian.Uint32(data[4:])
			if uint64(size) > uint64(len(payload)) {
				return nil, fmt.Errorf("%w: subsequence %d size %d", ErrMalformed, i, size)
			}
			payload = payload[:size]
		}
		data = data[need+len(payload):]

		symbols, err := Decode(payload, sc, int(n))
		if err != nil {
			return nil, fmt.Errorf("subsequence %d: %w", i, err)
		}
		out[i] = symbols
	}
	return out, nil
}
