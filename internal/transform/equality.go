package transform

import "fmt"

// EncodeEquality splits symbols into a flag stream and a raw value stream.
// A flag of 1 means the symbol repeats its predecessor; the first flag is
// always 0. Raw values are kept only where the flag is 0.
func EncodeEquality(symbols []uint64) (flags, raw []uint64) {
	flags = make([]uint64, len(symbols))
	raw = make([]uint64, 0, len(symbols))
	for i, v := range symbols {
		if i > 0 && v == symbols[i-1] {
			flags[i] = 1
			continue
		}
		raw = append(raw, v)
	}
	return flags, raw
}

// DecodeEquality reverses EncodeEquality.
func DecodeEquality(flags, raw []uint64) ([]uint64, error) {
	out := make([]uint64, len(flags))
	next := 0
	for i, f := range flags {
		switch {
		case f == 0:
			if next >= len(raw) {
				return nil, fmt.Errorf("%w: equality raw stream exhausted at symbol %d", ErrMalformed, i)
			}
			out[i] = raw[next]
			next++
		case f == 1 && i > 0:
			out[i] = out[i-1]
		default:
			return nil, fmt.Errorf("%w: equality flag %d at symbol %d", ErrMalformed, f, i)
		}
	}
	if next != len(raw) {
		return nil, fmt.Errorf("%w: %d unused equality raw values", ErrMalformed, len(raw)-next)
	}
	return out, nil
}
