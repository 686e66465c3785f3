package transform

import "fmt"

// EncodeMatch splits symbols into flag, distance and literal streams.
//
// For every symbol the last bufferSize symbols are searched for an equal
// value. The nearest hit is recorded as flag 1 plus its distance (1 is
// the immediately preceding symbol); otherwise flag 0 plus the literal.
// A bufferSize of 0 disables matching.
func EncodeMatch(symbols []uint64, bufferSize uint16) (flags, distances, literals []uint64) {
	flags = make([]uint64, len(symbols))
	for i, v := range symbols {
		lo := i - int(bufferSize)
		if lo < 0 {
			lo = 0
		}
		found := false
		for j := i - 1; j >= lo; j-- {
			if symbols[j] == v {
				flags[i] = 1
				distances = append(distances, uint64(i-j))
				found = true
				break
			}
		}
		if !found {
			literals = append(literals, v)
		}
	}
	return flags, distances, literals
}

// DecodeMatch reverses EncodeMatch.
func DecodeMatch(flags, distances, literals []uint64, bufferSize uint16) ([]uint64, error) {
	out := make([]uint64, len(flags))
	di, li := 0, 0
	for i, f := range flags {
		switch f {
		case 0:
			if li >= len(literals) {
				return nil, fmt.Errorf("%w: match literal stream exhausted at symbol %d", ErrMalformed, i)
			}
			out[i] = literals[li]
			li++
		case 1:
			if di >= len(distances) {
				return nil, fmt.Errorf("%w: match distance stream exhausted at symbol %d", ErrMalformed, i)
			}
			d := distances[di]
			di++
			if d == 0 || d > uint64(bufferSize) || d > uint64(i) {
				return nil, fmt.Errorf("%w: match distance %d at symbol %d", ErrMalformed, d, i)
			}
			out[i] = out[i-int(d)]
		default:
			return nil, fmt.Errorf("%w: match flag %d at symbol %d", ErrMalformed, f, i)
		}
	}
	if di != len(distances) || li != len(literals) {
		return nil, fmt.Errorf("%w: unused match distances or literals", ErrMalformed)
	}
	return out, nil
}
