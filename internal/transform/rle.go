package transform

import "fmt"

// EncodeRLE splits symbols into a run-length stream and a literal stream.
//
// Each run of identical values contributes one literal. Its length L is
// stored as L-1, written as a sequence of guard values while the
// remainder is at least guard, followed by the remainder, which is always
// below guard. With guard 4 a run of 10 is stored as 4, 4, 1.
func EncodeRLE(symbols []uint64, guard uint16) (lengths, literals []uint64, err error) {
	if guard == 0 {
		return nil, nil, fmt.Errorf("%w: RLE guard must be non-zero", ErrInvalidParameter)
	}
	g := uint64(guard)
	for i := 0; i < len(symbols); {
		j := i + 1
		for j < len(symbols) && symbols[j] == symbols[i] {
			j++
		}
		rem := uint64(j - i - 1)
		for rem >= g {
			lengths = append(lengths, g)
			rem -= g
		}
		lengths = append(lengths, rem)
		literals = append(literals, symbols[i])
		i = j
	}
	return lengths, literals, nil
}

// DecodeRLE reverses EncodeRLE. Runs are checked against limit before
// they are expanded, so a short length stream cannot produce more than
// limit symbols.
func DecodeRLE(lengths, literals []uint64, guard uint16, limit int) ([]uint64, error) {
	if guard == 0 {
		return nil, fmt.Errorf("%w: RLE guard must be non-zero", ErrInvalidParameter)
	}
	g := uint64(guard)
	var out []uint64
	pos := 0
	for n, lit := range literals {
		var run uint64
		for {
			if pos >= len(lengths) {
				return nil, fmt.Errorf("%w: RLE length stream exhausted at run %d", ErrMalformed, n)
			}
			v := lengths[pos]
			pos++
			if v > g {
				return nil, fmt.Errorf("%w: RLE length %d exceeds guard %d", ErrMalformed, v, g)
			}
			run += v
			if uint64(len(out))+run >= uint64(limit) {
				return nil, fmt.Errorf("%w: RLE run %d exceeds limit %d", ErrLimit, n, limit)
			}
			if v != g {
				break
			}
		}
		for k := uint64(0); k <= run; k++ {
			out = append(out, lit)
		}
	}
	if pos != len(lengths) {
		return nil, fmt.Errorf("%w: %d unused RLE lengths", ErrMalformed, len(lengths)-pos)
	}
	return out, nil
}
