package gabac

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// methodCABAC is the token-type coding method carried in method_ID.
const methodCABAC = 3

// Tokens holds the token-type subsequences of one descriptor. Sequences
// is indexed by position<<4 | type; a non-empty type at some position
// requires a non-empty type 0 at that position and at every position
// before it.
type Tokens struct {
	NumOutputSymbols uint32
	Sequences        [][]uint64
}

// Sequence returns the subsequence for a token position and type, or nil.
func (t *Tokens) Sequence(pos int, typeID uint8) []uint64 {
	i := pos<<4 | int(typeID&0xF)
	if i >= len(t.Sequences) {
		return nil
	}
	return t.Sequences[i]
}

func (t *Tokens) validate() error {
	lastPos := -1
	for i, s := range t.Sequences {
		if len(s) > 0 {
			lastPos = i >> 4
		}
	}
	for pos := 0; pos <= lastPos; pos++ {
		if len(t.Sequence(pos, 0)) == 0 {
			return fmt.Errorf("%w: token position %d has no type 0 subsequence", ErrMalformed, pos)
		}
	}
	return nil
}

// EncodeTokentype codes a token-type descriptor. Each non-empty
// subsequence is written as type_ID u4, method_ID u4, num_symbols U7, a
// 32-bit payload size (omitted for the last) and its CABAC bytes. Type 0
// uses the first configuration of cfg and every other type the second.
func EncodeTokentype(t *Tokens, cfg *paramcabac.Tokentype) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	var present []int
	for i, s := range t.Sequences {
		if len(s) > 0 {
			present = append(present, i)
		}
	}
	if len(present) == 0 && t.NumOutputSymbols == 0 {
		return nil, nil
	}
	if len(present) > 1<<16-1 {
		return nil, fmt.Errorf("%w: %d token-type subsequences", ErrValueOutOfRange, len(present))
	}

	var buf bytes.Buffer
	w := bio.NewWriter(&buf)
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(t.NumOutputSymbols), 32)
	f.Bits(uint64(len(present)), 16)
	for k, i := range present {
		typeID := uint8(i & 0xF)
		sub := cfg.Subsequence(typeID)
		coded, err := EncodeTransformed(t.Sequences[i], &sub.Streams[0])
		if err != nil {
			return nil, fmt.Errorf("token subsequence %d: %w", i, err)
		}
		f.Bits(uint64(typeID), 4)
		f.Bits(methodCABAC, 4)
		f.U7(uint64(len(t.Sequences[i])))
		if k < len(present)-1 {
			f.Bits(uint64(len(coded)), 32)
		}
		f.Bytes(coded)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTokentype reverses EncodeTokentype.
func DecodeTokentype(data []byte, cfg *paramcabac.Tokentype) (*Tokens, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tokens{}
	if len(data) == 0 {
		return t, nil
	}
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: token-type header truncated", ErrMalformed)
	}
	t.NumOutputSymbols = binary.BigEndian.Uint32(data)
	count := int(binary.BigEndian.Uint16(data[4:]))
	data = data[6:]

	pos := -1
	for k := 0; k < count; k++ {
		r := bio.NewReader(bytes.NewReader(data))
		f := bio.NewFieldReader(r)
		typeID := f.U8(4)
		method := f.U8(4)
		n := f.U7()
		var size uint64
		last := k == count-1
		if !last {
			size = f.Bits(32)
		}
		if err := f.Err(); err != nil {
			return nil, fmt.Errorf("%w: token subsequence %d header: %v", ErrMalformed, k, err)
		}
		if method != methodCABAC {
			return nil, fmt.Errorf("%w: token-type method %d", paramcabac.ErrUnsupported, method)
		}
		data = data[r.BitsRead()/8:]
		if last {
			size = uint64(len(data))
		} else if size > uint64(len(data)) {
			return nil, fmt.Errorf("%w: token subsequence %d size %d", ErrMalformed, k, size)
		}
		if n > uint64(len(data)+1)*maxBinsPerByte {
			return nil, fmt.Errorf("%w: token subsequence %d claims %d symbols", ErrMalformed, k, n)
		}

		if typeID == 0 {
			pos++
		}
		if pos < 0 {
			return nil, fmt.Errorf("%w: token subsequence %d precedes any type 0", ErrMalformed, k)
		}
		sub := cfg.Subsequence(typeID)
		symbols, err := DecodeTransformed(data[:size], &sub.Streams[0], int(n))
		if err != nil {
			return nil, fmt.Errorf("token subsequence %d: %w", k, err)
		}
		data = data[size:]

		idx := pos<<4 | int(typeID)
		if idx < len(t.Sequences) {
			return nil, fmt.Errorf("%w: token subsequence %d out of order", ErrMalformed, k)
		}
		for len(t.Sequences) < idx {
			t.Sequences = append(t.Sequences, nil)
		}
		t.Sequences = append(t.Sequences, symbols)
	}
	return t, nil
}
