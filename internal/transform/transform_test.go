package transform

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func equalSymbols(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestID_NumStreams(t *testing.T) {
	tests := []struct {
		id      ID
		want    int
		wantErr error
	}{
		{None, 1, nil},
		{Equality, 2, nil},
		{Match, 3, nil},
		{RLE, 2, nil},
		{Merge, 0, ErrUnsupported},
		{ID(9), 0, ErrUnknown},
	}
	for _, tt := range tests {
		got, err := tt.id.NumStreams()
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%v.NumStreams() error = %v, want %v", tt.id, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("%v.NumStreams() = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestID_String(t *testing.T) {
	if got := RLE.String(); got != "RLE_CODING" {
		t.Errorf("RLE.String() = %q", got)
	}
	if got := ID(42).String(); got != "TRANSFORM(42)" {
		t.Errorf("ID(42).String() = %q", got)
	}
}

func TestEquality(t *testing.T) {
	symbols := []uint64{9, 9, 9, 4, 4, 9}
	flags, raw := EncodeEquality(symbols)

	if want := []uint64{0, 1, 1, 0, 1, 0}; !equalSymbols(flags, want) {
		t.Errorf("flags = %v, want %v", flags, want)
	}
	if want := []uint64{9, 4, 9}; !equalSymbols(raw, want) {
		t.Errorf("raw = %v, want %v", raw, want)
	}

	got, err := DecodeEquality(flags, raw)
	if err != nil {
		t.Fatalf("DecodeEquality error: %v", err)
	}
	if !equalSymbols(got, symbols) {
		t.Errorf("decoded = %v, want %v", got, symbols)
	}
}

func TestEquality_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		flags []uint64
		raw   []uint64
	}{
		{"leading equal flag", []uint64{1, 0}, []uint64{3}},
		{"raw exhausted", []uint64{0, 0}, []uint64{3}},
		{"unused raw", []uint64{0}, []uint64{3, 4}},
		{"bad flag", []uint64{0, 2}, []uint64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEquality(tt.flags, tt.raw); !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestRLE(t *testing.T) {
	symbols := []uint64{0, 1, 2, 2, 2, 3}
	lengths, literals, err := EncodeRLE(symbols, 4)
	if err != nil {
		t.Fatalf("EncodeRLE error: %v", err)
	}
	if want := []uint64{0, 0, 2, 0}; !equalSymbols(lengths, want) {
		t.Errorf("lengths = %v, want %v", lengths, want)
	}
	if want := []uint64{0, 1, 2, 3}; !equalSymbols(literals, want) {
		t.Errorf("literals = %v, want %v", literals, want)
	}

	got, err := DecodeRLE(lengths, literals, 4, len(symbols))
	if err != nil {
		t.Fatalf("DecodeRLE error: %v", err)
	}
	if !equalSymbols(got, symbols) {
		t.Errorf("decoded = %v, want %v", got, symbols)
	}
}

func TestRLE_GuardSplitting(t *testing.T) {
	tests := []struct {
		name    string
		run     int
		guard   uint16
		lengths []uint64
	}{
		{"below guard", 3, 4, []uint64{2}},
		{"one less than guard plus one", 4, 4, []uint64{3}},
		{"exactly guard", 5, 4, []uint64{4, 0}},
		{"ten with guard four", 10, 4, []uint64{4, 4, 1}},
		{"guard one", 3, 1, []uint64{1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols := make([]uint64, tt.run)
			for i := range symbols {
				symbols[i] = 7
			}
			lengths, literals, err := EncodeRLE(symbols, tt.guard)
			if err != nil {
				t.Fatalf("EncodeRLE error: %v", err)
			}
			if !equalSymbols(lengths, tt.lengths) {
				t.Errorf("lengths = %v, want %v", lengths, tt.lengths)
			}
			if !equalSymbols(literals, []uint64{7}) {
				t.Errorf("literals = %v, want [7]", literals)
			}
			got, err := DecodeRLE(lengths, literals, tt.guard, len(symbols))
			if err != nil || !equalSymbols(got, symbols) {
				t.Errorf("DecodeRLE = %v, %v", got, err)
			}
		})
	}
}

func TestRLE_ZeroGuard(t *testing.T) {
	if _, _, err := EncodeRLE([]uint64{1}, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("EncodeRLE guard 0 error = %v, want ErrInvalidParameter", err)
	}
	if _, err := DecodeRLE(nil, nil, 0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("DecodeRLE guard 0 error = %v, want ErrInvalidParameter", err)
	}
}

func TestRLE_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		lengths  []uint64
		literals []uint64
	}{
		{"lengths exhausted", []uint64{0}, []uint64{1, 2}},
		{"dangling guard", []uint64{4}, []uint64{1}},
		{"above guard", []uint64{5}, []uint64{1}},
		{"unused lengths", []uint64{0, 0}, []uint64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRLE(tt.lengths, tt.literals, 4, 100); !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestRLE_Limit(t *testing.T) {
	// 255 guard values plus a remainder of 254 expand to 65280 copies.
	lengths := make([]uint64, 256)
	for i := range lengths[:255] {
		lengths[i] = 255
	}
	lengths[255] = 254
	literals := []uint64{0}

	got, err := DecodeRLE(lengths, literals, 255, 65280)
	if err != nil || len(got) != 65280 {
		t.Fatalf("DecodeRLE at limit = %d symbols, %v", len(got), err)
	}

	tests := []struct {
		name     string
		lengths  []uint64
		literals []uint64
		limit    int
	}{
		{"long run", lengths, literals, 1},
		{"one below total", lengths, literals, 65279},
		{"second run", []uint64{0, 0}, []uint64{1, 2}, 1},
		{"zero limit", []uint64{0}, []uint64{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRLE(tt.lengths, tt.literals, 255, tt.limit)
			if !errors.Is(err, ErrLimit) || !errors.Is(err, ErrMalformed) {
				t.Errorf("DecodeRLE error = %v, want ErrLimit", err)
			}
			if got != nil {
				t.Errorf("DecodeRLE returned %d symbols", len(got))
			}
		})
	}
}

func TestMatch(t *testing.T) {
	symbols := []uint64{5, 6, 5, 7, 6, 6}
	flags, distances, literals := EncodeMatch(symbols, 4)

	if want := []uint64{0, 0, 1, 0, 1, 1}; !equalSymbols(flags, want) {
		t.Errorf("flags = %v, want %v", flags, want)
	}
	if want := []uint64{2, 3, 1}; !equalSymbols(distances, want) {
		t.Errorf("distances = %v, want %v", distances, want)
	}
	if want := []uint64{5, 6, 7}; !equalSymbols(literals, want) {
		t.Errorf("literals = %v, want %v", literals, want)
	}

	got, err := DecodeMatch(flags, distances, literals, 4)
	if err != nil {
		t.Fatalf("DecodeMatch error: %v", err)
	}
	if !equalSymbols(got, symbols) {
		t.Errorf("decoded = %v, want %v", got, symbols)
	}
}

func TestMatch_BufferLimits(t *testing.T) {
	symbols := []uint64{1, 2, 3, 1}

	flags, distances, literals := EncodeMatch(symbols, 2)
	if !equalSymbols(flags, []uint64{0, 0, 0, 0}) || len(distances) != 0 || len(literals) != 4 {
		t.Errorf("buffer 2: flags=%v distances=%v literals=%v", flags, distances, literals)
	}

	flags, _, literals = EncodeMatch(symbols, 0)
	if !equalSymbols(flags, []uint64{0, 0, 0, 0}) || !equalSymbols(literals, symbols) {
		t.Errorf("buffer 0: flags=%v literals=%v", flags, literals)
	}

	if _, err := DecodeMatch([]uint64{0, 1}, []uint64{3}, []uint64{1}, 4); !errors.Is(err, ErrMalformed) {
		t.Errorf("distance before start error = %v, want ErrMalformed", err)
	}
	if _, err := DecodeMatch([]uint64{0, 0, 1}, []uint64{2}, []uint64{1, 2}, 1); !errors.Is(err, ErrMalformed) {
		t.Errorf("distance beyond buffer error = %v, want ErrMalformed", err)
	}
}

func TestForwardInverse_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inputs := [][]uint64{
		nil,
		{42},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{0, 1, 2, 3, 4, 5},
	}
	random := make([]uint64, 2000)
	for i := range random {
		random[i] = uint64(rng.Intn(6))
		if rng.Intn(3) == 0 && i > 0 {
			random[i] = random[i-1]
		}
	}
	inputs = append(inputs, random)

	params := []Params{
		{ID: None},
		{ID: Equality},
		{ID: RLE, Param: 1},
		{ID: RLE, Param: 3},
		{ID: RLE, Param: 255},
		{ID: Match, Param: 0},
		{ID: Match, Param: 1},
		{ID: Match, Param: 16},
	}

	for _, p := range params {
		for n, in := range inputs {
			streams, err := Forward(p, in)
			if err != nil {
				t.Fatalf("%v/%d: Forward error: %v", p.ID, n, err)
			}
			want, _ := p.ID.NumStreams()
			if len(streams) != want {
				t.Errorf("%v/%d: %d streams, want %d", p.ID, n, len(streams), want)
			}
			got, err := Inverse(p, streams, len(in))
			if err != nil {
				t.Fatalf("%v/%d: Inverse error: %v", p.ID, n, err)
			}
			if !equalSymbols(got, in) {
				t.Errorf("%v(%d)/%d: round trip mismatch", p.ID, p.Param, n)
			}
		}
	}
}

func TestForward_Merge(t *testing.T) {
	if _, err := Forward(Params{ID: Merge}, []uint64{1}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Forward(Merge) error = %v, want ErrUnsupported", err)
	}
	if _, err := Inverse(Params{ID: Merge}, nil, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Inverse(Merge) error = %v, want ErrUnsupported", err)
	}
}

func TestInverse_Limit(t *testing.T) {
	in := []uint64{3, 3, 3, 4, 4, 5}
	for _, p := range []Params{{ID: None}, {ID: Equality}, {ID: RLE, Param: 2}, {ID: Match, Param: 4}} {
		streams, err := Forward(p, in)
		if err != nil {
			t.Fatalf("%v: Forward error: %v", p.ID, err)
		}
		if _, err := Inverse(p, streams, len(in)-1); !errors.Is(err, ErrLimit) {
			t.Errorf("%v: Inverse below length error = %v, want ErrLimit", p.ID, err)
		}
		if got, err := Inverse(p, streams, len(in)); err != nil || !equalSymbols(got, in) {
			t.Errorf("%v: Inverse at length = %v, %v", p.ID, got, err)
		}
	}
}

func TestID_ParamBits(t *testing.T) {
	tests := []struct {
		id   ID
		want uint
	}{
		{None, 0},
		{Equality, 0},
		{Match, 16},
		{RLE, 8},
		{Merge, 0},
	}
	for _, tt := range tests {
		if got := tt.id.ParamBits(); got != tt.want {
			t.Errorf("%v.ParamBits() = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestInverse_WrongStreamCount(t *testing.T) {
	_, err := Inverse(Params{ID: Equality}, [][]uint64{{0}}, 1)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestForward_DoesNotAlias(t *testing.T) {
	in := []uint64{1, 2, 3}
	streams, _ := Forward(Params{ID: None}, in)
	streams[0][0] = 99
	if !reflect.DeepEqual(in, []uint64{1, 2, 3}) {
		t.Errorf("Forward aliased its input: %v", in)
	}
}

func BenchmarkEncodeMatch(b *testing.B) {
	symbols := make([]uint64, 8192)
	for i := range symbols {
		symbols[i] = uint64(i % 97)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeMatch(symbols, 256)
	}
}
