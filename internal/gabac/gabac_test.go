package gabac

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/mrjoshuak/go-mpegg/internal/entropy"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
	"github.com/mrjoshuak/go-mpegg/internal/transform"
)

func ts(oss, css, order uint8, b paramcabac.Binarization) paramcabac.TransformedSubseq {
	if !b.Bypass {
		b.Context.AdaptiveMode = true
	}
	return paramcabac.TransformedSubseq{
		Support: paramcabac.SupportValues{
			OutputSymbolSize: oss,
			CodingSubsymSize: css,
			CodingOrder:      order,
			ShareSubsymPrv:   css < oss && order > 0,
		},
		Binarization: b,
	}
}

func bin(id paramcabac.BinarizationID, p paramcabac.BinarizationParams) paramcabac.Binarization {
	return paramcabac.Binarization{ID: id, Params: p}
}

func bypass(id paramcabac.BinarizationID, p paramcabac.BinarizationParams) paramcabac.Binarization {
	return paramcabac.Binarization{ID: id, Bypass: true, Params: p}
}

// Symbol generators. i is the symbol index and n the sequence length.
type generator func(r *rand.Rand, i, n int) uint64

func unsigned(bits uint) generator {
	return func(r *rand.Rand, _, _ int) uint64 {
		// Skew towards small values so adaptive contexts have work to do.
		v := uint64(r.Int63()) | uint64(r.Int63())<<63
		return v >> (64 - bits) >> uint(r.Intn(int(bits)))
	}
}

func bounded(max uint64) generator {
	return func(r *rand.Rand, _, _ int) uint64 {
		return uint64(r.Int63n(int64(max) + 1))
	}
}

func signed(bits uint) generator {
	u := unsigned(bits)
	return func(r *rand.Rand, i, n int) uint64 {
		v := u(r, i, n)
		if r.Intn(2) == 0 {
			return uint64(-int64(v))
		}
		return v
	}
}

func increasing(bits uint) generator {
	return func(_ *rand.Rand, i, n int) uint64 {
		return uint64(i) * (uint64(1)<<bits - 1) / uint64(n)
	}
}

// nibbles repeats a non-decreasing nibble across a 16-bit symbol.
func nibbles(_ *rand.Rand, i, n int) uint64 {
	v := uint64(i * 16 / n)
	return v | v<<4 | v<<8 | v<<12
}

type P = paramcabac.BinarizationParams

var codingCases = []struct {
	name string
	cfg  paramcabac.TransformedSubseq
	gen  generator
}{
	{"BI", ts(8, 8, 0, bin(paramcabac.BI, P{})), unsigned(8)},
	{"BI bypass", ts(8, 8, 0, bypass(paramcabac.BI, P{})), unsigned(8)},
	{"BI order 2", ts(1, 1, 2, bin(paramcabac.BI, P{})), unsigned(1)},
	{"TU order 2", ts(3, 3, 2, bin(paramcabac.TU, P{CMax: 7})), unsigned(3)},
	{"TU short cmax", ts(4, 4, 0, bin(paramcabac.TU, P{CMax: 9})), bounded(9)},
	{"TU bypass", ts(3, 3, 0, bypass(paramcabac.TU, P{CMax: 5})), bounded(5)},
	{"TU subsymbols order 1", ts(16, 4, 1, bin(paramcabac.TU, P{CMax: 15})), unsigned(16)},
	{"EG", ts(10, 10, 0, bin(paramcabac.EG, P{})), unsigned(10)},
	{"EG 63 bits", ts(63, 63, 0, bin(paramcabac.EG, P{})), unsigned(63)},
	{"EG bypass", ts(32, 32, 0, bypass(paramcabac.EG, P{})), unsigned(32)},
	{"SEG", ts(16, 16, 0, bin(paramcabac.SEG, P{})), signed(16)},
	{"TEG", ts(8, 8, 0, bin(paramcabac.TEG, P{CMaxTEG: 4})), unsigned(8)},
	{"STEG bypass", ts(8, 8, 0, bypass(paramcabac.STEG, P{CMaxTEG: 2})), signed(8)},
	{"SUTU", ts(32, 32, 0, bin(paramcabac.SUTU, P{SplitUnitSize: 4})), unsigned(32)},
	{"SUTU short unit", ts(10, 10, 0, bin(paramcabac.SUTU, P{SplitUnitSize: 4})), unsigned(10)},
	{"SUTU subsymbols", ts(16, 8, 0, bin(paramcabac.SUTU, P{SplitUnitSize: 4})), unsigned(16)},
	{"SSUTU", ts(20, 20, 0, bin(paramcabac.SSUTU, P{SplitUnitSize: 3})), signed(20)},
	{"SSUTU subsymbols", ts(32, 8, 0, bin(paramcabac.SSUTU, P{SplitUnitSize: 4})), signed(32)},
	{"DTU", ts(8, 8, 0, bin(paramcabac.DTU, P{CMaxDTU: 3, SplitUnitSize: 4})), unsigned(8)},
	{"SDTU bypass", ts(12, 12, 0, bypass(paramcabac.SDTU, P{SplitUnitSize: 5})), signed(12)},
}

func TestTransformed_RoundTrip(t *testing.T) {
	for ci, tt := range codingCases {
		t.Run(tt.name, func(t *testing.T) {
			testRoundTrip(t, &tt.cfg, tt.gen, int64(ci+1))
		})
	}
}

func testRoundTrip(t *testing.T, cfg *paramcabac.TransformedSubseq, gen generator, seed int64) {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	for _, n := range []int{1, 2, 17, 1000} {
		symbols := make([]uint64, n)
		for i := range symbols {
			symbols[i] = gen(r, i, n)
		}
		data, err := EncodeTransformed(symbols, cfg)
		if err != nil {
			t.Fatalf("n=%d: EncodeTransformed error: %v", n, err)
		}
		got, err := DecodeTransformed(data, cfg, n)
		if err != nil {
			t.Fatalf("n=%d: DecodeTransformed error: %v", n, err)
		}
		if !reflect.DeepEqual(got, symbols) {
			t.Errorf("n=%d: round trip mismatch", n)
		}
	}
}

func TestTransformed_ContextOptions(t *testing.T) {
	private := ts(16, 4, 2, bin(paramcabac.TU, P{CMax: 15}))
	private.Support.ShareSubsymPrv = false

	shared := ts(12, 4, 1, bin(paramcabac.TU, P{CMax: 15}))
	shared.Binarization.Context.ShareSubsymCtx = true

	static := ts(3, 3, 0, bin(paramcabac.TU, P{CMax: 7}))
	static.Binarization.Context.AdaptiveMode = false

	initialised := ts(4, 4, 0, bin(paramcabac.BI, P{}))
	initialised.Binarization.Context.InitValues = []uint8{1, 60, 127, 33, 90}

	diff := ts(16, 16, 0, bin(paramcabac.SUTU, P{SplitUnitSize: 4}))
	diff.SubsymTransform = paramcabac.SubsymDiff

	diffSubsyms := ts(16, 4, 0, bin(paramcabac.BI, P{}))
	diffSubsyms.SubsymTransform = paramcabac.SubsymDiff

	tests := []struct {
		name string
		cfg  paramcabac.TransformedSubseq
		gen  generator
	}{
		{"private history", private, unsigned(16)},
		{"shared contexts", shared, unsigned(12)},
		{"static contexts", static, unsigned(3)},
		{"init values", initialised, unsigned(4)},
		{"DIFF", diff, increasing(16)},
		{"DIFF subsymbols", diffSubsyms, nibbles},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testRoundTrip(t, &tt.cfg, tt.gen, int64(100+i))
		})
	}
}

// decodeBins reads raw bins back with the same context layout the writer
// used, so the bin string of a binarization can be checked directly.
func decodeBins(data []byte, n int, ctxs []int) []int {
	d := entropy.NewDecoder(data)
	bank := entropy.NewBank(16, nil)
	bins := make([]int, n)
	for i := range bins {
		if ctxs == nil {
			bins[i] = d.DecodeBinEP()
		} else {
			bins[i] = d.DecodeBin(&bank[ctxs[i]])
		}
	}
	return bins
}

func TestBinarization_BinStrings(t *testing.T) {
	t.Run("TU 5 cmax 8", func(t *testing.T) {
		w := &binWriter{enc: entropy.NewEncoder(), bank: entropy.NewBank(16, nil), adaptive: true}
		w.tu(5, 8, 0)
		data, err := w.enc.Flush()
		if err != nil {
			t.Fatal(err)
		}
		got := decodeBins(data, 6, []int{0, 1, 2, 3, 4, 5})
		if want := []int{1, 1, 1, 1, 1, 0}; !reflect.DeepEqual(got, want) {
			t.Errorf("bins = %v, want %v", got, want)
		}
	})

	tests := []struct {
		name  string
		write func(w *binWriter)
		want  []int
	}{
		{"TU at cmax", func(w *binWriter) { w.tu(3, 3, 0) }, []int{1, 1, 1}},
		{"TU zero", func(w *binWriter) { w.tu(0, 3, 0) }, []int{0}},
		{"BI", func(w *binWriter) { w.bi(0b1011, 4, 0) }, []int{1, 0, 1, 1}},
		{"EG 0", func(w *binWriter) { w.eg(0, 0) }, []int{1}},
		{"EG 3", func(w *binWriter) { w.eg(3, 0) }, []int{0, 0, 1, 0, 0}},
		{"EG 6", func(w *binWriter) { w.eg(6, 0) }, []int{0, 0, 1, 1, 1}},
		{"SUTU short unit", func(w *binWriter) { w.sutu(0xA, 6, 4, 0) }, []int{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &binWriter{enc: entropy.NewEncoder(), bypass: true}
			tt.write(w)
			data, err := w.enc.Flush()
			if err != nil {
				t.Fatal(err)
			}
			if got := decodeBins(data, len(tt.want), nil); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("bins = %v, want %v", got, tt.want)
			}
		})
	}
}

func twos(v int64) uint64 { return uint64(v) }

func TestEncodeTransformed_Errors(t *testing.T) {
	diff := ts(8, 8, 0, bin(paramcabac.BI, P{}))
	diff.SubsymTransform = paramcabac.SubsymDiff

	tests := []struct {
		name    string
		cfg     paramcabac.TransformedSubseq
		symbols []uint64
		wantErr error
	}{
		{"too wide", ts(4, 4, 0, bin(paramcabac.BI, P{})), []uint64{16}, ErrValueOutOfRange},
		{"signed too wide", ts(4, 4, 0, bin(paramcabac.SEG, P{})), []uint64{twos(-16)}, ErrValueOutOfRange},
		{"above TU cmax", ts(4, 4, 0, bin(paramcabac.TU, P{CMax: 5})), []uint64{1, 6}, ErrValueOutOfRange},
		{"DIFF decrease", diff, []uint64{5, 4}, ErrValueOutOfRange},
		{"LUT", paramcabac.TransformedSubseq{SubsymTransform: paramcabac.SubsymLUT,
			Support:      paramcabac.SupportValues{OutputSymbolSize: 4, CodingSubsymSize: 4},
			Binarization: bin(paramcabac.BI, P{})}, []uint64{1}, paramcabac.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeTransformed(tt.symbols, &tt.cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeTransformed_MissingTerminator(t *testing.T) {
	cfg := ts(1, 1, 0, bin(paramcabac.BI, P{}))
	data, err := EncodeTransformed(make([]uint64, 100), &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeTransformed(data, &cfg, 99); !errors.Is(err, ErrDesync) {
		t.Errorf("decoding 99 of 100 symbols: error = %v, want ErrDesync", err)
	}
}

func TestDecodeTransformed_ImplausibleCount(t *testing.T) {
	cfg := ts(1, 1, 0, bin(paramcabac.BI, P{}))
	if _, err := DecodeTransformed([]byte{0xFE, 0x80}, &cfg, 1<<30); !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestEncodeTransformed_Empty(t *testing.T) {
	cfg := ts(8, 8, 0, bin(paramcabac.BI, P{}))
	data, err := EncodeTransformed(nil, &cfg)
	if err != nil || len(data) != 0 {
		t.Errorf("EncodeTransformed(nil) = %x, %v; want empty", data, err)
	}
	got, err := DecodeTransformed(nil, &cfg, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("DecodeTransformed(nil, 0) = %v, %v; want empty", got, err)
	}
}

func subseq(t *testing.T, tp transform.Params, streams ...paramcabac.TransformedSubseq) *paramcabac.Subsequence {
	t.Helper()
	s, err := paramcabac.NewSubsequence(0, false, tp, streams)
	if err != nil {
		t.Fatalf("NewSubsequence error: %v", err)
	}
	return s
}

func runs(r *rand.Rand, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		if i > 0 && r.Intn(3) > 0 {
			out[i] = out[i-1]
			continue
		}
		out[i] = uint64(r.Intn(40))
	}
	return out
}

func TestSubsequence_RoundTrip(t *testing.T) {
	flag := ts(1, 1, 0, bin(paramcabac.BI, P{}))
	value := ts(32, 32, 0, bin(paramcabac.SUTU, P{SplitUnitSize: 4}))

	tests := []struct {
		name string
		cfg  *paramcabac.Subsequence
	}{
		{"none", subseq(t, transform.Params{ID: transform.None}, value)},
		{"equality", subseq(t, transform.Params{ID: transform.Equality}, flag, value)},
		{"RLE", subseq(t, transform.Params{ID: transform.RLE, Param: 8},
			ts(4, 4, 0, bin(paramcabac.TU, P{CMax: 15})), value)},
		{"match", subseq(t, transform.Params{ID: transform.Match, Param: 16},
			flag, ts(5, 5, 0, bin(paramcabac.BI, P{})), value)},
	}
	r := rand.New(rand.NewSource(7))
	inputs := [][]uint64{{9, 9, 9, 4, 4, 9}, {0, 1, 2, 2, 2, 3}, {42}, runs(r, 3000)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, in := range inputs {
				data, err := Encode(in, tt.cfg)
				if err != nil {
					t.Fatalf("input %d: Encode error: %v", k, err)
				}
				got, err := Decode(data, tt.cfg, len(in))
				if err != nil {
					t.Fatalf("input %d: Decode error: %v", k, err)
				}
				if !reflect.DeepEqual(got, in) {
					t.Errorf("input %d: round trip mismatch", k)
				}
			}
		})
	}
}

func TestSubsequence_PayloadLayout(t *testing.T) {
	flag := ts(1, 1, 0, bin(paramcabac.BI, P{}))
	value := ts(8, 8, 0, bin(paramcabac.BI, P{}))

	data, err := Encode([]uint64{1, 2, 3}, subseq(t, transform.Params{ID: transform.None}, value))
	if err != nil {
		t.Fatal(err)
	}
	if n := binary.BigEndian.Uint32(data); n != 3 {
		t.Errorf("single stream: num_symbols = %d, want 3", n)
	}

	data, err = Encode([]uint64{9, 9, 9, 4, 4, 9}, subseq(t, transform.Params{ID: transform.Equality}, flag, value))
	if err != nil {
		t.Fatal(err)
	}
	size := binary.BigEndian.Uint32(data)
	if n := binary.BigEndian.Uint32(data[4:]); n != 6 {
		t.Errorf("flags num_symbols = %d, want 6", n)
	}
	rest := data[4+size:]
	if len(rest) < 4 {
		t.Fatalf("stream size %d leaves %d bytes", size, len(rest))
	}
	if n := binary.BigEndian.Uint32(rest); n != 3 {
		t.Errorf("raw num_symbols = %d, want 3", n)
	}
}

func TestSubsequence_Empty(t *testing.T) {
	cfg := subseq(t, transform.Params{ID: transform.Equality},
		ts(1, 1, 0, bin(paramcabac.BI, P{})), ts(8, 8, 0, bin(paramcabac.BI, P{})))
	data, err := Encode(nil, cfg)
	if err != nil || len(data) != 0 {
		t.Fatalf("Encode(nil) = %x, %v; want empty", data, err)
	}
	got, err := Decode(data, cfg, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("Decode(empty, 0) = %v, %v; want empty", got, err)
	}
	if _, err := Decode(data, cfg, 3); !errors.Is(err, ErrSymbolCountMismatch) {
		t.Errorf("Decode(empty, 3) error = %v, want ErrSymbolCountMismatch", err)
	}
}

func TestSubsequence_CountMismatch(t *testing.T) {
	cfg := subseq(t, transform.Params{ID: transform.None}, ts(8, 8, 0, bin(paramcabac.BI, P{})))
	data, err := Encode([]uint64{1, 2, 3, 4}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data, cfg, 5); !errors.Is(err, ErrSymbolCountMismatch) {
		t.Errorf("error = %v, want ErrSymbolCountMismatch", err)
	}
}

func TestSubsequence_RLEExpansionBounded(t *testing.T) {
	byteBI := ts(8, 8, 0, bin(paramcabac.BI, P{}))
	cfg := subseq(t, transform.Params{ID: transform.RLE, Param: 255}, byteBI, byteBI)

	// One long run codes to a few hundred guard values.
	in := make([]uint64, 1<<20)
	data, err := Encode(in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) > 1<<12 {
		t.Fatalf("payload = %d bytes, want a compact run encoding", len(data))
	}

	for _, expected := range []int{0, 1, len(in) - 1} {
		got, err := Decode(data, cfg, expected)
		if !errors.Is(err, ErrSymbolCountMismatch) || !errors.Is(err, transform.ErrLimit) {
			t.Errorf("Decode(expected %d) error = %v, want ErrSymbolCountMismatch", expected, err)
		}
		if got != nil {
			t.Errorf("Decode(expected %d) returned %d symbols", expected, len(got))
		}
	}

	got, err := Decode(data, cfg, len(in))
	if err != nil || len(got) != len(in) {
		t.Errorf("Decode(expected %d) = %d symbols, %v", len(in), len(got), err)
	}
}

func TestSubsequence_Malformed(t *testing.T) {
	cfg := subseq(t, transform.Params{ID: transform.Equality},
		ts(1, 1, 0, bin(paramcabac.BI, P{})), ts(8, 8, 0, bin(paramcabac.BI, P{})))
	tests := []struct {
		name string
		data []byte
	}{
		{"size truncated", []byte{0, 0}},
		{"size beyond payload", []byte{0, 0, 1, 0, 0, 0, 0, 1}},
		{"count truncated", []byte{0, 0, 0, 4, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, cfg, 1); !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestSubsequence_Merge(t *testing.T) {
	cfg := &paramcabac.Subsequence{Transform: transform.Params{ID: transform.Merge}}
	if _, err := Encode([]uint64{1}, cfg); !errors.Is(err, transform.ErrUnsupported) {
		t.Errorf("Encode error = %v, want transform.ErrUnsupported", err)
	}
	if _, err := Decode([]byte{1}, cfg, 1); !errors.Is(err, transform.ErrUnsupported) {
		t.Errorf("Decode error = %v, want transform.ErrUnsupported", err)
	}
}

func TestDescriptor_RoundTrip(t *testing.T) {
	dc, err := paramcabac.DefaultDescriptorConfig(paramcabac.FLAGS)
	if err != nil {
		t.Fatal(err)
	}
	cfg := dc.(*paramcabac.Regular)
	r := rand.New(rand.NewSource(7))

	in := make([][]uint64, len(cfg.Subsequences))
	for i, sc := range cfg.Subsequences {
		st := sc.Streams[0]
		bits := uint(st.Support.OutputSymbolSize)
		if st.Binarization.ID.Signed() {
			bits--
		}
		if i == 1 {
			continue
		}
		gen := unsigned(bits)
		for j := 0; j < 300; j++ {
			in[i] = append(in[i], gen(r, j, 300))
		}
	}

	data, err := EncodeDescriptor(in, cfg)
	if err != nil {
		t.Fatalf("EncodeDescriptor error: %v", err)
	}
	if n := binary.BigEndian.Uint32(data); n != 300 {
		t.Errorf("first symbol count = %d, want 300", n)
	}
	got, err := DecodeDescriptor(data, cfg)
	if err != nil {
		t.Fatalf("DecodeDescriptor error: %v", err)
	}
	for i := range in {
		if len(in[i]) == 0 && len(got[i]) == 0 {
			continue
		}
		if !reflect.DeepEqual(got[i], in[i]) {
			t.Errorf("subsequence %d mismatch", i)
		}
	}
}

func TestDescriptor_Errors(t *testing.T) {
	dc, err := paramcabac.DefaultDescriptorConfig(paramcabac.RCOMP)
	if err != nil {
		t.Fatal(err)
	}
	cfg := dc.(*paramcabac.Regular)
	if _, err := EncodeDescriptor(make([][]uint64, 2), cfg); !errors.Is(err, paramcabac.ErrInvalidConfig) {
		t.Errorf("too many subsequences: error = %v, want ErrInvalidConfig", err)
	}
	if _, err := DecodeDescriptor([]byte{0, 0}, cfg); !errors.Is(err, ErrMalformed) {
		t.Errorf("truncated: error = %v, want ErrMalformed", err)
	}
	if _, err := DecodeDescriptor([]byte{0, 0, 0, 5}, cfg); !errors.Is(err, ErrSymbolCountMismatch) {
		t.Errorf("count without payload: error = %v, want ErrSymbolCountMismatch", err)
	}
}

func tokentypeConfig(t *testing.T) *paramcabac.Tokentype {
	t.Helper()
	dc, err := paramcabac.DefaultDescriptorConfig(paramcabac.RNAME)
	if err != nil {
		t.Fatal(err)
	}
	return dc.(*paramcabac.Tokentype)
}

func TestTokentype_RoundTrip(t *testing.T) {
	cfg := tokentypeConfig(t)
	in := &Tokens{NumOutputSymbols: 2, Sequences: make([][]uint64, 18)}
	in.Sequences[0] = []uint64{1, 1, 2}
	in.Sequences[3] = []uint64{'a', 'b', 'c'}
	in.Sequences[16] = []uint64{5}
	in.Sequences[17] = []uint64{200, 13}

	data, err := EncodeTokentype(in, cfg)
	if err != nil {
		t.Fatalf("EncodeTokentype error: %v", err)
	}
	if n := binary.BigEndian.Uint16(data[4:]); n != 4 {
		t.Errorf("num_tokentype_sequences = %d, want 4", n)
	}
	if data[6] != 0x03 {
		t.Errorf("first type/method byte = %#x, want 0x03", data[6])
	}

	got, err := DecodeTokentype(data, cfg)
	if err != nil {
		t.Fatalf("DecodeTokentype error: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip mismatch\n got %v\nwant %v", got.Sequences, in.Sequences)
	}
	if s := got.Sequence(1, 1); !reflect.DeepEqual(s, []uint64{200, 13}) {
		t.Errorf("Sequence(1, 1) = %v", s)
	}
}

func TestTokentype_Empty(t *testing.T) {
	cfg := tokentypeConfig(t)
	data, err := EncodeTokentype(&Tokens{}, cfg)
	if err != nil || len(data) != 0 {
		t.Fatalf("EncodeTokentype(empty) = %x, %v", data, err)
	}
	got, err := DecodeTokentype(nil, cfg)
	if err != nil || len(got.Sequences) != 0 {
		t.Errorf("DecodeTokentype(nil) = %+v, %v", got, err)
	}
}

func TestTokentype_MissingTypeZero(t *testing.T) {
	cfg := tokentypeConfig(t)
	in := &Tokens{Sequences: make([][]uint64, 18)}
	in.Sequences[0] = []uint64{1}
	in.Sequences[17] = []uint64{2}
	if _, err := EncodeTokentype(in, cfg); !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestTokentype_BadMethod(t *testing.T) {
	cfg := tokentypeConfig(t)
	data := []byte{0, 0, 0, 1, 0, 1, 0x01, 0x01, 0xFE, 0x80}
	if _, err := DecodeTokentype(data, cfg); !errors.Is(err, paramcabac.ErrUnsupported) {
		t.Errorf("error = %v, want paramcabac.ErrUnsupported", err)
	}
}

func BenchmarkEncodeTransformed(b *testing.B) {
	cfg := ts(16, 4, 1, bin(paramcabac.TU, P{CMax: 15}))
	r := rand.New(rand.NewSource(1))
	symbols := make([]uint64, 1<<14)
	for i := range symbols {
		symbols[i] = unsigned(16)(r, i, len(symbols))
	}
	b.SetBytes(int64(len(symbols) * 2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeTransformed(symbols, &cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeTransformed(b *testing.B) {
	cfg := ts(16, 4, 1, bin(paramcabac.TU, P{CMax: 15}))
	r := rand.New(rand.NewSource(1))
	symbols := make([]uint64, 1<<14)
	for i := range symbols {
		symbols[i] = unsigned(16)(r, i, len(symbols))
	}
	data, _ := EncodeTransformed(symbols, &cfg)
	b.SetBytes(int64(len(symbols) * 2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeTransformed(data, &cfg, len(symbols)); err != nil {
			b.Fatal(err)
		}
	}
}
