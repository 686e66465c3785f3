package gabac

import (
	"math/bits"

	"github.com/mrjoshuak/go-mpegg/internal/entropy"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// binWriter turns subsymbol values into bins. In bypass mode context
// indices are computed but ignored.
type binWriter struct {
	enc      *entropy.Encoder
	bank     entropy.Bank
	adaptive bool
	bypass   bool
}

func (w *binWriter) bin(b int, ctx uint64) {
	if w.bypass {
		w.enc.EncodeBinEP(b)
		return
	}
	m := &w.bank[ctx]
	if !w.adaptive {
		c := *m
		m = &c
	}
	w.enc.EncodeBin(b, m)
}

// bi writes the low n bits of v, most significant first, one context per
// bit position.
func (w *binWriter) bi(v uint64, n uint, ctx uint64) {
	if w.bypass {
		w.enc.EncodeBinsEP(v, n)
		return
	}
	for i := n; i > 0; i-- {
		w.bin(int(v>>(i-1))&1, ctx)
		ctx++
	}
}

// tu writes v ones followed by a zero unless v reaches cmax.
func (w *binWriter) tu(v, cmax, ctx uint64) {
	for i := uint64(0); i < v; i++ {
		w.bin(1, ctx+i)
	}
	if v < cmax {
		w.bin(0, ctx+v)
	}
}

// eg writes an exponential Golomb code: a context-coded prefix of
// leading zeros closed by a one, then a bypass suffix.
func (w *binWriter) eg(v, ctx uint64) {
	vp1 := v + 1
	lz := uint(bits.Len64(vp1) - 1)
	w.bi(1, lz+1, ctx)
	if lz > 0 {
		w.enc.EncodeBinsEP(vp1, lz)
	}
}

// sutu writes the oss-bit value as truncated unary units of sus bits,
// most significant unit first. A short unit comes first when sus does not
// divide oss.
func (w *binWriter) sutu(v uint64, oss, sus uint, ctx uint64) {
	shift := oss
	for i := uint(0); i < oss; i += sus {
		unit := sus
		if i == 0 && oss%sus != 0 {
			unit = oss % sus
		}
		cmax := uint64(1)<<unit - 1
		shift -= unit
		w.tu(v>>shift&cmax, cmax, ctx)
		ctx += cmax
	}
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// write binarizes one unsigned subsymbol value.
func (w *binWriter) write(b *paramcabac.Binarization, oss, css uint, v, ctx uint64) {
	p := &b.Params
	switch b.ID.Unsigned() {
	case paramcabac.BI:
		w.bi(v, css, ctx)
	case paramcabac.TU:
		w.tu(v, uint64(p.CMax), ctx)
	case paramcabac.EG:
		w.eg(v, ctx)
	case paramcabac.TEG:
		cmax := uint64(p.CMaxTEG)
		w.tu(minU64(v, cmax), cmax, ctx)
		if v >= cmax {
			w.eg(v-cmax, ctx+cmax)
		}
	case paramcabac.SUTU:
		w.sutu(v, oss, uint(p.SplitUnitSize), ctx)
	case paramcabac.DTU:
		cmax := uint64(p.CMaxDTU)
		w.tu(minU64(v, cmax), cmax, ctx)
		if v >= cmax {
			w.sutu(v-cmax, oss, uint(p.SplitUnitSize), ctx+cmax)
		}
	}
}

// binReader is the decoding counterpart of binWriter. Bin strings that no
// encoder could produce set err and yield zero.
type binReader struct {
	dec      *entropy.Decoder
	bank     entropy.Bank
	adaptive bool
	bypass   bool
	err      error
}

func (r *binReader) bin(ctx uint64) int {
	if r.bypass {
		return r.dec.DecodeBinEP()
	}
	m := &r.bank[ctx]
	if !r.adaptive {
		c := *m
		m = &c
	}
	return r.dec.DecodeBin(m)
}

func (r *binReader) bi(n uint, ctx uint64) uint64 {
	if r.bypass {
		return r.dec.DecodeBinsEP(n)
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		v = v<<1 | uint64(r.bin(ctx))
		ctx++
	}
	return v
}

func (r *binReader) tu(cmax, ctx uint64) uint64 {
	var v uint64
	for v < cmax && r.bin(ctx+v) == 1 {
		v++
	}
	return v
}

// eg reads an exponential Golomb code whose value fits in maxBits bits.
func (r *binReader) eg(maxBits uint, ctx uint64) uint64 {
	lz := uint(0)
	for r.bin(ctx+uint64(lz)) == 0 {
		lz++
		if lz > maxBits {
			r.err = ErrDesync
			return 0
		}
	}
	if lz == 0 {
		return 0
	}
	return (uint64(1)<<lz | r.dec.DecodeBinsEP(lz)) - 1
}

func (r *binReader) sutu(oss, sus uint, ctx uint64) uint64 {
	var v uint64
	for i := uint(0); i < oss; i += sus {
		unit := sus
		if i == 0 && oss%sus != 0 {
			unit = oss % sus
		}
		cmax := uint64(1)<<unit - 1
		v = v<<unit | r.tu(cmax, ctx)
		ctx += cmax
	}
	return v
}

// read decodes one unsigned subsymbol value.
func (r *binReader) read(b *paramcabac.Binarization, oss, css uint, ctx uint64) uint64 {
	p := &b.Params
	switch b.ID.Unsigned() {
	case paramcabac.BI:
		return r.bi(css, ctx)
	case paramcabac.TU:
		return r.tu(uint64(p.CMax), ctx)
	case paramcabac.EG:
		return r.eg(css, ctx)
	case paramcabac.TEG:
		cmax := uint64(p.CMaxTEG)
		v := r.tu(cmax, ctx)
		if v == cmax {
			v += r.eg(css, ctx+cmax)
		}
		return v
	case paramcabac.SUTU:
		return r.sutu(oss, uint(p.SplitUnitSize), ctx)
	case paramcabac.DTU:
		cmax := uint64(p.CMaxDTU)
		v := r.tu(cmax, ctx)
		if v == cmax {
			v += r.sutu(oss, uint(p.SplitUnitSize), ctx+cmax)
		}
		return v
	}
	return 0
}
