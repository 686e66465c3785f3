package gabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/entropy"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// maxBinsPerByte bounds how many bins a byte of CABAC data can carry. A
// bin costs at least 1/64 bit, even in the most skewed probability state.
const maxBinsPerByte = 8 * 64

// coding holds what the encoder and decoder of one transformed
// subsequence derive from its configuration.
type coding struct {
	cfg    *paramcabac.TransformedSubseq
	vars   paramcabac.StateVars
	oss    uint
	css    uint
	mask   uint64
	order  int
	diff   bool
	signed bool

	// hist[s] holds the previous values seen at subsymbol position s,
	// most recent first.
	hist [][2]uint64
}

func newCoding(cfg *paramcabac.TransformedSubseq) (*coding, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vars, err := cfg.StateVars()
	if err != nil {
		return nil, err
	}
	c := &coding{
		cfg:    cfg,
		vars:   vars,
		oss:    uint(cfg.Support.OutputSymbolSize),
		css:    uint(cfg.Support.CodingSubsymSize),
		order:  int(cfg.Support.CodingOrder),
		diff:   cfg.SubsymTransform == paramcabac.SubsymDiff,
		signed: cfg.Binarization.ID.Signed(),
		hist:   make([][2]uint64, vars.NumSubsyms),
	}
	c.mask = uint64(1)<<c.css - 1
	return c, nil
}

func (c *coding) bank() entropy.Bank {
	if c.cfg.Binarization.Bypass {
		return nil
	}
	return entropy.NewBank(int(c.vars.NumCtxTotal), c.cfg.Binarization.Context.InitValues)
}

// history returns the previous-value record used by subsymbol s.
func (c *coding) history(s int) *[2]uint64 {
	if c.cfg.Support.ShareSubsymPrv {
		return &c.hist[0]
	}
	return &c.hist[s]
}

// context returns the first context of subsymbol s given its history.
func (c *coding) context(s int, prv *[2]uint64) uint64 {
	ctx := uint64(s) * c.vars.CodingSizeCtxOffset
	for i := 1; i <= c.order; i++ {
		ctx += prv[i-1] * c.vars.CodingOrderCtxOffset[i]
	}
	return ctx
}

// update records v as the newest value in prv.
func (c *coding) update(prv *[2]uint64, v uint64) {
	switch c.order {
	case 1:
		prv[0] = v
	case 2:
		prv[1] = prv[0]
		prv[0] = v
	}
}

// magnitude splits a symbol into the value that is binarized and its
// sign. Signed symbols are two's complement values.
func (c *coding) magnitude(sym uint64) (mag uint64, neg bool, err error) {
	mag = sym
	if c.signed && int64(sym) < 0 {
		mag, neg = uint64(-int64(sym)), true
	}
	if mag>>c.oss != 0 {
		return 0, false, fmt.Errorf("%w: %d does not fit %d bits", ErrValueOutOfRange, int64(sym), c.oss)
	}
	return mag, neg, nil
}

// EncodeTransformed codes one physical stream. An empty stream codes to
// no bytes; otherwise the result ends with a terminating bin.
func EncodeTransformed(symbols []uint64, cfg *paramcabac.TransformedSubseq) ([]byte, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	c, err := newCoding(cfg)
	if err != nil {
		return nil, err
	}
	bin := &cfg.Binarization
	w := &binWriter{
		enc:      entropy.NewEncoder(),
		bank:     c.bank(),
		adaptive: bin.Context.AdaptiveMode,
		bypass:   bin.Bypass,
	}
	cmaxTU := uint64(bin.Params.CMax)

	for i, sym := range symbols {
		mag, neg, err := c.magnitude(sym)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		shift := c.oss
		for s := 0; s < c.vars.NumSubsyms; s++ {
			shift -= c.css
			v := mag >> shift & c.mask
			code := v
			if c.diff {
				if v < c.hist[s][0] {
					return nil, fmt.Errorf("symbol %d: %w: subsymbol %d decreases under DIFF coding",
						i, ErrValueOutOfRange, s)
				}
				code = v - c.hist[s][0]
				c.hist[s][0] = v
			}
			if bin.ID == paramcabac.TU && code > cmaxTU {
				return nil, fmt.Errorf("symbol %d: %w: %d exceeds TU cmax %d", i, ErrValueOutOfRange, code, cmaxTU)
			}
			prv := c.history(s)
			w.write(bin, c.oss, c.css, code, c.context(s, prv))
			c.update(prv, v)
		}
		if c.signed && mag != 0 {
			b := 0
			if neg {
				b = 1
			}
			w.bin(b, c.vars.NumCtxTotal-1)
		}
	}
	return w.enc.Flush()
}

// DecodeTransformed decodes n symbols of one physical stream and checks
// the terminating bin that follows them.
func DecodeTransformed(data []byte, cfg *paramcabac.TransformedSubseq, n int) ([]uint64, error) {
	if n == 0 {
		return []uint64{}, nil
	}
	if n < 0 || uint64(n) > uint64(len(data)+1)*maxBinsPerByte {
		return nil, fmt.Errorf("%w: %d symbols in %d bytes", ErrMalformed, n, len(data))
	}
	c, err := newCoding(cfg)
	if err != nil {
		return nil, err
	}
	bin := &cfg.Binarization
	r := &binReader{
		dec:      entropy.NewDecoder(data),
		bank:     c.bank(),
		adaptive: bin.Context.AdaptiveMode,
		bypass:   bin.Bypass,
	}

	out := make([]uint64, n)
	for i := range out {
		var mag uint64
		for s := 0; s < c.vars.NumSubsyms; s++ {
			prv := c.history(s)
			v := r.read(bin, c.oss, c.css, c.context(s, prv))
			if c.diff {
				v += c.hist[s][0]
				c.hist[s][0] = v
			}
			if r.err != nil || v > c.mask {
				return nil, fmt.Errorf("symbol %d: %w", i, ErrDesync)
			}
			c.update(prv, v)
			mag = mag<<c.css | v
		}
		out[i] = mag
		if c.signed && mag != 0 && r.bin(c.vars.NumCtxTotal-1) == 1 {
			out[i] = uint64(-int64(mag))
		}
	}
	if r.dec.DecodeBinTrm() != 1 {
		return nil, fmt.Errorf("%w: missing terminator after %d symbols", ErrDesync, n)
	}
	return out, nil
}
