package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/transform"
)

// preset describes the default coding of one subsequence. Every preset
// uses no subsequence transform and no subsymbol transform.
type preset struct {
	oss, css, order uint8
	bin             BinarizationID
	split           uint8 // split unit size for SUTU and SSUTU
	privateHistory  bool  // share_subsym_prv_flag cleared
}

var (
	sutu32 = preset{oss: 32, css: 32, bin: SUTU, split: 4}
	sutu16 = preset{oss: 16, css: 16, bin: SUTU, split: 4}
	flag2  = preset{oss: 1, css: 1, order: 2, bin: BI}
)

var presets = [NumDescriptors][]preset{
	POS:    {sutu32, {oss: 32, css: 32, bin: SSUTU, split: 4}},
	RCOMP:  {{oss: 2, css: 2, order: 1, bin: TU}},
	FLAGS:  {flag2, flag2, flag2},
	MMPOS:  {flag2, {oss: 16, css: 4, order: 1, bin: TU}},
	MMTYPE: {{oss: 2, css: 2, order: 1, bin: TU}, {oss: 3, css: 3, order: 1, bin: TU}, {oss: 3, css: 3, order: 2, bin: TU}},
	CLIPS:  {sutu32, {oss: 4, css: 4, order: 1, bin: TU}, {oss: 3, css: 3, order: 2, bin: TU}, sutu32},
	UREADS: {{oss: 3, css: 3, order: 2, bin: TU}},
	RLEN:   {sutu32},
	PAIR: {
		{oss: 3, css: 3, order: 1, bin: TU}, {oss: 16, css: 4, order: 1, bin: TU},
		sutu32, sutu32, sutu16, sutu16, sutu32, sutu32,
	},
	MSCORE: {{oss: 32, css: 32, bin: SSUTU, split: 4}},
	MMAP: {
		{oss: 16, css: 4, order: 2, bin: TU, privateHistory: true},
		{oss: 16, css: 4, order: 2, bin: TU, privateHistory: true},
		flag2, sutu16, sutu32,
	},
	MSAR:   {{oss: 8, css: 8, bin: SUTU, split: 4}, {oss: 8, css: 4, order: 1, bin: TU}},
	RTYPE:  {{oss: 3, css: 3, order: 2, bin: TU}},
	RGROUP: {sutu16},
	QV:     {{oss: 1, css: 1, order: 2, bin: TU}},
	RNAME:  {{oss: 8, css: 8, bin: SUTU, split: 4}, {oss: 8, css: 4, order: 1, bin: TU}},
	RFTP:   {sutu32},
	RFTT:   {{oss: 3, css: 3, order: 1, bin: TU}},
}

func (p preset) stream() TransformedSubseq {
	b := Binarization{ID: p.bin, Context: ContextParams{AdaptiveMode: true}}
	switch p.bin {
	case TU:
		b.Params.CMax = uint8(1<<p.css - 1)
	case SUTU, SSUTU:
		b.Params.SplitUnitSize = p.split
	}
	sv := SupportValues{OutputSymbolSize: p.oss, CodingSubsymSize: p.css, CodingOrder: p.order}
	if sv.hasShareFlags() {
		sv.ShareSubsymPrv = !p.privateHistory
	}
	return TransformedSubseq{Support: sv, Binarization: b}
}

// DefaultRLEGuard is the rle_guard_tokentype of the token-type presets.
const DefaultRLEGuard = 34

// DefaultSubsequence returns the default configuration of subsequence
// subseq of descriptor desc. For token-type descriptors subseq selects
// the first or second token-type configuration.
func DefaultSubsequence(desc DescriptorID, subseq int) (*Subsequence, error) {
	if !desc.Valid() {
		return nil, fmt.Errorf("%w: descriptor %d", ErrInvalidConfig, uint8(desc))
	}
	if subseq < 0 || subseq >= len(presets[desc]) {
		return nil, fmt.Errorf("%w: %v has no subsequence %d", ErrInvalidConfig, desc, subseq)
	}
	s := &Subsequence{
		Tokentype: desc.IsTokentype(),
		Transform: transform.Params{ID: transform.None},
		Streams:   []TransformedSubseq{presets[desc][subseq].stream()},
	}
	if !s.Tokentype {
		s.ID = uint16(subseq)
	}
	return s, nil
}

// DefaultDescriptorConfig returns the default configuration of desc.
func DefaultDescriptorConfig(desc DescriptorID) (DescriptorConfig, error) {
	if !desc.Valid() {
		return nil, fmt.Errorf("%w: descriptor %d", ErrInvalidConfig, uint8(desc))
	}
	if desc.IsTokentype() {
		c := &Tokentype{RLEGuard: DefaultRLEGuard}
		for i := range c.Subsequences {
			s, err := DefaultSubsequence(desc, i)
			if err != nil {
				return nil, err
			}
			c.Subsequences[i] = s
		}
		return c, nil
	}
	c := &Regular{Subsequences: make([]*Subsequence, desc.NumSubsequences())}
	for i := range c.Subsequences {
		s, err := DefaultSubsequence(desc, i)
		if err != nil {
			return nil, err
		}
		c.Subsequences[i] = s
	}
	return c, nil
}
