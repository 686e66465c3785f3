package entropy

// Decoder implements the CABAC range decoder. value holds the code word
// scaled by 7 bits relative to rng; bitsNeeded counts down to the next
// byte load.
type Decoder struct {
	data       []byte
	pos        int
	value      uint32
	rng        uint32
	bitsNeeded int
}

// NewDecoder creates a decoder over a complete coded stream.
func NewDecoder(data []byte) *Decoder {
	d := &Decoder{}
	d.Reset(data)
	return d
}

// Reset starts decoding a new stream.
func (d *Decoder) Reset(data []byte) {
	d.data = data
	d.pos = 0
	d.rng = 510
	d.bitsNeeded = -8
	d.value = d.readByte()<<8 | d.readByte()
}

// readByte returns the next input byte, or 0 past the end of the data.
func (d *Decoder) readByte() uint32 {
	if d.pos >= len(d.data) {
		return 0
	}
	b := d.data[d.pos]
	d.pos++
	return uint32(b)
}

// DecodeBin decodes one bin with an adaptive context model and updates
// the model.
func (d *Decoder) DecodeBin(ctx *ContextModel) int {
	lps := uint32(lpsTable[ctx.State()][(d.rng>>6)&3])
	d.rng -= lps
	scaled := d.rng << 7

	if d.value < scaled {
		bin := ctx.MPS()
		ctx.UpdateMPS()
		if scaled < 256<<7 {
			d.rng = scaled >> 6
			d.value <<= 1
			d.bitsNeeded++
			if d.bitsNeeded == 0 {
				d.bitsNeeded = -8
				d.value += d.readByte()
			}
		}
		return bin
	}

	n := renormTable[lps>>3]
	d.value = (d.value - scaled) << n
	d.rng = lps << n
	bin := 1 - ctx.MPS()
	ctx.UpdateLPS()
	d.bitsNeeded += int(n)
	if d.bitsNeeded >= 0 {
		d.value += d.readByte() << uint(d.bitsNeeded)
		d.bitsNeeded -= 8
	}
	return bin
}

// DecodeBinEP decodes one bypass bin.
func (d *Decoder) DecodeBinEP() int {
	d.value <<= 1
	d.bitsNeeded++
	if d.bitsNeeded >= 0 {
		d.bitsNeeded = -8
		d.value += d.readByte()
	}
	scaled := d.rng << 7
	if d.value >= scaled {
		d.value -= scaled
		return 1
	}
	return 0
}

// DecodeBinsEP decodes n bypass bins and returns them most significant
// first.
func (d *Decoder) DecodeBinsEP(n uint) uint64 {
	var v uint64
	for ; n > 0; n-- {
		v = v<<1 | uint64(d.DecodeBinEP())
	}
	return v
}

// DecodeBinTrm decodes a terminating bin. It returns 1 at the end of the
// arithmetic codeword.
func (d *Decoder) DecodeBinTrm() int {
	d.rng -= 2
	scaled := d.rng << 7
	if d.value >= scaled {
		return 1
	}
	if scaled < 256<<7 {
		d.rng = scaled >> 6
		d.value <<= 1
		d.bitsNeeded++
		if d.bitsNeeded == 0 {
			d.bitsNeeded = -8
			d.value += d.readByte()
		}
	}
	return 0
}
