package entropy

import (
	"bytes"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// Encoder implements the CABAC range encoder.
//
// Completed bytes are held back while they may still receive a carry:
// bufferedByte is the last byte that is not final and numBuffered counts
// it together with the 0xFF bytes queued behind it.
type Encoder struct {
	low          uint32
	rng          uint32
	bitsLeft     int
	bufferedByte uint32
	numBuffered  int

	buf bytes.Buffer
	w   *bio.Writer
	err error
}

// NewEncoder creates a new CABAC encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Reset()
	return e
}

// Reset prepares the encoder for a new stream. Context models are owned by
// the caller and are not touched.
func (e *Encoder) Reset() {
	e.low = 0
	e.rng = 510
	e.bitsLeft = 23
	e.bufferedByte = 0xFF
	e.numBuffered = 0
	e.buf.Reset()
	e.w = bio.NewWriter(&e.buf)
	e.err = nil
}

// EncodeBin encodes one bin with an adaptive context model and updates
// the model.
func (e *Encoder) EncodeBin(bin int, ctx *ContextModel) {
	lps := uint32(lpsTable[ctx.State()][(e.rng>>6)&3])
	e.rng -= lps

	if bin != ctx.MPS() {
		n := renormTable[lps>>3]
		e.low = (e.low + e.rng) << n
		e.rng = lps << n
		ctx.UpdateLPS()
		e.bitsLeft -= int(n)
	} else {
		ctx.UpdateMPS()
		if e.rng >= 256 {
			return
		}
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}
	e.testAndWriteOut()
}

// EncodeBinEP encodes one equiprobable bypass bin.
func (e *Encoder) EncodeBinEP(bin int) {
	e.low <<= 1
	if bin != 0 {
		e.low += e.rng
	}
	e.bitsLeft--
	e.testAndWriteOut()
}

// EncodeBinsEP encodes the low n bits of bins as bypass bins, most
// significant first.
func (e *Encoder) EncodeBinsEP(bins uint64, n uint) {
	for n > 0 {
		n--
		e.EncodeBinEP(int(bins>>n) & 1)
	}
}

// EncodeBinTrm encodes a terminating bin. A 1 ends the arithmetic
// codeword.
func (e *Encoder) EncodeBinTrm(bin int) {
	e.rng -= 2
	if bin != 0 {
		e.low += e.rng
		e.low <<= 7
		e.rng = 2 << 7
		e.bitsLeft -= 7
	} else if e.rng >= 256 {
		return
	} else {
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}
	e.testAndWriteOut()
}

// Flush terminates the stream and returns the coded bytes: a terminating
// bin, the remaining low register bits, a stop bit and zero padding to
// the next byte boundary.
func (e *Encoder) Flush() ([]byte, error) {
	e.EncodeBinTrm(1)
	e.finish()
	e.put(1, 1)
	if e.err == nil {
		e.err = e.w.Flush()
	}
	if e.err != nil {
		return nil, e.err
	}
	return append([]byte(nil), e.buf.Bytes()...), nil
}

func (e *Encoder) testAndWriteOut() {
	if e.bitsLeft < 12 {
		e.writeOut()
	}
}

func (e *Encoder) writeOut() {
	lead := e.low >> uint(24-e.bitsLeft)
	e.bitsLeft += 8
	e.low &= 0xFFFFFFFF >> uint(e.bitsLeft)

	if lead == 0xFF {
		e.numBuffered++
		return
	}
	if e.numBuffered > 0 {
		carry := lead >> 8
		e.put(uint64((e.bufferedByte+carry)&0xFF), 8)
		e.bufferedByte = lead & 0xFF
		for ; e.numBuffered > 1; e.numBuffered-- {
			e.put(uint64((0xFF+carry)&0xFF), 8)
		}
	} else {
		e.numBuffered = 1
		e.bufferedByte = lead
	}
}

func (e *Encoder) finish() {
	if e.low>>uint(32-e.bitsLeft) != 0 {
		e.put(uint64((e.bufferedByte+1)&0xFF), 8)
		for ; e.numBuffered > 1; e.numBuffered-- {
			e.put(0x00, 8)
		}
		e.low -= 1 << uint(32-e.bitsLeft)
	} else {
		if e.numBuffered > 0 {
			e.put(uint64(e.bufferedByte), 8)
		}
		for ; e.numBuffered > 1; e.numBuffered-- {
			e.put(0xFF, 8)
		}
	}
	e.put(uint64(e.low>>8), uint(24-e.bitsLeft))
}

func (e *Encoder) put(v uint64, n uint) {
	if e.err == nil {
		e.err = e.w.WriteBits(v, n)
	}
}
