package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// BinarizationID selects how a subsymbol is turned into bins.
type BinarizationID uint8

// Binarization IDs.
const (
	BI    BinarizationID = iota // binary, fixed length
	TU                          // truncated unary
	EG                          // exponential Golomb
	SEG                         // signed exponential Golomb
	TEG                         // truncated exponential Golomb
	STEG                        // signed truncated exponential Golomb
	SUTU                        // split unit truncated unary
	SSUTU                       // signed split unit truncated unary
	DTU                         // double truncated unary
	SDTU                        // signed double truncated unary
)

var binarizationNames = [...]string{"BI", "TU", "EG", "SEG", "TEG", "STEG", "SUTU", "SSUTU", "DTU", "SDTU"}

func (b BinarizationID) String() string {
	if int(b) < len(binarizationNames) {
		return binarizationNames[b]
	}
	return fmt.Sprintf("BINARIZATION(%d)", uint8(b))
}

// Valid reports whether b is a defined binarization.
func (b BinarizationID) Valid() bool {
	return b <= SDTU
}

// Signed reports whether the binarization codes a sign bin after the
// magnitude.
func (b BinarizationID) Signed() bool {
	switch b {
	case SEG, STEG, SSUTU, SDTU:
		return true
	}
	return false
}

// Unsigned returns the binarization used for the magnitude of a signed
// binarization. Unsigned binarizations map to themselves.
func (b BinarizationID) Unsigned() BinarizationID {
	switch b {
	case SEG:
		return EG
	case STEG:
		return TEG
	case SSUTU:
		return SUTU
	case SDTU:
		return DTU
	}
	return b
}

// BinarizationParams holds the parameters of the binarizations that take
// any. Fields that do not apply to the selected binarization are ignored
// and not serialized.
type BinarizationParams struct {
	CMax          uint8 // TU
	CMaxTEG       uint8 // TEG, STEG
	CMaxDTU       uint8 // DTU, SDTU
	SplitUnitSize uint8 // SUTU, SSUTU, DTU, SDTU; 4 bits
}

// ContextParams controls context modelling for a non-bypass binarization.
type ContextParams struct {
	// AdaptiveMode enables probability adaptation. When false every
	// context keeps its initial state.
	AdaptiveMode bool

	// InitValues optionally initialises the bank. Its length is the
	// num_contexts field; empty means the bank size is derived from the
	// binarization and every context starts at state 0.
	InitValues []uint8

	// ShareSubsymCtx lets all subsymbols of a symbol use one set of
	// contexts. Only serialized when a symbol has several subsymbols.
	ShareSubsymCtx bool
}

// Binarization is the cabac_binarization syntax structure.
type Binarization struct {
	ID      BinarizationID
	Bypass  bool
	Params  BinarizationParams
	Context ContextParams
}

// Clone returns a deep copy of b.
func (b *Binarization) Clone() Binarization {
	c := *b
	if b.Context.InitValues != nil {
		c.Context.InitValues = append([]uint8(nil), b.Context.InitValues...)
	}
	return c
}

// Validate checks the binarization parameters.
func (b *Binarization) Validate() error {
	if !b.ID.Valid() {
		return fmt.Errorf("%w: binarization ID %d", ErrInvalidConfig, uint8(b.ID))
	}
	switch b.ID {
	case TU:
		if b.Params.CMax == 0 {
			return fmt.Errorf("%w: TU cmax must be non-zero", ErrInvalidConfig)
		}
	case SUTU, SSUTU, DTU, SDTU:
		if b.Params.SplitUnitSize == 0 || b.Params.SplitUnitSize > 15 {
			return fmt.Errorf("%w: split unit size %d", ErrInvalidConfig, b.Params.SplitUnitSize)
		}
	}
	if len(b.Context.InitValues) > maxContexts {
		return fmt.Errorf("%w: %d context init values", ErrInvalidConfig, len(b.Context.InitValues))
	}
	for i, v := range b.Context.InitValues {
		if v > 0x7F {
			return fmt.Errorf("%w: context init value %d at %d exceeds 7 bits", ErrInvalidConfig, v, i)
		}
	}
	return nil
}

// Write serializes b. Whether share_subsym_ctx_flag is present depends on
// the support values.
func (b *Binarization) Write(w *bio.Writer, sv SupportValues) error {
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(b.ID), 8)
	f.Flag(b.Bypass)
	switch b.ID {
	case TU:
		f.Bits(uint64(b.Params.CMax), 8)
	case TEG, STEG:
		f.Bits(uint64(b.Params.CMaxTEG), 8)
	case SUTU, SSUTU:
		f.Bits(uint64(b.Params.SplitUnitSize), 4)
	case DTU, SDTU:
		f.Bits(uint64(b.Params.CMaxDTU), 8)
		f.Bits(uint64(b.Params.SplitUnitSize), 4)
	}
	if !b.Bypass {
		f.Flag(b.Context.AdaptiveMode)
		f.Bits(uint64(len(b.Context.InitValues)), 16)
		for _, v := range b.Context.InitValues {
			f.Bits(uint64(v), 7)
		}
		if sv.CodingSubsymSize < sv.OutputSymbolSize {
			f.Flag(b.Context.ShareSubsymCtx)
		}
	}
	return f.Err()
}

// Read parses a cabac_binarization structure.
func (b *Binarization) Read(r *bio.Reader, sv SupportValues) error {
	f := bio.NewFieldReader(r)
	*b = Binarization{}
	b.ID = BinarizationID(f.U8(8))
	b.Bypass = f.Flag()
	if f.Err() == nil && !b.ID.Valid() {
		return fmt.Errorf("%w: binarization ID %d", ErrInvalidConfig, uint8(b.ID))
	}
	switch b.ID {
	case TU:
		b.Params.CMax = f.U8(8)
	case TEG, STEG:
		b.Params.CMaxTEG = f.U8(8)
	case SUTU, SSUTU:
		b.Params.SplitUnitSize = f.U8(4)
	case DTU, SDTU:
		b.Params.CMaxDTU = f.U8(8)
		b.Params.SplitUnitSize = f.U8(4)
	}
	if !b.Bypass {
		b.Context.AdaptiveMode = f.Flag()
		n := int(f.Bits(16))
		if n > 0 && f.Err() == nil {
			b.Context.InitValues = make([]uint8, n)
			for i := range b.Context.InitValues {
				b.Context.InitValues[i] = f.U8(7)
			}
		}
		if sv.CodingSubsymSize < sv.OutputSymbolSize {
			b.Context.ShareSubsymCtx = f.Flag()
		}
	}
	if err := f.Err(); err != nil {
		return err
	}
	return b.Validate()
}
