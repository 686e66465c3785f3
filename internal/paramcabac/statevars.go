package paramcabac

import (
	"fmt"
	"math/bits"
)

// StateVars are the values derived from a TransformedSubseq that drive
// subsymbol decomposition and context selection.
type StateVars struct {
	NumSubsyms     int
	NumAlphaSubsym uint64
	NumCtxSubsym   uint64
	CLengthBI      uint8

	// CodingOrderCtxOffset[i] is the stride of the i-th previous value.
	CodingOrderCtxOffset [3]uint64

	// CodingSizeCtxOffset is the stride between subsymbol positions.
	CodingSizeCtxOffset uint64

	// NumCtxTotal is the size of the context bank.
	NumCtxTotal uint64
}

// StateVars derives the state variables of t. It fails when the
// configured bank is too small for the binarization or when the bank
// would exceed the 16-bit context count.
func (t *TransformedSubseq) StateVars() (StateVars, error) {
	sv := &t.Support
	if err := sv.Validate(); err != nil {
		return StateVars{}, err
	}
	css := uint(sv.CodingSubsymSize)
	v := StateVars{
		NumSubsyms:     sv.NumSubsyms(),
		NumAlphaSubsym: 1 << css,
		CLengthBI:      sv.CodingSubsymSize,
	}
	v.NumCtxSubsym = numCtxSubsym(&t.Binarization, sv, v.NumAlphaSubsym)

	order := uint(sv.CodingOrder)
	// numAlpha^order contexts per subsymbol position overflow the bank
	// long before they overflow a uint64.
	if order > 0 && css*order > 16 {
		return StateVars{}, fmt.Errorf("%w: %d-bit subsymbols with coding order %d need too many contexts",
			ErrInvalidConfig, css, order)
	}
	v.CodingOrderCtxOffset = [3]uint64{0, v.NumCtxSubsym, v.NumCtxSubsym * v.NumAlphaSubsym}

	perPosition := v.NumCtxSubsym
	if order > 0 {
		perPosition = v.CodingOrderCtxOffset[order] * v.NumAlphaSubsym
	}
	positions := uint64(v.NumSubsyms)
	if t.Binarization.Context.ShareSubsymCtx {
		positions = 1
	} else {
		v.CodingSizeCtxOffset = perPosition
	}

	if t.Binarization.Bypass {
		return v, nil
	}
	required := positions * perPosition
	if required > maxContexts {
		return StateVars{}, fmt.Errorf("%w: %d contexts required", ErrInvalidConfig, required)
	}
	v.NumCtxTotal = required
	if n := uint64(len(t.Binarization.Context.InitValues)); n > 0 {
		if n < required {
			return StateVars{}, fmt.Errorf("%w: %d contexts configured, %d required", ErrInvalidConfig, n, required)
		}
		v.NumCtxTotal = n
	}
	return v, nil
}

// numCtxSubsym returns the number of contexts one subsymbol position needs
// for a given history.
func numCtxSubsym(b *Binarization, sv *SupportValues, numAlpha uint64) uint64 {
	var n uint64
	switch b.ID.Unsigned() {
	case BI:
		n = uint64(sv.CodingSubsymSize)
	case TU:
		n = uint64(b.Params.CMax)
	case EG:
		n = uint64(bits.Len64(numAlpha + 1))
	case TEG:
		n = uint64(b.Params.CMaxTEG) + uint64(bits.Len64(numAlpha+1))
	case SUTU:
		n = numCtxSUTU(sv.OutputSymbolSize, b.Params.SplitUnitSize)
	case DTU:
		n = uint64(b.Params.CMaxDTU) + numCtxSUTU(sv.OutputSymbolSize, b.Params.SplitUnitSize)
	}
	if b.ID.Signed() {
		n++
	}
	return n
}

func numCtxSUTU(oss, sus uint8) uint64 {
	if sus == 0 {
		return 0
	}
	full := uint64(oss / sus)
	rem := oss % sus
	return full*(1<<sus-1) + (1<<rem - 1)
}
