package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// SubsymTransform is applied to each subsymbol before binarization.
type SubsymTransform uint8

// Subsymbol transforms.
const (
	SubsymNone SubsymTransform = 0
	SubsymLUT  SubsymTransform = 1
	SubsymDiff SubsymTransform = 2
)

func (t SubsymTransform) String() string {
	switch t {
	case SubsymNone:
		return "NO_TRANSFORM"
	case SubsymLUT:
		return "LUT_TRANSFORM"
	case SubsymDiff:
		return "DIFF_CODING"
	}
	return fmt.Sprintf("SUBSYM_TRANSFORM(%d)", uint8(t))
}

// TransformedSubseq configures the entropy coding of one physical stream.
type TransformedSubseq struct {
	SubsymTransform SubsymTransform
	Support         SupportValues
	Binarization    Binarization
}

// Clone returns a deep copy of t.
func (t *TransformedSubseq) Clone() TransformedSubseq {
	c := *t
	c.Binarization = t.Binarization.Clone()
	return c
}

// Validate checks that the configuration can be coded.
func (t *TransformedSubseq) Validate() error {
	switch t.SubsymTransform {
	case SubsymNone, SubsymDiff:
	case SubsymLUT:
		return fmt.Errorf("%w: %v", ErrUnsupported, t.SubsymTransform)
	default:
		return fmt.Errorf("%w: subsymbol transform %d", ErrInvalidConfig, uint8(t.SubsymTransform))
	}
	if err := t.Support.Validate(); err != nil {
		return err
	}
	if err := t.Binarization.Validate(); err != nil {
		return err
	}
	if t.SubsymTransform == SubsymDiff && t.Support.CodingOrder != 0 {
		return fmt.Errorf("%w: DIFF coding with coding order %d", ErrInvalidConfig, t.Support.CodingOrder)
	}
	if t.Binarization.Bypass && t.Support.CodingOrder != 0 {
		return fmt.Errorf("%w: bypass coding with coding order %d", ErrInvalidConfig, t.Support.CodingOrder)
	}
	_, err := t.StateVars()
	return err
}

// Write serializes the transformed subsequence configuration.
func (t *TransformedSubseq) Write(w *bio.Writer) error {
	if err := w.WriteBits(uint64(t.SubsymTransform), 8); err != nil {
		return err
	}
	if err := t.Support.Write(w, t.SubsymTransform); err != nil {
		return err
	}
	return t.Binarization.Write(w, t.Support)
}

// Read parses a transformed subsequence configuration and validates it.
func (t *TransformedSubseq) Read(r *bio.Reader) error {
	v, err := r.ReadBits(8)
	if err != nil {
		return err
	}
	*t = TransformedSubseq{SubsymTransform: SubsymTransform(v)}
	if err := t.Support.Read(r, t.SubsymTransform); err != nil {
		return fmt.Errorf("support values: %w", err)
	}
	if err := t.Binarization.Read(r, t.Support); err != nil {
		return fmt.Errorf("binarization: %w", err)
	}
	return t.Validate()
}
