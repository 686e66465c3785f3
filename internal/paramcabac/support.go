package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// SupportValues fix the symbol geometry of a transformed subsequence.
type SupportValues struct {
	// OutputSymbolSize is the symbol width in bits (1..63).
	OutputSymbolSize uint8

	// CodingSubsymSize is the subsymbol width; it must divide
	// OutputSymbolSize.
	CodingSubsymSize uint8

	// CodingOrder is the number of previous subsymbol values (0..2) used
	// for context selection.
	CodingOrder uint8

	// ShareSubsymLUT is carried for the LUT subsymbol transform only.
	ShareSubsymLUT bool

	// ShareSubsymPrv makes all subsymbols of a symbol share one history
	// of previous values.
	ShareSubsymPrv bool
}

// hasShareFlags reports whether the share flags are present in the
// bitstream. They are only meaningful with several subsymbols and a
// non-zero coding order.
func (s *SupportValues) hasShareFlags() bool {
	return s.CodingSubsymSize < s.OutputSymbolSize && s.CodingOrder > 0
}

// NumSubsyms returns the number of subsymbols per symbol.
func (s *SupportValues) NumSubsyms() int {
	if s.CodingSubsymSize == 0 {
		return 0
	}
	return int(s.OutputSymbolSize / s.CodingSubsymSize)
}

// Validate checks the symbol geometry.
func (s *SupportValues) Validate() error {
	switch {
	case s.OutputSymbolSize == 0 || s.OutputSymbolSize > 63:
		return fmt.Errorf("%w: output symbol size %d", ErrInvalidConfig, s.OutputSymbolSize)
	case s.CodingSubsymSize == 0 || s.CodingSubsymSize > s.OutputSymbolSize:
		return fmt.Errorf("%w: coding subsymbol size %d", ErrInvalidConfig, s.CodingSubsymSize)
	case s.OutputSymbolSize%s.CodingSubsymSize != 0:
		return fmt.Errorf("%w: subsymbol size %d does not divide symbol size %d",
			ErrInvalidConfig, s.CodingSubsymSize, s.OutputSymbolSize)
	case s.CodingOrder > 2:
		return fmt.Errorf("%w: coding order %d", ErrInvalidConfig, s.CodingOrder)
	}
	return nil
}

// Write serializes the support_values structure.
func (s *SupportValues) Write(w *bio.Writer, subsym SubsymTransform) error {
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(s.OutputSymbolSize), 6)
	f.Bits(uint64(s.CodingSubsymSize), 6)
	f.Bits(uint64(s.CodingOrder), 2)
	if s.hasShareFlags() {
		if subsym == SubsymLUT {
			f.Flag(s.ShareSubsymLUT)
		}
		f.Flag(s.ShareSubsymPrv)
	}
	return f.Err()
}

// Read parses a support_values structure.
func (s *SupportValues) Read(r *bio.Reader, subsym SubsymTransform) error {
	f := bio.NewFieldReader(r)
	*s = SupportValues{
		OutputSymbolSize: f.U8(6),
		CodingSubsymSize: f.U8(6),
		CodingOrder:      f.U8(2),
	}
	if s.hasShareFlags() {
		if subsym == SubsymLUT {
			s.ShareSubsymLUT = f.Flag()
		}
		s.ShareSubsymPrv = f.Flag()
	}
	if err := f.Err(); err != nil {
		return err
	}
	return s.Validate()
}
