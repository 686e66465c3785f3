package codestream

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// Writer writes a data unit stream. Each unit is assembled in memory and
// its size field is backpatched before the unit is written out.
type Writer struct {
	w     io.Writer
	psets ParameterSets
}

// NewWriter creates a data unit writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, psets: make(ParameterSets)}
}

// ParameterSets returns the parameter sets written so far.
func (w *Writer) ParameterSets() ParameterSets {
	return w.psets
}

// WriteRawReference writes a raw reference data unit.
func (w *Writer) WriteRawReference(rr *RawReference) error {
	return w.unit(TypeRawReference, 0, 64, rr.write)
}

// WriteParameterSet writes a parameter set data unit. Later access units
// may reference it by ID.
func (w *Writer) WriteParameterSet(ps *ParameterSet) error {
	if err := w.unit(TypeParameterSet, 10, 22, ps.Write); err != nil {
		return fmt.Errorf("parameter set %d: %w", ps.ID, err)
	}
	w.psets[ps.ID] = ps
	return nil
}

// WriteAccessUnit writes an access unit data unit. The header's block
// count is taken from au.Blocks, and the parameter set it names must have
// been written first.
func (w *Writer) WriteAccessUnit(au *AccessUnit) error {
	ps, err := w.psets.Lookup(au.Header.ParameterSetID)
	if err != nil {
		return err
	}
	if len(au.Blocks) > 255 {
		return fmt.Errorf("%w: %d blocks", ErrInvalidDataUnit, len(au.Blocks))
	}
	h := au.Header
	h.NumBlocks = uint8(len(au.Blocks))
	err = w.unit(TypeAccessUnit, 3, 29, func(bw *bio.Writer) error {
		if err := h.Write(bw, ps); err != nil {
			return err
		}
		for i := range au.Blocks {
			if err := au.Blocks[i].Write(bw); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("access unit %d: %w", h.ID, err)
	}
	return nil
}

// unit writes a data unit whose header is the type byte, reserved bits
// and a size field covering the whole unit.
func (w *Writer) unit(t DataUnitType, reserved, sizeBits uint, body func(*bio.Writer) error) error {
	buf := bio.NewBuffer(nil)
	bw := bio.NewWriter(buf)
	if err := bw.WriteBits(uint64(t), 8); err != nil {
		return err
	}
	if err := bw.WriteBits(0, reserved+sizeBits); err != nil {
		return err
	}
	if err := body(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	size := uint64(buf.Len())
	if sizeBits < 64 && size>>sizeBits != 0 {
		return fmt.Errorf("%w: %v of %d bytes exceeds its %d-bit size field", ErrInvalidDataUnit, t, size, sizeBits)
	}
	if _, err := bw.Seek(1, io.SeekStart); err != nil {
		return err
	}
	if err := bw.WriteBits(size, reserved+sizeBits); err != nil {
		return err
	}
	if _, err := bw.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	_, err := w.w.Write(buf.Bytes())
	return err
}
