package codestream

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// maxBlockPayload is the largest payload a block size field can state.
const maxBlockPayload = 1<<29 - 1

// AUHeader holds the header of an access unit.
type AUHeader struct {
	ID             uint32
	NumBlocks      uint8
	ParameterSetID uint8
	Class          ClassType
	ReadsCount     uint32

	// Present for classes N and M.
	MMThreshold uint16
	MMCount     uint32

	// Present for reference datasets.
	RefSequenceID    uint16
	RefStartPosition uint64
	RefEndPosition   uint64

	// Present for every class but U.
	SequenceID    uint16
	StartPosition uint64
	EndPosition   uint64
}

func (h *AUHeader) validate(ps *ParameterSet) error {
	if !h.Class.Valid() {
		return fmt.Errorf("%w: access unit class %v", ErrInvalidDataUnit, h.Class)
	}
	if _, ok := ps.ClassIndex(h.Class); !ok {
		return fmt.Errorf("%w: class %v not in parameter set %d", ErrInvalidDataUnit, h.Class, ps.ID)
	}
	limit := uint64(1)<<ps.PositionBits() - 1
	for _, p := range []uint64{h.RefStartPosition, h.RefEndPosition, h.StartPosition, h.EndPosition} {
		if p > limit {
			return fmt.Errorf("%w: position %d exceeds %d bits", ErrInvalidDataUnit, p, ps.PositionBits())
		}
	}
	return nil
}

// Write writes the header, byte aligned. ps must be the parameter set the
// header names.
func (h *AUHeader) Write(w *bio.Writer, ps *ParameterSet) error {
	if h.ParameterSetID != ps.ID {
		return fmt.Errorf("%w: header names parameter set %d, got %d", ErrInvalidDataUnit, h.ParameterSetID, ps.ID)
	}
	if err := h.validate(ps); err != nil {
		return err
	}
	pos := ps.PositionBits()
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(h.ID), 32)
	f.Bits(uint64(h.NumBlocks), 8)
	f.Bits(uint64(h.ParameterSetID), 8)
	f.Bits(uint64(h.Class), 4)
	f.Bits(uint64(h.ReadsCount), 32)
	if h.Class.HasMismatchFields() {
		f.Bits(uint64(h.MMThreshold), 16)
		f.Bits(uint64(h.MMCount), 32)
	}
	if ps.DatasetType == DatasetReference {
		f.Bits(uint64(h.RefSequenceID), 16)
		f.Bits(h.RefStartPosition, pos)
		f.Bits(h.RefEndPosition, pos)
	}
	if h.Class != ClassU {
		f.Bits(uint64(h.SequenceID), 16)
		f.Bits(h.StartPosition, pos)
		f.Bits(h.EndPosition, pos)
	}
	f.Align()
	return f.Err()
}

// ReadAUHeader reads an access unit header, looking up the parameter set
// it names in psets.
func ReadAUHeader(r *bio.Reader, psets ParameterSets) (*AUHeader, *ParameterSet, error) {
	f := bio.NewFieldReader(r)
	h := &AUHeader{
		ID:             f.U32(32),
		NumBlocks:      f.U8(8),
		ParameterSetID: f.U8(8),
		Class:          ClassType(f.U8(4)),
		ReadsCount:     f.U32(32),
	}
	if err := f.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read access unit header: %w", err)
	}
	ps, err := psets.Lookup(h.ParameterSetID)
	if err != nil {
		return nil, nil, err
	}

	pos := ps.PositionBits()
	if h.Class.HasMismatchFields() {
		h.MMThreshold = f.U16(16)
		h.MMCount = f.U32(32)
	}
	if ps.DatasetType == DatasetReference {
		h.RefSequenceID = f.U16(16)
		h.RefStartPosition = f.Bits(pos)
		h.RefEndPosition = f.Bits(pos)
	}
	if h.Class != ClassU {
		h.SequenceID = f.U16(16)
		h.StartPosition = f.Bits(pos)
		h.EndPosition = f.Bits(pos)
	}
	f.Align()
	if err := f.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read access unit header: %w", err)
	}
	if err := h.validate(ps); err != nil {
		return nil, nil, err
	}
	return h, ps, nil
}

// Block carries the coded payload of one descriptor.
type Block struct {
	Descriptor paramcabac.DescriptorID
	Payload    []byte
}

// Write writes the block header and payload.
func (b *Block) Write(w *bio.Writer) error {
	if !b.Descriptor.Valid() {
		return fmt.Errorf("%w: block descriptor %d", ErrInvalidDataUnit, b.Descriptor)
	}
	if len(b.Payload) > maxBlockPayload {
		return fmt.Errorf("%w: block payload of %d bytes", ErrInvalidDataUnit, len(b.Payload))
	}
	f := bio.NewFieldWriter(w)
	f.Bits(0, 1)
	f.Bits(uint64(b.Descriptor), 7)
	f.Bits(0, 3)
	f.Bits(uint64(len(b.Payload)), 29)
	f.Bytes(b.Payload)
	return f.Err()
}

// ReadBlock reads a block. limit bounds the payload size, since the
// payload is read into memory.
func ReadBlock(r *bio.Reader, limit int) (*Block, error) {
	f := bio.NewFieldReader(r)
	f.Bits(1)
	desc := paramcabac.DescriptorID(f.U8(7))
	f.Bits(3)
	size := int(f.Bits(29))
	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("failed to read block header: %w", err)
	}
	if !desc.Valid() {
		return nil, fmt.Errorf("%w: block descriptor %d", ErrInvalidDataUnit, desc)
	}
	if size > limit {
		return nil, fmt.Errorf("%w: block payload of %d bytes exceeds %d", ErrInvalidDataUnit, size, limit)
	}
	payload := f.Bytes(size)
	if err := f.Err(); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed to read block payload: %w", err)
	}
	return &Block{Descriptor: desc, Payload: payload}, nil
}

// AccessUnit is an access unit header with its blocks.
type AccessUnit struct {
	Header AUHeader
	Blocks []Block
}

// Type implements DataUnit.
func (*AccessUnit) Type() DataUnitType { return TypeAccessUnit }

// Type implements DataUnit.
func (*ParameterSet) Type() DataUnitType { return TypeParameterSet }

// RefSequence is one sequence of a raw reference.
type RefSequence struct {
	ID       uint16
	Start    uint64 // 40 bits
	End      uint64 // 40 bits
	Sequence string
}

// RawReference carries reference sequences verbatim.
type RawReference struct {
	Sequences []RefSequence
}

// Type implements DataUnit.
func (*RawReference) Type() DataUnitType { return TypeRawReference }

func (rr *RawReference) write(w *bio.Writer) error {
	if len(rr.Sequences) > 1<<16-1 {
		return fmt.Errorf("%w: %d reference sequences", ErrInvalidDataUnit, len(rr.Sequences))
	}
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(len(rr.Sequences)), 16)
	for _, s := range rr.Sequences {
		if s.Start >= 1<<40 || s.End >= 1<<40 {
			return fmt.Errorf("%w: reference sequence %d position exceeds 40 bits", ErrInvalidDataUnit, s.ID)
		}
		f.Bits(uint64(s.ID), 16)
		f.Bits(s.Start, 40)
		f.Bits(s.End, 40)
	}
	for _, s := range rr.Sequences {
		f.CString(s.Sequence)
	}
	return f.Err()
}

func readRawReference(r *bio.Reader) (*RawReference, error) {
	f := bio.NewFieldReader(r)
	n := int(f.Bits(16))
	rr := &RawReference{}
	for i := 0; i < n && f.Err() == nil; i++ {
		rr.Sequences = append(rr.Sequences, RefSequence{
			ID:    f.U16(16),
			Start: f.Bits(40),
			End:   f.Bits(40),
		})
	}
	for i := range rr.Sequences {
		rr.Sequences[i].Sequence = f.CString()
	}
	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("failed to read raw reference: %w", err)
	}
	return rr, nil
}
