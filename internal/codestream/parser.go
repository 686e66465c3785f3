package codestream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// maxDataUnitSize bounds the body of a single data unit.
const maxDataUnitSize = 1 << 30

// DataUnit is a parsed data unit: *RawReference, *ParameterSet or
// *AccessUnit.
type DataUnit interface {
	Type() DataUnitType
}

// Parser reads MPEG-G data unit streams.
type Parser struct {
	r      io.Reader
	psets  ParameterSets
	offset int64
	state  parserState
}

// parserState tracks the parser state machine.
type parserState int

const (
	stateInit parserState = iota
	stateUnits
	stateEOF
)

// NewParser creates a new data unit parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:     r,
		psets: make(ParameterSets),
		state: stateInit,
	}
}

// ParameterSets returns the parameter sets parsed so far.
func (p *Parser) ParameterSets() ParameterSets {
	return p.psets
}

// Offset returns the stream offset of the next data unit.
func (p *Parser) Offset() int64 {
	return p.offset
}

// Next reads the next data unit. It returns io.EOF at a clean end of
// stream. Parameter sets are added to the table before they are returned,
// and access units naming an unknown parameter set fail with
// ErrUnknownParameterSet.
func (p *Parser) Next() (DataUnit, error) {
	if p.state == stateEOF {
		return nil, io.EOF
	}
	var hdr [9]byte
	n, err := io.ReadFull(p.r, hdr[:1])
	if n == 0 && err == io.EOF {
		p.state = stateEOF
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data unit type: %w", err)
	}
	p.state = stateUnits

	t := DataUnitType(hdr[0])
	var hdrLen int
	var size uint64
	switch t {
	case TypeRawReference:
		hdrLen = 9
	case TypeParameterSet, TypeAccessUnit:
		hdrLen = 5
	default:
		return nil, fmt.Errorf("%w: type %d at offset %d", ErrInvalidDataUnit, hdr[0], p.offset)
	}
	if _, err := io.ReadFull(p.r, hdr[1:hdrLen]); err != nil {
		return nil, fmt.Errorf("failed to read %v header: %w", t, noEOF(err))
	}
	switch t {
	case TypeRawReference:
		size = binary.BigEndian.Uint64(hdr[1:])
	case TypeParameterSet:
		size = uint64(binary.BigEndian.Uint32(hdr[1:]) & (1<<22 - 1))
	case TypeAccessUnit:
		size = uint64(binary.BigEndian.Uint32(hdr[1:]) & (1<<29 - 1))
	}
	if size < uint64(hdrLen) || size-uint64(hdrLen) > maxDataUnitSize {
		return nil, fmt.Errorf("%w: %v size %d at offset %d", ErrInvalidDataUnit, t, size, p.offset)
	}

	body, err := io.ReadAll(io.LimitReader(p.r, int64(size)-int64(hdrLen)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %v body: %w", t, err)
	}
	if len(body) != int(size)-hdrLen {
		return nil, fmt.Errorf("failed to read %v body: %w", t, io.ErrUnexpectedEOF)
	}

	unit, err := p.parseBody(t, body)
	if err != nil {
		return nil, fmt.Errorf("%v at offset %d: %w", t, p.offset, err)
	}
	p.offset += int64(size)
	return unit, nil
}

func (p *Parser) parseBody(t DataUnitType, body []byte) (DataUnit, error) {
	br := bio.NewReader(bytes.NewReader(body))
	var unit DataUnit
	switch t {
	case TypeRawReference:
		rr, err := readRawReference(br)
		if err != nil {
			return nil, err
		}
		unit = rr
	case TypeParameterSet:
		ps, err := ReadParameterSet(br)
		if err != nil {
			return nil, err
		}
		unit = ps
	case TypeAccessUnit:
		au, err := p.readAccessUnit(br, len(body))
		if err != nil {
			return nil, err
		}
		unit = au
	}
	br.Align()
	if used := br.BitsRead() / 8; used != uint64(len(body)) {
		return nil, fmt.Errorf("%w: %d of %d body bytes used", ErrInvalidDataUnit, used, len(body))
	}
	if ps, ok := unit.(*ParameterSet); ok {
		p.psets[ps.ID] = ps
	}
	return unit, nil
}

func (p *Parser) readAccessUnit(br *bio.Reader, size int) (*AccessUnit, error) {
	h, _, err := ReadAUHeader(br, p.psets)
	if err != nil {
		return nil, err
	}
	au := &AccessUnit{Header: *h, Blocks: make([]Block, 0, h.NumBlocks)}
	for i := 0; i < int(h.NumBlocks); i++ {
		remaining := size - int(br.BitsRead()/8)
		b, err := ReadBlock(br, remaining)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		au.Blocks = append(au.Blocks, *b)
	}
	return au, nil
}

// ReadAll reads data units until the end of the stream.
func (p *Parser) ReadAll() ([]DataUnit, error) {
	var units []DataUnit
	for {
		u, err := p.Next()
		if err == io.EOF {
			return units, nil
		}
		if err != nil {
			return units, err
		}
		units = append(units, u)
	}
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
