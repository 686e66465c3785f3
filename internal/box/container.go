package box

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
	"github.com/mrjoshuak/go-mpegg/internal/codestream"
)

// File header constants.
const (
	MajorBrand   = "MPEG-G"
	MinorVersion = "2000"
)

// FileHeader represents the flhd box.
type FileHeader struct {
	MajorBrand   string // 6 bytes
	MinorVersion string // 4 bytes
}

// Parse parses the file header box body.
func (h *FileHeader) Parse(data []byte) error {
	if len(data) != 10 {
		return fmt.Errorf("%w: file header body of %d bytes", ErrInvalidBoxLength, len(data))
	}
	h.MajorBrand = string(data[0:6])
	h.MinorVersion = string(data[6:10])
	return nil
}

// Bytes returns the box body.
func (h *FileHeader) Bytes() []byte {
	data := make([]byte, 10)
	copy(data[0:6], h.MajorBrand)
	copy(data[6:10], h.MinorVersion)
	return data
}

// DatasetHeader represents the dthd box.
type DatasetHeader struct {
	GroupID     uint8
	ID          uint16
	Version     string // 4 bytes
	Pos40Bits   bool
	DatasetType codestream.DatasetType
}

// Parse parses the dataset header box body.
func (h *DatasetHeader) Parse(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("%w: dataset header body of %d bytes", ErrInvalidBoxLength, len(data))
	}
	f := bio.NewFieldReader(bio.NewReader(bytes.NewReader(data)))
	h.GroupID = f.U8(8)
	h.ID = f.U16(16)
	h.Version = string(f.Bytes(4))
	h.Pos40Bits = f.Flag()
	h.DatasetType = codestream.DatasetType(f.U8(4))
	f.Align()
	return f.Err()
}

// Bytes returns the box body.
func (h *DatasetHeader) Bytes() []byte {
	var buf bytes.Buffer
	f := bio.NewFieldWriter(bio.NewWriter(&buf))
	f.Bits(uint64(h.GroupID), 8)
	f.Bits(uint64(h.ID), 16)
	version := make([]byte, 4)
	copy(version, h.Version)
	f.Bytes(version)
	f.Flag(h.Pos40Bits)
	f.Bits(uint64(h.DatasetType), 4)
	f.Align()
	return buf.Bytes()
}

// Container is a parsed dataset: its headers, parameter sets and access
// units in stream order.
type Container struct {
	FileHeader    *FileHeader
	DatasetHeader DatasetHeader
	ParameterSets []*codestream.ParameterSet
	AccessUnits   []*codestream.AccessUnit
}

// WriteContainer writes c as flhd (when present), dthd, pars and aucn
// boxes. Every access unit must name one of c.ParameterSets.
func WriteContainer(w io.Writer, c *Container) error {
	bw := NewWriter(w)
	if c.FileHeader != nil {
		if err := bw.WriteBox(&Box{Key: KeyFileHeader, Body: c.FileHeader.Bytes()}); err != nil {
			return err
		}
	}
	if err := bw.WriteBox(&Box{Key: KeyDatasetHeader, Body: c.DatasetHeader.Bytes()}); err != nil {
		return err
	}

	psets := make(codestream.ParameterSets, len(c.ParameterSets))
	for _, ps := range c.ParameterSets {
		var buf bytes.Buffer
		if err := ps.Write(bio.NewWriter(&buf)); err != nil {
			return fmt.Errorf("parameter set %d: %w", ps.ID, err)
		}
		if err := bw.WriteBox(&Box{Key: KeyParameterSet, Body: buf.Bytes()}); err != nil {
			return err
		}
		psets[ps.ID] = ps
	}

	for _, au := range c.AccessUnits {
		body, err := accessUnitBody(au, psets)
		if err != nil {
			return fmt.Errorf("access unit %d: %w", au.Header.ID, err)
		}
		if err := bw.WriteBox(&Box{Key: KeyAUContainer, Body: body}); err != nil {
			return err
		}
	}
	return nil
}

func accessUnitBody(au *codestream.AccessUnit, psets codestream.ParameterSets) ([]byte, error) {
	ps, err := psets.Lookup(au.Header.ParameterSetID)
	if err != nil {
		return nil, err
	}
	if len(au.Blocks) > 255 {
		return nil, fmt.Errorf("%w: %d blocks", codestream.ErrInvalidDataUnit, len(au.Blocks))
	}
	h := au.Header
	h.NumBlocks = uint8(len(au.Blocks))
	var hdr bytes.Buffer
	if err := h.Write(bio.NewWriter(&hdr), ps); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	body.Write((&Box{Key: KeyAUHeader, Body: hdr.Bytes()}).Bytes())
	w := bio.NewWriter(&body)
	for i := range au.Blocks {
		if err := au.Blocks[i].Write(w); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return body.Bytes(), nil
}

// readerState tracks which boxes may follow.
type readerState int

const (
	stateStart readerState = iota
	stateFileHeader
	stateDatasetHeader
	stateParameterSets
	stateAccessUnits
)

// ReadContainer parses a container. Boxes must appear as an optional
// flhd, one dthd, then pars boxes, then aucn boxes; an access unit naming
// a parameter set that has not been seen fails with
// codestream.ErrUnknownParameterSet. Unknown keys are skipped.
func ReadContainer(r io.Reader) (*Container, error) {
	br := NewReader(r)
	c := &Container{}
	psets := make(codestream.ParameterSets)
	state := stateStart

	for {
		offset := br.Offset()
		b, err := br.ReadBox()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch b.Key {
		case KeyFileHeader:
			if state != stateStart {
				return nil, fmt.Errorf("%w: %v at offset %d", ErrOutOfOrder, b.Key, offset)
			}
			c.FileHeader = &FileHeader{}
			if err := c.FileHeader.Parse(b.Body); err != nil {
				return nil, err
			}
			state = stateFileHeader

		case KeyDatasetHeader:
			if state != stateStart && state != stateFileHeader {
				return nil, fmt.Errorf("%w: %v at offset %d", ErrOutOfOrder, b.Key, offset)
			}
			if err := c.DatasetHeader.Parse(b.Body); err != nil {
				return nil, err
			}
			state = stateDatasetHeader

		case KeyParameterSet:
			if state != stateDatasetHeader && state != stateParameterSets {
				return nil, fmt.Errorf("%w: %v at offset %d", ErrOutOfOrder, b.Key, offset)
			}
			ps, err := readParameterSet(b.Body)
			if err != nil {
				return nil, fmt.Errorf("parameter set at offset %d: %w", offset, err)
			}
			psets[ps.ID] = ps
			c.ParameterSets = append(c.ParameterSets, ps)
			state = stateParameterSets

		case KeyAUContainer:
			if state < stateDatasetHeader {
				return nil, fmt.Errorf("%w: %v at offset %d", ErrOutOfOrder, b.Key, offset)
			}
			au, err := readAccessUnit(b.Body, psets)
			if err != nil {
				return nil, fmt.Errorf("access unit at offset %d: %w", offset, err)
			}
			c.AccessUnits = append(c.AccessUnits, au)
			state = stateAccessUnits
		}
	}

	if state < stateDatasetHeader {
		return nil, fmt.Errorf("%w: no dataset header", ErrOutOfOrder)
	}
	return c, nil
}

func readParameterSet(body []byte) (*codestream.ParameterSet, error) {
	r := bio.NewReader(bytes.NewReader(body))
	ps, err := codestream.ReadParameterSet(r)
	if err != nil {
		return nil, err
	}
	if used := r.BitsRead() / 8; used != uint64(len(body)) {
		return nil, fmt.Errorf("%w: %d of %d body bytes used", ErrInvalidBoxLength, used, len(body))
	}
	return ps, nil
}

func readAccessUnit(body []byte, psets codestream.ParameterSets) (*codestream.AccessUnit, error) {
	hb, err := NewReader(bytes.NewReader(body)).ReadBox()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	if hb.Key != KeyAUHeader {
		return nil, fmt.Errorf("%w: %v before access unit header", ErrOutOfOrder, hb.Key)
	}

	hr := bio.NewReader(bytes.NewReader(hb.Body))
	h, _, err := codestream.ReadAUHeader(hr, psets)
	if err != nil {
		return nil, err
	}
	if used := hr.BitsRead() / 8; used != uint64(len(hb.Body)) {
		return nil, fmt.Errorf("%w: %d of %d header bytes used", ErrInvalidBoxLength, used, len(hb.Body))
	}

	rest := body[hb.Len():]
	r := bio.NewReader(bytes.NewReader(rest))
	au := &codestream.AccessUnit{Header: *h, Blocks: make([]codestream.Block, 0, h.NumBlocks)}
	for i := 0; i < int(h.NumBlocks); i++ {
		blk, err := codestream.ReadBlock(r, len(rest)-int(r.BitsRead()/8))
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		au.Blocks = append(au.Blocks, *blk)
	}
	if used := r.BitsRead() / 8; used != uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %d of %d block bytes used", ErrInvalidBoxLength, used, len(rest))
	}
	return au, nil
}
