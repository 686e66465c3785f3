package mpegg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/box"
	"github.com/mrjoshuak/go-mpegg/internal/codestream"
	"github.com/mrjoshuak/go-mpegg/internal/gabac"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// decoder handles dataset decoding.
type decoder struct {
	r      *bufio.Reader
	format Format

	header    DatasetHeader
	psets     []*ParameterSet
	units     []*codestream.AccessUnit
	reference *RawReference
}

// newDecoder creates a new decoder.
func newDecoder(r io.Reader) *decoder {
	return &decoder{
		r: bufio.NewReader(r),
	}
}

// decode decodes the dataset.
func (d *decoder) decode() (*Dataset, error) {
	if err := d.readFormat(); err != nil {
		return nil, fmt.Errorf("reading format: %w", err)
	}

	ds := &Dataset{
		Header:        d.header,
		ParameterSets: d.psets,
		AccessUnits:   make([]*AccessUnit, len(d.units)),
		Reference:     d.reference,
	}
	table := make(codestream.ParameterSets, len(d.psets))
	for _, ps := range d.psets {
		if _, dup := table[ps.ID]; dup {
			return nil, fmt.Errorf("%w: parameter set ID %d defined twice", ErrInvalidDataset, ps.ID)
		}
		table[ps.ID] = ps
	}

	var jobs []descriptorJob
	for i, u := range d.units {
		au := &AccessUnit{Header: u.Header}
		ds.AccessUnits[i] = au
		seen := make(map[paramcabac.DescriptorID]bool, len(u.Blocks))
		for k, b := range u.Blocks {
			if seen[b.Descriptor] {
				return nil, fmt.Errorf("%w: access unit %d carries descriptor %v twice",
					ErrInvalidDataset, u.Header.ID, b.Descriptor)
			}
			seen[b.Descriptor] = true
			jobs = append(jobs, descriptorJob{index: len(jobs), au: i, block: k, desc: b.Descriptor})
		}
	}

	err := runJobs(jobs, 0, func(job descriptorJob) error {
		u := d.units[job.au]
		if err := decodeBlock(ds.AccessUnits[job.au], &u.Blocks[job.block], table); err != nil {
			return fmt.Errorf("access unit %d, descriptor %v: %w", u.Header.ID, job.desc, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding blocks: %w", err)
	}
	return ds, nil
}

// decodeBlock entropy decodes one block into au.
func decodeBlock(au *AccessUnit, b *codestream.Block, psets codestream.ParameterSets) error {
	ps, err := psets.Lookup(au.Header.ParameterSetID)
	if err != nil {
		return err
	}
	cfg, err := ps.DescriptorConfig(b.Descriptor, au.Header.Class)
	if err != nil {
		return err
	}
	data := &au.Descriptors[b.Descriptor]

	switch c := cfg.(type) {
	case *paramcabac.Regular:
		data.Subsequences, err = gabac.DecodeDescriptor(b.Payload, c)
	case *paramcabac.Tokentype:
		data.Tokens, err = gabac.DecodeTokentype(b.Payload, c)
	default:
		err = fmt.Errorf("%w: block for a descriptor configured absent", ErrInvalidDataset)
	}
	return err
}

// readMetadata reads only the metadata without decoding.
func (d *decoder) readMetadata() (*Metadata, error) {
	if err := d.readFormat(); err != nil {
		return nil, err
	}

	m := &Metadata{
		Format:        d.format,
		Header:        d.header,
		ParameterSets: d.psets,
		AccessUnits:   make([]AUHeader, len(d.units)),
		BlockSizes:    make([]map[DescriptorID]int, len(d.units)),
		Reference:     d.reference,
	}
	for i, u := range d.units {
		m.AccessUnits[i] = u.Header
		m.BlockSizes[i] = make(map[DescriptorID]int, len(u.Blocks))
		for _, b := range u.Blocks {
			m.BlockSizes[i][b.Descriptor] = len(b.Payload)
		}
	}
	return m, nil
}

// readFormat detects the stream format and parses its structure.
func (d *decoder) readFormat() error {
	// Peek at first bytes to detect format
	magic, err := d.r.Peek(4)
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: %d byte stream", ErrUnknownFormat, len(magic))
		}
		return err
	}

	// Check for a container key
	switch box.Key(binary.BigEndian.Uint32(magic)) {
	case box.KeyFileHeader, box.KeyDatasetHeader:
		d.format = FormatContainer
		return d.readContainer()
	}

	// Check for a data unit type
	switch codestream.DataUnitType(magic[0]) {
	case codestream.TypeRawReference, codestream.TypeParameterSet, codestream.TypeAccessUnit:
		d.format = FormatDataUnits
		return d.readDataUnits()
	}

	return fmt.Errorf("%w: leading bytes %x", ErrUnknownFormat, magic)
}

// readContainer parses a box container.
func (d *decoder) readContainer() error {
	c, err := box.ReadContainer(d.r)
	if err != nil {
		return err
	}
	d.header = c.DatasetHeader
	d.psets = c.ParameterSets
	d.units = c.AccessUnits
	return nil
}

// readDataUnits parses a data unit stream.
func (d *decoder) readDataUnits() error {
	p := codestream.NewParser(d.r)
	for {
		u, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch u := u.(type) {
		case *codestream.RawReference:
			if d.reference != nil {
				return fmt.Errorf("%w: second raw reference", ErrInvalidDataset)
			}
			d.reference = u
		case *codestream.ParameterSet:
			d.psets = append(d.psets, u)
		case *codestream.AccessUnit:
			d.units = append(d.units, u)
		}
	}
}
