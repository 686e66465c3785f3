// Package mpegg provides a pure Go implementation of the MPEG-G genomic
// data codec core: CABAC entropy coding of descriptor subsequences and the
// data unit and container formats that carry them.
//
// A Dataset holds parameter sets and access units. Each access unit holds,
// per descriptor, the symbol subsequences produced upstream from reads.
// Encode entropy codes them into blocks and writes either a bare data
// unit stream or a box container; Decode reverses it.
//
// Basic usage for encoding:
//
//	ps, _ := mpegg.DefaultParameterSet(0)
//	ds := &mpegg.Dataset{ParameterSets: []*mpegg.ParameterSet{ps}}
//	au := &mpegg.AccessUnit{Header: mpegg.AUHeader{Class: mpegg.ClassP}}
//	au.Descriptors[mpegg.POS].Subsequences = [][]uint64{positions}
//	ds.AccessUnits = append(ds.AccessUnits, au)
//	err := mpegg.Encode(file, ds, nil)
//
// Basic usage for decoding:
//
//	ds, err := mpegg.Decode(file)
//
// Single subsequences can be coded directly with EncodeSubsequence and
// DecodeSubsequence.
package mpegg

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-mpegg/internal/box"
	"github.com/mrjoshuak/go-mpegg/internal/codestream"
	"github.com/mrjoshuak/go-mpegg/internal/gabac"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// Format constants for MPEG-G streams.
const (
	// FormatContainer wraps the dataset in boxes.
	FormatContainer Format = iota
	// FormatDataUnits is a bare data unit stream.
	FormatDataUnits
)

// Format represents an MPEG-G stream format.
type Format int

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatContainer:
		return "Container"
	case FormatDataUnits:
		return "DataUnits"
	default:
		return "Unknown"
	}
}

// Configuration types.
type (
	// SubsequenceConfig configures the transform and entropy coding of one
	// descriptor subsequence.
	SubsequenceConfig = paramcabac.Subsequence

	// DescriptorConfig is a descriptor decoder configuration: *Regular,
	// *Tokentype or Absent.
	DescriptorConfig = paramcabac.DescriptorConfig

	// ParameterSet holds the coding parameters access units refer to.
	ParameterSet = codestream.ParameterSet

	// AUHeader is the header of an access unit.
	AUHeader = codestream.AUHeader

	// DatasetHeader is the dthd box of a container.
	DatasetHeader = box.DatasetHeader

	// RawReference carries reference sequences in a data unit stream.
	RawReference = codestream.RawReference

	// Tokens holds the token-type subsequences of MSAR and RNAME.
	Tokens = gabac.Tokens

	// DescriptorID identifies a genomic descriptor.
	DescriptorID = paramcabac.DescriptorID

	// ClassType is the record class of an access unit.
	ClassType = codestream.ClassType
)

// Descriptors.
const (
	POS    = paramcabac.POS
	RCOMP  = paramcabac.RCOMP
	FLAGS  = paramcabac.FLAGS
	MMPOS  = paramcabac.MMPOS
	MMTYPE = paramcabac.MMTYPE
	CLIPS  = paramcabac.CLIPS
	UREADS = paramcabac.UREADS
	RLEN   = paramcabac.RLEN
	PAIR   = paramcabac.PAIR
	MSCORE = paramcabac.MSCORE
	MMAP   = paramcabac.MMAP
	MSAR   = paramcabac.MSAR
	RTYPE  = paramcabac.RTYPE
	RGROUP = paramcabac.RGROUP
	QV     = paramcabac.QV
	RNAME  = paramcabac.RNAME
	RFTP   = paramcabac.RFTP
	RFTT   = paramcabac.RFTT

	NumDescriptors = paramcabac.NumDescriptors
)

// Access unit classes.
const (
	ClassP  = codestream.ClassP
	ClassN  = codestream.ClassN
	ClassM  = codestream.ClassM
	ClassI  = codestream.ClassI
	ClassHM = codestream.ClassHM
	ClassU  = codestream.ClassU
)

// DefaultParameterSet returns a parameter set covering every class with
// the default configuration of each descriptor.
func DefaultParameterSet(id uint8) (*ParameterSet, error) {
	return codestream.DefaultParameterSet(id)
}

// Options holds the encoding options.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Workers bounds the number of descriptors coded concurrently.
	// 0 means runtime.GOMAXPROCS(0); 1 codes sequentially.
	Workers int

	// FileHeader writes an flhd box ahead of the dataset header.
	// Only used with FormatContainer.
	FileHeader bool
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() *Options {
	return &Options{
		Format:     FormatContainer,
		FileHeader: true,
	}
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	if o.Format != FormatContainer && o.Format != FormatDataUnits {
		return fmt.Errorf("%w: format %d", ErrInvalidOptions, o.Format)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: %d workers", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// DescriptorData holds the symbols of one descriptor of an access unit.
// Regular descriptors use Subsequences, indexed like the configured
// subsequences; token-type descriptors use Tokens.
type DescriptorData struct {
	Subsequences [][]uint64
	Tokens       *Tokens
}

// Empty reports whether the descriptor carries no data, in which case no
// block is written for it.
func (d *DescriptorData) Empty() bool {
	return d.Subsequences == nil && d.Tokens == nil
}

// AccessUnit is an access unit header with the symbols of each descriptor.
type AccessUnit struct {
	Header      AUHeader
	Descriptors [NumDescriptors]DescriptorData
}

// Dataset is a set of parameter sets and the access units coded with them.
type Dataset struct {
	// Header is the container's dataset header. Pos40Bits and DatasetType
	// are taken from the first parameter set when encoding.
	Header DatasetHeader

	ParameterSets []*ParameterSet
	AccessUnits   []*AccessUnit

	// Reference is carried only by FormatDataUnits.
	Reference *RawReference
}

// Metadata describes a stream without its entropy coded payloads.
type Metadata struct {
	// Format is the detected stream format.
	Format Format

	// Header is the dataset header; zero for FormatDataUnits.
	Header DatasetHeader

	ParameterSets []*ParameterSet
	AccessUnits   []AUHeader

	// BlockSizes holds, per access unit, the payload size of each
	// descriptor block present.
	BlockSizes []map[DescriptorID]int

	Reference *RawReference
}

// EncodeSubsequence transforms and entropy codes one subsequence.
func EncodeSubsequence(symbols []uint64, cfg *SubsequenceConfig) ([]byte, error) {
	return gabac.Encode(symbols, cfg)
}

// DecodeSubsequence reverses EncodeSubsequence. The result must hold
// exactly n symbols.
func DecodeSubsequence(data []byte, cfg *SubsequenceConfig, n int) ([]uint64, error) {
	return gabac.Decode(data, cfg, n)
}

// Encode writes ds to w with the given options. A nil o means
// DefaultOptions.
func Encode(w io.Writer, ds *Dataset, o *Options) error {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.Validate(); err != nil {
		return err
	}
	e := newEncoder(w, ds, o)
	return e.encode()
}

// Decode reads and entropy decodes a dataset in either format.
func Decode(r io.Reader) (*Dataset, error) {
	d := newDecoder(r)
	return d.decode()
}

// DecodeMetadata reads the parameter sets and access unit headers of a
// stream without entropy decoding any block.
func DecodeMetadata(r io.Reader) (*Metadata, error) {
	d := newDecoder(r)
	return d.readMetadata()
}
