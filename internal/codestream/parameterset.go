package codestream

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// DescriptorSubseqCfg holds the decoder configuration of one descriptor.
// It is either shared by every class or class specific, never both: the
// accessors for the other mode fail with ErrClassSpecificConflict.
type DescriptorSubseqCfg struct {
	classSpecific bool
	configs       []paramcabac.DescriptorConfig
}

// NewDescriptorSubseqCfg returns a shared configuration.
func NewDescriptorSubseqCfg(cfg paramcabac.DescriptorConfig) DescriptorSubseqCfg {
	return DescriptorSubseqCfg{configs: []paramcabac.DescriptorConfig{cfg}}
}

// IsClassSpecific reports whether each class has its own configuration.
func (d *DescriptorSubseqCfg) IsClassSpecific() bool {
	return d.classSpecific
}

// Get returns the shared configuration.
func (d *DescriptorSubseqCfg) Get() (paramcabac.DescriptorConfig, error) {
	if d.classSpecific {
		return nil, fmt.Errorf("%w: shared configuration requested", ErrClassSpecificConflict)
	}
	if len(d.configs) == 0 {
		return nil, nil
	}
	return d.configs[0], nil
}

// Set replaces the shared configuration.
func (d *DescriptorSubseqCfg) Set(cfg paramcabac.DescriptorConfig) error {
	if d.classSpecific {
		return fmt.Errorf("%w: shared configuration set", ErrClassSpecificConflict)
	}
	d.configs = []paramcabac.DescriptorConfig{cfg}
	return nil
}

// GetClassSpecific returns the configuration of the class at index i.
func (d *DescriptorSubseqCfg) GetClassSpecific(i int) (paramcabac.DescriptorConfig, error) {
	if !d.classSpecific {
		return nil, fmt.Errorf("%w: class configuration requested", ErrClassSpecificConflict)
	}
	if i < 0 || i >= len(d.configs) {
		return nil, fmt.Errorf("%w: class index %d of %d", ErrInvalidParameterSet, i, len(d.configs))
	}
	return d.configs[i], nil
}

// SetClassSpecific replaces the configuration of the class at index i.
func (d *DescriptorSubseqCfg) SetClassSpecific(i int, cfg paramcabac.DescriptorConfig) error {
	if !d.classSpecific {
		return fmt.Errorf("%w: class configuration set", ErrClassSpecificConflict)
	}
	if i < 0 || i >= len(d.configs) {
		return fmt.Errorf("%w: class index %d of %d", ErrInvalidParameterSet, i, len(d.configs))
	}
	d.configs[i] = cfg
	return nil
}

// EnableClassSpecific switches to one configuration per class, each
// starting as a copy of the shared configuration.
func (d *DescriptorSubseqCfg) EnableClassSpecific(numClasses int) error {
	if d.classSpecific {
		return fmt.Errorf("%w: already class specific", ErrClassSpecificConflict)
	}
	if len(d.configs) == 0 {
		return fmt.Errorf("%w: no shared configuration to copy", ErrInvalidParameterSet)
	}
	shared := d.configs[0]
	d.configs = make([]paramcabac.DescriptorConfig, numClasses)
	for i := range d.configs {
		d.configs[i] = shared.Clone()
	}
	d.classSpecific = true
	return nil
}

// config returns the configuration used for the class at index i in
// either mode.
func (d *DescriptorSubseqCfg) config(i int) paramcabac.DescriptorConfig {
	if !d.classSpecific {
		i = 0
	}
	if i < 0 || i >= len(d.configs) {
		return nil
	}
	return d.configs[i]
}

func (d DescriptorSubseqCfg) clone() DescriptorSubseqCfg {
	c := DescriptorSubseqCfg{classSpecific: d.classSpecific}
	if d.configs != nil {
		c.configs = make([]paramcabac.DescriptorConfig, len(d.configs))
		for i, cfg := range d.configs {
			if cfg != nil {
				c.configs[i] = cfg.Clone()
			}
		}
	}
	return c
}

// CRPS holds the computed reference parameters.
type CRPS struct {
	Algorithm  CRAlgorithm
	PadSize    uint8
	BufMaxSize uint32 // 24 bits
}

// ParameterSet holds the encoding parameters shared by access units.
type ParameterSet struct {
	ID                  uint8
	ParentID            uint8
	DatasetType         DatasetType
	AlphabetID          uint8
	ReadLength          uint32 // 24 bits
	NumTemplateSegments uint8  // 1-4
	MaxAUDataUnitSize   uint32 // 29 bits
	Pos40Bits           bool
	QVDepth             uint8
	ASDepth             uint8

	// Classes lists the access unit classes coded with this parameter
	// set. Class-specific configurations are indexed by position here.
	Classes []ClassType

	Descriptors [paramcabac.NumDescriptors]DescriptorSubseqCfg

	ReadGroups            []string
	MultipleAlignments    bool
	SplicedReads          bool
	MultipleSignatureBase uint32 // 31 bits
	SignatureSize         uint8  // 6 bits, present when the base is non-zero

	CRPS *CRPS
}

// DefaultParameterSet returns a parameter set for aligned data covering
// every class, with the default configuration of each descriptor.
func DefaultParameterSet(id uint8) (*ParameterSet, error) {
	ps := &ParameterSet{
		ID:                  id,
		DatasetType:         DatasetAligned,
		NumTemplateSegments: 1,
		Classes:             []ClassType{ClassP, ClassN, ClassM, ClassI, ClassHM, ClassU},
	}
	for d := range ps.Descriptors {
		cfg, err := paramcabac.DefaultDescriptorConfig(paramcabac.DescriptorID(d))
		if err != nil {
			return nil, err
		}
		ps.Descriptors[d] = NewDescriptorSubseqCfg(cfg)
	}
	return ps, nil
}

// ClassIndex returns the position of class c in ps.Classes.
func (ps *ParameterSet) ClassIndex(c ClassType) (int, bool) {
	for i, cl := range ps.Classes {
		if cl == c {
			return i, true
		}
	}
	return 0, false
}

// DescriptorConfig returns the configuration used for descriptor desc in
// access units of class c.
func (ps *ParameterSet) DescriptorConfig(desc paramcabac.DescriptorID, c ClassType) (paramcabac.DescriptorConfig, error) {
	if !desc.Valid() {
		return nil, fmt.Errorf("%w: descriptor %d", ErrInvalidParameterSet, desc)
	}
	idx, ok := ps.ClassIndex(c)
	if !ok {
		return nil, fmt.Errorf("%w: class %v not in parameter set %d", ErrInvalidParameterSet, c, ps.ID)
	}
	cfg := ps.Descriptors[desc].config(idx)
	if cfg == nil {
		return nil, fmt.Errorf("%w: descriptor %v has no configuration", ErrInvalidParameterSet, desc)
	}
	return cfg, nil
}

// PositionBits returns the width of position fields in access unit
// headers.
func (ps *ParameterSet) PositionBits() uint {
	if ps.Pos40Bits {
		return 40
	}
	return 32
}

// Clone returns a deep copy of ps.
func (ps *ParameterSet) Clone() *ParameterSet {
	c := *ps
	c.Classes = append([]ClassType(nil), ps.Classes...)
	c.ReadGroups = append([]string(nil), ps.ReadGroups...)
	for i := range ps.Descriptors {
		c.Descriptors[i] = ps.Descriptors[i].clone()
	}
	if ps.CRPS != nil {
		crps := *ps.CRPS
		c.CRPS = &crps
	}
	return &c
}

// Validate checks the parameter set for consistency.
func (ps *ParameterSet) Validate() error {
	if ps.DatasetType > DatasetReference {
		return fmt.Errorf("%w: dataset type %d", ErrInvalidParameterSet, ps.DatasetType)
	}

	if ps.ReadLength >= 1<<24 {
		return fmt.Errorf("%w: read length %d", ErrInvalidParameterSet, ps.ReadLength)
	}

	if ps.NumTemplateSegments < 1 || ps.NumTemplateSegments > 4 {
		return fmt.Errorf("%w: %d template segments", ErrInvalidParameterSet, ps.NumTemplateSegments)
	}

	if ps.MaxAUDataUnitSize >= 1<<29 {
		return fmt.Errorf("%w: max AU data unit size %d", ErrInvalidParameterSet, ps.MaxAUDataUnitSize)
	}

	if len(ps.Classes) == 0 || len(ps.Classes) > 15 {
		return fmt.Errorf("%w: %d classes", ErrInvalidParameterSet, len(ps.Classes))
	}
	seen := make(map[ClassType]bool, len(ps.Classes))
	for _, c := range ps.Classes {
		if !c.Valid() || seen[c] {
			return fmt.Errorf("%w: class %v", ErrInvalidParameterSet, c)
		}
		seen[c] = true
	}

	for i := range ps.Descriptors {
		if err := ps.validateDescriptor(paramcabac.DescriptorID(i)); err != nil {
			return err
		}
	}

	if len(ps.ReadGroups) > 1<<16-1 {
		return fmt.Errorf("%w: %d read groups", ErrInvalidParameterSet, len(ps.ReadGroups))
	}

	if ps.MultipleSignatureBase >= 1<<31 {
		return fmt.Errorf("%w: signature base %d", ErrInvalidParameterSet, ps.MultipleSignatureBase)
	}
	if ps.SignatureSize >= 1<<6 {
		return fmt.Errorf("%w: signature size %d", ErrInvalidParameterSet, ps.SignatureSize)
	}

	if ps.CRPS != nil && ps.CRPS.BufMaxSize >= 1<<24 {
		return fmt.Errorf("%w: CR buffer size %d", ErrInvalidParameterSet, ps.CRPS.BufMaxSize)
	}

	return nil
}

func (ps *ParameterSet) validateDescriptor(desc paramcabac.DescriptorID) error {
	d := &ps.Descriptors[desc]
	want := 1
	if d.classSpecific {
		want = len(ps.Classes)
	}
	if len(d.configs) != want {
		return fmt.Errorf("%w: descriptor %v has %d configurations, want %d",
			ErrInvalidParameterSet, desc, len(d.configs), want)
	}
	for _, cfg := range d.configs {
		switch cfg.(type) {
		case paramcabac.Absent:
		case *paramcabac.Tokentype:
			if !desc.IsTokentype() {
				return fmt.Errorf("%w: descriptor %v given a token-type configuration", ErrInvalidParameterSet, desc)
			}
		case *paramcabac.Regular:
			if desc.IsTokentype() {
				return fmt.Errorf("%w: descriptor %v needs a token-type configuration", ErrInvalidParameterSet, desc)
			}
		default:
			return fmt.Errorf("%w: descriptor %v has no configuration", ErrInvalidParameterSet, desc)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("descriptor %v: %w", desc, err)
		}
	}
	return nil
}

// Write writes the parameter set body, byte aligned.
func (ps *ParameterSet) Write(w *bio.Writer) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	f := bio.NewFieldWriter(w)
	f.Bits(uint64(ps.ID), 8)
	f.Bits(uint64(ps.ParentID), 8)
	f.Bits(uint64(ps.DatasetType), 4)
	f.Bits(uint64(ps.AlphabetID), 8)
	f.Bits(uint64(ps.ReadLength), 24)
	f.Bits(uint64(ps.NumTemplateSegments-1), 2)
	f.Bits(0, 6)
	f.Bits(uint64(ps.MaxAUDataUnitSize), 29)
	f.Flag(ps.Pos40Bits)
	f.Bits(uint64(ps.QVDepth), 8)
	f.Bits(uint64(ps.ASDepth), 8)
	f.Bits(uint64(len(ps.Classes)), 4)
	for _, c := range ps.Classes {
		f.Bits(uint64(c), 4)
	}
	if err := f.Err(); err != nil {
		return err
	}

	for i := range ps.Descriptors {
		d := &ps.Descriptors[i]
		if err := w.WriteFlag(d.classSpecific); err != nil {
			return err
		}
		for _, cfg := range d.configs {
			if err := cfg.Write(w); err != nil {
				return fmt.Errorf("descriptor %v: %w", paramcabac.DescriptorID(i), err)
			}
		}
	}

	f.Bits(uint64(len(ps.ReadGroups)), 16)
	for _, g := range ps.ReadGroups {
		f.CString(g)
	}
	f.Flag(ps.MultipleAlignments)
	f.Flag(ps.SplicedReads)
	f.Bits(uint64(ps.MultipleSignatureBase), 31)
	if ps.MultipleSignatureBase > 0 {
		f.Bits(uint64(ps.SignatureSize), 6)
	}
	f.Flag(ps.CRPS != nil)
	if ps.CRPS != nil {
		f.Bits(uint64(ps.CRPS.Algorithm), 8)
		if ps.CRPS.Algorithm.HasBuffer() {
			f.Bits(uint64(ps.CRPS.PadSize), 8)
			f.Bits(uint64(ps.CRPS.BufMaxSize), 24)
		}
	}
	f.Align()
	return f.Err()
}

// ReadParameterSet reads a parameter set body written by Write.
func ReadParameterSet(r *bio.Reader) (*ParameterSet, error) {
	f := bio.NewFieldReader(r)
	ps := &ParameterSet{
		ID:          f.U8(8),
		ParentID:    f.U8(8),
		DatasetType: DatasetType(f.U8(4)),
		AlphabetID:  f.U8(8),
		ReadLength:  f.U32(24),
	}
	ps.NumTemplateSegments = f.U8(2) + 1
	f.Bits(6)
	ps.MaxAUDataUnitSize = f.U32(29)
	ps.Pos40Bits = f.Flag()
	ps.QVDepth = f.U8(8)
	ps.ASDepth = f.U8(8)
	numClasses := int(f.Bits(4))
	ps.Classes = make([]ClassType, numClasses)
	for i := range ps.Classes {
		ps.Classes[i] = ClassType(f.U8(4))
	}
	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameter set header: %w", err)
	}

	for i := range ps.Descriptors {
		desc := paramcabac.DescriptorID(i)
		d := &ps.Descriptors[i]
		var err error
		if d.classSpecific, err = r.ReadFlag(); err != nil {
			return nil, fmt.Errorf("failed to read descriptor %v: %w", desc, err)
		}
		n := 1
		if d.classSpecific {
			n = numClasses
		}
		d.configs = make([]paramcabac.DescriptorConfig, n)
		for k := range d.configs {
			if d.configs[k], err = paramcabac.ReadDescriptorConfig(r, desc.IsTokentype()); err != nil {
				return nil, fmt.Errorf("failed to read descriptor %v: %w", desc, err)
			}
		}
	}

	numGroups := int(f.Bits(16))
	for i := 0; i < numGroups && f.Err() == nil; i++ {
		ps.ReadGroups = append(ps.ReadGroups, f.CString())
	}
	ps.MultipleAlignments = f.Flag()
	ps.SplicedReads = f.Flag()
	ps.MultipleSignatureBase = f.U32(31)
	if ps.MultipleSignatureBase > 0 {
		ps.SignatureSize = f.U8(6)
	}
	if f.Flag() {
		ps.CRPS = &CRPS{Algorithm: CRAlgorithm(f.U8(8))}
		if ps.CRPS.Algorithm.HasBuffer() {
			ps.CRPS.PadSize = f.U8(8)
			ps.CRPS.BufMaxSize = f.U32(24)
		}
	}
	f.Align()
	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameter set trailer: %w", err)
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// ParameterSets maps parameter set IDs to the parameter sets seen so far.
type ParameterSets map[uint8]*ParameterSet

// Lookup returns the parameter set with the given ID.
func (t ParameterSets) Lookup(id uint8) (*ParameterSet, error) {
	ps, ok := t[id]
	if !ok {
		return nil, fmt.Errorf("%w: ID %d", ErrUnknownParameterSet, id)
	}
	return ps, nil
}
