package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
)

// EncodingModeCABAC is the only encoding_mode_ID this package understands.
const EncodingModeCABAC = 0

// DescriptorConfig is the decoder configuration of one descriptor. It is
// one of *Regular, *Tokentype or Absent.
type DescriptorConfig interface {
	// Write serializes the configuration, including dec_cfg_preset and
	// encoding_mode_ID.
	Write(w *bio.Writer) error

	// Clone returns a deep copy.
	Clone() DescriptorConfig

	// Validate checks the configuration.
	Validate() error

	isDescriptorConfig()
}

// Regular configures a descriptor made of plain subsequences.
type Regular struct {
	Subsequences []*Subsequence
}

// Tokentype configures a token-type descriptor. Subsequences[0] codes
// token type 0 and Subsequences[1] every other token type.
type Tokentype struct {
	// RLEGuard is rle_guard_tokentype. Token payloads are always coded
	// with method CABAC, so the guard is carried in the configuration but
	// never applied when coding.
	RLEGuard     uint8
	Subsequences [2]*Subsequence
}

// Absent refers to a preset configuration by its non-zero dec_cfg_preset
// value. Nothing else is carried.
type Absent struct {
	Preset uint8
}

func (*Regular) isDescriptorConfig()   {}
func (*Tokentype) isDescriptorConfig() {}
func (Absent) isDescriptorConfig()     {}

// Subsequence returns the configuration of subsequence i.
func (c *Regular) Subsequence(i int) (*Subsequence, error) {
	if i < 0 || i >= len(c.Subsequences) {
		return nil, fmt.Errorf("%w: no configuration for subsequence %d", ErrInvalidConfig, i)
	}
	return c.Subsequences[i], nil
}

// Clone returns a deep copy of c.
func (c *Regular) Clone() DescriptorConfig {
	n := &Regular{Subsequences: make([]*Subsequence, len(c.Subsequences))}
	for i, s := range c.Subsequences {
		n.Subsequences[i] = s.Clone()
	}
	return n
}

// Validate checks every subsequence configuration.
func (c *Regular) Validate() error {
	if len(c.Subsequences) == 0 || len(c.Subsequences) > 256 {
		return fmt.Errorf("%w: %d subsequence configurations", ErrInvalidConfig, len(c.Subsequences))
	}
	for i, s := range c.Subsequences {
		if s == nil {
			return fmt.Errorf("%w: subsequence %d not configured", ErrInvalidConfig, i)
		}
		if s.Tokentype {
			return fmt.Errorf("%w: token-type subsequence %d in regular configuration", ErrInvalidConfig, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("subsequence %d: %w", i, err)
		}
	}
	return nil
}

// Write serializes c.
func (c *Regular) Write(w *bio.Writer) error {
	if len(c.Subsequences) == 0 || len(c.Subsequences) > 256 {
		return fmt.Errorf("%w: %d subsequence configurations", ErrInvalidConfig, len(c.Subsequences))
	}
	f := bio.NewFieldWriter(w)
	f.Bits(0, 8) // dec_cfg_preset
	f.Bits(EncodingModeCABAC, 8)
	f.Bits(uint64(len(c.Subsequences)-1), 8)
	if err := f.Err(); err != nil {
		return err
	}
	for _, s := range c.Subsequences {
		if err := s.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// Subsequence returns the configuration used for token type typeID.
func (c *Tokentype) Subsequence(typeID uint8) *Subsequence {
	if typeID == 0 {
		return c.Subsequences[0]
	}
	return c.Subsequences[1]
}

// Clone returns a deep copy of c.
func (c *Tokentype) Clone() DescriptorConfig {
	n := &Tokentype{RLEGuard: c.RLEGuard}
	for i, s := range c.Subsequences {
		if s != nil {
			n.Subsequences[i] = s.Clone()
		}
	}
	return n
}

// Validate checks both subsequence configurations.
func (c *Tokentype) Validate() error {
	for i, s := range c.Subsequences {
		if s == nil {
			return fmt.Errorf("%w: token-type configuration %d missing", ErrInvalidConfig, i)
		}
		if !s.Tokentype {
			return fmt.Errorf("%w: token-type configuration %d is a regular subsequence", ErrInvalidConfig, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("token-type configuration %d: %w", i, err)
		}
		if len(s.Streams) != 1 {
			return fmt.Errorf("%w: token-type configuration %d must use a single stream", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Write serializes c.
func (c *Tokentype) Write(w *bio.Writer) error {
	f := bio.NewFieldWriter(w)
	f.Bits(0, 8) // dec_cfg_preset
	f.Bits(EncodingModeCABAC, 8)
	f.Bits(uint64(c.RLEGuard), 8)
	if err := f.Err(); err != nil {
		return err
	}
	for i, s := range c.Subsequences {
		if s == nil {
			return fmt.Errorf("%w: token-type configuration %d missing", ErrInvalidConfig, i)
		}
		if err := s.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns c.
func (c Absent) Clone() DescriptorConfig { return c }

// Validate rejects a zero preset, which would announce a configuration
// that is not there.
func (c Absent) Validate() error {
	if c.Preset == 0 {
		return fmt.Errorf("%w: absent configuration with preset 0", ErrInvalidConfig)
	}
	return nil
}

// Write serializes the preset value.
func (c Absent) Write(w *bio.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return w.WriteBits(uint64(c.Preset), 8)
}

// ReadDescriptorConfig parses a descriptor configuration. The caller
// states whether the descriptor is token-type, which selects the layout.
func ReadDescriptorConfig(r *bio.Reader, tokentype bool) (DescriptorConfig, error) {
	f := bio.NewFieldReader(r)
	preset := f.U8(8)
	if err := f.Err(); err != nil {
		return nil, err
	}
	if preset != 0 {
		return Absent{Preset: preset}, nil
	}
	if mode := f.U8(8); f.Err() == nil && mode != EncodingModeCABAC {
		return nil, fmt.Errorf("%w: encoding mode %d", ErrUnsupported, mode)
	}
	if tokentype {
		c := &Tokentype{RLEGuard: f.U8(8)}
		if err := f.Err(); err != nil {
			return nil, err
		}
		for i := range c.Subsequences {
			s, err := ReadSubsequence(r, true)
			if err != nil {
				return nil, fmt.Errorf("token-type configuration %d: %w", i, err)
			}
			c.Subsequences[i] = s
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	n := int(f.Bits(8)) + 1
	if err := f.Err(); err != nil {
		return nil, err
	}
	c := &Regular{Subsequences: make([]*Subsequence, n)}
	for i := range c.Subsequences {
		s, err := ReadSubsequence(r, false)
		if err != nil {
			return nil, fmt.Errorf("subsequence %d: %w", i, err)
		}
		c.Subsequences[i] = s
	}
	return c, nil
}
