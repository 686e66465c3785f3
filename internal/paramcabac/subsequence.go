package paramcabac

import (
	"fmt"

	"github.com/mrjoshuak/go-mpegg/internal/bio"
	"github.com/mrjoshuak/go-mpegg/internal/transform"
)

// maxSubseqID is the largest value of the 10-bit descriptor_subsequence_ID.
const maxSubseqID = 1<<10 - 1

// Subsequence configures the coding of one descriptor subsequence: a
// transform and one TransformedSubseq per physical stream it produces.
type Subsequence struct {
	// ID is the descriptor subsequence ID. It is not serialized for
	// token-type subsequences.
	ID        uint16
	Tokentype bool
	Transform transform.Params
	Streams   []TransformedSubseq
}

// NewSubsequence builds a subsequence configuration and checks that the
// number of stream configurations matches the transform.
func NewSubsequence(id uint16, tokentype bool, tp transform.Params, streams []TransformedSubseq) (*Subsequence, error) {
	s := &Subsequence{ID: id, Tokentype: tokentype, Transform: tp, Streams: streams}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Clone returns a deep copy of s.
func (s *Subsequence) Clone() *Subsequence {
	c := *s
	c.Streams = make([]TransformedSubseq, len(s.Streams))
	for i := range s.Streams {
		c.Streams[i] = s.Streams[i].Clone()
	}
	return &c
}

// Validate checks the transform and every stream configuration.
func (s *Subsequence) Validate() error {
	if s.ID > maxSubseqID {
		return fmt.Errorf("%w: subsequence ID %d", ErrInvalidConfig, s.ID)
	}
	n, err := s.Transform.ID.NumStreams()
	if err != nil {
		return err
	}
	switch {
	case s.Transform.ID == transform.RLE && (s.Transform.Param == 0 || s.Transform.Param > 0xFF):
		return fmt.Errorf("%w: RLE guard %d", ErrInvalidConfig, s.Transform.Param)
	case len(s.Streams) != n:
		return fmt.Errorf("%w: %v needs %d stream configurations, got %d",
			ErrInvalidConfig, s.Transform.ID, n, len(s.Streams))
	}
	for i := range s.Streams {
		if err := s.Streams[i].Validate(); err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
	}
	return nil
}

// Write serializes the subsequence configuration.
func (s *Subsequence) Write(w *bio.Writer) error {
	f := bio.NewFieldWriter(w)
	if !s.Tokentype {
		f.Bits(uint64(s.ID), 10)
	}
	f.Bits(uint64(s.Transform.ID), 8)
	if s.Transform.ID == transform.Merge {
		f.Fail(transform.ErrUnsupported)
	}
	if bits := s.Transform.ID.ParamBits(); bits > 0 {
		f.Bits(uint64(s.Transform.Param), bits)
	}
	if err := f.Err(); err != nil {
		return err
	}
	for i := range s.Streams {
		if err := s.Streams[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadSubsequence parses a subsequence configuration. A MERGE transform
// fails with transform.ErrUnsupported.
func ReadSubsequence(r *bio.Reader, tokentype bool) (*Subsequence, error) {
	f := bio.NewFieldReader(r)
	s := &Subsequence{Tokentype: tokentype}
	if !tokentype {
		s.ID = f.U16(10)
	}
	s.Transform.ID = transform.ID(f.U8(8))
	if err := f.Err(); err != nil {
		return nil, err
	}
	n, err := s.Transform.ID.NumStreams()
	if err != nil {
		return nil, err
	}
	if bits := s.Transform.ID.ParamBits(); bits > 0 {
		s.Transform.Param = f.U16(bits)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	s.Streams = make([]TransformedSubseq, n)
	for i := range s.Streams {
		if err := s.Streams[i].Read(r); err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
