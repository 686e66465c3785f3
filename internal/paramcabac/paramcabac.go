// Package paramcabac holds the CABAC decoder configuration carried in an
// MPEG-G parameter set.
//
// The configuration is a tree. A DescriptorConfig holds one Subsequence
// per descriptor subsequence; a Subsequence names a transform and holds one
// TransformedSubseq per physical stream that transform produces; a
// TransformedSubseq fixes symbol sizes, coding order, binarization and
// context parameters. Every node can be written to and read from a bit
// stream, cloned, and validated.
package paramcabac

import "errors"

var (
	// ErrInvalidConfig is returned for a configuration whose fields are
	// inconsistent with each other.
	ErrInvalidConfig = errors.New("paramcabac: invalid configuration")

	// ErrUnsupported is returned for configuration values that are
	// recognised but not implemented.
	ErrUnsupported = errors.New("paramcabac: unsupported configuration")
)

// maxContexts bounds the size of a context bank, the range of the 16-bit
// num_contexts field.
const maxContexts = 1<<16 - 1
