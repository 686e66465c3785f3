package mpegg

import (
	"errors"

	"github.com/mrjoshuak/go-mpegg/internal/box"
	"github.com/mrjoshuak/go-mpegg/internal/codestream"
	"github.com/mrjoshuak/go-mpegg/internal/gabac"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
	"github.com/mrjoshuak/go-mpegg/internal/transform"
)

var (
	// ErrUnknownFormat is returned when the stream is neither a container
	// nor a data unit stream.
	ErrUnknownFormat = errors.New("mpegg: unknown format")

	// ErrInvalidOptions is returned for inconsistent encoding options.
	ErrInvalidOptions = errors.New("mpegg: invalid options")

	// ErrInvalidDataset is returned when a dataset cannot be encoded as
	// given or a decoded stream does not describe a consistent dataset.
	ErrInvalidDataset = errors.New("mpegg: invalid dataset")
)

// Errors from the codec layers, re-exported for errors.Is.
var (
	ErrSymbolCountMismatch   = gabac.ErrSymbolCountMismatch
	ErrDesync                = gabac.ErrDesync
	ErrValueOutOfRange       = gabac.ErrValueOutOfRange
	ErrMalformed             = gabac.ErrMalformed
	ErrUnsupportedTransform  = transform.ErrUnsupported
	ErrInvalidConfig         = paramcabac.ErrInvalidConfig
	ErrUnsupported           = paramcabac.ErrUnsupported
	ErrUnknownParameterSet   = codestream.ErrUnknownParameterSet
	ErrClassSpecificConflict = codestream.ErrClassSpecificConflict
	ErrInvalidDataUnit       = codestream.ErrInvalidDataUnit
	ErrInvalidParameterSet   = codestream.ErrInvalidParameterSet
	ErrInvalidBoxLength      = box.ErrInvalidBoxLength
	ErrOutOfOrder            = box.ErrOutOfOrder
)
