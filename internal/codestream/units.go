// Package codestream handles MPEG-G data unit parsing and generation.
//
// A data unit stream is a sequence of raw references, parameter sets and
// access units. Access units name the parameter set they were coded with,
// so the parser keeps a table of every parameter set it has seen.
package codestream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParameterSet is returned when an access unit references a
	// parameter set ID that has not been seen.
	ErrUnknownParameterSet = errors.New("codestream: unknown parameter set")

	// ErrClassSpecificConflict is returned when a descriptor configuration
	// is accessed in the mode it is not in.
	ErrClassSpecificConflict = errors.New("codestream: class-specific configuration conflict")

	// ErrInvalidDataUnit is returned for a malformed or unknown data unit.
	ErrInvalidDataUnit = errors.New("codestream: invalid data unit")

	// ErrInvalidParameterSet is returned for an inconsistent parameter set.
	ErrInvalidParameterSet = errors.New("codestream: invalid parameter set")
)

// DataUnitType identifies a data unit.
type DataUnitType uint8

// Data unit types.
const (
	TypeRawReference DataUnitType = 0
	TypeParameterSet DataUnitType = 1
	TypeAccessUnit   DataUnitType = 2
)

// String returns the string representation of a data unit type.
func (t DataUnitType) String() string {
	switch t {
	case TypeRawReference:
		return "RAW_REFERENCE"
	case TypeParameterSet:
		return "PARAMETER_SET"
	case TypeAccessUnit:
		return "ACCESS_UNIT"
	default:
		return "UNKNOWN"
	}
}

// ClassType is the class of the records in an access unit.
type ClassType uint8

// Access unit classes.
const (
	ClassNone ClassType = 0
	ClassP    ClassType = 1 // Perfect match
	ClassN    ClassType = 2 // Mismatches limited to unknown bases
	ClassM    ClassType = 3 // Substitutions
	ClassI    ClassType = 4 // Indels
	ClassHM   ClassType = 5 // Half-mapped pairs
	ClassU    ClassType = 6 // Unmapped
)

// String returns the string representation of a class.
func (c ClassType) String() string {
	switch c {
	case ClassNone:
		return "NONE"
	case ClassP:
		return "P"
	case ClassN:
		return "N"
	case ClassM:
		return "M"
	case ClassI:
		return "I"
	case ClassHM:
		return "HM"
	case ClassU:
		return "U"
	default:
		return fmt.Sprintf("CLASS(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the coded classes.
func (c ClassType) Valid() bool {
	return c >= ClassP && c <= ClassU
}

// HasMismatchFields reports whether access units of class c carry the
// mismatch threshold and count fields.
func (c ClassType) HasMismatchFields() bool {
	return c == ClassN || c == ClassM
}

// DatasetType describes what the records of a dataset are.
type DatasetType uint8

// Dataset types.
const (
	DatasetNonAligned DatasetType = 0
	DatasetAligned    DatasetType = 1
	DatasetReference  DatasetType = 2
)

// String returns the string representation of a dataset type.
func (d DatasetType) String() string {
	switch d {
	case DatasetNonAligned:
		return "NON_ALIGNED"
	case DatasetAligned:
		return "ALIGNED"
	case DatasetReference:
		return "REFERENCE"
	default:
		return fmt.Sprintf("DATASET(%d)", uint8(d))
	}
}

// CRAlgorithm identifies a computed reference algorithm.
type CRAlgorithm uint8

// Computed reference algorithms.
const (
	CRReserved       CRAlgorithm = 0
	CRRefTransform   CRAlgorithm = 1
	CRPushIn         CRAlgorithm = 2
	CRLocalAssembly  CRAlgorithm = 3
	CRGlobalAssembly CRAlgorithm = 4
)

// HasBuffer reports whether the algorithm carries pad and buffer sizes.
func (a CRAlgorithm) HasBuffer() bool {
	return a == CRPushIn || a == CRLocalAssembly
}
