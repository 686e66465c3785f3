package paramcabac

import "fmt"

// DescriptorID identifies a genomic descriptor stream.
type DescriptorID uint8

// Descriptor IDs in parameter-set order.
const (
	POS DescriptorID = iota
	RCOMP
	FLAGS
	MMPOS
	MMTYPE
	CLIPS
	UREADS
	RLEN
	PAIR
	MSCORE
	MMAP
	MSAR
	RTYPE
	RGROUP
	QV
	RNAME
	RFTP
	RFTT
)

// NumDescriptors is the number of descriptors carried by a parameter set.
const NumDescriptors = 18

var descriptors = [NumDescriptors]struct {
	name      string
	subseqs   int
	tokentype bool
}{
	POS:    {"POS", 2, false},
	RCOMP:  {"RCOMP", 1, false},
	FLAGS:  {"FLAGS", 3, false},
	MMPOS:  {"MMPOS", 2, false},
	MMTYPE: {"MMTYPE", 3, false},
	CLIPS:  {"CLIPS", 4, false},
	UREADS: {"UREADS", 1, false},
	RLEN:   {"RLEN", 1, false},
	PAIR:   {"PAIR", 8, false},
	MSCORE: {"MSCORE", 1, false},
	MMAP:   {"MMAP", 5, false},
	MSAR:   {"MSAR", 2, true},
	RTYPE:  {"RTYPE", 1, false},
	RGROUP: {"RGROUP", 1, false},
	QV:     {"QV", 1, false},
	RNAME:  {"RNAME", 2, true},
	RFTP:   {"RFTP", 1, false},
	RFTT:   {"RFTT", 1, false},
}

// Valid reports whether d is a defined descriptor.
func (d DescriptorID) Valid() bool {
	return d < NumDescriptors
}

func (d DescriptorID) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DESCRIPTOR(%d)", uint8(d))
	}
	return descriptors[d].name
}

// NumSubsequences returns the number of subsequences of the descriptor.
// For token-type descriptors it is the number of decoder configurations.
func (d DescriptorID) NumSubsequences() int {
	if !d.Valid() {
		return 0
	}
	return descriptors[d].subseqs
}

// IsTokentype reports whether the descriptor carries tokenized strings
// rather than plain subsequences.
func (d DescriptorID) IsTokentype() bool {
	return d.Valid() && descriptors[d].tokentype
}
