package inter

import "fmt"

// VoteKind is the category of candidate a vote target refers to.
type VoteKind uint8

const (
	VoteCouncil VoteKind = iota
	VoteBlockProducer
	VoteBenefactor

	// VoteKindCount is the number of vote kinds.
	VoteKindCount
)

// String returns the kind name.
func (k VoteKind) String() string {
	switch k {
	case VoteCouncil:
		return "council"
	case VoteBlockProducer:
		return "blockproducer"
	case VoteBenefactor:
		return "benefactor"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// VoteID packs a vote kind into the low 8 bits and a sequential instance
// number into the high 24 bits. Instances are allocated from one shared
// counter, so the instance alone indexes the tally buffer.
type VoteID uint32

// NewVoteID builds a vote id from its kind and instance.
func NewVoteID(kind VoteKind, instance uint32) VoteID {
	return VoteID(instance<<8 | uint32(kind))
}

// Kind returns the raw vote kind stored in the id.
func (v VoteID) Kind() VoteKind {
	return VoteKind(v & 0xff)
}

// Instance returns the sequential instance number.
func (v VoteID) Instance() uint32 {
	return uint32(v) >> 8
}

func (v VoteID) String() string {
	return fmt.Sprintf("%d:%d", uint8(v.Kind()), v.Instance())
}
