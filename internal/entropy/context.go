// Package entropy implements the CABAC binary arithmetic coder used for
// MPEG-G descriptor streams.
//
// This includes:
// - Adaptive context models (6-bit probability state plus MPS)
// - The context bank owned by one coding pass
// - Range encoder and decoder with bypass and terminating bins
package entropy

// ContextModel is one adaptive probability model packed as state<<1 | mps.
// The zero value is state 0 with MPS 0, the equiprobable starting point.
type ContextModel uint8

// NewContextModel returns a model in the given state (0-63) and MPS (0 or 1).
func NewContextModel(state uint8, mps int) ContextModel {
	return ContextModel(state<<1 | uint8(mps&1))
}

// State returns the probability state index.
func (c ContextModel) State() uint8 {
	return uint8(c) >> 1
}

// MPS returns the most probable symbol.
func (c ContextModel) MPS() int {
	return int(c & 1)
}

// UpdateMPS moves the model after coding its most probable symbol.
func (c *ContextModel) UpdateMPS() {
	*c = ContextModel(nextStateMPS[*c])
}

// UpdateLPS moves the model after coding its least probable symbol. At
// state 0 the MPS flips.
func (c *ContextModel) UpdateLPS() {
	*c = ContextModel(nextStateLPS[*c])
}

// Bank is the set of context models used by one encode or decode pass,
// indexed by context ID.
type Bank []ContextModel

// NewBank returns n models. Models with an entry in init start from that
// packed state; the rest start from the zero model.
func NewBank(n int, init []uint8) Bank {
	b := make(Bank, n)
	for i := range b {
		if i < len(init) {
			b[i] = ContextModel(init[i] & 0x7F)
		}
	}
	return b
}

// Reset returns every model to its starting state.
func (b Bank) Reset(init []uint8) {
	for i := range b {
		if i < len(init) {
			b[i] = ContextModel(init[i] & 0x7F)
		} else {
			b[i] = 0
		}
	}
}
