// Package snake computes turn ownership for snake-order drafts.
//
// Everything here is a pure function of the participant order and the
// 0-based global pick index. The server and every connected client derive
// the turn owner from the same inputs, so ownership is never transmitted
// as an independent field.
package snake

import (
	"github.com/google/uuid"
)

// Round returns the 0-based round for a pick index given n participants.
func Round(n, pickIndex int) int {
	return pickIndex / n
}

// PickInRound returns the 0-based position within the round.
func PickInRound(n, pickIndex int) int {
	return pickIndex % n
}

// OwnerIndex returns the index into the participant order that owns the
// given pick. Even rounds run forward, odd rounds reverse.
func OwnerIndex(n, pickIndex int) int {
	pos := PickInRound(n, pickIndex)
	if Round(n, pickIndex)%2 == 0 {
		return pos
	}
	return n - 1 - pos
}

// Owner returns the participant that owns the given pick.
// Defined for all pickIndex >= 0; callers must not ask about picks past the
// end of the draft.
func Owner(order []uuid.UUID, pickIndex int) uuid.UUID {
	return order[OwnerIndex(len(order), pickIndex)]
}
