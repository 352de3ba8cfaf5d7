// Package autopick chooses a player for a turn that timed out with no
// human input. Selection is deterministic: identical pool and roster
// snapshots always produce the same player, so auto-draft outcomes are
// reproducible.
package autopick

import (
	"strings"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/models"
)

// NeedSelector biases selection toward the owner's unmet roster needs and
// falls back to the first available player in catalog order.
type NeedSelector struct {
	targets RosterTargets
}

var _ engine.Selector = (*NeedSelector)(nil)

// New builds a NeedSelector. nil targets means DefaultTargets.
func New(targets RosterTargets) *NeedSelector {
	if targets == nil {
		targets = DefaultTargets()
	}
	return &NeedSelector{targets: targets}
}

// Select picks the first pool player (catalog order is the tie-break) whose
// position is still an unmet need, then any remaining player, and reports
// ErrNoAvailablePlayers on an empty pool.
func (s *NeedSelector) Select(pool []models.PlayerRef, drafted []models.DraftPick) (models.PlayerRef, error) {
	if len(pool) == 0 {
		return models.PlayerRef{}, engine.ErrNoAvailablePlayers
	}

	needs := s.unmetNeeds(drafted)
	for _, p := range pool {
		if needs[needKey(p.Sport, p.Position)] > 0 {
			return p, nil
		}
	}
	return pool[0], nil
}

// unmetNeeds computes target minus current count per (sport, position),
// clamped at zero, across every sport in the target table.
func (s *NeedSelector) unmetNeeds(drafted []models.DraftPick) map[string]int {
	counts := make(map[string]int)
	for _, pick := range drafted {
		counts[needKey(pick.Player.Sport, pick.Player.Position)]++
	}

	needs := make(map[string]int)
	for sport, positions := range s.targets {
		for position, target := range positions {
			key := needKey(sport, position)
			if rem := target - counts[key]; rem > 0 {
				needs[key] = rem
			}
		}
	}
	return needs
}

func needKey(sport, position string) string {
	return strings.ToLower(sport) + "/" + strings.ToUpper(position)
}
