// Package catalog supplies the draftable-player pool. The in-memory
// provider serves a fixed catalogue seeded from YAML; its ordering is
// stable and doubles as the auto-draft tie-break order.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/draftday/draftroom/internal/models"
)

// Memory serves one shared catalogue, filtered per league by enabled
// sports.
type Memory struct {
	mu           sync.RWMutex
	players      []models.PlayerRef
	leagueSports map[uuid.UUID]map[string]bool
}

// NewMemory builds a provider over a fixed player list.
func NewMemory(players []models.PlayerRef) *Memory {
	return &Memory{
		players:      players,
		leagueSports: make(map[uuid.UUID]map[string]bool),
	}
}

// SetLeagueSports restricts a league's pool to the given sports. A league
// with no entry sees the full catalogue.
func (m *Memory) SetLeagueSports(leagueID uuid.UUID, sports []string) {
	enabled := make(map[string]bool, len(sports))
	for _, s := range sports {
		enabled[s] = true
	}
	m.mu.Lock()
	m.leagueSports[leagueID] = enabled
	m.mu.Unlock()
}

// ListAvailablePlayers implements engine.Catalog. Order is catalogue order.
func (m *Memory) ListAvailablePlayers(_ context.Context, leagueID uuid.UUID) ([]models.PlayerRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	enabled, restricted := m.leagueSports[leagueID]
	out := make([]models.PlayerRef, 0, len(m.players))
	for _, p := range m.players {
		if restricted && !enabled[p.Sport] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type seedFile struct {
	Players []seedPlayer `yaml:"players"`
}

type seedPlayer struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"full_name"`
	Position string `yaml:"position"`
	Team     string `yaml:"team"`
	Sport    string `yaml:"sport"`
}

// LoadSeed reads a YAML player catalogue. Missing IDs get fresh UUIDs.
func LoadSeed(path string) ([]models.PlayerRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}

	players := make([]models.PlayerRef, 0, len(seed.Players))
	for i, sp := range seed.Players {
		ref := models.PlayerRef{
			FullName: sp.FullName,
			Position: sp.Position,
			Team:     sp.Team,
			Sport:    sp.Sport,
		}
		if sp.ID != "" {
			id, err := uuid.Parse(sp.ID)
			if err != nil {
				return nil, fmt.Errorf("catalog seed entry %d: bad id: %w", i, err)
			}
			ref.ID = id
		} else {
			ref.ID = uuid.New()
		}
		players = append(players, ref)
	}
	return players, nil
}
