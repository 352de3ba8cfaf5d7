package autopick

// RosterTargets maps a sport to its per-position roster-slot targets. The
// tables are static; leagues that want different shapes override them at
// construction time.
type RosterTargets map[string]map[string]int

// DefaultTargets covers the sports the platform ships with. Positions are
// the normalized codes carried on PlayerRef.
func DefaultTargets() RosterTargets {
	return RosterTargets{
		"nfl": {
			"QB": 1,
			"RB": 2,
			"WR": 2,
			"TE": 1,
		},
		"mlb": {
			"SP": 2,
			"CL": 1,
			"IF": 4,
			"OF": 3,
		},
		"nba": {
			"G": 2,
			"F": 2,
			"C": 1,
		},
	}
}
