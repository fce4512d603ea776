package lookup

import (
	"errors"
	"fmt"
	"sort"

	"rsff-cap-mcp/internal/match"
	"rsff-cap-mcp/internal/sheet"
)

// ErrNoMatch is returned when no player name is close enough to the query.
var ErrNoMatch = errors.New("no matching player")

const (
	StatusRostered = "ROSTERED"
	StatusFA       = "FA"
)

// PlayerInfo merges what the Rosters and Salary tabs know about a player.
type PlayerInfo struct {
	Name       string  `json:"name"`
	Pos        string  `json:"pos"`
	NFLTeam    string  `json:"nfl"`
	Bye        string  `json:"bye"`
	AAV        float64 `json:"aav"`
	Status     string  `json:"status"`
	RosteredBy string  `json:"rostered_by,omitempty"`
	OnIR       bool    `json:"on_ir"`
	DP         bool    `json:"dp"`
	MatchScore int     `json:"match_score"`
	PlayerID   string  `json:"player_id,omitempty"`
}

// Player finds the player best matching query among rostered and salaried
// names. Ordered name rules are tried first, then fuzzy similarity at
// match.DefaultThreshold.
func Player(snap *sheet.Snapshot, query string) (PlayerInfo, error) {
	return Strategy(snap, query, match.Strategy{Threshold: match.DefaultThreshold})
}

// Strategy is Player with an explicit matching strategy.
func Strategy(snap *sheet.Snapshot, query string, s match.Strategy) (PlayerInfo, error) {
	rostered := make(map[string]sheet.RosterRow)
	for _, r := range snap.Rosters() {
		if r.OnRoster && r.Player != "" {
			rostered[r.Player] = r
		}
	}
	salaried := make(map[string]sheet.SalaryRow)
	for _, s := range snap.Salaries() {
		if s.Player != "" {
			salaried[s.Player] = s
		}
	}

	names := make([]string, 0, len(rostered)+len(salaried))
	for n := range rostered {
		names = append(names, n)
	}
	for n := range salaried {
		if _, dup := rostered[n]; !dup {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	res, ok := s.Resolve(names, query)
	if !ok {
		return PlayerInfo{}, fmt.Errorf("%w for %q", ErrNoMatch, query)
	}

	info := PlayerInfo{Name: res.Name, Status: StatusFA, MatchScore: res.Score}
	sal, hasSal := salaried[res.Name]
	if hasSal {
		info.Pos = sal.Position
		info.NFLTeam = sal.NFLTeam
		info.Bye = sal.Bye
		info.AAV = sal.AAV
		info.PlayerID = sal.PlayerID
	}
	if r, ok := rostered[res.Name]; ok {
		info.Status = StatusRostered
		info.RosteredBy = r.Team
		info.OnIR = r.OnIR
		info.DP = r.DP
		if r.AAV > 0 {
			info.AAV = r.AAV
		}
		if r.Position != "" {
			info.Pos = r.Position
		}
		if r.PlayerID != "" {
			info.PlayerID = r.PlayerID
		}
	}
	return info, nil
}
