package sheet

import (
	"rsff-cap-mcp/internal/cell"
)

// RosterRow is one (team, player) assignment from the Rosters tab.
type RosterRow struct {
	Team     string  `json:"team"`
	Player   string  `json:"player"`
	PlayerID string  `json:"player_id,omitempty"`
	Position string  `json:"pos,omitempty"`
	AAV      float64 `json:"aav"`
	OnRoster bool    `json:"on_roster"`
	OnIR     bool    `json:"on_ir"`
	DP       bool    `json:"dp"`
}

// Active reports whether the row is rostered and not on IR.
func (r RosterRow) Active() bool {
	return r.OnRoster && !r.OnIR
}

// SalaryRow is one player from the salary table (rostered or free agent).
type SalaryRow struct {
	Player   string  `json:"player"`
	PlayerID string  `json:"player_id,omitempty"`
	Position string  `json:"pos,omitempty"`
	NFLTeam  string  `json:"nfl,omitempty"`
	Bye      string  `json:"bye,omitempty"`
	AAV      float64 `json:"aav"`
}

// OwnerRow is one franchise from the Owners tab.
type OwnerRow struct {
	TeamName     string  `json:"team_name,omitempty"`
	DisplayName  string  `json:"display_name,omitempty"`
	OwnerDisplay string  `json:"owner_display,omitempty"`
	Handle       string  `json:"handle,omitempty"`
	CapLimit     float64 `json:"cap_limit,omitempty"`
}

// Label is the name the rest of the sheet uses for this franchise.
func (o OwnerRow) Label() string {
	for _, v := range []string{o.TeamName, o.DisplayName, o.OwnerDisplay, o.Handle} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Names returns every non-empty identifying field, team name first.
func (o OwnerRow) Names() []string {
	out := make([]string, 0, 4)
	for _, v := range []string{o.TeamName, o.DisplayName, o.OwnerDisplay, o.Handle} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseRoster(r cell.Row) RosterRow {
	onRoster := true
	if v := r.First(aliasOnRoster...); v != "" {
		onRoster = cell.ToBool(v)
	}
	return RosterRow{
		Team:     r.First(aliasTeam...),
		Player:   r.First(aliasPlayerName...),
		PlayerID: r.First(aliasPlayerID...),
		Position: r.First(aliasPosition...),
		AAV:      cell.ToNumber(r.First(aliasSalary...)),
		OnRoster: onRoster,
		OnIR:     cell.ToBool(r.First(aliasOnIR...)),
		DP:       cell.ToBool(r.First(aliasDP...)),
	}
}

func parseSalary(r cell.Row) SalaryRow {
	return SalaryRow{
		Player:   r.First(aliasPlayerName...),
		PlayerID: r.First(aliasSalaryTabID...),
		Position: r.First(aliasPosition...),
		NFLTeam:  r.First(aliasNFLTeam...),
		Bye:      r.First(aliasBye...),
		AAV:      cell.ToNumber(r.First(aliasSalary...)),
	}
}

func parseOwner(r cell.Row) OwnerRow {
	return OwnerRow{
		TeamName:     r.First(aliasOwnerTeam...),
		DisplayName:  r.First(aliasOwnerDisplay...),
		OwnerDisplay: r.First(aliasOwnerName...),
		Handle:       r.First(aliasOwnerHandle...),
		CapLimit:     cell.ToNumber(r.First(aliasOwnerCapLimit...)),
	}
}
