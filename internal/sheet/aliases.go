package sheet

// Header aliases seen across sheet revisions, already in NormalizeKey form.
// This is the only place that should know about them.
var (
	aliasTeam        = []string{"team"}
	aliasPlayerName  = []string{"player name", "player_name", "player", "name"}
	aliasOnRoster    = []string{"on roster flag", "on_roster_flag"}
	aliasOnIR        = []string{"on ir?", "on_ir?", "on_ir", "ir"}
	aliasDP          = []string{"dp?", "dp"}
	aliasSalary      = []string{"aav", "salary", "cap_hit_2025"}
	aliasPlayerID    = []string{"player id", "player_id", "sleeper_player_id", "yahoo_player_id"}
	aliasSalaryTabID = []string{"sleeper_player_id", "yahoo_player_id", "player id", "player_id"}
	aliasPosition    = []string{"pos", "position"}
	aliasNFLTeam     = []string{"nfl", "nfl team", "nfl_team", "team"}
	aliasBye         = []string{"bye", "bye week", "bye_week"}

	aliasOwnerTeam     = []string{"team_name", "team name"}
	aliasOwnerDisplay  = []string{"display_name", "display name"}
	aliasOwnerName     = []string{"owner_display", "owner display"}
	aliasOwnerHandle   = []string{"discord user", "discord_user"}
	aliasOwnerCapLimit = []string{"cap_limit", "cap limit"}
)
