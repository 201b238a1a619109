package types

import "github.com/openfpl/draft-backend/internal/draft"

type ClientMessage struct {
	Type     string `json:"type"` // "PickPlayer" | "GetDraftState"
	LeagueID int64  `json:"league_id,omitempty"`
	PlayerID int64  `json:"player_id,omitempty"`
}

type ServerMessage struct {
	Type       string          `json:"type"` // "DraftState" | "DraftStartingSoon" | "DraftComplete" | "Error"
	LeagueID   int64           `json:"league_id,omitempty"`
	State      *draft.Snapshot `json:"state,omitempty"`
	StartsInMS int64           `json:"starts_in_ms,omitempty"`
	Error      string          `json:"error,omitempty"`
}
