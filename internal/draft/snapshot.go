package draft

import "github.com/openfpl/draft-backend/internal/model"

type ManagerView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type PlayerView struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name"`
	Position  model.Position `json:"position"`
	ClubID    int64          `json:"club_id"`
	ClubShort string         `json:"club_short"`
}

// Snapshot is the externally visible view of one league's draft.
// NextManager is omitted once the wrap-around manager holds 14+
// players, which clients read as "draft is about to finish".
type Snapshot struct {
	CurrentManager  ManagerView            `json:"current_manager"`
	NextManager     *ManagerView           `json:"next_manager,omitempty"`
	Rosters         map[int64][]PlayerView `json:"rosters"`
	DraftPool       []PlayerView           `json:"draft_pool"`
	LastPickMessage string                 `json:"last_pick_message,omitempty"`
	RemainingMS     int64                  `json:"remaining_ms"`
}

func managerView(m model.Manager) ManagerView {
	return ManagerView{ID: m.ID, Username: m.Username}
}

func playerView(p model.Player) PlayerView {
	return PlayerView{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Position:  p.Position,
		ClubID:    p.ClubID,
		ClubShort: p.ClubShort,
	}
}

// Broadcaster pushes draft state out to connected clients. The session
// calls it while holding its lock, so implementations must not block.
type Broadcaster interface {
	BroadcastState(leagueID int64, snap Snapshot)
	SendStateTo(leagueID int64, snap Snapshot, username string)
	SendStartingSoon(leagueID int64, startsInMS int64, username string)
	SendDraftComplete(leagueID int64)
}
