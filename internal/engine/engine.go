package engine

import (
	"errors"

	"github.com/openfpl/draft-backend/internal/model"
)

var ErrDraftCompleted = errors.New("draft already completed")
var ErrNotYourTurn = errors.New("not this manager's turn")
var ErrPlayerNotInPool = errors.New("player not in draft pool")
var ErrPositionCapReached = errors.New("position cap reached")
var ErrClubCapReached = errors.New("club cap reached")
var ErrNoEligiblePlayers = errors.New("no eligible player left in pool")

// RosterLimit is the number of players every manager drafts.
const RosterLimit = 15

var positionCaps = map[model.Position]int{
	model.PosGoalkeeper: 2,
	model.PosDefender:   5,
	model.PosMidfielder: 5,
	model.PosForward:    3,
}

func PositionCap(pos model.Position) int {
	return positionCaps[pos]
}

// CheckPick reports whether pick may join roster under the league's
// allocation rules: fewer than maxPerClub players from the pick's club,
// and fewer than the position cap at the pick's position.
func CheckPick(roster []model.Player, pick model.Player, maxPerClub int) error {
	sameClub := 0
	samePos := 0
	for _, p := range roster {
		if p.ClubID == pick.ClubID {
			sameClub++
		}
		if p.Position == pick.Position {
			samePos++
		}
	}

	if sameClub >= maxPerClub {
		return ErrClubCapReached
	}
	if samePos >= PositionCap(pick.Position) {
		return ErrPositionCapReached
	}
	return nil
}

func RosterComplete(roster []model.Player) bool {
	return len(roster) >= RosterLimit
}

// NextIndex advances the turn cursor. The second return value reports
// a wrap back to 0, which is when the snake order reverses.
func NextIndex(cur, n int) (int, bool) {
	next := (cur + 1) % n
	return next, next == 0
}

// Eligible filters pool down to the players the roster can still take:
// positions under cap and clubs not already at maxPerClub. Auto-picks
// draw from this set so they pass the same checks a manual pick would.
func Eligible(pool, roster []model.Player, maxPerClub int) []model.Player {
	byPos := make(map[model.Position]int)
	byClub := make(map[int64]int)
	for _, p := range roster {
		byPos[p.Position]++
		byClub[p.ClubID]++
	}

	eligible := make([]model.Player, 0, len(pool))
	for _, p := range pool {
		if byPos[p.Position] >= PositionCap(p.Position) {
			continue
		}
		if byClub[p.ClubID] >= maxPerClub {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}
