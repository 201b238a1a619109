package model

import "fmt"

type Player struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name"`
	Position  Position `json:"position"`
	ClubID    int64    `json:"club_id"`
	ClubShort string   `json:"club_short"`
	Available bool     `json:"-"`
}

// DisplayName formats a player for pick announcements. Some players
// only carry a last name (e.g. "Alisson").
func (p Player) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

type Manager struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
