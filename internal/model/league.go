package model

import "time"

type LeagueStatus string

const (
	StatusWaitingForDraft LeagueStatus = "waiting for draft"
	StatusDrafting        LeagueStatus = "drafting"
	StatusInSeason        LeagueStatus = "in season"
)

type League struct {
	ID                int64
	Name              string
	Code              string
	Status            LeagueStatus
	AdminManagerID    int64
	DraftStart        time.Time
	DraftTurnDuration time.Duration
	MaxPerClub        int
}
