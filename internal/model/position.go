package model

import (
	"strings"
)

type Position string

const (
	PosUnknown    Position = "unknown"
	PosGoalkeeper Position = "goalkeeper"
	PosDefender   Position = "defender"
	PosMidfielder Position = "midfielder"
	PosForward    Position = "forward"
)

func ParsePosition(pos string) Position {
	pos = strings.ToLower(pos)
	switch pos {
	case "goalkeeper", "gkp", "gk":
		return PosGoalkeeper
	case "defender", "def":
		return PosDefender
	case "midfielder", "mid":
		return PosMidfielder
	case "forward", "fwd":
		return PosForward
	default:
		return PosUnknown
	}
}
