package domain

import "time"

// CompetitionStatus modela el ciclo de vida de una competencia:
// draft -> open -> voting -> closed.
type CompetitionStatus string

const (
	CompetitionDraft  CompetitionStatus = "draft"
	CompetitionOpen   CompetitionStatus = "open"
	CompetitionVoting CompetitionStatus = "voting"
	CompetitionClosed CompetitionStatus = "closed"
)

// CanTransitionTo valida el avance de estado; solo se permite el orden natural.
func (s CompetitionStatus) CanTransitionTo(next CompetitionStatus) bool {
	switch s {
	case CompetitionDraft:
		return next == CompetitionOpen
	case CompetitionOpen:
		return next == CompetitionVoting
	case CompetitionVoting:
		return next == CompetitionClosed
	}
	return false
}

type Competition struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	SchoolYear   string            `json:"school_year"`
	Status       CompetitionStatus `json:"status"`
	StartsAt     time.Time         `json:"starts_at"`
	EndsAt       time.Time         `json:"ends_at"`
	VotingEndsAt time.Time         `json:"voting_ends_at"`
	CreatedAt    time.Time         `json:"created_at"`
}
