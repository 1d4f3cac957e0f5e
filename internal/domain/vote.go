package domain

import "time"

// Vote registra el voto de un usuario sobre un proyecto aprobado.
// La tupla (project_id, voter_id) es unica; re-votar actualiza el score.
type Vote struct {
	ProjectID string    `json:"project_id"`
	VoterID   string    `json:"voter_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	VoteScoreMin = 1
	VoteScoreMax = 5
)
