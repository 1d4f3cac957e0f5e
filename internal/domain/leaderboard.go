package domain

// LeaderboardEntry es una fila calculada del ranking de una competencia.
// El orden es: total de puntos desc, cantidad de votos desc, submitted_at asc.
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	ProjectID  string  `json:"project_id"`
	Title      string  `json:"title"`
	AuthorName string  `json:"author_name,omitempty"`
	CategoryID string  `json:"category_id,omitempty"`
	VoteCount  int     `json:"vote_count"`
	TotalScore int     `json:"total_score"`
	AvgScore   float64 `json:"avg_score"`
}
